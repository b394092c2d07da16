package repository

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
)

const notificationColumns = `id, user_id, type, title, message, metadata, is_read, created_at`

type postgresNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresNotificationRepository(pool *pgxpool.Pool) repository.NotificationRepository {
	return &postgresNotificationRepository{pool: pool}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if err := n.Validate(); err != nil {
		return errors.Internal("Refusing to store malformed notification", err)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, n.ID, n.UserID, n.Type, n.Title, n.Message, n.Metadata, n.IsRead, n.CreatedAt)
	if err != nil {
		return storageFault("Failed to create notification", err)
	}
	return nil
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	return scanNotification(row)
}

func (r *postgresNotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, storageFault("Failed to count notifications", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, storageFault("Failed to list notifications", err)
	}
	defer rows.Close()

	var out []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageFault("Failed to list notifications", err)
	}
	return out, total, nil
}

func (r *postgresNotificationRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return storageFault("Failed to mark notification read", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("Notification", nil)
	}
	return nil
}

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var n entity.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Metadata, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Notification", err)
		}
		return nil, storageFault("Failed to read notification", err)
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return &n, nil
}
