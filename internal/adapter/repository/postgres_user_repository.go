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

type postgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &postgresUserRepository{pool: pool}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *entity.UserProfile) error {
	if !entity.ValidUserID(user.ID) {
		return errors.InvalidRequest("Malformed user id", nil)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role
	`, user.ID, user.Name, user.Email, user.Role, user.CreatedAt)
	if err != nil {
		return storageFault("Failed to save user", err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*entity.UserProfile, error) {
	var u entity.UserProfile
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, role, created_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("User", err)
		}
		return nil, storageFault("Failed to get user", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
