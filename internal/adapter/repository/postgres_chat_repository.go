package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

const pgUniqueViolation = "23505"

const conversationColumns = `id, participant_a, participant_b, participant_key, context, last_sequence,
	last_message_id, last_message_text, last_message_sender_id, last_message_created_at, last_message_sequence,
	created_at, updated_at`

const messageColumns = `id, conversation_id, sender_id, text, kind, created_at, sequence`

type postgresChatRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresChatRepository(pool *pgxpool.Pool) repository.ChatRepository {
	return &postgresChatRepository{
		pool: pool,
		now:  time.Now,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *postgresChatRepository) Create(ctx context.Context, c *entity.Conversation) error {
	if err := c.Validate(); err != nil {
		return errors.Internal("Refusing to store malformed conversation", err)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b, participant_key, context, last_sequence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Participants[0], c.Participants[1], c.ParticipantKey, c.Context, c.LastSequence, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Conversation already exists for participants and context", err)
		}
		logger.Error("Postgres error while creating conversation %s: %v", c.ID, err)
		return storageFault("Failed to create conversation", err)
	}
	return nil
}

func (r *postgresChatRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	return scanConversation(row)
}

func (r *postgresChatRepository) GetByKey(ctx context.Context, participantKey, context string) (*entity.Conversation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE participant_key = $1 AND context = $2
	`, participantKey, context)
	return scanConversation(row)
}

func (r *postgresChatRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY updated_at DESC, id ASC
	`, userID)
	if err != nil {
		return nil, storageFault("Failed to list conversations", err)
	}
	defer rows.Close()

	var out []*entity.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFault("Failed to list conversations", err)
	}
	return out, nil
}

func (r *postgresChatRepository) SetLastMessage(ctx context.Context, conversationID string, logSequence int64, last *entity.LastMessage) error {
	var (
		id, text, sender *string
		createdAt        *time.Time
		sequence         *int64
	)
	if last != nil {
		id, text, sender = &last.MessageID, &last.Text, &last.SenderID
		createdAt, sequence = &last.CreatedAt, &last.Sequence
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE conversations SET
			last_message_id = $2,
			last_message_text = $3,
			last_message_sender_id = $4,
			last_message_created_at = $5,
			last_message_sequence = $6,
			updated_at = GREATEST(updated_at, COALESCE($5, updated_at))
		WHERE id = $1 AND last_sequence = $7
	`, conversationID, id, text, sender, createdAt, sequence, logSequence)
	if err != nil {
		return storageFault("Failed to update last message", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM conversations WHERE id = $1)`, conversationID).Scan(&exists)
	if err != nil {
		return storageFault("Failed to update last message", err)
	}
	if !exists {
		return errors.NotFound("Conversation", nil)
	}
	return errors.Conflict("Conversation has newer messages", nil)
}

func (r *postgresChatRepository) Append(ctx context.Context, message *entity.Message) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1 FOR UPDATE`, message.ConversationID)
		conv, err := scanConversation(row)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(message.SenderID) {
			return errors.Forbidden("Sender is not a participant in this conversation", nil)
		}

		message.Sequence = conv.LastSequence + 1
		message.CreatedAt = entity.NextMessageTime(r.now(), conv.LastMessage)
		if err := message.Validate(); err != nil {
			return errors.Internal("Refusing to store malformed message", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO messages (`+messageColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, message.ID, message.ConversationID, message.SenderID, message.Text, message.Kind, message.CreatedAt, message.Sequence); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE conversations SET
				last_sequence = $2,
				last_message_id = $3,
				last_message_text = $4,
				last_message_sender_id = $5,
				last_message_created_at = $6,
				last_message_sequence = $2,
				updated_at = GREATEST(updated_at, $6)
			WHERE id = $1
		`, message.ConversationID, message.Sequence, message.ID, message.Text, message.SenderID, message.CreatedAt)
		return err
	})
	if err != nil {
		if !errors.IsTaxonomy(err) {
			logger.Error("Postgres error while appending message to %s: %v", message.ConversationID, err)
		}
		return storageFault("Failed to append message", err)
	}
	return nil
}

func (r *postgresChatRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, sequence ASC
	`, conversationID)
	if err != nil {
		return nil, storageFault("Failed to list messages", err)
	}
	defer rows.Close()

	var out []*entity.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageFault("Failed to list messages", err)
	}
	return out, nil
}

func (r *postgresChatRepository) Latest(ctx context.Context, conversationID string) (*entity.Message, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, sequence DESC
		LIMIT 1
	`, conversationID)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.NotFound("Message", nil)
		}
		return nil, err
	}
	return m, nil
}

func scanConversation(row pgx.Row) (*entity.Conversation, error) {
	var (
		c                         entity.Conversation
		a, b                      string
		lastID, lastText, lastSID *string
		lastCreatedAt             *time.Time
		lastSequence              *int64
	)
	err := row.Scan(
		&c.ID, &a, &b, &c.ParticipantKey, &c.Context, &c.LastSequence,
		&lastID, &lastText, &lastSID, &lastCreatedAt, &lastSequence,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, storageFault("Failed to read conversation", err)
	}

	c.Participants = []string{a, b}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	if lastID != nil && lastCreatedAt != nil && lastSequence != nil {
		c.LastMessage = &entity.LastMessage{
			MessageID: *lastID,
			CreatedAt: lastCreatedAt.UTC(),
			Sequence:  *lastSequence,
		}
		if lastText != nil {
			c.LastMessage.Text = *lastText
		}
		if lastSID != nil {
			c.LastMessage.SenderID = *lastSID
		}
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Internal("Stored conversation is malformed", err)
	}
	return &c, nil
}

func scanMessage(row pgx.Row) (*entity.Message, error) {
	var m entity.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.Kind, &m.CreatedAt, &m.Sequence)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFound("Message", err)
		}
		return nil, storageFault("Failed to read message", err)
	}
	m.CreatedAt = m.CreatedAt.UTC()
	if err := m.Validate(); err != nil {
		return nil, errors.Internal("Stored message is malformed", err)
	}
	return &m, nil
}
