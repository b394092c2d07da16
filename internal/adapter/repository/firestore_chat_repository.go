package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

const (
	conversationsCollection    = "conversations"
	conversationKeysCollection = "conversation_keys"
	messagesCollection         = "messages"
)

// conversationKeyDoc reserves a (participantKey, context) pair.
type conversationKeyDoc struct {
	ConversationID string    `firestore:"conversationId"`
	ParticipantKey string    `firestore:"participantKey"`
	Context        string    `firestore:"context"`
	CreatedAt      time.Time `firestore:"createdAt"`
}

type firestoreChatRepository struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
		now:    time.Now,
	}
}

func (r *firestoreChatRepository) conversations() *firestore.CollectionRef {
	return r.client.Collection(conversationsCollection)
}

func (r *firestoreChatRepository) messages(conversationID string) *firestore.CollectionRef {
	return r.conversations().Doc(conversationID).Collection(messagesCollection)
}

func (r *firestoreChatRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	if err := conversation.Validate(); err != nil {
		return errors.Internal("Refusing to store malformed conversation", err)
	}

	keyRef := r.client.Collection(conversationKeysCollection).Doc(conversationKeyID(conversation.ParticipantKey, conversation.Context))
	convRef := r.conversations().Doc(conversation.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(keyRef)
		if err == nil {
			return errors.Conflict("Conversation already exists for participants and context", nil)
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Create(keyRef, conversationKeyDoc{
			ConversationID: conversation.ID,
			ParticipantKey: conversation.ParticipantKey,
			Context:        conversation.Context,
			CreatedAt:      conversation.CreatedAt,
		}); err != nil {
			return err
		}
		return tx.Create(convRef, conversation)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Conversation already exists for participants and context", err)
		}
		logger.Error("Firestore error while creating conversation %s: %v", conversation.ID, err)
		return storageFault("Failed to create conversation", err)
	}
	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.conversations().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, storageFault("Failed to get conversation", err)
	}
	return decodeConversation(doc)
}

func (r *firestoreChatRepository) GetByKey(ctx context.Context, participantKey, context string) (*entity.Conversation, error) {
	keyDoc, err := r.client.Collection(conversationKeysCollection).Doc(conversationKeyID(participantKey, context)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, storageFault("Failed to look up conversation key", err)
	}

	var key conversationKeyDoc
	if err := keyDoc.DataTo(&key); err != nil {
		return nil, errors.Internal("Failed to parse conversation key", err)
	}
	return r.GetByID(ctx, key.ConversationID)
}

func (r *firestoreChatRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	iter := r.conversations().
		Where("participants", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var out []*entity.Conversation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while listing conversations for user %s: %v", userID, err)
			return nil, storageFault("Failed to list conversations", err)
		}
		c, err := decodeConversation(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *firestoreChatRepository) SetLastMessage(ctx context.Context, conversationID string, logSequence int64, last *entity.LastMessage) error {
	ref := r.conversations().Doc(conversationID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Conversation", err)
			}
			return err
		}
		conv, err := decodeConversation(doc)
		if err != nil {
			return err
		}
		if conv.LastSequence != logSequence {
			return errors.Conflict("Conversation has newer messages", nil)
		}

		updates := []firestore.Update{{Path: "lastMessage", Value: last}}
		if last != nil && last.CreatedAt.After(conv.UpdatedAt) {
			updates = append(updates, firestore.Update{Path: "updatedAt", Value: last.CreatedAt})
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return storageFault("Failed to update last message", err)
	}
	return nil
}

func (r *firestoreChatRepository) Append(ctx context.Context, message *entity.Message) error {
	convRef := r.conversations().Doc(message.ConversationID)
	msgRef := r.messages(message.ConversationID).Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(convRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Conversation", err)
			}
			return err
		}
		conv, err := decodeConversation(doc)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(message.SenderID) {
			return errors.Forbidden("Sender is not a participant in this conversation", nil)
		}

		// The transaction may be retried, so both fields are recomputed per attempt.
		message.Sequence = conv.LastSequence + 1
		message.CreatedAt = entity.NextMessageTime(r.now(), conv.LastMessage)
		if err := message.Validate(); err != nil {
			return errors.Internal("Refusing to store malformed message", err)
		}

		if err := tx.Create(msgRef, message); err != nil {
			return err
		}
		updates := []firestore.Update{
			{Path: "lastSequence", Value: message.Sequence},
			{Path: "lastMessage", Value: message.Snapshot()},
		}
		if message.CreatedAt.After(conv.UpdatedAt) {
			updates = append(updates, firestore.Update{Path: "updatedAt", Value: message.CreatedAt})
		}
		return tx.Update(convRef, updates)
	})
	if err != nil {
		if !errors.IsTaxonomy(err) {
			logger.Error("Firestore error while appending message to %s: %v", message.ConversationID, err)
		}
		return storageFault("Failed to append message", err)
	}
	return nil
}

func (r *firestoreChatRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	iter := r.messages(conversationID).
		OrderBy("createdAt", firestore.Asc).
		OrderBy("sequence", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var out []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for conversation %s: %v", conversationID, err)
			return nil, storageFault("Failed to list messages", err)
		}
		m, err := decodeMessage(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *firestoreChatRepository) Latest(ctx context.Context, conversationID string) (*entity.Message, error) {
	iter := r.messages(conversationID).
		OrderBy("createdAt", firestore.Desc).
		OrderBy("sequence", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Message", nil)
	}
	if err != nil {
		return nil, storageFault("Failed to get latest message", err)
	}
	return decodeMessage(doc)
}

func decodeConversation(doc *firestore.DocumentSnapshot) (*entity.Conversation, error) {
	var c entity.Conversation
	if err := doc.DataTo(&c); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Internal("Stored conversation is malformed", err)
	}
	return &c, nil
}

func decodeMessage(doc *firestore.DocumentSnapshot) (*entity.Message, error) {
	var m entity.Message
	if err := doc.DataTo(&m); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Internal("Stored message is malformed", err)
	}
	return &m, nil
}
