package repository

import (
	"context"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.UserProfile) error
	GetByID(ctx context.Context, id string) (*entity.UserProfile, error)
}
