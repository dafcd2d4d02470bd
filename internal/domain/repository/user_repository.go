package repository

import (
	"context"

	"github.com/quranapp/backend/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts the user and fills ID/CreatedAt/UpdatedAt.
	// Returns ErrDuplicate when email or phone number collides.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByEmailOrPhone returns any account matching either key.
	GetByEmailOrPhone(ctx context.Context, email, phone string) (*entity.User, error)
	UpdatePicture(ctx context.Context, id, pictureURL string) error
	SetStatusByPhone(ctx context.Context, phone, status string) error
}
