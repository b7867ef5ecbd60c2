// internal/infrastructure/database/postgres/user_repository.go
package postgres

import (
	"context"

	"github.com/your-org/storefront-backend/internal/domain/user"
	"gorm.io/gorm"
)

// UserRepository stores users in the users table
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error, "create user")
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("email = ?", user.NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, translate(err, "find user")
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &u, nil
}
