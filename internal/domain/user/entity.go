// internal/domain/user/entity.go
package user

import (
	"context"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/objectid"
	"gorm.io/gorm"
)

// Role is the account type chosen at registration
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

// ParseRole maps user input to a role. Anything unrecognised becomes a customer.
func ParseRole(s string) Role {
	if Role(strings.ToLower(strings.TrimSpace(s))) == RoleSeller {
		return RoleSeller
	}
	return RoleCustomer
}

// User represents the user entity
type User struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password  string    `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	Role      Role      `gorm:"size:20;not null;default:'customer'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = objectid.New()
	}
	return nil
}

// IsSeller reports whether the user can manage products
func (u *User) IsSeller() bool {
	return u.Role == RoleSeller
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Repository is the storage collaborator for users
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}
