// internal/domain/user/caller.go
package user

import "github.com/your-org/storefront-backend/internal/pkg/apperr"

// Caller is the identity of whoever issued the current request.
// The zero value is an anonymous caller.
type Caller struct {
	UserID string
	Role   Role
	Email  string
}

// Anonymous is the caller of a request without a session
var Anonymous = Caller{}

// IsAuthenticated reports whether the caller has a session
func (c Caller) IsAuthenticated() bool {
	return c.UserID != ""
}

// IsSeller reports whether the caller has a seller session
func (c Caller) IsSeller() bool {
	return c.IsAuthenticated() && c.Role == RoleSeller
}

// RequireAuthenticated fails with NotAuthenticated for anonymous callers
func (c Caller) RequireAuthenticated() error {
	if !c.IsAuthenticated() {
		return apperr.ErrNotAuthenticated
	}
	return nil
}

// RequireSeller fails for anonymous callers and for customers
func (c Caller) RequireSeller() error {
	if err := c.RequireAuthenticated(); err != nil {
		return err
	}
	if c.Role != RoleSeller {
		return apperr.ErrNotAuthorized.WithMessage("seller account required")
	}
	return nil
}

// CallerOf builds the caller bound to a user's session
func CallerOf(u *User) Caller {
	return Caller{UserID: u.ID, Role: u.Role, Email: u.Email}
}
