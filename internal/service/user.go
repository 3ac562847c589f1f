package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventra-hq/eventra/internal/model"
)

// UserStore is the persistence contract for user accounts. Delete cascades:
// it removes everything that exists only in relation to the user (an
// organizer's events and their registrations, a participant's registrations
// with slot releases, all refresh tokens) in one transaction.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id string, name, email, passwordHash *string) error
	Delete(ctx context.Context, id string) error
}

// UserService orchestrates profile reads and updates with ownership checks.
type UserService struct {
	users UserStore
}

// NewUserService constructs a UserService with its dependencies.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Get returns a user's profile. Callers see their own; admins see anyone's.
func (s *UserService) Get(ctx context.Context, caller model.Identity, id string) (*model.User, error) {
	if !model.CanManage(caller, id) {
		return nil, ErrForbidden
	}
	return s.users.GetByID(ctx, id)
}

// List returns every user. Admin only.
func (s *UserService) List(ctx context.Context, caller model.Identity) ([]model.User, error) {
	if caller.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.users.List(ctx)
}

// Update applies a partial profile update. A new password is hashed here so
// plaintext never reaches the store.
func (s *UserService) Update(ctx context.Context, caller model.Identity, id string, req model.UpdateUserRequest) error {
	if !model.CanManage(caller, id) {
		return ErrForbidden
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		req.Name = &trimmed
	}
	if req.Email != nil {
		normalized := strings.TrimSpace(strings.ToLower(*req.Email))
		if !isValidEmail(normalized) {
			return fmt.Errorf("%w: email is not a valid address", ErrValidation)
		}
		req.Email = &normalized
	}

	var passwordHash *string
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return err
		}
		passwordHash = &hash
	}

	return s.users.Update(ctx, id, req.Name, req.Email, passwordHash)
}

// Delete removes an account and cascades through everything it owns.
// Callers delete themselves; admins delete anyone.
func (s *UserService) Delete(ctx context.Context, caller model.Identity, id string) error {
	if !model.CanManage(caller, id) {
		return ErrForbidden
	}
	return s.users.Delete(ctx, id)
}
