package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/google/uuid"
)

type UserRepo struct {
	db persistence.Gateway
}

// NewUserRepo creates a new user repository
func NewUserRepo(db persistence.Gateway) *UserRepo {
	return &UserRepo{db: db}
}

// GetByEmail retrieves a user by email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, persistence.Match{"email": email})
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.first(ctx, persistence.Match{persistence.ColumnID: id})
}

func (r *UserRepo) first(ctx context.Context, match persistence.Match) (*User, error) {
	var users []*User
	if err := r.db.Filter(ctx, persistence.TableUsers, persistence.Query{Match: match, Limit: 1}, &users); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

// Create inserts a new local account
func (r *UserRepo) Create(ctx context.Context, u *User) (*User, error) {
	var created User
	err := r.db.Create(ctx, persistence.TableUsers, persistence.Record{
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"phone":         u.Phone,
		"role":          u.Role,
	}, &created)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return nil, ErrEmailRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &created, nil
}

// DeleteByEmail removes the local account for email, if any.
func DeleteByEmail(ctx context.Context, db persistence.Gateway, email string) error {
	if _, err := db.DeleteWhere(ctx, persistence.TableUsers, persistence.Match{"email": email}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
