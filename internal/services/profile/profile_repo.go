package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/google/uuid"
)

// ProfileRepo reads and writes profiles through whichever profile table the database has.
type ProfileRepo struct {
	db     persistence.Gateway
	tables []string
}

// NewProfileRepo creates a new profile repository
func NewProfileRepo(db persistence.Gateway) *ProfileRepo {
	return &ProfileRepo{db: db, tables: persistence.UserProfileTables}
}

// GetByEmail retrieves the profile created by email
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return r.first(ctx, persistence.Match{"created_by": email})
}

// GetByID retrieves a profile by ID
func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return r.first(ctx, persistence.Match{persistence.ColumnID: id})
}

func (r *ProfileRepo) first(ctx context.Context, match persistence.Match) (*Profile, error) {
	var profiles []*Profile
	err := persistence.WithTableFallback(r.tables, func(table string) error {
		return r.db.Filter(ctx, table, persistence.Query{Match: match, Limit: 1}, &profiles)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, ErrProfileNotFound
	}
	return profiles[0], nil
}

// Create inserts a new profile
func (r *ProfileRepo) Create(ctx context.Context, rec persistence.Record) (*Profile, error) {
	var p Profile
	err := persistence.WithTableFallback(r.tables, func(table string) error {
		return r.db.Create(ctx, table, rec, &p)
	})
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return &p, nil
}

// Update changes a profile and returns the stored row
func (r *ProfileRepo) Update(ctx context.Context, id uuid.UUID, rec persistence.Record) (*Profile, error) {
	var p Profile
	err := persistence.WithTableFallback(r.tables, func(table string) error {
		return r.db.Update(ctx, table, id, rec, &p)
	})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &p, nil
}

// DeleteByEmail removes the profile created by email
func (r *ProfileRepo) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	var deleted int64
	err := persistence.WithTableFallback(r.tables, func(table string) error {
		n, err := r.db.DeleteWhere(ctx, table, persistence.Match{"created_by": email})
		deleted = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete profile: %w", err)
	}
	return deleted, nil
}
