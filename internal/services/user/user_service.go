package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freshersjob/freshersjob/internal/services/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound    = errors.New("Email not found!")
	ErrEmailRegistered = errors.New("Email already registered!")
	ErrWrongPassword   = errors.New("Wrong password!")
	ErrStaleSession    = errors.New("session does not match a local account")
)

// Identities reports whether an email is already held by an account outside the users table,
// such as a profile created through the hosted identity provider.
type Identities interface {
	HasProfile(ctx context.Context, email string) (bool, error)
}

type UserService struct {
	repo       *UserRepo
	identities Identities
}

// NewUserService builds the local account service. identities may be nil when no other account source exists.
func NewUserService(repo *UserRepo, identities Identities) *UserService {
	return &UserService{repo: repo, identities: identities}
}

// Signup creates a local account. The email is normalised to lower case before the uniqueness check.
func (s *UserService) Signup(ctx context.Context, req *SignupRequest) (*User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailRegistered
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	// A profile without a local account belongs to a provider identity; the email is taken.
	if s.identities != nil {
		claimed, err := s.identities.HasProfile(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if claimed {
			return nil, ErrEmailRegistered
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = "candidate"
	}

	return s.repo.Create(ctx, &User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
	})
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	req := &LoginRequest{Email: normalizeEmail(email), Password: password}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// VerifySession checks that a locally issued token still names a live account with the same email.
func (s *UserService) VerifySession(ctx context.Context, userID, email string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStaleSession, err)
	}

	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return ErrStaleSession
	}
	if err != nil {
		return err
	}
	if u.Email != normalizeEmail(email) {
		return ErrStaleSession
	}
	return nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
