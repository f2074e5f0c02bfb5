package user

import (
	"context"
	"testing"

	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *UserService {
	return NewUserService(NewUserRepo(persistence.NewMemoryGatewayWithSchema()), nil)
}

func signupRequest() *SignupRequest {
	return &SignupRequest{FirstName: "Asha", LastName: "Rao", Email: " A@X.com ", Password: "secret1"}
}

func TestSignupTwiceKeepsFirstRecord(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	first, err := svc.Signup(ctx, signupRequest())
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", first.Email)
	assert.Equal(t, "candidate", first.Role)
	assert.Equal(t, "Asha Rao", first.Name())
	assert.NotEqual(t, "secret1", first.PasswordHash)

	second := signupRequest()
	second.FirstName = "Other"
	_, err = svc.Signup(ctx, second)
	assert.ErrorIs(t, err, ErrEmailRegistered)
	assert.EqualError(t, err, "Email already registered!")

	stored, err := svc.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "Asha", stored.FirstName)
}

func TestSignupValidates(t *testing.T) {
	req := signupRequest()
	req.Password = "123"
	req.Role = "admin"

	_, err := newService().Signup(context.Background(), req)
	assert.ErrorIs(t, err, validation.ErrInvalid)
	assert.Contains(t, err.Error(), "password must be at least 6")
	assert.Contains(t, err.Error(), "role must be one of")
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	created, err := svc.Signup(ctx, signupRequest())
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "A@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = svc.Authenticate(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Authenticate(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	byID, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteByEmail(t *testing.T) {
	ctx := context.Background()
	g := persistence.NewMemoryGatewayWithSchema()
	svc := NewUserService(NewUserRepo(g), nil)
	_, err := svc.Signup(ctx, signupRequest())
	require.NoError(t, err)

	require.NoError(t, DeleteByEmail(ctx, g, "a@x.com"))
	_, err = svc.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

type claimedEmails map[string]bool

func (c claimedEmails) HasProfile(_ context.Context, email string) (bool, error) {
	return c[email], nil
}

func TestSignupRejectsEmailHeldByProviderIdentity(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(NewUserRepo(persistence.NewMemoryGatewayWithSchema()), claimedEmails{"a@x.com": true})

	_, err := svc.Signup(ctx, signupRequest())
	assert.ErrorIs(t, err, ErrEmailRegistered)

	_, err = svc.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound, "no local account is created")
}

func TestVerifySession(t *testing.T) {
	ctx := context.Background()
	g := persistence.NewMemoryGatewayWithSchema()
	svc := NewUserService(NewUserRepo(g), nil)
	u, err := svc.Signup(ctx, signupRequest())
	require.NoError(t, err)

	assert.NoError(t, svc.VerifySession(ctx, u.ID.String(), "A@x.com"))
	assert.ErrorIs(t, svc.VerifySession(ctx, u.ID.String(), "other@x.com"), ErrStaleSession)
	assert.ErrorIs(t, svc.VerifySession(ctx, "not-a-uuid", "a@x.com"), ErrStaleSession)

	require.NoError(t, DeleteByEmail(ctx, g, "a@x.com"))
	assert.ErrorIs(t, svc.VerifySession(ctx, u.ID.String(), "a@x.com"), ErrStaleSession)
}
