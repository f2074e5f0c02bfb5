package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Level string `json:"experience_level" validate:"omitempty,oneof=fresher '0-1 years' '1-2 years'"`
	Count *int   `json:"count,omitempty" validate:"omitempty,gte=0"`
}

func TestStructUsesJSONNames(t *testing.T) {
	err := Struct(&sample{Level: "senior"})
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "email is required")
	assert.Contains(t, err.Error(), "experience_level must be one of")
}

func TestStructAcceptsQuotedOneOfValues(t *testing.T) {
	assert.NoError(t, Struct(&sample{Email: "a@x.com", Level: "0-1 years"}))
	assert.NoError(t, Struct(&sample{Email: "a@x.com"}))

	neg := -1
	assert.ErrorIs(t, Struct(&sample{Email: "a@x.com", Count: &neg}), ErrInvalid)
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("status", "shortlisted", "oneof=pending reviewed shortlisted"))

	err := Var("status", "archived", "oneof=pending reviewed shortlisted")
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "status must be one of")
}
