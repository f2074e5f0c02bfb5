package response

import (
	"context"
	"errors"
	"testing"

	json "github.com/bytedance/sonic"
	"github.com/freshersjob/freshersjob/internal/perrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type envelope struct {
	Error        bool   `json:"error"`
	Message      string `json:"message"`
	Status       int    `json:"status"`
	ErrorDetails struct {
		Error string `json:"error"`
	} `json:"errorDetails"`
}

func write(t *testing.T, r *Response[any]) (*fasthttp.RequestCtx, envelope) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	r.Write(&ctx)

	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return &ctx, env
}

func TestClientErrorUsesItsOwnMessage(t *testing.T) {
	err := perrors.NewErrInvalidRequest("Failed to sign up", errors.New("Email already registered!"))
	ctx, env := write(t, NewResponse[any](context.Background(), "Failed to sign up", nil).WithError(err))

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	assert.True(t, env.Error)
	assert.Equal(t, "Email already registered!", env.Message)
	assert.Equal(t, "Email already registered!", env.ErrorDetails.Error)
}

func TestUncodedErrorIsInternal(t *testing.T) {
	ctx, env := write(t, NewResponse[any](context.Background(), "Failed to list jobs", nil).WithError(errors.New("connection reset")))

	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.Equal(t, "Failed to list jobs", env.Message)
	assert.Equal(t, fasthttp.StatusInternalServerError, env.Status)
}

func TestCreated(t *testing.T) {
	ctx, env := write(t, Created[any](context.Background(), "Job created", map[string]string{"id": "1"}))

	assert.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	assert.False(t, env.Error)
	assert.Equal(t, "Job created", env.Message)
}
