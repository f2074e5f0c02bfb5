package controllers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/bytedance/sonic"
	"github.com/freshersjob/freshersjob/internal/api/authenticator"
	"github.com/freshersjob/freshersjob/internal/api/response"
	"github.com/freshersjob/freshersjob/internal/perrors"
	"github.com/freshersjob/freshersjob/internal/persistence"
	"github.com/freshersjob/freshersjob/internal/services/application"
	"github.com/freshersjob/freshersjob/internal/services/job"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/freshersjob/freshersjob/internal/services/savedjob"
	"github.com/freshersjob/freshersjob/internal/services/user"
	"github.com/freshersjob/freshersjob/internal/services/validation"
	"github.com/freshersjob/freshersjob/internal/storage"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const (
	// UserValueTraceCtx holds the context carrying the extracted trace parent.
	UserValueTraceCtx = "traceCtx"
	// UserValueSession holds the *authenticator.Session resolved by the auth middleware.
	UserValueSession = "session"
)

// requestContext returns the trace context set by the middleware, or Background.
func requestContext(ctx *fasthttp.RequestCtx) context.Context {
	if traceCtx, ok := ctx.UserValue(UserValueTraceCtx).(context.Context); ok && traceCtx != nil {
		return traceCtx
	}
	return context.Background()
}

// sessionFrom returns the caller's session, nil for anonymous requests.
func sessionFrom(ctx *fasthttp.RequestCtx) *authenticator.Session {
	session, _ := ctx.UserValue(UserValueSession).(*authenticator.Session)
	return session
}

func currentUser(ctx *fasthttp.RequestCtx) (*authenticator.Session, error) {
	return authenticator.CurrentUser(sessionFrom(ctx))
}

func parseBody(ctx *fasthttp.RequestCtx, target any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return perrors.NewErrInvalidRequest("request body is empty", errors.New("request body is empty"))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return perrors.NewErrInvalidRequest("Invalid request body", err)
	}
	return nil
}

func writeError(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, err error) {
	response.NewResponse[any](stdCtx, message, nil).WithError(toPError(message, err)).Write(ctx)
}

func writeOK(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, data any) {
	response.NewResponse(stdCtx, message, data).Write(ctx)
}

func writeCreated(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, data any) {
	response.Created(stdCtx, message, data).Write(ctx)
}

func toPError(message string, err error) error {
	var perr perrors.Err
	if errors.As(err, &perr) {
		return err
	}

	switch {
	case errors.Is(err, authenticator.ErrUnauthenticated),
		errors.Is(err, authenticator.ErrExpiredToken),
		errors.Is(err, authenticator.ErrInvalidState),
		errors.Is(err, authenticator.ErrStateExpired),
		errors.Is(err, authenticator.ErrMissingIDToken):
		return perrors.NewErrUnauthorized(message, err)

	case errors.Is(err, job.ErrNotEmployer),
		errors.Is(err, job.ErrNotJobOwner),
		errors.Is(err, application.ErrNotCandidate),
		errors.Is(err, application.ErrNotParticipant):
		return perrors.NewErrForbidden(message, err)

	case errors.Is(err, job.ErrJobNotFound),
		errors.Is(err, application.ErrApplicationNotFound),
		errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, savedjob.ErrNotSaved),
		errors.Is(err, persistence.ErrNotFound):
		return perrors.NewErrNotFound(message, err)

	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, user.ErrEmailRegistered),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, user.ErrWrongPassword),
		errors.Is(err, application.ErrAlreadyApplied),
		errors.Is(err, application.ErrJobNotActive),
		errors.Is(err, savedjob.ErrAlreadySaved),
		errors.Is(err, profile.ErrProfileExists),
		errors.Is(err, profile.ErrAlreadyOnboarded),
		errors.Is(err, profile.ErrRoleLocked),
		errors.Is(err, profile.ErrEmployerDetailsRequired),
		errors.Is(err, authenticator.ErrHostedLoginDisabled),
		errors.Is(err, storage.ErrNoFile),
		errors.Is(err, persistence.ErrDuplicate),
		errors.Is(err, persistence.ErrInvalidIdentifier):
		return perrors.NewErrInvalidRequest(message, err)

	case errors.Is(err, storage.ErrStorage):
		return perrors.NewErrStorage(message, err)

	case errors.Is(err, persistence.ErrDatabase),
		errors.Is(err, persistence.ErrTableNotFound):
		return perrors.NewErrDatabase(message, err)
	}

	return perrors.NewErrInternalServerError(message, err)
}

func pathParam(ctx *fasthttp.RequestCtx, key string) (string, error) {
	val := ctx.UserValue(key)
	if val == nil {
		return "", perrors.NewErrInvalidRequest(key+" is required", fmt.Errorf("%s is required", key))
	}

	return fmt.Sprint(val), nil
}

func pathParamUUID(ctx *fasthttp.RequestCtx, key string) (uuid.UUID, error) {
	val, err := pathParam(ctx, key)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, perrors.NewErrInvalidRequest("invalid "+key, err)
	}
	return id, nil
}

func queryString(ctx *fasthttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

// queryUUID returns uuid.Nil when key is absent.
func queryUUID(ctx *fasthttp.RequestCtx, key string) (uuid.UUID, error) {
	raw := ctx.QueryArgs().Peek(key)
	if len(raw) == 0 {
		return uuid.Nil, nil
	}

	id, err := uuid.ParseBytes(raw)
	if err != nil {
		return uuid.Nil, perrors.NewErrInvalidRequest("invalid "+key, err)
	}
	return id, nil
}

func queryInt(ctx *fasthttp.RequestCtx, key string) (int, error) {
	raw := queryString(ctx, key)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, perrors.NewErrInvalidRequest("invalid "+key, fmt.Errorf("%s must be a non-negative integer", key))
	}
	return n, nil
}

// queryFloat returns nil when key is absent.
func queryFloat(ctx *fasthttp.RequestCtx, key string) (*float64, error) {
	raw := queryString(ctx, key)
	if raw == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, perrors.NewErrInvalidRequest("invalid "+key, err)
	}
	return &f, nil
}

// queryList accepts both repeated keys and comma separated values.
func queryList(ctx *fasthttp.RequestCtx, key string) []string {
	var out []string
	for _, raw := range ctx.QueryArgs().PeekMulti(key) {
		for _, v := range strings.Split(string(raw), ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
