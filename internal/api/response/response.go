package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	json "github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/freshersjob/freshersjob/internal/perrors"
)

// Response is the JSON envelope every API route writes.
type Response[T any] struct {
	ctx          context.Context
	ErrorDetails perrors.Err `json:"errorDetails"`
	Error        bool        `json:"error"`
	Message      string      `json:"message"`
	Data         T           `json:"data"`
	Status       int         `json:"status"`
}

func NewResponse[T any](ctx context.Context, msg string, data T) *Response[T] {
	return &Response[T]{
		ctx:     ctx,
		Message: msg,
		Data:    data,
		Status:  http.StatusOK,
	}
}

// Created is NewResponse with a 201 status.
func Created[T any](ctx context.Context, msg string, data T) *Response[T] {
	return NewResponse(ctx, msg, data).WithStatus(http.StatusCreated)
}

// WithError marks the response failed. Uncoded errors become internal errors.
// A client error (4xx) replaces Message with its own text so callers see why the request was refused.
func (r *Response[T]) WithError(err error) *Response[T] {
	var perr perrors.Err
	if !errors.As(err, &perr) {
		perr = perrors.NewErrInternalServerError(r.Message, err).(perrors.Err)
	}

	r.Status = perr.HttpStatus()
	r.ErrorDetails = perr
	r.Error = true
	if r.Status < http.StatusInternalServerError && perr.Error() != "" {
		r.Message = perr.Error()
	}
	perr.Print(r.ctx)

	return r
}

// WithStatus sets the HTTP status. Prefer a coded perrors.Err for failures.
func (r *Response[T]) WithStatus(code int) *Response[T] {
	r.Status = code

	return r
}

// Write encodes the envelope as JSON into the fasthttp response.
func (r *Response[T]) Write(ctx *fasthttp.RequestCtx) {
	if r.Error && r.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.ctx, "Error processing the request", slog.Any("error", r.ErrorDetails))
	}

	ctx.Response.Header.Set("content-type", "application/json")
	ctx.SetStatusCode(r.Status)

	body, err := json.Marshal(r)
	if err != nil {
		slog.ErrorContext(r.ctx, "Unable to json encode response", slog.Any("error", err))
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}

	ctx.SetBody(body)
}
