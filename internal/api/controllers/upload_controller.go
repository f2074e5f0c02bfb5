package controllers

import (
	"fmt"
	"io"

	"github.com/fasthttp/router"
	"github.com/freshersjob/freshersjob/internal/perrors"
	"github.com/freshersjob/freshersjob/internal/services"
	"github.com/freshersjob/freshersjob/internal/storage"
	"github.com/valyala/fasthttp"
)

// MaxUploadBytes caps a single uploaded file.
const MaxUploadBytes = 10 << 20

func RegisterUploadRoutes(r *router.Router, svc *services.Services, rl *RateLimit) {
	r.POST("/api/uploads", rl.Wrap(func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		if _, err := currentUser(ctx); err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		header, err := ctx.FormFile("file")
		if err != nil {
			writeError(ctx, stdCtx, "No file provided", storage.ErrNoFile)
			return
		}
		if header.Size > MaxUploadBytes {
			writeError(ctx, stdCtx, "File too large", perrors.NewErrInvalidRequest("File too large", fmt.Errorf("file exceeds %d bytes", MaxUploadBytes)))
			return
		}

		f, err := header.Open()
		if err != nil {
			writeError(ctx, stdCtx, "Unable to read file", err)
			return
		}
		defer f.Close()

		content, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes))
		if err != nil {
			writeError(ctx, stdCtx, "Unable to read file", err)
			return
		}

		res, err := svc.Uploader.Upload(stdCtx, &storage.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		})
		if err != nil {
			writeError(ctx, stdCtx, "Failed to upload file", err)
			return
		}

		writeCreated(ctx, stdCtx, "File uploaded successfully", res)
	}))
}
