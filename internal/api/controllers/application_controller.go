package controllers

import (
	"errors"
	"strings"

	"github.com/fasthttp/router"
	"github.com/freshersjob/freshersjob/internal/perrors"
	"github.com/freshersjob/freshersjob/internal/services"
	"github.com/freshersjob/freshersjob/internal/services/application"
	"github.com/valyala/fasthttp"
)

func RegisterApplicationRoutes(r *router.Router, svc *services.Services) {
	r.POST("/api/applications", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req application.ApplyRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", err)
			return
		}

		app, err := svc.Views.Apply(stdCtx, sessionFrom(ctx), &req)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to submit application", err)
			return
		}

		writeCreated(ctx, stdCtx, "Application submitted successfully", app)
	})

	r.GET("/api/applications/candidate/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		candidate, err := pathParam(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid candidate", err)
			return
		}
		if !strings.EqualFold(candidate, me.Email) {
			writeError(ctx, stdCtx, "Forbidden", perrors.NewErrForbidden("applications belong to another account", errors.New("applications belong to another account")))
			return
		}

		rows, err := svc.Application.ForCandidate(stdCtx, me.Email)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list applications", err)
			return
		}

		writeOK(ctx, stdCtx, "Applications retrieved successfully", rows)
	})

	r.GET("/api/applications/job/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		jobID, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid job ID", err)
			return
		}

		rows, err := svc.Application.ForJob(stdCtx, me.Email, jobID, application.Status(queryString(ctx, "status")))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to list applications", err)
			return
		}

		writeOK(ctx, stdCtx, "Applications retrieved successfully", rows)
	})

	r.GET("/api/applications/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid application ID", err)
			return
		}

		app, err := svc.Application.Get(stdCtx, me.Email, id)
		if err != nil {
			writeError(ctx, stdCtx, "Application not found", err)
			return
		}

		writeOK(ctx, stdCtx, "Application retrieved successfully", app)
	})

	r.PUT("/api/applications/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid application ID", err)
			return
		}

		var req application.UpdateStatusRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", err)
			return
		}

		app, err := svc.Application.UpdateStatus(stdCtx, me.Email, id, &req)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to update application", err)
			return
		}

		writeOK(ctx, stdCtx, "Application updated successfully", app)
	})

	r.DELETE("/api/applications/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid application ID", err)
			return
		}

		if err := svc.Application.Delete(stdCtx, me.Email, id); err != nil {
			writeError(ctx, stdCtx, "Failed to withdraw application", err)
			return
		}

		writeOK(ctx, stdCtx, "Application withdrawn successfully", nil)
	})
}
