package controllers

import (
	"strings"

	"github.com/fasthttp/router"
	"github.com/freshersjob/freshersjob/internal/services"
	"github.com/freshersjob/freshersjob/internal/services/profile"
	"github.com/valyala/fasthttp"
)

func RegisterProfileRoutes(r *router.Router, svc *services.Services) {
	r.GET("/api/profile", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		p, err := svc.Profile.GetByEmail(stdCtx, me.Email)
		if err != nil {
			writeError(ctx, stdCtx, "Profile not found", err)
			return
		}

		writeOK(ctx, stdCtx, "Profile retrieved successfully", p)
	})

	r.PUT("/api/profile", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		me, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		var req profile.UpdateProfileRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", err)
			return
		}

		p, err := svc.Profile.Update(stdCtx, me.Email, &req)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to update profile", err)
			return
		}

		writeOK(ctx, stdCtx, "Profile updated successfully", p)
	})

	r.GET("/api/profiles/{email}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		if _, err := currentUser(ctx); err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		email, err := pathParam(ctx, "email")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid email", err)
			return
		}

		p, err := svc.Profile.GetByEmail(stdCtx, strings.ToLower(email))
		if err != nil {
			writeError(ctx, stdCtx, "Profile not found", err)
			return
		}

		writeOK(ctx, stdCtx, "Profile retrieved successfully", p.Public())
	})
}
