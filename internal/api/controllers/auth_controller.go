package controllers

import (
	"errors"
	"time"

	"github.com/fasthttp/router"
	"github.com/freshersjob/freshersjob/internal/api/authenticator"
	"github.com/freshersjob/freshersjob/internal/services"
	"github.com/freshersjob/freshersjob/internal/services/user"
	"github.com/valyala/fasthttp"
)

type LoginResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

type MeResponse struct {
	Session *authenticator.Session `json:"session"`
	User    *user.User             `json:"user,omitempty"`
}

const providerCookieTTL = time.Hour

func RegisterAuthRoutes(r *router.Router, svc *services.Services, auth *authenticator.Authenticator, rl *RateLimit) {
	r.GET("/api/auth/enabled", func(ctx *fasthttp.RequestCtx) {
		writeOK(ctx, requestContext(ctx), "success", map[string]any{
			"provider_enabled":     auth.ProviderEnabled(),
			"hosted_login_enabled": auth.HostedLoginEnabled(),
		})
	})

	r.POST("/api/auth/signup", rl.Wrap(func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req user.SignupRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", err)
			return
		}

		u, err := svc.User.Signup(stdCtx, &req)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to sign up", err)
			return
		}

		token, err := issueSession(ctx, auth, u)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", err)
			return
		}

		writeCreated(ctx, stdCtx, "Signup successful", LoginResponse{Token: token, User: u})
	}))

	r.POST("/api/auth/login", rl.Wrap(func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req user.LoginRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", err)
			return
		}

		u, err := svc.User.Authenticate(stdCtx, req.Email, req.Password)
		if err != nil {
			writeError(ctx, stdCtx, "Invalid credentials", err)
			return
		}

		token, err := issueSession(ctx, auth, u)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", err)
			return
		}

		writeOK(ctx, stdCtx, "Login successful", LoginResponse{Token: token, User: u})
	}))

	r.GET("/api/auth/me", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		session, err := currentUser(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", err)
			return
		}

		res := MeResponse{Session: session}
		if u, err := svc.User.GetByEmail(stdCtx, session.Email); err == nil {
			res.User = u
		} else if !errors.Is(err, user.ErrUserNotFound) {
			writeError(ctx, stdCtx, "Failed to get user", err)
			return
		}

		writeOK(ctx, stdCtx, "success", res)
	})

	r.POST("/api/auth/logout", func(ctx *fasthttp.RequestCtx) {
		authenticator.SignOut(ctx)
		writeOK(ctx, requestContext(ctx), "Logged out successfully", nil)
	})

	r.GET("/api/auth/redirect", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		url, err := auth.LoginURL(queryString(ctx, "return_url"))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to build login url", err)
			return
		}

		ctx.Redirect(url, fasthttp.StatusTemporaryRedirect)
	})

	r.GET("/api/auth/callback", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		encodedState := queryString(ctx, "state")
		code := queryString(ctx, "code")

		if encodedState == "" || code == "" {
			writeError(ctx, stdCtx, "missing parameters", authenticator.ErrInvalidState)
			return
		}
		if !auth.HostedLoginEnabled() {
			writeError(ctx, stdCtx, "Hosted login is disabled", authenticator.ErrHostedLoginDisabled)
			return
		}

		state, err := auth.VerifySignedState(encodedState)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to decode state", err)
			return
		}

		token, err := auth.Exchange(stdCtx, code)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to exchange token", errors.Join(authenticator.ErrUnauthenticated, err))
			return
		}

		if _, err := auth.VerifyIDToken(stdCtx, token); err != nil {
			writeError(ctx, stdCtx, "Failed to verify ID token", errors.Join(authenticator.ErrUnauthenticated, err))
			return
		}

		authenticator.SetSessionCookie(ctx, token.AccessToken, providerCookieTTL)
		ctx.Redirect(auth.SafeReturnURL(state.Redirect), fasthttp.StatusFound)
	})
}

func issueSession(ctx *fasthttp.RequestCtx, auth *authenticator.Authenticator, u *user.User) (string, error) {
	token, err := auth.GenerateToken(u.ID.String(), u.Email, u.Name(), u.Role)
	if err != nil {
		return "", err
	}
	authenticator.SetSessionCookie(ctx, token, authenticator.LocalTokenTTL())
	return token, nil
}
