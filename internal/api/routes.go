package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/freshersjob/freshersjob/internal/api/authenticator"
	"github.com/freshersjob/freshersjob/internal/api/controllers"
	"github.com/freshersjob/freshersjob/internal/api/response"
	"github.com/freshersjob/freshersjob/internal/perrors"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/propagation"
)

var tracePropagator = propagation.TraceContext{}

func (s *Server) initNewRoutes() fasthttp.RequestHandler {
	r := router.New()

	r.GET("/api/health", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		_, _ = ctx.Write([]byte("OK"))
	})

	controllers.RegisterAuthRoutes(r, s.services, s.auth, s.rateLimit)
	controllers.RegisterJobRoutes(r, s.services)
	controllers.RegisterApplicationRoutes(r, s.services)
	controllers.RegisterProfileRoutes(r, s.services)
	controllers.RegisterUploadRoutes(r, s.services, s.rateLimit)
	controllers.RegisterViewRoutes(r, s.services)

	if s.services.UploadDir != "" {
		r.ServeFiles("/files/{filepath:*}", s.services.UploadDir)
	}

	return s.withMiddlewares(r.Handler)
}

func (s *Server) withMiddlewares(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		method := string(ctx.Method())
		requestURI := string(ctx.URI().RequestURI())
		slog.Info("Started processing", slog.String("method", method), slog.String("request_uri", requestURI))
		defer func() {
			slog.Info("Finished processing",
				slog.String("method", method),
				slog.String("request_uri", requestURI),
				slog.Int("status", ctx.Response.StatusCode()),
				slog.Duration("duration", time.Since(start)))
		}()

		s.applyCORS(ctx)
		if method == fasthttp.MethodOptions {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		h := http.Header{}
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			h[string(k)] = []string{string(v)}
		})
		traceCtx := tracePropagator.Extract(context.Background(), propagation.HeaderCarrier(h))
		ctx.SetUserValue(controllers.UserValueTraceCtx, traceCtx)

		// Anonymous requests only reach public routes. Public routes ignore a token that fails to verify.
		public := isPublicRoute(ctx)
		if token := authenticator.TokenFromRequest(ctx); token != "" {
			session, err := s.resolveSession(traceCtx, token)
			switch {
			case err == nil:
				ctx.SetUserValue(controllers.UserValueSession, session)
			case !public:
				unauthorized(ctx, traceCtx, err)
				return
			}
		} else if !public {
			unauthorized(ctx, traceCtx, authenticator.ErrUnauthenticated)
			return
		}

		next(ctx)
	}
}

// resolveSession verifies token. A locally issued token must still name a live local account.
func (s *Server) resolveSession(ctx context.Context, token string) (*authenticator.Session, error) {
	session, err := s.auth.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Provider == authenticator.ProviderLocal {
		if err := s.services.User.VerifySession(ctx, session.UserID, session.Email); err != nil {
			return nil, fmt.Errorf("%w: %v", authenticator.ErrUnauthenticated, err)
		}
	}
	return session, nil
}

func unauthorized(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	response.NewResponse[any](stdCtx, "Unauthorized", nil).
		WithError(perrors.NewErrUnauthorized("Unauthorized", err)).
		Write(ctx)
}

func (s *Server) applyCORS(ctx *fasthttp.RequestCtx) {
	headers := &ctx.Response.Header
	headers.Set("Access-Control-Allow-Origin", string(ctx.Request.Header.Peek("Origin")))
	headers.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS,PATCH")
	headers.Set("Access-Control-Allow-Headers", s.conf.ALLOWED_HEADERS)
	headers.Set("Access-Control-Allow-Credentials", "true")
}

var publicRoutes = map[string]bool{
	"/api/health":        true,
	"/api/auth/enabled":  true,
	"/api/auth/signup":   true,
	"/api/auth/login":    true,
	"/api/auth/logout":   true,
	"/api/auth/redirect": true,
	"/api/auth/callback": true,
}

// publicReadPrefixes are browsable without signing in, for GET only.
var publicReadPrefixes = []string{
	"/api/jobs",
	"/api/views/jobs",
	"/files/",
}

func isPublicRoute(ctx *fasthttp.RequestCtx) bool {
	path := string(ctx.Path())
	if publicRoutes[path] {
		return true
	}

	if !ctx.IsGet() && !ctx.IsHead() {
		return false
	}
	for _, prefix := range publicReadPrefixes {
		if strings.HasPrefix(path, prefix) && !strings.HasPrefix(path, "/api/jobs/saved/") {
			return true
		}
	}
	return false
}
