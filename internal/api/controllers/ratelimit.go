package controllers

import (
	"errors"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/freshersjob/freshersjob/internal/perrors"
	"github.com/freshersjob/freshersjob/internal/ratelimit"
	"github.com/valyala/fasthttp"
)

var errRateLimited = errors.New("rate limit exceeded, try again later")

// RateLimit throttles a handler per client IP. A nil *RateLimit lets everything through.
type RateLimit struct {
	Limiter ratelimit.Limiter
	Rate    ratelimit.Rate
	Scope   string
	// TrustedProxies lists the peers whose X-Forwarded-For header is believed.
	TrustedProxies []string
}

func (rl *RateLimit) Wrap(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	if rl == nil || rl.Limiter == nil {
		return next
	}

	return func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)
		key := rl.Scope + ":" + clientIP(ctx, rl.TrustedProxies)

		allowed, err := rl.Limiter.Allow(stdCtx, key, rl.Rate)
		if err != nil {
			// fail open
			slog.WarnContext(stdCtx, "rate limiter unavailable", slog.String("key", key), slog.Any("error", err))
			next(ctx)
			return
		}
		if !allowed {
			ctx.Response.Header.Set("Retry-After", strconv.Itoa(max(1, int(rl.Rate.Window.Seconds()))))
			writeError(ctx, stdCtx, errRateLimited.Error(), perrors.New(perrors.ErrCodeTooManyRequests, "Too many requests", errRateLimited))
			return
		}

		next(ctx)
	}
}

// clientIP returns the peer address unless the peer is a trusted proxy, in which case
// X-Forwarded-For is walked right to left and the first untrusted hop wins.
func clientIP(ctx *fasthttp.RequestCtx, trusted []string) string {
	remote := ctx.RemoteIP().String()
	if !slices.Contains(trusted, remote) {
		return remote
	}

	hops := strings.Split(string(ctx.Request.Header.Peek("X-Forwarded-For")), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(hops[i]))
		if ip == nil {
			break
		}
		if !slices.Contains(trusted, ip.String()) {
			return ip.String()
		}
	}
	return remote
}
