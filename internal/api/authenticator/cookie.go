package authenticator

import (
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const CookieName = "access_token"

// TokenFromRequest reads a Bearer token, falling back to the session cookie.
func TokenFromRequest(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return strings.TrimSpace(token)
	}
	return string(ctx.Request.Header.Cookie(CookieName))
}

func SetSessionCookie(ctx *fasthttp.RequestCtx, token string, ttl time.Duration) {
	var cookie fasthttp.Cookie
	cookie.SetKey(CookieName)
	cookie.SetValue(token)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(ctx.IsTLS())
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(time.Now().Add(ttl))
	ctx.Response.Header.SetCookie(&cookie)
}

// SignOut expires the session cookie.
func SignOut(ctx *fasthttp.RequestCtx) {
	var cookie fasthttp.Cookie
	cookie.SetKey(CookieName)
	cookie.SetValue("")
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetExpire(time.Now().Add(-1 * time.Hour))
	ctx.Response.Header.SetCookie(&cookie)
}

func LocalTokenTTL() time.Duration {
	return localTokenTTL
}
