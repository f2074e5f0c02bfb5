package authenticator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/freshersjob/freshersjob/internal/config"
	"golang.org/x/oauth2"
)

const (
	ProviderLocal = "local"
	ProviderOIDC  = "oidc"

	defaultAudience = "freshersjob-api"
)

var (
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrHostedLoginDisabled = errors.New("hosted login is not configured")
	ErrMissingIDToken      = errors.New("no id_token field in oauth2 token")
	ErrMissingSecret       = errors.New("JWT_SECRET is required")
)

// Session is the identity resolved for a request. Controllers hand it to services explicitly.
type Session struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

type Authenticator struct {
	*oidc.Provider
	oauth2.Config

	jwtSecret     []byte
	stateSecret   string
	issuer        string
	audience      string
	publicBaseURL string
	jwksProvider  *jwks.CachingProvider
	jwtValidator  *validator.Validator
	now           func() time.Time
}

func New(conf *config.Config) (*Authenticator, error) {
	if conf.JWT_SECRET == "" {
		return nil, ErrMissingSecret
	}

	a := &Authenticator{
		jwtSecret:     []byte(conf.JWT_SECRET),
		stateSecret:   conf.STATE_SECRET,
		publicBaseURL: conf.PUBLIC_BASE_URL,
		audience:      conf.CLERK_AUDIENCE,
		now:           time.Now,
	}
	if a.audience == "" {
		a.audience = defaultAudience
	}
	if a.stateSecret == "" {
		a.stateSecret = conf.JWT_SECRET
	}

	if !conf.ProviderAuthEnabled() {
		slog.Info("Identity provider not configured, accepting local tokens only")
		return a, nil
	}

	a.issuer = conf.CLERK_ISSUER
	issuerURL, err := url.Parse(a.issuer)
	if err != nil {
		return nil, fmt.Errorf("invalid issuer url: %w", err)
	}

	a.jwksProvider = jwks.NewCachingProvider(issuerURL, 5*time.Minute)
	a.jwtValidator, err = validator.New(
		a.jwksProvider.KeyFunc,
		validator.RS256,
		a.issuer,
		[]string{a.audience},
		validator.WithCustomClaims(func() validator.CustomClaims { return &providerClaims{} }),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	if conf.OIDC_CLIENT_ID == "" {
		return a, nil
	}

	provider, err := oidc.NewProvider(context.Background(), a.issuer)
	if err != nil {
		return nil, err
	}

	a.Provider = provider
	a.Config = oauth2.Config{
		ClientID:     conf.OIDC_CLIENT_ID,
		ClientSecret: conf.OIDC_CLIENT_SECRET,
		RedirectURL:  conf.OIDC_CALLBACK_URL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return a, nil
}

func (a *Authenticator) ProviderEnabled() bool {
	return a.jwtValidator != nil
}

func (a *Authenticator) HostedLoginEnabled() bool {
	return a.Provider != nil
}

func (a *Authenticator) Audience() string {
	return a.audience
}

// VerifyAccessToken resolves a bearer token to a Session. Locally issued tokens are tried first.
func (a *Authenticator) VerifyAccessToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, localErr := a.VerifyLocalToken(token)
	if localErr == nil {
		return session, nil
	}
	if !a.ProviderEnabled() {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, localErr)
	}

	payload, err := a.jwtValidator.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := payload.(*validator.ValidatedClaims)
	if !ok {
		return nil, ErrUnauthenticated
	}
	custom, _ := claims.CustomClaims.(*providerClaims)
	if custom == nil {
		return nil, ErrUnauthenticated
	}

	return &Session{
		UserID:   claims.RegisteredClaims.Subject,
		Email:    strings.ToLower(custom.Email),
		Name:     custom.Name,
		Provider: ProviderOIDC,
	}, nil
}

// CurrentUser returns the signed-in session or ErrUnauthenticated.
func CurrentUser(session *Session) (*Session, error) {
	if !IsAuthenticated(session) {
		return nil, ErrUnauthenticated
	}
	return session, nil
}

func IsAuthenticated(session *Session) bool {
	return session != nil && session.Email != ""
}

// LoginURL builds the hosted login redirect that returns the browser to returnURL afterwards.
func (a *Authenticator) LoginURL(returnURL string) (string, error) {
	if !a.HostedLoginEnabled() {
		return "", ErrHostedLoginDisabled
	}

	state, err := a.NewState(a.SafeReturnURL(returnURL))
	if err != nil {
		return "", err
	}

	encoded, err := a.GetSignedState(state)
	if err != nil {
		return "", err
	}

	return a.AuthCodeURL(encoded, oauth2.SetAuthURLParam("audience", a.audience)), nil
}

// SafeReturnURL keeps relative paths and same-origin URLs; anything else falls back to "/".
// Browsers read a backslash as a slash and drop tabs and newlines, so "/\evil.com" is rejected too.
func (a *Authenticator) SafeReturnURL(returnURL string) string {
	if returnURL == "" || strings.ContainsAny(returnURL, "\\\t\r\n") {
		return "/"
	}
	if strings.HasPrefix(returnURL, "/") && !strings.HasPrefix(returnURL, "//") {
		return returnURL
	}

	target, err := url.Parse(returnURL)
	if err != nil {
		return "/"
	}
	base, err := url.Parse(a.publicBaseURL)
	if err != nil || base.Host == "" || !strings.EqualFold(target.Host, base.Host) || target.Scheme != base.Scheme {
		return "/"
	}
	return returnURL
}

// VerifyIDToken verifies that an *oauth2.Token is a valid *oidc.IDToken.
func (a *Authenticator) VerifyIDToken(ctx context.Context, token *oauth2.Token) (*oidc.IDToken, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, ErrMissingIDToken
	}

	return a.Verifier(&oidc.Config{ClientID: a.ClientID}).Verify(ctx, rawIDToken)
}

type providerClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (c *providerClaims) Validate(context.Context) error {
	if c.Email == "" {
		return errors.New("token has no email claim")
	}
	return nil
}
