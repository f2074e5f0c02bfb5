package authenticator

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/bytedance/sonic"
)

const stateTTL = 5 * time.Minute

var (
	ErrInvalidState = errors.New("invalid state")
	ErrStateExpired = errors.New("state expired")
)

type OAuthState struct {
	CSRF      string `json:"csrf"`
	Redirect  string `json:"redirect"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func (a *Authenticator) NewState(redirect string) (OAuthState, error) {
	csrf := make([]byte, 16)
	if _, err := rand.Read(csrf); err != nil {
		return OAuthState{}, err
	}

	now := a.now()
	return OAuthState{
		CSRF:      base64.RawURLEncoding.EncodeToString(csrf),
		Redirect:  redirect,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(stateTTL).Unix(),
	}, nil
}

func (a *Authenticator) GetSignedState(state OAuthState) (string, error) {
	payload, err := sonic.Marshal(state)
	if err != nil {
		return "", err
	}

	combined := append(payload, a.sign(payload)...)
	return base64.RawURLEncoding.EncodeToString(combined), nil
}

func (a *Authenticator) VerifySignedState(encodedState string) (*OAuthState, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encodedState)
	if err != nil || len(raw) < sha256.Size {
		return nil, ErrInvalidState
	}

	payload := raw[:len(raw)-sha256.Size]
	sig := raw[len(raw)-sha256.Size:]
	if !hmac.Equal(sig, a.sign(payload)) {
		return nil, ErrInvalidState
	}

	var state OAuthState
	if err := sonic.Unmarshal(payload, &state); err != nil {
		return nil, ErrInvalidState
	}

	if a.now().Unix() > state.ExpiresAt {
		return nil, ErrStateExpired
	}

	return &state, nil
}

func (a *Authenticator) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(a.stateSecret))
	mac.Write(payload)
	return mac.Sum(nil)
}
