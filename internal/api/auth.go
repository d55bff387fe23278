package api

import "errors"

// ErrInvalidToken is returned for unknown or missing bearer tokens.
var ErrInvalidToken = errors.New("invalid token")

// Authenticator maps a bearer token to an owner id. Real identity lives
// outside this service; handlers only ever see the resolved owner id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// StaticAuthenticator authenticates against a fixed token-to-owner table,
// loaded from configuration. Good enough for a personal deployment.
type StaticAuthenticator struct {
	tokens map[string]string
}

func NewStaticAuthenticator(tokens map[string]string) *StaticAuthenticator {
	return &StaticAuthenticator{tokens: tokens}
}

func (a *StaticAuthenticator) Authenticate(token string) (string, error) {
	owner, ok := a.tokens[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return owner, nil
}
