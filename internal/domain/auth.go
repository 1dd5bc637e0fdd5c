package domain

import "strings"

const GrantTypePassword = "password"

type Credentials struct {
	Username  string
	Password  string
	ClientID  string
	GrantType string
}

// WithDefaults fills GrantType with the password grant when unset.
func (c Credentials) WithDefaults() Credentials {
	if strings.TrimSpace(c.GrantType) == "" {
		c.GrantType = GrantTypePassword
	}
	return c
}

// TokenResponse is the authorization server's JSON object, passed through
// unchanged.
type TokenResponse map[string]any

func (t TokenResponse) AccessToken() (string, error) {
	raw, ok := t["access_token"]
	if !ok {
		return "", ErrMissingAccessToken
	}
	token, ok := raw.(string)
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrMissingAccessToken
	}
	return token, nil
}
