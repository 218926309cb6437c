package auth

import "github.com/golang-jwt/jwt/v5"

// Claims carry the grants of the API key that minted the token. Scopes and
// providers are never wider than the parent key's.
type Claims struct {
	jwt.RegisteredClaims
	KeyID     string   `json:"kid"`
	Scopes    []string `json:"scopes"`
	Providers []string `json:"providers,omitempty"`
}
