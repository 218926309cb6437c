package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eleven-am/transcribe-relay/internal/apikey"
	"github.com/eleven-am/transcribe-relay/internal/shared"
)

const (
	DefaultTokenTTL = time.Minute
	MaxTokenTTL     = time.Hour
	issuer          = "transcribe-relay"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoGrant      = errors.New("requested scopes are not granted by the api key")
)

// TokenService mints and verifies short-lived HS256 tokens that stand in for
// an API key where the secret cannot be kept, such as browser WebSockets.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService signs with secret. An empty secret is replaced by a random
// one, which limits tokens to the process that issued them.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: key, ttl: min(ttl, MaxTokenTTL)}, nil
}

type IssueRequest struct {
	TTL       time.Duration
	Scopes    []string
	Providers []string
}

// Issue mints a token for key. The token never outlives key, never carries
// the admin scope and is restricted to the intersection of the requested
// and permitted providers.
func (s *TokenService) Issue(key *apikey.APIKey, req IssueRequest) (string, *Claims, error) {
	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.ttl
	}
	ttl = min(ttl, MaxTokenTTL)

	now := time.Now()
	expires := now.Add(ttl)
	if key.ExpiresAt != nil && key.ExpiresAt.Before(expires) {
		expires = *key.ExpiresAt
	}

	scopes := req.Scopes
	if len(scopes) == 0 {
		scopes = []string{string(shared.ScopeStream)}
	}
	for _, sc := range scopes {
		scope := shared.Scope(sc)
		if scope == shared.ScopeAdmin || !scope.Valid() || !key.HasScope(scope) {
			return "", nil, fmt.Errorf("%w: %s", ErrNoGrant, sc)
		}
	}

	providers, err := narrowProviders(key, req.Providers)
	if err != nil {
		return "", nil, err
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   key.OwnerID,
			ID:        shared.NewID("tok_"),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		KeyID:     key.ID,
		Scopes:    scopes,
		Providers: providers,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

func narrowProviders(key *apikey.APIKey, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return slices.Clone([]string(key.Providers)), nil
	}
	out := make([]string, 0, len(requested))
	for _, p := range requested {
		if !key.AllowsProvider(p) {
			return nil, fmt.Errorf("%w: provider %s", ErrNoGrant, p)
		}
		out = append(out, strings.ToLower(p))
	}
	return out, nil
}

func (s *TokenService) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// LooksLikeToken reports whether secret has the three-segment JWT shape.
// API key secrets never contain dots.
func LooksLikeToken(secret string) bool {
	return strings.Count(secret, ".") == 2
}
