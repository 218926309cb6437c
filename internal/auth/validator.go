package auth

import (
	"context"
	"errors"

	"github.com/eleven-am/transcribe-relay/internal/apikey"
	"github.com/eleven-am/transcribe-relay/internal/shared"
)

// Validator accepts either an API key secret or a token minted from one.
// Tokens resolve to a synthetic key so downstream scope and provider checks
// apply unchanged.
type Validator struct {
	keys   apikey.Validator
	tokens *TokenService
}

func NewValidator(keys apikey.Validator, tokens *TokenService) *Validator {
	return &Validator{keys: keys, tokens: tokens}
}

func (v *Validator) Validate(ctx context.Context, secret string) (*apikey.APIKey, error) {
	if v.tokens == nil || !LooksLikeToken(secret) {
		return v.keys.Validate(ctx, secret)
	}

	claims, err := v.tokens.Parse(secret)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, shared.ErrUnauthorized
		}
		return nil, shared.ErrNotFound
	}
	return claimsToKey(claims), nil
}

func claimsToKey(c *Claims) *apikey.APIKey {
	key := &apikey.APIKey{
		ID:        c.KeyID,
		OwnerID:   c.Subject,
		Name:      "token " + c.ID,
		Scopes:    shared.StringSlice(c.Scopes),
		Providers: shared.StringSlice(c.Providers),
	}
	if c.ExpiresAt != nil {
		expires := c.ExpiresAt.Time
		key.ExpiresAt = &expires
	}
	if c.IssuedAt != nil {
		key.CreatedAt = c.IssuedAt.Time
	}
	return key
}
