package apikey

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eleven-am/transcribe-relay/internal/shared"
)

const (
	contextKey = "api_key"
	queryParam = "api_key"
)

type Validator interface {
	Validate(ctx context.Context, secret string) (*APIKey, error)
}

// Middleware authenticates requests with an API key. When required is false,
// requests without a key pass through anonymously, but a key that is present
// must still be valid.
func Middleware(validator Validator, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			secret := extractAPIKey(c.Request())
			if secret == "" {
				if required {
					return shared.Unauthorized("missing_api_key", "missing api key")
				}
				return next(c)
			}

			key, err := validator.Validate(c.Request().Context(), secret)
			if err != nil {
				if errors.Is(err, shared.ErrUnauthorized) {
					return shared.Unauthorized("expired_api_key", "api key has expired")
				}
				if errors.Is(err, shared.ErrNotFound) {
					return shared.Unauthorized("invalid_api_key", "invalid api key")
				}
				return shared.InternalError("auth_failed", "failed to validate api key")
			}

			SetContext(c, key)
			return next(c)
		}
	}
}

// RequireScope rejects keys without scope. Anonymous requests pass; pair it
// with a required Middleware to forbid them.
func RequireScope(scope shared.Scope) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := FromContext(c)
			if key != nil && !key.HasScope(scope) {
				return shared.Forbidden("insufficient_scope", "api key lacks the "+scope.String()+" scope")
			}
			return next(c)
		}
	}
}

// RequireProvider rejects keys that are restricted away from the vendor named
// by the query parameter param, falling back to fallback when it is absent.
func RequireProvider(param, fallback string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := FromContext(c)
			if key == nil {
				return next(c)
			}
			name := c.QueryParam(param)
			if name == "" {
				name = fallback
			}
			if !key.AllowsProvider(name) {
				return shared.Forbidden("provider_not_allowed", "api key may not use provider "+name)
			}
			return next(c)
		}
	}
}

func FromContext(c echo.Context) *APIKey {
	if key, ok := c.Get(contextKey).(*APIKey); ok {
		return key
	}
	return nil
}

func SetContext(c echo.Context, key *APIKey) {
	c.Set(contextKey, key)
}

// extractAPIKey reads the key from the Authorization header, X-API-Key, or
// the api_key query parameter. Browsers cannot set headers on WebSocket
// upgrades, so the query form is stripped from the URL once read to keep it
// from being forwarded upstream.
func extractAPIKey(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if strings.HasPrefix(authHeader, "Token ") {
		return strings.TrimPrefix(authHeader, "Token ")
	}

	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}

	query := r.URL.Query()
	apiKey := query.Get(queryParam)
	if apiKey != "" {
		query.Del(queryParam)
		r.URL.RawQuery = query.Encode()
	}
	return apiKey
}
