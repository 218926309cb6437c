package apikey

import (
	"strings"
	"time"

	"github.com/eleven-am/transcribe-relay/internal/shared"
)

type APIKey struct {
	ID         string             `gorm:"primaryKey" json:"id"`
	OwnerID    string             `gorm:"not null;index" json:"owner_id"`
	Name       string             `gorm:"not null" json:"name"`
	Prefix     string             `gorm:"uniqueIndex;not null" json:"-"`
	SecretHash string             `gorm:"not null" json:"-"`
	Scopes     shared.StringSlice `gorm:"type:text" json:"scopes"`
	Providers  shared.StringSlice `gorm:"type:text" json:"providers"`
	LastUsedAt *time.Time         `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time         `json:"expires_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func (k *APIKey) IsExpired() bool {
	if k.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*k.ExpiresAt)
}

// HasScope reports whether the key grants scope. Admin keys grant every
// scope.
func (k *APIKey) HasScope(scope shared.Scope) bool {
	for _, s := range k.Scopes {
		if s == string(scope) || s == string(shared.ScopeAdmin) {
			return true
		}
	}
	return false
}

// AllowsProvider reports whether the key may use the named vendor. An empty
// provider list allows all of them.
func (k *APIKey) AllowsProvider(name string) bool {
	if len(k.Providers) == 0 {
		return true
	}
	for _, p := range k.Providers {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}
