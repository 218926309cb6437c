package session

import (
	"strconv"
	"time"
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
	StatusError  Status = "error"
)

// Session is the bookkeeping record of one relay connection. It carries no
// audio or transcript content.
type Session struct {
	ID          string     `json:"id"`
	Provider    string     `json:"provider"`
	OwnerID     string     `json:"owner_id,omitempty"`
	Status      Status     `json:"status"`
	CloseCode   int        `json:"close_code,omitempty"`
	CloseReason string     `json:"close_reason,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

func (s *Session) RedisKey() string {
	return "relay:session:" + s.ID
}

func (s *Session) Duration() time.Duration {
	if s.EndedAt == nil {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

type Metrics struct {
	Provider      string           `json:"provider"`
	Date          string           `json:"date"`
	Hour          int              `json:"hour"`
	Sessions      int64            `json:"sessions"`
	Closed        int64            `json:"closed"`
	ErrorCount    int64            `json:"error_count"`
	AvgDurationMs int64            `json:"avg_duration_ms"`
	CloseReasons  map[string]int64 `json:"close_reasons,omitempty"`
}

func MetricsRedisKey(provider, date string, hour int) string {
	return "relay:provider:" + provider + ":metrics:" + date + ":" + strconv.Itoa(hour)
}

const (
	activeSetKey       = "relay:sessions:active"
	ownerSetKeyPrefix  = "relay:owner:"
	reasonFieldPrefix  = "reason:"
	fieldSessions      = "sessions"
	fieldClosed        = "closed"
	fieldErrors        = "error_count"
	fieldTotalDuration = "total_duration_ms"
)

func ownerSetKey(ownerID string) string {
	return ownerSetKeyPrefix + ownerID + ":sessions"
}

// statusFor classifies a finished relay. Normal closures and the client
// hanging up are clean; everything else counts as an error.
func statusFor(code int, reason string) Status {
	switch {
	case code == 1000, code == 1001:
		return StatusClosed
	case reason == "client_closed", reason == "upstream_closed":
		return StatusClosed
	default:
		return StatusError
	}
}
