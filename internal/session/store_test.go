package session

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/eleven-am/transcribe-relay/internal/provider"
	"github.com/eleven-am/transcribe-relay/internal/shared"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client), mr
}

func TestStore_StartAndGet(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	if err := store.Start(ctx, "sess_1", provider.Deepgram, "acme"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	sess, err := store.GetSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if sess.Provider != "deepgram" || sess.OwnerID != "acme" {
		t.Errorf("unexpected session %+v", sess)
	}
	if sess.Status != StatusActive {
		t.Errorf("expected active, got %s", sess.Status)
	}
	if mr.TTL("relay:session:sess_1") != sessionTTL {
		t.Errorf("expected session ttl %v, got %v", sessionTTL, mr.TTL("relay:session:sess_1"))
	}

	active, err := store.GetActiveSessions(ctx)
	if err != nil {
		t.Fatalf("GetActiveSessions() error = %v", err)
	}
	if len(active) != 1 || active[0].ID != "sess_1" {
		t.Errorf("unexpected active sessions %+v", active)
	}
}

func TestStore_GetSession_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.GetSession(context.Background(), "missing")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_End(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	_ = store.Start(ctx, "sess_ok", provider.Soniox, "acme")
	_ = store.Start(ctx, "sess_bad", provider.Soniox, "acme")

	if err := store.End(ctx, "sess_ok", 1000, "client_closed"); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if err := store.End(ctx, "sess_bad", 1011, "upstream_error"); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	ok, _ := store.GetSession(ctx, "sess_ok")
	if ok.Status != StatusClosed || ok.EndedAt == nil || ok.CloseCode != 1000 {
		t.Errorf("unexpected closed session %+v", ok)
	}
	bad, _ := store.GetSession(ctx, "sess_bad")
	if bad.Status != StatusError || bad.CloseReason != "upstream_error" {
		t.Errorf("unexpected failed session %+v", bad)
	}

	active, _ := store.GetActiveSessions(ctx)
	if len(active) != 0 {
		t.Errorf("expected no active sessions, got %d", len(active))
	}

	metrics, err := store.GetMetrics(ctx, "soniox", 1)
	if err != nil {
		t.Fatalf("GetMetrics() error = %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("expected one hour of metrics, got %d", len(metrics))
	}
	m := metrics[0]
	if m.Sessions != 2 || m.Closed != 1 || m.ErrorCount != 1 {
		t.Errorf("unexpected counters %+v", m)
	}
	if m.CloseReasons["client_closed"] != 1 || m.CloseReasons["upstream_error"] != 1 {
		t.Errorf("unexpected close reasons %v", m.CloseReasons)
	}
}

func TestStore_End_Idempotent(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	_ = store.Start(ctx, "sess_1", provider.AssemblyAI, "")
	_ = store.End(ctx, "sess_1", 1000, "client_closed")
	if err := store.End(ctx, "sess_1", 1011, "upstream_error"); err != nil {
		t.Fatalf("second End() error = %v", err)
	}

	sess, _ := store.GetSession(ctx, "sess_1")
	if sess.CloseReason != "client_closed" {
		t.Errorf("second End should not overwrite, got %q", sess.CloseReason)
	}

	metrics, _ := store.GetMetrics(ctx, "assemblyai", 1)
	if len(metrics) != 1 || metrics[0].Closed != 1 || metrics[0].ErrorCount != 0 {
		t.Errorf("close should be counted once, got %+v", metrics)
	}
}

func TestStore_GetOwnerSessions(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	_ = store.Start(ctx, "a", provider.Deepgram, "acme")
	_ = store.Start(ctx, "b", provider.Deepgram, "acme")
	_ = store.Start(ctx, "c", provider.Deepgram, "other")

	sessions, err := store.GetOwnerSessions(ctx, "acme")
	if err != nil {
		t.Fatalf("GetOwnerSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "b" {
		t.Errorf("expected newest first, got %s", sessions[0].ID)
	}

	empty, err := store.GetOwnerSessions(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Errorf("expected no sessions, got %v %v", empty, err)
	}
}

func TestStore_GetMetrics_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	metrics, err := store.GetMetricsForLast7Days(context.Background(), "deepgram")
	if err != nil {
		t.Fatalf("GetMetricsForLast7Days() error = %v", err)
	}
	if len(metrics) != 0 {
		t.Errorf("expected no metrics, got %d", len(metrics))
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code   int
		reason string
		want   Status
	}{
		{1000, "", StatusClosed},
		{1001, "", StatusClosed},
		{1011, "client_closed", StatusClosed},
		{4000, "upstream_closed", StatusClosed},
		{1011, "upstream_error", StatusError},
		{1011, "payload_too_large", StatusError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.code, tt.reason); got != tt.want {
			t.Errorf("statusFor(%d, %q) = %s, want %s", tt.code, tt.reason, got, tt.want)
		}
	}
}

func TestMetricsRedisKey(t *testing.T) {
	key := MetricsRedisKey("deepgram", "2024-01-15", 14)
	expected := "relay:provider:deepgram:metrics:2024-01-15:14"
	if key != expected {
		t.Errorf("expected '%s', got '%s'", expected, key)
	}
}

func TestSession_RedisKey(t *testing.T) {
	s := &Session{ID: "sess_abc123"}
	if key := s.RedisKey(); key != "relay:session:sess_abc123" {
		t.Errorf("unexpected key %s", key)
	}
}
