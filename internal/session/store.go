package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eleven-am/transcribe-relay/internal/provider"
	"github.com/eleven-am/transcribe-relay/internal/shared"
)

const (
	sessionTTL    = 24 * time.Hour
	metricsTTL    = 7 * 24 * time.Hour
	ownerHistory  = 100
	maxReasonSize = 64
)

type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

// Start records a new relay session and counts it against its provider.
func (s *Store) Start(ctx context.Context, id string, name provider.Name, ownerID string) error {
	sess := &Session{
		ID:        id,
		Provider:  string(name),
		OwnerID:   ownerID,
		Status:    StatusActive,
		StartedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, sess.RedisKey(), data, sessionTTL)
	pipe.SAdd(ctx, activeSetKey, id)
	if ownerID != "" {
		key := ownerSetKey(ownerID)
		pipe.LPush(ctx, key, id)
		pipe.LTrim(ctx, key, 0, ownerHistory-1)
		pipe.Expire(ctx, key, sessionTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return s.IncrementMetric(ctx, sess.Provider, fieldSessions, 1)
}

// End marks the session finished and records why it closed.
func (s *Store) End(ctx context.Context, id string, code int, reason string) error {
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if sess.Status != StatusActive {
		return nil
	}

	now := time.Now().UTC()
	sess.EndedAt = &now
	sess.CloseCode = code
	sess.CloseReason = reason
	sess.Status = statusFor(code, reason)

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, sess.RedisKey(), data, sessionTTL)
	pipe.SRem(ctx, activeSetKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	return s.recordClose(ctx, sess)
}

func (s *Store) recordClose(ctx context.Context, sess *Session) error {
	now := time.Now().UTC()
	key := MetricsRedisKey(sess.Provider, now.Format("2006-01-02"), now.Hour())

	outcome := fieldClosed
	if sess.Status == StatusError {
		outcome = fieldErrors
	}

	reason := sess.CloseReason
	if len(reason) > maxReasonSize {
		reason = reason[:maxReasonSize]
	}

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, outcome, 1)
	pipe.HIncrBy(ctx, key, fieldTotalDuration, sess.Duration().Milliseconds())
	if reason != "" {
		pipe.HIncrBy(ctx, key, reasonFieldPrefix+reason, 1)
	}
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, (&Session{ID: id}).RedisKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) GetActiveSessions(ctx context.Context) ([]*Session, error) {
	ids, err := s.redis.SMembers(ctx, activeSetKey).Result()
	if err != nil {
		return nil, err
	}
	return s.loadSessions(ctx, ids)
}

func (s *Store) GetOwnerSessions(ctx context.Context, ownerID string) ([]*Session, error) {
	ids, err := s.redis.LRange(ctx, ownerSetKey(ownerID), 0, ownerHistory-1).Result()
	if err != nil {
		return nil, err
	}
	return s.loadSessions(ctx, ids)
}

func (s *Store) loadSessions(ctx context.Context, ids []string) ([]*Session, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = (&Session{ID: id}).RedisKey()
	}

	values, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*Session, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var sess Session
		if err := json.Unmarshal([]byte(raw), &sess); err != nil {
			continue
		}
		sessions = append(sessions, &sess)
	}
	return sessions, nil
}

func (s *Store) IncrementMetric(ctx context.Context, providerName string, field string, value int64) error {
	now := time.Now().UTC()
	key := MetricsRedisKey(providerName, now.Format("2006-01-02"), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, field, value)
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) GetMetrics(ctx context.Context, providerName string, hours int) ([]*Metrics, error) {
	now := time.Now().UTC()
	var metrics []*Metrics

	for i := 0; i < hours; i++ {
		t := now.Add(-time.Duration(i) * time.Hour)
		key := MetricsRedisKey(providerName, t.Format("2006-01-02"), t.Hour())

		data, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}

		m := &Metrics{
			Provider: providerName,
			Date:     t.Format("2006-01-02"),
			Hour:     t.Hour(),
		}

		m.Sessions, _ = strconv.ParseInt(data[fieldSessions], 10, 64)
		m.Closed, _ = strconv.ParseInt(data[fieldClosed], 10, 64)
		m.ErrorCount, _ = strconv.ParseInt(data[fieldErrors], 10, 64)

		totalDuration, _ := strconv.ParseInt(data[fieldTotalDuration], 10, 64)
		if finished := m.Closed + m.ErrorCount; finished > 0 {
			m.AvgDurationMs = totalDuration / finished
		}

		for field, v := range data {
			if !strings.HasPrefix(field, reasonFieldPrefix) {
				continue
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				continue
			}
			if m.CloseReasons == nil {
				m.CloseReasons = make(map[string]int64)
			}
			m.CloseReasons[strings.TrimPrefix(field, reasonFieldPrefix)] = n
		}

		metrics = append(metrics, m)
	}

	return metrics, nil
}

func (s *Store) GetMetricsForLast7Days(ctx context.Context, providerName string) ([]*Metrics, error) {
	return s.GetMetrics(ctx, providerName, 7*24)
}
