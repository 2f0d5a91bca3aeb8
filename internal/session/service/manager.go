package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	audit "github.com/abv-ps/shop-api/internal/audit/domain"
	"github.com/abv-ps/shop-api/internal/metrics"
	"github.com/abv-ps/shop-api/internal/session/domain"
)

// Recorder submits an audit event on the offloaded write path and waits for
// its outcome. Session mutations re-raise a failed audit write to their
// caller; the store mutation itself is already applied at that point.
type Recorder interface {
	RecordWait(userID, eventType, metadata string) error
}

// Manager implements domain.Manager on top of a shared Redis client.
// Both keys of a session are always written sequentially with the same TTL;
// the small window between the two writes is accepted, there is no store-side
// transaction and no per-user locking.
type Manager struct {
	client *redis.Client
	ttl    time.Duration
	events Recorder
	log    zerolog.Logger
}

// NewManager creates a session manager. ttl defaults to 30 minutes when zero.
func NewManager(client *redis.Client, ttl time.Duration, events Recorder) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{client: client, ttl: ttl, events: events, log: zerolog.Nop()}
}

func (m *Manager) SetLogger(l zerolog.Logger) { m.log = l }

func sessionKey(userID string) string { return "session:" + userID }
func tokenKey(token string) string    { return "token:" + token }

// generateToken returns a high-entropy opaque bearer token (32 hex chars).
func generateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create builds a fresh session and writes the user-keyed record and the
// token-keyed pointer with an identical TTL. A prior session for the same
// user is overwritten; its token pointer dangles until its own TTL expires.
func (m *Manager) Create(ctx context.Context, userID string) (*domain.Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	token, err := generateToken()
	if err != nil {
		metrics.IncSessionOp("create", "error")
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		UserID:       userID,
		SessionToken: token,
		LoginTime:    now,
		LastActive:   now,
	}
	data, err := json.Marshal(sess)
	if err != nil {
		metrics.IncSessionOp("create", "error")
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	m.log.Info().Str("user_id", userID).Msg("creating new session")
	if err := m.client.Set(ctx, sessionKey(userID), data, m.ttl).Err(); err != nil {
		metrics.IncSessionOp("create", "error")
		m.log.Error().Err(err).Str("user_id", userID).Msg("session create failed")
		return nil, fmt.Errorf("failed to store session for user %s: %w", userID, err)
	}
	if err := m.client.Set(ctx, tokenKey(token), userID, m.ttl).Err(); err != nil {
		metrics.IncSessionOp("create", "error")
		m.log.Error().Err(err).Str("user_id", userID).Msg("session token write failed")
		return nil, fmt.Errorf("failed to store token pointer for user %s: %w", userID, err)
	}

	if err := m.events.RecordWait(userID, audit.EventLogin, fmt.Sprintf(`{"session_token":%q}`, token)); err != nil {
		metrics.IncSessionOp("create", "error")
		m.log.Error().Err(err).Str("user_id", userID).Msg("session create audit write failed")
		return nil, fmt.Errorf("failed to record login for user %s: %w", userID, err)
	}
	metrics.IncSessionOp("create", "success")
	return sess, nil
}

// Get performs a single lookup of the user-keyed record. Absence is nil, nil.
func (m *Manager) Get(ctx context.Context, userID string) (*domain.Session, error) {
	data, err := m.client.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		metrics.IncSessionOp("get", "miss")
		return nil, nil
	}
	if err != nil {
		metrics.IncSessionOp("get", "error")
		return nil, fmt.Errorf("failed to fetch session for user %s: %w", userID, err)
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		metrics.IncSessionOp("get", "error")
		return nil, fmt.Errorf("failed to unmarshal session for user %s: %w", userID, err)
	}
	metrics.IncSessionOp("get", "success")
	return &sess, nil
}

// Delete looks the session up to discover its token, then removes the
// user-keyed entry followed by the token-keyed one. Without a session it is
// an idempotent no-op: count 0, no audit event.
func (m *Manager) Delete(ctx context.Context, userID string) (int64, error) {
	sess, err := m.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if sess == nil {
		m.log.Warn().Str("user_id", userID).Msg("no session to delete")
		metrics.IncSessionOp("delete", "miss")
		return 0, nil
	}

	deleted, err := m.client.Del(ctx, sessionKey(userID)).Result()
	if err != nil {
		metrics.IncSessionOp("delete", "error")
		m.log.Error().Err(err).Str("user_id", userID).Msg("session delete failed")
		return 0, fmt.Errorf("failed to delete session for user %s: %w", userID, err)
	}
	if sess.SessionToken != "" {
		if err := m.client.Del(ctx, tokenKey(sess.SessionToken)).Err(); err != nil {
			metrics.IncSessionOp("delete", "error")
			m.log.Error().Err(err).Str("user_id", userID).Msg("token delete failed")
			return deleted, fmt.Errorf("failed to delete token pointer for user %s: %w", userID, err)
		}
	}

	m.log.Info().Str("user_id", userID).Msg("deleted session")
	if err := m.events.RecordWait(userID, audit.EventLogout, `{"deleted_session":true}`); err != nil {
		metrics.IncSessionOp("delete", "error")
		m.log.Error().Err(err).Str("user_id", userID).Msg("session delete audit write failed")
		return deleted, fmt.Errorf("failed to record logout for user %s: %w", userID, err)
	}
	metrics.IncSessionOp("delete", "success")
	return deleted, nil
}

// Touch re-reads the session and, when present, bumps last_active and
// rewrites both keys with a fresh TTL. The writes are blind; a concurrent
// delete can interleave and resurrect the record until the TTL fires.
func (m *Manager) Touch(ctx context.Context, userID string) (*domain.Session, error) {
	sess, err := m.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		metrics.IncSessionOp("touch", "miss")
		return nil, nil
	}

	sess.LastActive = time.Now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		metrics.IncSessionOp("touch", "error")
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := m.client.Set(ctx, sessionKey(userID), data, m.ttl).Err(); err != nil {
		metrics.IncSessionOp("touch", "error")
		m.log.Error().Err(err).Str("user_id", userID).Msg("session touch failed")
		return nil, fmt.Errorf("failed to refresh session for user %s: %w", userID, err)
	}
	if err := m.client.Set(ctx, tokenKey(sess.SessionToken), userID, m.ttl).Err(); err != nil {
		metrics.IncSessionOp("touch", "error")
		m.log.Error().Err(err).Str("user_id", userID).Msg("token refresh failed")
		return nil, fmt.Errorf("failed to refresh token pointer for user %s: %w", userID, err)
	}

	m.log.Info().Str("user_id", userID).Msg("updated session activity")
	if err := m.events.RecordWait(userID, audit.EventActivityTouch, `{"status":"touched"}`); err != nil {
		metrics.IncSessionOp("touch", "error")
		m.log.Error().Err(err).Str("user_id", userID).Msg("session touch audit write failed")
		return nil, fmt.Errorf("failed to record activity for user %s: %w", userID, err)
	}
	metrics.IncSessionOp("touch", "success")
	return sess, nil
}

// UserIDByToken resolves the token back-reference. The back-reference is
// lookup-only; authoritative session data always comes from the user key.
func (m *Manager) UserIDByToken(ctx context.Context, token string) (string, error) {
	userID, err := m.client.Get(ctx, tokenKey(token)).Result()
	if err == redis.Nil {
		metrics.IncSessionOp("by_token", "miss")
		return "", nil
	}
	if err != nil {
		metrics.IncSessionOp("by_token", "error")
		return "", fmt.Errorf("failed to resolve token: %w", err)
	}
	metrics.IncSessionOp("by_token", "success")
	return userID, nil
}
