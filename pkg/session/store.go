// Package session persists workflow state in Redis. Each session is a
// single JSON document under a TTL'd key, plus one capped recency list
// used by the session listing endpoint.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/archadvisor/archadvisor/pkg/models"
)

const (
	keyPrefix = "archadvisor:session:"
	recentKey = keyPrefix + "recent"

	// SessionTTL is how long a session document survives after its last
	// write.
	SessionTTL = 24 * time.Hour

	maxRecent = 100
)

// ErrNotFound is returned when the session key is missing or expired.
var ErrNotFound = errors.New("session not found")

// Store is the Redis-backed session state store.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// NewStoreFromURL connects using a redis:// URL.
func NewStoreFromURL(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return NewStore(redis.NewClient(opts)), nil
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

// Create stores the initial state and pushes the id onto the recency
// list, trimming it to the newest 100 entries.
func (s *Store) Create(ctx context.Context, state *models.SessionState) error {
	if err := s.write(ctx, state); err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	pipe.LPush(ctx, recentKey, state.SessionID)
	pipe.LTrim(ctx, recentKey, 0, maxRecent-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("updating recent sessions: %w", err)
	}

	slog.Info("Session created", "session_id", state.SessionID)
	return nil
}

// Get retrieves session state, ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, sessionID string) (*models.SessionState, error) {
	data, err := s.rdb.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", sessionID, err)
	}

	var state models.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	return &state, nil
}

// Update applies mutate to the current state and writes it back,
// refreshing the TTL. The read and write are not atomic; the workflow
// is the only writer during a session's lifetime.
func (s *Store) Update(ctx context.Context, sessionID string, mutate func(*models.SessionState)) error {
	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	mutate(state)
	return s.write(ctx, state)
}

// UpdateStatus is a shorthand status-only update.
func (s *Store) UpdateStatus(ctx context.Context, sessionID string, status models.Status) error {
	return s.Update(ctx, sessionID, func(st *models.SessionState) {
		st.Status = status
	})
}

// AppendMessage appends one agent message to the session history.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, msg models.AgentMessage) error {
	return s.Update(ctx, sessionID, func(st *models.SessionState) {
		st.Messages = append(st.Messages, msg)
	})
}

// StoreOutput persists the final workflow output fields.
func (s *Store) StoreOutput(ctx context.Context, final *models.SessionState) error {
	return s.Update(ctx, final.SessionID, func(st *models.SessionState) {
		st.Status = final.Status
		st.CurrentDesign = final.CurrentDesign
		st.ReviewFindings = final.ReviewFindings
		st.CostAnalysis = final.CostAnalysis
		st.FinalDocument = final.FinalDocument
		st.RenderedMarkdown = final.RenderedMarkdown
		st.MermaidDiagrams = final.MermaidDiagrams
		st.Messages = final.Messages
		st.DebateRound = final.DebateRound
		st.TotalCostUSD = final.TotalCostUSD
		st.CompletedAt = final.CompletedAt
	})
}

// ListRecent returns up to limit most-recently-created session ids,
// newest first. Ids whose documents have since expired may appear.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]string, error) {
	ids, err := s.rdb.LRange(ctx, recentKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing recent sessions: %w", err)
	}
	return ids, nil
}

// Delete removes the session document. The recency list entry is left
// to age out.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("deleting session %s: %w", sessionID, err)
	}
	slog.Info("Session deleted", "session_id", sessionID)
	return nil
}

// Exists reports whether the session document is present.
func (s *Store) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("checking session %s: %w", sessionID, err)
	}
	return n > 0, nil
}

// Ping verifies store connectivity and returns the round-trip latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("redis ping: %w", err)
	}
	return time.Since(start), nil
}

func (s *Store) write(ctx context.Context, state *models.SessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", state.SessionID, err)
	}
	if err := s.rdb.Set(ctx, key(state.SessionID), data, SessionTTL).Err(); err != nil {
		return fmt.Errorf("writing session %s: %w", state.SessionID, err)
	}
	return nil
}
