// internal/session/store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"coldcall-backend/internal/common/database"
	commonerrors "coldcall-backend/internal/common/errors"
	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
)

const keyPrefix = "session:"

// Record is the full persisted session: live engine state plus session
// metadata. Stored as one JSON blob so a turn is a single read and a
// single write.
type Record struct {
	SessionID     string          `json:"sessionId"`
	Status        string          `json:"status"`
	ProspectMode  string          `json:"prospectMode"`
	LastAgentText string          `json:"lastAgentText,omitempty"`
	State         *engine.State   `json:"state"`
	Outcome       *engine.Outcome `json:"outcome,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Store keeps sessions in Redis with a sliding TTL. Completed sessions
// expire like running ones; the durable record lives in Postgres.
type Store struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(redisClient *database.RedisClient, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		redis: redisClient,
		ttl:   ttl,
		logger: log.WithFields(map[string]interface{}{
			"component": "session-store",
		}),
	}
}

func (s *Store) Create(ctx context.Context, rec *Record) error {
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	return s.write(ctx, rec)
}

// Save re-persists the record and refreshes the TTL.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	rec.UpdatedAt = time.Now().UTC()
	return s.write(ctx, rec)
}

func (s *Store) write(ctx context.Context, rec *Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return commonerrors.NewSessionStoreFailedError("marshal", err)
	}
	if err := s.redis.Set(ctx, keyPrefix+rec.SessionID, payload, s.ttl); err != nil {
		s.logger.Error("session write failed", map[string]interface{}{
			"sessionId": rec.SessionID,
			"error":     err.Error(),
		})
		return commonerrors.NewSessionStoreFailedError("set", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*Record, error) {
	payload, err := s.redis.Get(ctx, keyPrefix+sessionID)
	if errors.Is(err, redis.Nil) {
		return nil, commonerrors.NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return nil, commonerrors.NewSessionStoreFailedError("get", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, commonerrors.NewSessionStoreFailedError("unmarshal", err)
	}
	return &rec, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, keyPrefix+sessionID); err != nil {
		return commonerrors.NewSessionStoreFailedError("del", err)
	}
	return nil
}
