package onboarding

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("onboarding session not found")

type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
}

// PostgresSessionStore keeps sessions in onboarding_sessions, with an optional
// Redis read-through cache in front.
type PostgresSessionStore struct {
	db       *sql.DB
	cache    redis.Cmdable
	cacheTTL time.Duration
}

func NewPostgresSessionStore(db *sql.DB, cache redis.Cmdable, cacheTTL time.Duration) *PostgresSessionStore {
	return &PostgresSessionStore{db: db, cache: cache, cacheTTL: cacheTTL}
}

func cacheKey(sessionID string) string {
	return "onboarding:session:" + sessionID
}

func (s *PostgresSessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKey(sessionID)).Bytes(); err == nil {
			var cached Session
			if json.Unmarshal(val, &cached) == nil {
				return &cached, nil
			}
		}
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, stage, business_name, updated_at
		FROM onboarding_sessions
		WHERE session_id = $1`, sessionID)

	var session Session
	var stage string
	if err := row.Scan(&session.SessionID, &stage, &session.BusinessName, &session.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("query onboarding session: %w", err)
	}
	session.Stage = Stage(stage)

	s.remember(ctx, &session)
	return &session, nil
}

func (s *PostgresSessionStore) Save(ctx context.Context, session *Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO onboarding_sessions (session_id, stage, business_name, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE
		SET stage = EXCLUDED.stage,
		    business_name = EXCLUDED.business_name,
		    updated_at = EXCLUDED.updated_at`,
		session.SessionID, string(session.Stage), session.BusinessName, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert onboarding session: %w", err)
	}

	s.remember(ctx, session)
	return nil
}

// remember refreshes the cache; cache failures are ignored.
func (s *PostgresSessionStore) remember(ctx context.Context, session *Session) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	s.cache.Set(ctx, cacheKey(session.SessionID), data, s.cacheTTL)
}
