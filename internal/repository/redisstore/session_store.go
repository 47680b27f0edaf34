package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks the live push state of chat sessions in Redis:
// which connection handle (if any) is currently attached to a session,
// and which query ids have already been processed.
//
// Keys:
//
//	chat:session:<sessionId>  hash {connection_id, created_at}
//	chat:conn:<connectionId>  reverse lookup to the session id
//	chat:query:<queryId>      dedup marker (SETNX)
//
// All keys carry the session TTL so abandoned sessions age out.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// ErrSessionNotFound is returned when a session id has no live state.
var ErrSessionNotFound = errors.New("session not found")

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(sessionID string) string {
	return "chat:session:" + sessionID
}

func connKey(connectionID string) string {
	return "chat:conn:" + connectionID
}

func queryKey(queryID string) string {
	return "chat:query:" + queryID
}

// Create registers a new session with no attached connection.
func (s *SessionStore) Create(ctx context.Context, sessionID string) error {
	key := sessionKey(sessionID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "connection_id", "", "created_at", time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("create session %s: %w", sessionID, err)
	}
	return nil
}

// Exists reports whether the session is known and not expired.
func (s *SessionStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AttachConnection makes connectionID the single live handle of the session.
// Any previously attached handle is unlinked. The session TTL is refreshed.
func (s *SessionStore) AttachConnection(ctx context.Context, sessionID, connectionID string) error {
	key := sessionKey(sessionID)

	exists, err := s.Exists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}

	prev, err := s.client.HGet(ctx, key, "connection_id").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := s.client.TxPipeline()
	if prev != "" && prev != connectionID {
		pipe.Del(ctx, connKey(prev))
	}
	pipe.HSet(ctx, key, "connection_id", connectionID)
	pipe.Expire(ctx, key, s.ttl)
	pipe.Set(ctx, connKey(connectionID), sessionID, s.ttl)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("attach connection %s to session %s: %w", connectionID, sessionID, err)
	}
	return nil
}

// ClearConnection removes connectionID from the session, but only if it is
// still the attached handle. A disconnect of a rotated-out connection must
// not clear the newer handle.
func (s *SessionStore) ClearConnection(ctx context.Context, sessionID, connectionID string) error {
	key := sessionKey(sessionID)

	current, err := s.client.HGet(ctx, key, "connection_id").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, connKey(connectionID))
	if current == connectionID {
		pipe.HSet(ctx, key, "connection_id", "")
	}
	_, err = pipe.Exec(ctx)
	return err
}

// GetConnection returns the currently attached handle, empty when the
// session is live but offline.
func (s *SessionStore) GetConnection(ctx context.Context, sessionID string) (string, error) {
	conn, err := s.client.HGet(ctx, sessionKey(sessionID), "connection_id").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	return conn, nil
}

// FindByConnection resolves a connection handle back to its session id.
func (s *SessionStore) FindByConnection(ctx context.Context, connectionID string) (string, error) {
	sessionID, err := s.client.Get(ctx, connKey(connectionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	return sessionID, nil
}

// Touch refreshes the session TTL on activity.
func (s *SessionStore) Touch(ctx context.Context, sessionID string) error {
	return s.client.Expire(ctx, sessionKey(sessionID), s.ttl).Err()
}

// MarkQueryProcessed records that a query id has entered processing.
// Returns true on first call, false when the id was already seen, which
// makes redelivered messages a no-op.
func (s *SessionStore) MarkQueryProcessed(ctx context.Context, queryID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, queryKey(queryID), "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark query %s: %w", queryID, err)
	}
	return ok, nil
}
