package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/click-call/click-call-backend/internal/callsession"
)

const (
	sessionKeyPrefix = "cc:session:" // cc:session:{session_id}
	sessionTTL       = 24 * time.Hour
)

// SessionRepo keeps call-session snapshots in Redis so operators can inspect
// live calls. The in-memory session stays authoritative; this is a mirror.
type SessionRepo struct {
	client *redis.Client
}

func NewSessionRepo(client *redis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func (r *SessionRepo) Save(ctx context.Context, snap callsession.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}

	if err := r.client.Set(ctx, r.key(snap.ID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("save session snapshot: %w", err)
	}
	return nil
}

// Get returns nil on a miss.
func (r *SessionRepo) Get(ctx context.Context, id string) (*callsession.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}

	var snap callsession.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	return &snap, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session snapshot: %w", err)
	}
	return nil
}

func (r *SessionRepo) key(id string) string {
	return sessionKeyPrefix + id
}
