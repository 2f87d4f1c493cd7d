package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"para-predict/internal/domain/entities"
	"para-predict/internal/infra/logger"

	"github.com/allegro/bigcache/v3"
)

// SessionCache keeps per-user sessions JSON-marshaled in an in-memory cache.
// There is no durability requirement: state is lost on restart and the next
// interaction starts a fresh dialogue.
type SessionCache struct {
	cache *bigcache.BigCache
	log   *logger.Logger
}

func NewSessionCache(log *logger.Logger) (*SessionCache, error) {
	cache, err := bigcache.New(context.Background(), bigcache.DefaultConfig(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &SessionCache{cache: cache, log: log}, nil
}

// GetOrCreate returns the stored session or a fresh empty one. A corrupted
// entry is treated the same as a missing one.
func (sc *SessionCache) GetOrCreate(userID string) (entities.Session, error) {
	data, err := sc.cache.Get(userID)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return entities.Session{}, nil
		}
		return entities.Session{}, fmt.Errorf("read session for %s: %w", userID, err)
	}

	var session entities.Session
	if err := json.Unmarshal(data, &session); err != nil {
		sc.log.Warn(fmt.Sprintf("Corrupted session entry for %s, starting fresh: %v", userID, err))
		return entities.Session{}, nil
	}
	return session, nil
}

func (sc *SessionCache) Save(userID string, session entities.Session) error {
	session.UpdatedAt = time.Now()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session for %s: %w", userID, err)
	}
	if err := sc.cache.Set(userID, data); err != nil {
		return fmt.Errorf("write session for %s: %w", userID, err)
	}
	return nil
}

// ResetDialogue drops the dialogue state only. The stored location survives
// so the location flow can be retried without sharing again.
func (sc *SessionCache) ResetDialogue(userID string) error {
	session, err := sc.GetOrCreate(userID)
	if err != nil {
		return err
	}
	if session.Dialogue == nil && session.Location == nil {
		return nil
	}

	session.Dialogue = nil
	return sc.Save(userID, session)
}
