package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pierojauregui/trilceperu-sub000/internal/models"
	appErrors "github.com/pierojauregui/trilceperu-sub000/pkg/errors"
)

const (
	formKeyPrefix = "asignaciones:form:"
	lockKeyPrefix = "asignaciones:form-lock:"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// FormSessionRepository stores draft assignment forms in Redis. Without a
// client it keeps them in process memory, which only suits a single
// dashboard instance.
type FormSessionRepository struct {
	client *redis.Client
	logger *zap.Logger

	mu     sync.Mutex
	memory map[string]memoryEntry
	now    func() time.Time
}

// NewFormSessionRepository constructs the store. client may be nil.
func NewFormSessionRepository(client *redis.Client, logger *zap.Logger) *FormSessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormSessionRepository{
		client: client,
		logger: logger,
		memory: make(map[string]memoryEntry),
		now:    time.Now,
	}
}

// Save marshals the form and stores it with ttl.
func (r *FormSessionRepository) Save(ctx context.Context, form *models.AssignmentForm, ttl time.Duration) error {
	payload, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("marshal form %s: %w", form.ID, err)
	}
	key := formKeyPrefix + form.ID
	if r.client == nil {
		r.mu.Lock()
		r.memory[key] = memoryEntry{payload: payload, expiresAt: r.now().Add(ttl)}
		r.mu.Unlock()
		return nil
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Load returns the stored form or ErrCacheMiss.
func (r *FormSessionRepository) Load(ctx context.Context, id string) (*models.AssignmentForm, error) {
	key := formKeyPrefix + id
	var raw []byte
	if r.client == nil {
		entry, ok := r.getMemory(key)
		if !ok {
			return nil, appErrors.ErrCacheMiss
		}
		raw = entry.payload
	} else {
		var err error
		raw, err = r.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return nil, appErrors.ErrCacheMiss
			}
			return nil, fmt.Errorf("redis get %s: %w", key, err)
		}
	}

	var form models.AssignmentForm
	if err := json.Unmarshal(raw, &form); err != nil {
		return nil, fmt.Errorf("unmarshal form %s: %w", id, err)
	}
	return &form, nil
}

// Delete removes a form. Deleting a missing form yields ErrCacheMiss.
func (r *FormSessionRepository) Delete(ctx context.Context, id string) error {
	key := formKeyPrefix + id
	if r.client == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		entry, ok := r.memory[key]
		delete(r.memory, key)
		if !ok || r.now().After(entry.expiresAt) {
			return appErrors.ErrCacheMiss
		}
		return nil
	}
	removed, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	if removed == 0 {
		return appErrors.ErrCacheMiss
	}
	return nil
}

// AcquireSubmitLock takes the per-form submit lock. It reports false when
// another submission holds it.
func (r *FormSessionRepository) AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	key := lockKeyPrefix + id
	if r.client == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if entry, ok := r.memory[key]; ok && r.now().Before(entry.expiresAt) {
			return false, nil
		}
		r.memory[key] = memoryEntry{expiresAt: r.now().Add(ttl)}
		return true, nil
	}
	ok, err := r.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

// ReleaseSubmitLock frees the submit lock.
func (r *FormSessionRepository) ReleaseSubmitLock(ctx context.Context, id string) error {
	key := lockKeyPrefix + id
	if r.client == nil {
		r.mu.Lock()
		delete(r.memory, key)
		r.mu.Unlock()
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *FormSessionRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *FormSessionRepository) getMemory(key string) (memoryEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.memory[key]
	if !ok {
		return memoryEntry{}, false
	}
	if r.now().After(entry.expiresAt) {
		delete(r.memory, key)
		r.logger.Debug("form session expired", zap.String("key", key))
		return memoryEntry{}, false
	}
	return entry, true
}
