package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/ikkim/eduverify-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const DefaultNamespace = "eduverify_"

// Backend persists raw values by full key
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Name() string
}

// Store is the JSON key-value facade every repository writes through.
// Keys are namespaced; an absent or undecodable value reads as not found.
type Store interface {
	Get(ctx context.Context, key string, out interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type store struct {
	backend   Backend
	namespace string
}

func New(backend Backend, namespace string) Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &store{backend: backend, namespace: namespace}
}

// NewMemoryStore is shorthand for tests and the default backend
func NewMemoryStore() Store {
	return New(NewMemoryBackend(), DefaultNamespace)
}

func (s *store) key(key string) string {
	return s.namespace + key
}

func (s *store) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, ok, err := s.backend.Get(ctx, s.key(key))
	if err != nil {
		return false, fmt.Errorf("storage get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	// out is only touched once the whole value decodes
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return false, fmt.Errorf("storage get %s: out must be a non-nil pointer", key)
	}
	tmp := reflect.New(target.Elem().Type())
	if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
		logger.Warn("Discarding undecodable stored value", map[string]interface{}{
			"key":     s.key(key),
			"backend": s.backend.Name(),
			"error":   err.Error(),
		})
		return false, nil
	}
	target.Elem().Set(tmp.Elem())
	return true, nil
}

func (s *store) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, s.key(key), raw); err != nil {
		return fmt.Errorf("storage set %s: %w", key, err)
	}
	return nil
}

func (s *store) Remove(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, s.key(key)); err != nil {
		return fmt.Errorf("storage remove %s: %w", key, err)
	}
	return nil
}

func (s *store) Clear(ctx context.Context) error {
	if err := s.backend.DeletePrefix(ctx, s.namespace); err != nil {
		return fmt.Errorf("storage clear: %w", err)
	}
	logger.Info("Storage namespace cleared", map[string]interface{}{
		"namespace": s.namespace,
		"backend":   s.backend.Name(),
	})
	return nil
}

var ErrUnknownBackend = errors.New("unknown storage backend")

// NewBackend picks the backend named by STORAGE_BACKEND. The postgres and redis
// backends need their connection already established.
func NewBackend(name string, db *gorm.DB, rdb *redis.Client) (Backend, error) {
	switch name {
	case "", "memory":
		return NewMemoryBackend(), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("%w: redis client not initialized", ErrUnknownBackend)
		}
		return NewRedisBackend(rdb), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("%w: database not initialized", ErrUnknownBackend)
		}
		return NewPostgresBackend(db), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
}
