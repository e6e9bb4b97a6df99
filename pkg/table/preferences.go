package table

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matst80/slask-parts/pkg/common/jsoncompat"
	"github.com/redis/go-redis/v9"
)

const CompareTable = "compare"

type Preferences struct {
	Columns  ColumnPreferences `json:"columns"`
	Compare  CompareList       `json:"compare"`
	PageSize int               `json:"pageSize,omitempty"`
}

func (p *Preferences) Clone() *Preferences {
	return &Preferences{
		Columns:  p.Columns.Clone(),
		Compare:  CompareList{Ids: slices.Clone(p.Compare.Ids)},
		PageSize: p.PageSize,
	}
}

// PreferenceStore persists preferences per session and table. Load returns empty
// preferences for unknown keys.
type PreferenceStore interface {
	Load(ctx context.Context, key string) (*Preferences, error)
	Save(ctx context.Context, key string, prefs *Preferences) error
}

func Key(session, table string) string {
	return session + ":" + table
}

type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]*Preferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prefs: make(map[string]*Preferences),
	}
}

func (m *MemoryStore) Load(_ context.Context, key string) (*Preferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.prefs[key]; ok {
		return p.Clone(), nil
	}
	return &Preferences{}, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, prefs *Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[key] = prefs.Clone()
	return nil
}

type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "prefs:",
		ttl:    ttl,
	}
}

func (r *RedisStore) Load(ctx context.Context, key string) (*Preferences, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Preferences{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load preferences %s: %w", key, err)
	}
	prefs := &Preferences{}
	if err = jsoncompat.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("decode preferences %s: %w", key, err)
	}
	return prefs, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, prefs *Preferences) error {
	data, err := jsoncompat.Marshal(prefs)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, data, r.ttl).Err()
}
