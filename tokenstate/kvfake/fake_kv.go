// Package kvfake provides an in-memory tokenstate.KV for tests.
package kvfake

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/msoica/redis-jwt-hash-store-validator/tokenstate"
)

// NowTimeFunc returns the current time. It can be overridden in tests
// to drive expiration.
var NowTimeFunc = time.Now

type entry struct {
	fields    map[string]string
	expiresAt time.Time // zero means no expiration
}

// FakeKV implements tokenstate.KV with a map. Expired entries are
// pruned lazily on access.
type FakeKV struct {
	lock    sync.RWMutex
	entries map[string]*entry
}

var _ tokenstate.KV = (*FakeKV)(nil)

func New() *FakeKV {
	return &FakeKV{entries: make(map[string]*entry)}
}

func (f *FakeKV) WriteFields(_ context.Context, key string, fields map[string]string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	e, ok := f.live(key)
	if !ok {
		e = &entry{fields: make(map[string]string)}
		f.entries[key] = e
	}
	maps.Copy(e.fields, fields)
	return nil
}

func (f *FakeKV) SetExpiration(_ context.Context, key string, ttl time.Duration) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	if e, ok := f.live(key); ok {
		e.expiresAt = NowTimeFunc().Add(ttl)
	}
	return nil
}

func (f *FakeKV) Exists(_ context.Context, key string) (bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	_, ok := f.live(key)
	return ok, nil
}

func (f *FakeKV) Delete(_ context.Context, keys ...string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func (f *FakeKV) ScanKeys(_ context.Context, pattern string) ([]string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	prefix, ok := strings.CutSuffix(pattern, "*")
	keys := make([]string, 0)
	for key := range f.entries {
		if _, alive := f.live(key); !alive {
			continue
		}
		if (ok && strings.HasPrefix(key, prefix)) || key == pattern {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *FakeKV) ReadFields(_ context.Context, key string) (map[string]string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	e, ok := f.live(key)
	if !ok {
		return map[string]string{}, nil
	}
	fields := make(map[string]string, len(e.fields))
	maps.Copy(fields, e.fields)
	return fields, nil
}

// TTL reports the remaining time to live for key. The boolean is false
// when the key does not exist or carries no expiration.
func (f *FakeKV) TTL(key string) (time.Duration, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()

	e, ok := f.live(key)
	if !ok || e.expiresAt.IsZero() {
		return 0, false
	}
	return e.expiresAt.Sub(NowTimeFunc()), true
}

// live returns the entry for key, pruning it first if expired.
// Callers must hold the write lock.
func (f *FakeKV) live(key string) (*entry, bool) {
	e, ok := f.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !NowTimeFunc().Before(e.expiresAt) {
		delete(f.entries, key)
		return nil, false
	}
	return e, true
}
