package driver

import (
	"context"
	"path"
	"strconv"
	"sync"
	"time"

	"catalog-engine/domain"
)

type memoryEntry struct {
	members   map[string]struct{}
	value     string
	isValue   bool
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemorySetStore is an in-process set store used by tests and as a
// fallback when no Redis backend is configured. Members are stored in
// their textual form, matching the Redis representation. Mutations are
// serialized by a single mutex; expired keys are purged lazily on access.
type MemorySetStore struct {
	mu   sync.Mutex
	data map[string]*memoryEntry
	now  func() time.Time
}

func NewMemorySetStore() *MemorySetStore {
	return &MemorySetStore{
		data: make(map[string]*memoryEntry),
		now:  time.Now,
	}
}

// SetClock overrides the time source, letting tests drive TTL expiry.
func (s *MemorySetStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// live returns the entry at key, purging it first if expired.
func (s *MemorySetStore) live(key string) *memoryEntry {
	entry, ok := s.data[key]
	if !ok {
		return nil
	}
	if entry.expired(s.now()) {
		delete(s.data, key)
		return nil
	}
	return entry
}

func (s *MemorySetStore) addMembers(key string, members []string) {
	entry := s.live(key)
	if entry == nil {
		entry = &memoryEntry{members: make(map[string]struct{})}
		s.data[key] = entry
	}
	for _, m := range members {
		entry.members[m] = struct{}{}
	}
}

func (s *MemorySetStore) AddMembers(_ context.Context, key string, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]string, len(ids))
	for i, id := range ids {
		members[i] = strconv.FormatInt(id, 10)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.addMembers(key, members)
	return nil
}

func (s *MemorySetStore) AddValues(_ context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addMembers(key, values)
	return nil
}

func (s *MemorySetStore) UnionStore(_ context.Context, dest string, ttl time.Duration, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make(map[string]struct{})
	for _, key := range keys {
		if entry := s.live(key); entry != nil {
			for m := range entry.members {
				members[m] = struct{}{}
			}
		}
	}
	s.storeSet(dest, members, ttl)
	return int64(len(members)), nil
}

func (s *MemorySetStore) InterStore(_ context.Context, dest string, ttl time.Duration, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make(map[string]struct{})
	if len(keys) > 0 {
		if first := s.live(keys[0]); first != nil {
			for m := range first.members {
				members[m] = struct{}{}
			}
		}
		for _, key := range keys[1:] {
			entry := s.live(key)
			for m := range members {
				if entry == nil {
					delete(members, m)
					continue
				}
				if _, ok := entry.members[m]; !ok {
					delete(members, m)
				}
			}
		}
	}
	s.storeSet(dest, members, ttl)
	return int64(len(members)), nil
}

func (s *MemorySetStore) storeSet(key string, members map[string]struct{}, ttl time.Duration) {
	if len(members) == 0 {
		delete(s.data, key)
		return
	}
	entry := &memoryEntry{members: members}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.data[key] = entry
}

func (s *MemorySetStore) Cardinality(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry := s.live(key); entry != nil {
		return int64(len(entry.members)), nil
	}
	return 0, nil
}

func (s *MemorySetStore) Members(_ context.Context, key string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(key)
	if entry == nil {
		return []int64{}, nil
	}
	ids := make([]int64, 0, len(entry.members))
	for m := range entry.members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, &domain.StoreError{Op: "Members", Err: "non-integer member " + m + " in " + key}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemorySetStore) Values(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(key)
	if entry == nil {
		return []string{}, nil
	}
	values := make([]string, 0, len(entry.members))
	for m := range entry.members {
		values = append(values, m)
	}
	return values, nil
}

func (s *MemorySetStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(key) != nil, nil
}

func (s *MemorySetStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry := s.live(key); entry != nil {
		entry.expiresAt = s.now().Add(ttl)
	}
	return nil
}

func (s *MemorySetStore) GetValue(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(key)
	if entry == nil || !entry.isValue {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemorySetStore) SetValue(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &memoryEntry{value: value, isValue: true}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.data[key] = entry
	return nil
}

func (s *MemorySetStore) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.data, key)
		}
	}
	return nil
}

// Keys returns the live keys matching the glob pattern. Test helper.
func (s *MemorySetStore) Keys(pattern string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key := range s.data {
		if s.live(key) == nil {
			continue
		}
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
