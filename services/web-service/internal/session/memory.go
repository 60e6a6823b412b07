package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Idle sessions expire after ttl.
type MemoryStore struct {
	ttl  time.Duration
	now  func() time.Time
	mu   sync.Mutex
	data map[string]*memorySession
}

type memorySession struct {
	values    map[string]string
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		data: map[string]*memorySession{},
	}
}

func (s *MemoryStore) Get(_ context.Context, sid, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.live(sid)
	if sess == nil {
		return "", false, nil
	}
	v, ok := sess.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, sid, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.live(sid)
	if sess == nil {
		s.evictExpired()
		sess = &memorySession{values: map[string]string{}}
		s.data[sid] = sess
	}
	sess.values[key] = value
	if s.ttl > 0 {
		sess.expiresAt = s.now().Add(s.ttl)
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(keys) == 0 {
		delete(s.data, sid)
		return nil
	}
	if sess, ok := s.data[sid]; ok {
		for _, k := range keys {
			delete(sess.values, k)
		}
	}
	return nil
}

// live returns the session for sid unless it has expired. Caller holds mu.
func (s *MemoryStore) live(sid string) *memorySession {
	sess, ok := s.data[sid]
	if !ok {
		return nil
	}
	if s.ttl > 0 && s.now().After(sess.expiresAt) {
		delete(s.data, sid)
		return nil
	}
	return sess
}

func (s *MemoryStore) evictExpired() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for sid, sess := range s.data {
		if now.After(sess.expiresAt) {
			delete(s.data, sid)
		}
	}
}
