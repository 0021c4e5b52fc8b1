package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

// Store tracks search sessions. A session starts at the first keystroke and ends when the
// user selects a result, abandons the search, or the TTL runs out.
type Store interface {
	Begin(ctx context.Context) (string, error)
	Active(ctx context.Context, token string) (bool, error)
	End(ctx context.Context, token string) error
}

// NewToken returns a fresh UUIDv4 session token.
func NewToken() string {
	return uuid.NewString()
}

// validToken keeps arbitrary caller input out of storage keys.
func validToken(token string) bool {
	_, err := uuid.Parse(token)
	return err == nil
}

type RedisStore struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRedisStore(rc *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rc: rc, ttl: ttl}
}

func (s *RedisStore) key(token string) string {
	return "session:" + token
}

func (s *RedisStore) Begin(ctx context.Context) (string, error) {
	token := NewToken()
	if err := s.rc.Set(ctx, s.key(token), time.Now().Unix(), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Active(ctx context.Context, token string) (bool, error) {
	if !validToken(token) {
		return false, nil
	}
	n, err := s.rc.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) End(ctx context.Context, token string) error {
	if !validToken(token) {
		return ErrInvalidToken
	}
	return s.rc.Del(ctx, s.key(token)).Err()
}

type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *MemoryStore) Begin(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evict()
	token := NewToken()
	s.sessions[token] = s.now().Add(s.ttl)
	return token, nil
}

func (s *MemoryStore) Active(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.sessions[token]
	if !ok {
		return false, nil
	}
	if !s.now().Before(expires) {
		delete(s.sessions, token)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) End(_ context.Context, token string) error {
	if !validToken(token) {
		return ErrInvalidToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// evict drops expired sessions; callers hold mu.
func (s *MemoryStore) evict() {
	now := s.now()
	for token, expires := range s.sessions {
		if !now.Before(expires) {
			delete(s.sessions, token)
		}
	}
}
