package match

import (
	"context"
	"sync"
)

type memRepo struct {
	mu      sync.Mutex
	matches map[string]*Match
	users   map[string]string // user -> matchID
}

// NewMemoryRepo 内存版仅供测试，忽略 TTL
func NewMemoryRepo() Repo {
	return &memRepo{
		matches: make(map[string]*Match),
		users:   make(map[string]string),
	}
}

func (r *memRepo) SaveMatch(ctx context.Context, m *Match, ttlSeconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[m.ID] = m
	r.users[m.Challenger] = m.ID
	r.users[m.Opponent] = m.ID
	return nil
}

func (r *memRepo) GetMatch(ctx context.Context, id string) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.matches[id], nil
}

func (r *memRepo) GetUserMatch(ctx context.Context, user string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[user], nil
}

func (r *memRepo) Release(ctx context.Context, matchID string, users []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matches, matchID)
	for _, u := range users {
		delete(r.users, u)
	}
	return nil
}
