package ledger

import (
	"context"
	"sync"
)

type memRepo struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewMemoryRepo 内存版仅供测试
func NewMemoryRepo() Repo {
	return &memRepo{balances: make(map[string]int64)}
}

func (m *memRepo) GetBalance(ctx context.Context, id string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bal, ok := m.balances[id]
	return bal, ok, nil
}

func (m *memRepo) SetBalance(ctx context.Context, id string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[id] = amount
	return nil
}

func (m *memRepo) InsertIfAbsent(ctx context.Context, id string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[id]; !ok {
		m.balances[id] = amount
	}
	return nil
}

func (m *memRepo) Transfer(ctx context.Context, from, to string, amount int64) (int64, int64, error) {
	// 整个读改写都在同一把锁内
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[from] -= amount
	m.balances[to] += amount
	return m.balances[from], m.balances[to], nil
}
