package credit

import (
	"context"
	"sync"
)

// MemoryStore 进程内积分存储（开发环境）
type MemoryStore struct {
	mu       sync.Mutex
	balances map[string]int
	events   map[string]struct{}
}

// NewMemoryStore 创建内存积分存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances: make(map[string]int),
		events:   make(map[string]struct{}),
	}
}

func (s *MemoryStore) Balance(ctx context.Context, userID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credits, ok := s.balances[userID]
	return credits, ok, nil
}

func (s *MemoryStore) Ensure(ctx context.Context, userID string, initial int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if credits, ok := s.balances[userID]; ok {
		return credits, nil
	}
	s.balances[userID] = initial
	return initial, nil
}

func (s *MemoryStore) Deduct(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credits := s.balances[userID]
	if credits <= 0 {
		return 0, ErrInsufficientCredits
	}
	s.balances[userID] = credits - 1
	return credits - 1, nil
}

func (s *MemoryStore) Add(ctx context.Context, userID string, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] += amount
	return s.balances[userID], nil
}

func (s *MemoryStore) MarkEvent(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; ok {
		return false, nil
	}
	s.events[eventID] = struct{}{}
	return true, nil
}
