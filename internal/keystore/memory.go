package keystore

import (
	"context"
	"sync"

	"github.com/bigbadman-lab/onesol/internal/interfaces"
)

// Memory is an in-memory KeyValue for tests and ephemeral runs.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

var _ interfaces.KeyValue = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[key], nil
}

func (s *Memory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
