// Package mocks provides an in-memory store.Service for tests.
package mocks

import (
	"context"
	"path"
	"sync"

	"github.com/petasbytes/redis-mcp/store"
)

var _ store.Service = (*Service)(nil)

// Service keeps entries in a map. When Err is set, every operation fails
// with a *store.OperationError wrapping it.
type Service struct {
	mu      sync.Mutex
	entries map[string]string
	calls   []string

	Err error
}

// NewService returns an empty in-memory store.
func NewService() *Service {
	return &Service{entries: map[string]string{}}
}

// Calls returns the operation names invoked so far, in order.
func (s *Service) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Service) record(op string) {
	s.calls = append(s.calls, op)
}

func (s *Service) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.OpPut)
	if s.Err != nil {
		return &store.OperationError{Op: store.OpPut, Key: key, Err: s.Err}
	}
	s.entries[key] = value
	return nil
}

func (s *Service) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.OpGet)
	if s.Err != nil {
		return "", false, &store.OperationError{Op: store.OpGet, Key: key, Err: s.Err}
	}
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *Service) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.OpDelete)
	if s.Err != nil {
		return &store.OperationError{Op: store.OpDelete, Key: key, Err: s.Err}
	}
	delete(s.entries, key)
	return nil
}

// ListKeys approximates the store glob with path.Match, which agrees with it
// for '*', '?' and '[...]' on keys without '/'.
func (s *Service) ListKeys(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(store.OpListKeys)
	if pattern == "" {
		pattern = store.DefaultPattern
	}
	if s.Err != nil {
		return nil, &store.OperationError{Op: store.OpListKeys, Key: pattern, Err: s.Err}
	}
	keys := []string{}
	for k := range s.entries {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *Service) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ping")
	return s.Err
}
