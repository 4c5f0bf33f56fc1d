package storage

import (
	"bytes"
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Memory is an in-process store that evicts the least recently used key
// once it holds more than its configured number of entries
type Memory struct {
	cache *lru.Cache[string, []byte]
}

// NewMemory creates a memory store holding at most size entries
func NewMemory(size int) (*Memory, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}
	return &Memory{cache: cache}, nil
}

// Get returns a copy of the stored value
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Set stores a copy of value
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.cache.Add(key, bytes.Clone(value))
	return nil
}

// Delete removes key
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.cache.Remove(key)
	return nil
}

// Keys returns keys from oldest to most recently used
func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	return m.cache.Keys(), nil
}

// Close empties the store
func (m *Memory) Close() error {
	m.cache.Purge()
	return nil
}
