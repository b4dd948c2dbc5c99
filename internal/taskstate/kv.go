package taskstate

import (
	"encoding/json"
	"fmt"
	"sync"
)

// KV is the persistence collaborator: a string key-value store.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// MemoryKV is an in-process KV, used when no database is configured.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Encode serializes the table as JSON.
func Encode(t Table) (string, error) {
	if t == nil {
		t = Table{}
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode task state: %w", err)
	}
	return string(data), nil
}

// Decode parses a table produced by Encode.
func Decode(s string) (Table, error) {
	var t Table
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return nil, fmt.Errorf("decode task state: %w", err)
	}
	if t == nil {
		t = Table{}
	}
	for k, tasks := range t {
		if tasks == nil {
			t[k] = []Task{}
		}
	}
	return t, nil
}
