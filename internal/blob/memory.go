package blob

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory implements Store backed by process memory. Intended for tests and
// the offline CLI.
type Memory struct {
	mu   sync.RWMutex
	objs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{objs: make(map[string][]byte)} }

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) FileExists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objs[key]
	return ok, nil
}

func (m *Memory) DownloadFile(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.objs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("download %s: %w", key, ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) ListFiles(_ context.Context, prefix string, limit int) ([]string, error) {
	m.mu.RLock()
	keys := make([]string, 0, len(m.objs))
	for k := range m.objs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)
	return limitKeys(keys, limit), nil
}

func (m *Memory) UploadFile(_ context.Context, key string, data []byte, _ string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("upload: empty key")
	}
	b := make([]byte, len(data))
	copy(b, data)
	m.mu.Lock()
	m.objs[key] = b
	m.mu.Unlock()
	return nil
}
