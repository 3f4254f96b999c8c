package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/mr-tron/base58"
)

// MemoryStore is a map with an optional JSON snapshot file, written on every commit.
// Good for tests and dry runs, not for real data.
type MemoryStore struct {
	mu       sync.RWMutex
	db       map[string]string
	filename string
}

// NewMemoryStore returns an empty store, or the snapshot in filename when it exists.
func NewMemoryStore(filename string) (*MemoryStore, error) {
	m := &MemoryStore{db: make(map[string]string), filename: filename}
	if filename != "" {
		if err := m.loadFromFile(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *MemoryStore) NewTxn(update bool) Txn {
	return &memTxn{store: m, update: update, pending: make(map[string]*string)}
}

func (m *MemoryStore) Close() error { return nil }

// Len is the number of committed keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.db)
}

// saveToFile writes the full map to the snapshot file. Caller holds the lock.
func (m *MemoryStore) saveToFile() error {
	if m.filename == "" {
		return nil
	}
	// keys are binary, json would mangle them
	snapshot := make(map[string]string, len(m.db))
	for k, v := range m.db {
		snapshot[base58.Encode([]byte(k))] = base58.Encode([]byte(v))
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.filename, data, 0o644)
}

func (m *MemoryStore) loadFromFile() error {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // nothing committed yet
		}
		return err
	}
	var snapshot map[string]string
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	for k, v := range snapshot {
		key, err := decodeSnapshot(k)
		if err != nil {
			return fmt.Errorf("snapshot key %q: %w", k, err)
		}
		value, err := decodeSnapshot(v)
		if err != nil {
			return fmt.Errorf("snapshot value of %q: %w", k, err)
		}
		m.db[string(key)] = string(value)
	}
	return nil
}

// decodeSnapshot is base58.Decode that maps "" back to the empty string.
func decodeSnapshot(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base58.Decode(s)
}

// memTxn buffers writes, a nil value marks a delete.
type memTxn struct {
	store    *MemoryStore
	update   bool
	finished bool
	pending  map[string]*string
}

func (t *memTxn) Get(key string) (string, bool, error) {
	if t.finished {
		return "", false, ErrTxnDone
	}
	if v, ok := t.pending[key]; ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	v, ok := t.store.db[key]
	return v, ok, nil
}

func (t *memTxn) Set(key, value string) error {
	if t.finished {
		return ErrTxnDone
	}
	if !t.update {
		return ErrReadOnly
	}
	t.pending[key] = &value
	return nil
}

func (t *memTxn) Delete(key string) error {
	if t.finished {
		return ErrTxnDone
	}
	if !t.update {
		return ErrReadOnly
	}
	t.pending[key] = nil
	return nil
}

func (t *memTxn) Iterate(prefix string, fn func(key, value string) error) error {
	if t.finished {
		return ErrTxnDone
	}
	merged := make(map[string]string)
	t.store.mu.RLock()
	for k, v := range t.store.db {
		if strings.HasPrefix(k, prefix) {
			merged[k] = v
		}
	}
	t.store.mu.RUnlock()
	for k, v := range t.pending {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if v == nil {
			delete(merged, k)
		} else {
			merged[k] = *v
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(k, merged[k]); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if len(t.pending) == 0 {
		return nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for k, v := range t.pending {
		if v == nil {
			delete(t.store.db, k)
		} else {
			t.store.db[k] = *v
		}
	}
	return t.store.saveToFile()
}

func (t *memTxn) Discard() {
	t.finished = true
	t.pending = nil
}
