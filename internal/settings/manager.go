package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Manager owns the settings document. Reads return immutable snapshots;
// writes go through Update, which validates, persists and then publishes
// the new snapshot to every subscriber.
type Manager struct {
	path string

	mu      sync.RWMutex
	current Settings
	subs    map[int]chan Settings
	nextID  int
}

// Load reads the settings document at path, falling back to Defaults when
// the file is missing. A document written by an older version is merged
// key-by-key with the defaults so new settings pick up their default value
// instead of resetting the whole file.
func Load(path string, defaults Settings) (*Manager, error) {
	m := &Manager{
		path: path,
		subs: make(map[int]chan Settings),
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		m.current = defaults.normalize()
	case err != nil:
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	default:
		m.current = merge(data, defaults).normalize()
	}

	// Write back so the file always carries the full key set.
	if err := m.persist(m.current); err != nil {
		return nil, err
	}
	return m, nil
}

// merge overlays the stored document on top of the defaults. Keys absent
// from (or unreadable in) the file keep their default value.
func merge(data []byte, defaults Settings) Settings {
	var stored map[string]json.RawMessage
	if err := json.Unmarshal(data, &stored); err != nil {
		return defaults
	}

	defaultJSON, err := json.Marshal(defaults)
	if err != nil {
		return defaults
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(defaultJSON, &merged); err != nil {
		return defaults
	}
	for key, value := range stored {
		merged[key] = value
	}

	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return defaults
	}
	out := defaults
	if err := json.Unmarshal(mergedJSON, &out); err != nil {
		return defaults
	}
	return out
}

// Snapshot returns the current settings value.
func (m *Manager) Snapshot() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Update validates and persists a new snapshot, then notifies subscribers.
func (m *Manager) Update(s Settings) error {
	s = s.normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	if err := m.persist(s); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = s
	subs := make([]chan Settings, 0, len(m.subs))
	for _, ch := range m.subs {
		subs = append(subs, ch)
	}
	m.mu.Unlock()

	for _, ch := range subs {
		// Replace a pending snapshot instead of blocking; a slow
		// subscriber only ever needs the latest value.
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
	return nil
}

// Subscribe registers an observer of settings changes. The returned cancel
// function must be called when the observer stops listening.
func (m *Manager) Subscribe() (<-chan Settings, func()) {
	ch := make(chan Settings, 1)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
	return ch, cancel
}

func (m *Manager) persist(s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
