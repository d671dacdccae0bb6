package sessionstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/prepmed/prepmed-backend/internal/quiz"
)

// Memory is an in-process quiz.Store. It round-trips state through JSON so
// the engine sees the same serialization behavior the Redis store has,
// which keeps tests honest about what actually survives persistence.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (*quiz.PersistedState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, nil
	}
	var ps quiz.PersistedState
	if err := json.Unmarshal(m.data, &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (m *Memory) Save(_ context.Context, ps *quiz.PersistedState) error {
	data, err := json.Marshal(ps)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}
