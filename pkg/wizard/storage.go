package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
)

// State is the persisted progress of a single wizard run.
type State struct {
	// Current names the step the user is on.
	Current string `json:"current"`
	// Data holds the cleaned data of every completed step, keyed by step
	// name.
	Data map[string]map[string]any `json:"data"`
}

func newState() *State {
	return &State{Data: make(map[string]map[string]any)}
}

// Storage persists wizard state between requests, keyed by the session id
// issued to the browser.
type Storage interface {
	// Load returns the stored state, or nil when the session has none.
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, state *State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStorage keeps wizard state in process memory. States are stored
// serialized so loaded copies never alias live maps.
type MemoryStorage struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{states: make(map[string][]byte)}
}

func (s *MemoryStorage) Load(_ context.Context, id string) (*State, error) {
	s.mu.RLock()
	raw, ok := s.states[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var state State
	if err := sonic.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("wizard: decode state %q: %w", id, err)
	}
	return &state, nil
}

func (s *MemoryStorage) Save(_ context.Context, id string, state *State) error {
	if state == nil {
		return fmt.Errorf("wizard: state is required")
	}
	raw, err := sonic.Marshal(state)
	if err != nil {
		return fmt.Errorf("wizard: encode state %q: %w", id, err)
	}

	s.mu.Lock()
	s.states[id] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.states, id)
	s.mu.Unlock()
	return nil
}
