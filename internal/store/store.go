// Package store persists analysis runs.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexshd/synergy"
	"github.com/alexshd/synergy/internal/dataset"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Run is one stored analysis: its input and its result.
type Run struct {
	ID        uuid.UUID       `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Dataset   dataset.Dataset `json:"dataset"`
	Result    synergy.Result  `json:"result"`
}

// CallTimeout bounds a single store call made on behalf of a request.
const CallTimeout = 5 * time.Second

// NewRun stamps a result with a fresh ID.
func NewRun(d dataset.Dataset, res synergy.Result) Run {
	return Run{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Dataset:   d,
		Result:    res,
	}
}

// Store keeps runs. Implementations are safe for concurrent use.
type Store interface {
	Save(ctx context.Context, run Run) error
	Get(ctx context.Context, id uuid.UUID) (Run, error)
	// List returns the most recent runs first, at most limit of them.
	List(ctx context.Context, limit int) ([]Run, error)
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID]Run
	order []uuid.UUID
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[uuid.UUID]Run),
	}
}

func (s *MemoryStore) Save(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; !exists {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]Run, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out, nil
}
