package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/hydair/aqi-dashboard/internal/domain"
	"github.com/hydair/aqi-dashboard/internal/observability"
)

// DatasetLoader loads the canonical dataset.
type DatasetLoader interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}

// Store memoizes the loaded dataset so every request serves the same
// in-memory copy. Source files are read once per process; a failed load
// is not cached and the next caller retries.
type Store struct {
	loader  DatasetLoader
	metrics *observability.Metrics

	mu      sync.RWMutex
	dataset *domain.Dataset
}

// NewStore creates a Store around the given loader.
func NewStore(loader DatasetLoader, metrics *observability.Metrics) *Store {
	return &Store{loader: loader, metrics: metrics}
}

// Dataset returns the cached dataset, loading it on first use. Concurrent
// first callers share a single load.
func (s *Store) Dataset(ctx context.Context) (*domain.Dataset, error) {
	s.mu.RLock()
	ds := s.dataset
	s.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset != nil {
		return s.dataset, nil
	}

	ds, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.dataset = ds
	s.metrics.DatasetReady.Set(1)
	return ds, nil
}

// CheckReadiness returns nil once a dataset is loaded and servable, or an
// error describing why the service is not yet ready.
func (s *Store) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return errors.New("dataset not loaded yet")
	}
	return nil
}
