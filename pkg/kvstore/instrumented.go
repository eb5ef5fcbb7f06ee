package kvstore

import (
	"context"
	"time"
)

// OperationObserver receives the duration of every store operation.
type OperationObserver interface {
	ObserveStoreOperation(operation string, duration time.Duration)
}

// InstrumentedStore decorates a Store with per-operation timing. Observations
// are recorded for failed operations too, so slow error paths stay visible.
type InstrumentedStore struct {
	next     Store
	observer OperationObserver
}

// NewInstrumentedStore wraps next so every Get and Set reports its duration
// to observer.
func NewInstrumentedStore(next Store, observer OperationObserver) *InstrumentedStore {
	return &InstrumentedStore{next: next, observer: observer}
}

// Get delegates to the wrapped store and records the elapsed time.
func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	raw, err := s.next.Get(ctx, key)
	s.observer.ObserveStoreOperation("get", time.Since(start))
	return raw, err
}

// Set delegates to the wrapped store and records the elapsed time.
func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.observer.ObserveStoreOperation("set", time.Since(start))
	return err
}
