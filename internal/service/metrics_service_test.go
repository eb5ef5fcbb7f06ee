package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotAggregatesStoreOperations(t *testing.T) {
	svc := NewMetricsService()

	svc.ObserveStoreOperation("get", 2*time.Millisecond)
	svc.ObserveStoreOperation("set", 4*time.Millisecond)

	snapshot := svc.Snapshot()
	assert.Equal(t, uint64(2), snapshot.StoreOpCount)
	assert.InDelta(t, 3.0, snapshot.AverageStoreOpDurationMs, 0.001)
}

func TestSnapshotCacheHitRatio(t *testing.T) {
	svc := NewMetricsService()

	svc.RecordCacheOperation(true, time.Millisecond)
	svc.RecordCacheOperation(true, time.Millisecond)
	svc.RecordCacheOperation(false, time.Millisecond)

	snapshot := svc.Snapshot()
	assert.Equal(t, uint64(2), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snapshot.CacheHitRatio, 0.001)
}
