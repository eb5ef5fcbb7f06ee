package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

type recordingObserver struct {
	operations []string
}

func (o *recordingObserver) ObserveStoreOperation(operation string, duration time.Duration) {
	o.operations = append(o.operations, operation)
}

func TestInstrumentedStoreObservesOperations(t *testing.T) {
	observer := &recordingObserver{}
	store := NewInstrumentedStore(NewMemoryStore(), observer)

	require.NoError(t, store.Set(context.Background(), "users", []byte(`[]`)))
	raw, err := store.Get(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), raw)

	assert.Equal(t, []string{"set", "get"}, observer.operations)
}

func TestInstrumentedStoreObservesFailures(t *testing.T) {
	observer := &recordingObserver{}
	store := NewInstrumentedStore(NewMemoryStore(), observer)

	_, err := store.Get(context.Background(), "missing")
	require.True(t, appErrors.Is(err, appErrors.ErrKeyMiss))
	assert.Equal(t, []string{"get"}, observer.operations)
}
