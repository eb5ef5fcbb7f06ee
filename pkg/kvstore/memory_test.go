package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrKeyMiss))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()

	original := []byte(`{"a":1}`)
	require.NoError(t, store.Set(context.Background(), "k", original))
	original[0] = 'X'

	got, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)

	got[0] = 'Y'
	again, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), again)
}

func TestGetJSONRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	type doc struct {
		Name string `json:"name"`
	}

	found, err := GetJSON(context.Background(), store, "docs", &[]doc{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(context.Background(), store, "docs", []doc{{Name: "one"}}))

	var docs []doc
	found, err = GetJSON(context.Background(), store, "docs", &docs)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, docs, 1)
	assert.Equal(t, "one", docs[0].Name)
}
