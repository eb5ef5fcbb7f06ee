package kvstore

import (
	"context"
	"encoding/json"
	"fmt"

	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
)

// Store is the persistence boundary for every collection in the system.
// Collections live as whole JSON documents under fixed logical keys; an
// absent key means an empty collection. Backends must return ErrKeyMiss
// for absent keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// GetJSON loads and unmarshals the collection stored under key into dest.
// A missing key leaves dest untouched and returns false.
func GetJSON(ctx context.Context, store Store, key string, dest interface{}) (bool, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrKeyMiss) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SetJSON marshals value and stores it under key.
func SetJSON(ctx context.Context, store Store, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}
