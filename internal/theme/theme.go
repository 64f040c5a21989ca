// Package theme persists the dark-mode preference.
package theme

import (
	"context"
	"encoding/json"
	"fmt"

	"news-reader/internal/kv"
)

// Load returns the saved dark-mode flag. Absent or unreadable values are false.
func Load(ctx context.Context, store kv.KV) bool {
	data, err := store.Get(ctx, kv.KeyDarkMode)
	if err != nil {
		return false
	}
	var dark bool
	if err := json.Unmarshal(data, &dark); err != nil {
		return false
	}
	return dark
}

// Save stores the dark-mode flag.
func Save(ctx context.Context, store kv.KV, dark bool) error {
	data, _ := json.Marshal(dark)
	if err := store.Set(ctx, kv.KeyDarkMode, data); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// Toggle flips the saved flag and returns the new value.
func Toggle(ctx context.Context, store kv.KV) (bool, error) {
	dark := !Load(ctx, store)
	if err := Save(ctx, store, dark); err != nil {
		return !dark, err
	}
	return dark, nil
}
