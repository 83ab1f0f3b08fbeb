package store

import (
	"context"
	"strings"
)

// Device store key layout.
const (
	// KeyCollections holds the device copy of the binder list.
	KeyCollections = "collections"
	// KeyBinderOrder holds the device copy of the binder display order.
	KeyBinderOrder = "binder_order"

	prefixMigration = "migration:"
	prefixRemovals  = "removals:"
)

// MigrationKey is the marker recording that the device data was pushed to userID's account.
func MigrationKey(userID string) string {
	return prefixMigration + userID
}

// RemovalsKey holds the slot keys hidden on this device for one collection.
func RemovalsKey(collectionID string) string {
	return prefixRemovals + collectionID
}

// MigratedUsers lists the users whose device binders have been pushed to their account.
func (s *Store) MigratedUsers(ctx context.Context) ([]string, error) {
	keys, err := s.Keys(ctx, prefixMigration)
	if err != nil {
		return nil, err
	}
	users := make([]string, len(keys))
	for i, k := range keys {
		users[i] = strings.TrimPrefix(k, prefixMigration)
	}
	return users, nil
}
