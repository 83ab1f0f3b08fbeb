package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/listenupapp/binderkeep/internal/domain"
)

// LocalRemovals returns the slot keys hidden on this device for a collection.
// A missing or unreadable record is an empty set.
func (s *Store) LocalRemovals(ctx context.Context, collectionID string) (domain.LocalRemovalSet, error) {
	keys, err := s.removalKeys(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return domain.NewKeySet(keys...), nil
}

// HideSlot adds slotKey to the collection's hidden set. Hiding twice is a no-op.
func (s *Store) HideSlot(ctx context.Context, collectionID, slotKey string) error {
	keys, err := s.removalKeys(ctx, collectionID)
	if err != nil {
		return err
	}
	if slices.Contains(keys, slotKey) {
		return nil
	}
	return s.setRemovalKeys(ctx, collectionID, append(keys, slotKey))
}

// UnhideSlot removes slotKey from the collection's hidden set.
func (s *Store) UnhideSlot(ctx context.Context, collectionID, slotKey string) error {
	keys, err := s.removalKeys(ctx, collectionID)
	if err != nil {
		return err
	}
	i := slices.Index(keys, slotKey)
	if i < 0 {
		return nil
	}
	return s.setRemovalKeys(ctx, collectionID, slices.Delete(keys, i, i+1))
}

// ClearLocalRemovals forgets every hide for a collection.
func (s *Store) ClearLocalRemovals(ctx context.Context, collectionID string) error {
	return s.Delete(ctx, RemovalsKey(collectionID))
}

func (s *Store) removalKeys(ctx context.Context, collectionID string) ([]string, error) {
	data, err := s.Get(ctx, RemovalsKey(collectionID))
	if err != nil || data == nil {
		return nil, err
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		if s.logger != nil {
			s.logger.Warn("corrupt local removals, treating as empty",
				"collection_id", collectionID, "error", err)
		}
		return nil, nil
	}
	return keys, nil
}

func (s *Store) setRemovalKeys(ctx context.Context, collectionID string, keys []string) error {
	if len(keys) == 0 {
		return s.ClearLocalRemovals(ctx, collectionID)
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal local removals: %w", err)
	}
	return s.Set(ctx, RemovalsKey(collectionID), data)
}
