// Package service implements the binder engine: collection persistence with local fallback,
// display ordering, and the effective binder views built from the overlay layers.
package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/listenupapp/binderkeep/internal/domain"
)

// Account document kinds.
const (
	KindCollections = "collections"
	KindBinderOrder = "binder_order"
)

// AccountStore is the remote per-account document store. GetAccountDocument returns nil
// when the account has no document of that kind.
type AccountStore interface {
	GetAccountDocument(ctx context.Context, userID, kind string) ([]byte, error)
	PutAccountDocument(ctx context.Context, userID, kind string, body []byte) error
}

// DeviceStore is the unscoped local store. Get returns nil for absent keys.
type DeviceStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// LocalRemovals stores the per-device slot hides.
type LocalRemovals interface {
	LocalRemovals(ctx context.Context, collectionID string) (domain.LocalRemovalSet, error)
	HideSlot(ctx context.Context, collectionID, slotKey string) error
	UnhideSlot(ctx context.Context, collectionID, slotKey string) error
	ClearLocalRemovals(ctx context.Context, collectionID string) error
}

// AdminConfig serves the shared admin documents. Reads never fail.
type AdminConfig interface {
	Baseline(ctx context.Context, binderKey string) ([]domain.Slot, bool)
	Exclusions(ctx context.Context) domain.KeySet
	DefaultCards(ctx context.Context) domain.DefaultCardOverrides
	CustomEntries(ctx context.Context) []domain.CustomEntry
}

// decodeList unmarshals a persisted JSON list. Corrupt data is logged and treated as absent.
func decodeList[T any](logger *slog.Logger, what string, data []byte) []T {
	if len(data) == 0 {
		return nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Warn("corrupt persisted document, treating as empty", "document", what, "error", err)
		return nil
	}
	return out
}

// remoteFor reports whether userID should be served from the account store.
func remoteFor(account AccountStore, userID string) bool {
	return account != nil && userID != ""
}
