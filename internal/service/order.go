package service

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/store"
)

// BinderOrderStore persists the display order of a user's binders as a list of ids.
// It follows the same account-or-device policy as CollectionStore.
type BinderOrderStore struct {
	device  DeviceStore
	account AccountStore
	logger  *slog.Logger
}

// NewBinderOrderStore creates an order store. account may be nil for device-only use.
func NewBinderOrderStore(device DeviceStore, account AccountStore, logger *slog.Logger) *BinderOrderStore {
	return &BinderOrderStore{device: device, account: account, logger: logger}
}

// Load returns the saved order. It never fails; unreadable or corrupt data is an empty order.
func (s *BinderOrderStore) Load(ctx context.Context, userID string) []string {
	if remoteFor(s.account, userID) {
		data, err := s.account.GetAccountDocument(ctx, userID, KindBinderOrder)
		if err == nil {
			return decodeList[string](s.logger, "account binder order", data)
		}
		s.logger.Warn("account store unavailable, using device binder order", "user_id", userID, "error", err)
	}

	data, err := s.device.Get(ctx, store.KeyBinderOrder)
	if err != nil {
		s.logger.Warn("device store unavailable", "error", err)
		return nil
	}
	return decodeList[string](s.logger, "device binder order", data)
}

// Save replaces the saved order, falling back to the device when the account write fails.
func (s *BinderOrderStore) Save(ctx context.Context, userID string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	body, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal binder order: %w", err)
	}

	if remoteFor(s.account, userID) {
		err := s.account.PutAccountDocument(ctx, userID, KindBinderOrder, body)
		if err == nil {
			return nil
		}
		s.logger.Warn("account write failed, saving binder order to device", "user_id", userID, "error", err)
	}

	if err := s.device.Set(ctx, store.KeyBinderOrder, body); err != nil {
		return fmt.Errorf("save binder order: %w", err)
	}
	return nil
}

// Ordered loads the saved order and returns live reconciled against it.
func (s *BinderOrderStore) Ordered(ctx context.Context, userID string, live []*domain.Collection) []*domain.Collection {
	ids := Reconcile(s.Load(ctx, userID), live)

	byID := make(map[string]*domain.Collection, len(live))
	for _, c := range live {
		byID[c.ID] = c
	}
	out := make([]*domain.Collection, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out
}

// Reconcile returns the display order of live given a saved order.
//
// Saved ids that are no longer live, and repeats, are dropped. Live binders missing from
// the saved order are appended by type category (roster binders, single-subject, set,
// custom), then creation time, then id. Reconcile(Reconcile(x, live), live) equals
// Reconcile(x, live).
func Reconcile(saved []string, live []*domain.Collection) []string {
	liveIDs := make(map[string]bool, len(live))
	for _, c := range live {
		liveIDs[c.ID] = true
	}

	out := make([]string, 0, len(live))
	placed := make(map[string]bool, len(live))
	for _, id := range saved {
		if liveIDs[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}

	var missing []*domain.Collection
	for _, c := range live {
		if !placed[c.ID] {
			placed[c.ID] = true
			missing = append(missing, c)
		}
	}
	slices.SortFunc(missing, func(a, b *domain.Collection) int {
		return cmp.Or(
			cmp.Compare(a.Type.Category(), b.Type.Category()),
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})
	for _, c := range missing {
		out = append(out, c.ID)
	}
	return out
}
