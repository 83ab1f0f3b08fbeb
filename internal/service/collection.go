package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/errors"
	"github.com/listenupapp/binderkeep/internal/id"
	"github.com/listenupapp/binderkeep/internal/slotkey"
	"github.com/listenupapp/binderkeep/internal/store"
)

// CollectionStore persists a user's binders.
//
// With an account store and a signed-in user the account copy is authoritative; the device
// copy serves signed-out use and is the silent fallback whenever the account store fails.
// The first time a signed-in user's account is found empty while the device holds binders,
// the device binders and display order are pushed to the account once.
//
// Every mutation is a whole-list read-modify-write. Concurrent writers lose updates; the
// last write wins.
type CollectionStore struct {
	device   DeviceStore
	account  AccountStore
	snapshot *SnapshotCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewCollectionStore creates a collection store. account may be nil for device-only use.
func NewCollectionStore(device DeviceStore, account AccountStore, snapshot *SnapshotCache, logger *slog.Logger) *CollectionStore {
	if snapshot == nil {
		snapshot = NewSnapshotCache()
	}
	return &CollectionStore{
		device:   device,
		account:  account,
		snapshot: snapshot,
		logger:   logger,
		now:      time.Now,
	}
}

// Snapshot returns the cache of last good loads.
func (s *CollectionStore) Snapshot() *SnapshotCache {
	return s.snapshot
}

// Load returns every binder of userID (signed out when empty). It never fails: when the
// account store cannot be read it degrades to the device copy.
func (s *CollectionStore) Load(ctx context.Context, userID string) []*domain.Collection {
	cols := s.load(ctx, userID)
	s.snapshot.Store(userID, cols)
	return cols
}

func (s *CollectionStore) load(ctx context.Context, userID string) []*domain.Collection {
	if !remoteFor(s.account, userID) {
		return s.loadLocal(ctx)
	}

	data, err := s.account.GetAccountDocument(ctx, userID, KindCollections)
	if err != nil {
		s.logger.Warn("account store unavailable, using device copy",
			"user_id", userID, "error", err)
		return s.loadLocal(ctx)
	}

	remote := decodeList[*domain.Collection](s.logger, "account collections", data)
	if len(remote) > 0 {
		return remote
	}

	migrated, err := s.migrated(ctx, userID)
	if err != nil || migrated {
		return remote
	}

	local := s.loadLocal(ctx)
	if len(local) == 0 {
		return remote
	}
	if err := s.migrate(ctx, userID, local); err != nil {
		s.logger.Warn("migration to account failed, using device copy",
			"user_id", userID, "collections", len(local), "error", err)
	}
	return local
}

func (s *CollectionStore) loadLocal(ctx context.Context) []*domain.Collection {
	data, err := s.device.Get(ctx, store.KeyCollections)
	if err != nil {
		s.logger.Warn("device store unavailable", "error", err)
		return nil
	}
	return decodeList[*domain.Collection](s.logger, "device collections", data)
}

func (s *CollectionStore) migrated(ctx context.Context, userID string) (bool, error) {
	marker, err := s.device.Get(ctx, store.MigrationKey(userID))
	if err != nil {
		s.logger.Warn("read migration marker failed", "user_id", userID, "error", err)
		return false, err
	}
	return marker != nil, nil
}

// migrate pushes the device binders and display order to the account and marks the device
// migrated. The device copy is kept as a stale shadow.
func (s *CollectionStore) migrate(ctx context.Context, userID string, local []*domain.Collection) error {
	body, err := json.Marshal(local)
	if err != nil {
		return fmt.Errorf("marshal collections: %w", err)
	}
	if err := s.account.PutAccountDocument(ctx, userID, KindCollections, body); err != nil {
		return fmt.Errorf("push collections: %w", err)
	}

	order, err := s.device.Get(ctx, store.KeyBinderOrder)
	if err == nil && order != nil {
		if err := s.account.PutAccountDocument(ctx, userID, KindBinderOrder, order); err != nil {
			return fmt.Errorf("push binder order: %w", err)
		}
	}

	if err := s.device.Set(ctx, store.MigrationKey(userID), []byte(formatMarker(s.now()))); err != nil {
		return fmt.Errorf("mark migrated: %w", err)
	}

	s.logger.Info("migrated device binders to account",
		"user_id", userID, "collections", len(local), "order", order != nil)
	return nil
}

func formatMarker(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Save replaces every binder of userID. When the account write fails the list is kept on
// the device instead; an error is returned only if nothing could be written.
func (s *CollectionStore) Save(ctx context.Context, userID string, all []*domain.Collection) error {
	if all == nil {
		all = []*domain.Collection{}
	}
	body, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("marshal collections: %w", err)
	}

	if remoteFor(s.account, userID) {
		err := s.account.PutAccountDocument(ctx, userID, KindCollections, body)
		if err == nil {
			s.snapshot.Store(userID, all)
			return nil
		}
		s.logger.Warn("account write failed, saving to device", "user_id", userID, "error", err)
	}

	if err := s.device.Set(ctx, store.KeyCollections, body); err != nil {
		return fmt.Errorf("save collections: %w", err)
	}
	s.snapshot.Store(userID, all)
	return nil
}

// Create adds an empty binder.
func (s *CollectionStore) Create(ctx context.Context, userID string, t domain.CollectionType, name string, cfg domain.CollectionConfig) (*domain.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("binder name is required")
	}
	if !t.Valid() {
		return nil, errors.Validationf("unknown binder type %q", t)
	}
	if t == domain.TypeSet && cfg.TargetGroupID == "" {
		return nil, errors.Validation("set binders need a target group id")
	}

	collectionID, err := id.Generate("binder")
	if err != nil {
		return nil, fmt.Errorf("generate binder ID: %w", err)
	}

	now := s.now()
	c := &domain.Collection{
		ID:        collectionID,
		Name:      name,
		Type:      t,
		Config:    cfg,
		Slots:     []domain.Slot{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	all := s.Load(ctx, userID)
	if err := s.Save(ctx, userID, append(all, c)); err != nil {
		return nil, err
	}

	s.logger.Info("binder created",
		"collection_id", c.ID,
		"user_id", userID,
		"type", t,
		"name", name,
	)
	return c.Clone(), nil
}

// Patch holds the binder fields Update may change. Nil fields are left as is.
type Patch struct {
	Name      *string
	Config    *domain.CollectionConfig
	UserCards map[string]domain.UserCard
}

// Update applies patch to a binder. It returns nil, nil when the binder does not exist.
func (s *CollectionStore) Update(ctx context.Context, userID, collectionID string, patch Patch) (*domain.Collection, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, errors.Validation("binder name is required")
	}

	return s.mutate(ctx, userID, collectionID, func(c *domain.Collection) error {
		if patch.Name != nil {
			c.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Config != nil {
			c.Config = *patch.Config
		}
		if patch.UserCards != nil {
			if c.UserCards == nil {
				c.UserCards = make(map[string]domain.UserCard, len(patch.UserCards))
			}
			for cardID, meta := range patch.UserCards {
				c.UserCards[cardID] = meta
			}
		}
		return nil
	})
}

// Delete removes a binder. It reports false when the binder does not exist.
func (s *CollectionStore) Delete(ctx context.Context, userID, collectionID string) (bool, error) {
	all := s.Load(ctx, userID)
	i := slices.IndexFunc(all, func(c *domain.Collection) bool { return c.ID == collectionID })
	if i < 0 {
		return false, nil
	}

	if err := s.Save(ctx, userID, slices.Delete(all, i, i+1)); err != nil {
		return false, err
	}
	s.logger.Info("binder deleted", "collection_id", collectionID, "user_id", userID)
	return true, nil
}

// Get returns one binder, or nil when it does not exist.
func (s *CollectionStore) Get(ctx context.Context, userID, collectionID string) *domain.Collection {
	for _, c := range s.Load(ctx, userID) {
		if c.ID == collectionID {
			return c
		}
	}
	return nil
}

// SetSlot assigns card to the slot key of a binder, or empties it when card is nil.
// The slot is created when missing. A single-subject key replaces its legacy unqualified
// slot if only that exists. It returns nil, nil when the binder does not exist.
func (s *CollectionStore) SetSlot(ctx context.Context, userID, collectionID, key string, card *domain.SlotCard) (*domain.Collection, error) {
	if err := validateSlot(key, card); err != nil {
		return nil, err
	}
	if card != nil {
		cp := *card
		card = &cp
	}

	return s.mutate(ctx, userID, collectionID, func(c *domain.Collection) error {
		putSlot(c, key, card)
		return nil
	})
}

// SetUserSlot assigns card to a user-added slot and records the card's metadata in one write.
func (s *CollectionStore) SetUserSlot(ctx context.Context, userID, collectionID, key string, card domain.SlotCard, meta domain.UserCard) (*domain.Collection, error) {
	if err := validateSlot(key, &card); err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, collectionID, func(c *domain.Collection) error {
		if c.UserCards == nil {
			c.UserCards = make(map[string]domain.UserCard, 1)
		}
		c.UserCards[card.CardID] = meta
		putSlot(c, key, &card)
		return nil
	})
}

func validateSlot(key string, card *domain.SlotCard) error {
	if key == "" || strings.ContainsAny(key, " \t\n") {
		return errors.Validationf("invalid slot key %q", key)
	}
	if card == nil {
		return nil
	}
	if card.CardID == "" {
		return errors.Validation("card id is required")
	}
	if !card.Variant.Valid() {
		return errors.Validationf("unknown variant %q", card.Variant)
	}
	return nil
}

// putSlot replaces the slot stored under key, or its legacy unqualified form, or appends it.
func putSlot(c *domain.Collection, key string, card *domain.SlotCard) {
	for _, candidate := range slotkey.Candidates(key) {
		if idx := c.SlotIndex(candidate); idx >= 0 {
			c.Slots[idx] = domain.Slot{Key: key, Card: card}
			return
		}
	}
	c.Slots = append(c.Slots, domain.Slot{Key: key, Card: card})
}

// mutate loads, applies fn to the binder and saves the whole list.
func (s *CollectionStore) mutate(ctx context.Context, userID, collectionID string, fn func(*domain.Collection) error) (*domain.Collection, error) {
	all := s.Load(ctx, userID)
	i := slices.IndexFunc(all, func(c *domain.Collection) bool { return c.ID == collectionID })
	if i < 0 {
		return nil, nil
	}

	c := all[i]
	if err := fn(c); err != nil {
		return nil, err
	}
	c.Touch(s.now())

	if err := s.Save(ctx, userID, all); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// GetSlot returns the slot of c stored under key. Single-subject keys fall back to the
// legacy unqualified key.
func GetSlot(c *domain.Collection, key string) (domain.Slot, bool) {
	if c == nil {
		return domain.Slot{}, false
	}
	for _, candidate := range slotkey.Candidates(key) {
		if i := c.SlotIndex(candidate); i >= 0 {
			return c.Slots[i].Clone(), true
		}
	}
	return domain.Slot{}, false
}

// GetSlotCard returns the card assigned to key, or nil.
func GetSlotCard(c *domain.Collection, key string) *domain.SlotCard {
	slot, ok := GetSlot(c, key)
	if !ok {
		return nil
	}
	return slot.Card
}
