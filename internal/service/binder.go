package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/listenupapp/binderkeep/internal/catalog"
	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/errors"
	"github.com/listenupapp/binderkeep/internal/overlay"
	"github.com/listenupapp/binderkeep/internal/roster"
	"github.com/listenupapp/binderkeep/internal/slotkey"
	"github.com/listenupapp/binderkeep/internal/species"
	"github.com/listenupapp/binderkeep/internal/variant"
)

// BinderConfig configures a BinderService.
type BinderConfig struct {
	// ReferenceLanguage is used for catalog lookups when a card carries no language.
	ReferenceLanguage string
}

// BinderService builds effective binder views and applies user actions to binders.
type BinderService struct {
	collections *CollectionStore
	order       *BinderOrderStore
	removals    LocalRemovals
	admin       AdminConfig
	catalog     catalog.Provider
	species     species.Provider
	roster      *roster.Engine
	cfg         BinderConfig
	logger      *slog.Logger
	now         func() time.Time

	baseMu sync.Mutex
	base   []domain.Species

	namesMu sync.Mutex
	names   map[string]string
}

// NewBinderService wires a binder service.
func NewBinderService(
	collections *CollectionStore,
	order *BinderOrderStore,
	removals LocalRemovals,
	admin AdminConfig,
	catalogProvider catalog.Provider,
	speciesProvider species.Provider,
	engine *roster.Engine,
	cfg BinderConfig,
	logger *slog.Logger,
) *BinderService {
	if cfg.ReferenceLanguage == "" {
		cfg.ReferenceLanguage = "en"
	}
	return &BinderService{
		collections: collections,
		order:       order,
		removals:    removals,
		admin:       admin,
		catalog:     catalogProvider,
		species:     speciesProvider,
		roster:      engine,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		names:       make(map[string]string),
	}
}

// ViewSlot is one slot of a rendered binder.
type ViewSlot struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
	// Card is the effective assignment after hides and exclusions.
	Card *domain.SlotCard `json:"card"`
	// DisplayVariant is the finish to render for Card. It differs from Card.Variant
	// when the stored finish is no longer valid for the printing.
	DisplayVariant domain.Variant `json:"displayVariant,omitempty"`
	// Hidden reports a slot emptied by a local removal on this device.
	Hidden        bool   `json:"hidden,omitempty"`
	PreviewCardID string `json:"previewCardId,omitempty"`
}

// BinderView is the effective state of one binder.
type BinderView struct {
	Collection *domain.Collection `json:"collection"`
	Slots      []ViewSlot         `json:"slots"`
	Count      overlay.Count      `json:"count"`
}

// Binders returns the user's binders in display order.
func (s *BinderService) Binders(ctx context.Context, userID string) []*domain.Collection {
	return s.order.Ordered(ctx, userID, s.collections.Load(ctx, userID))
}

// Reorder saves a new display order.
func (s *BinderService) Reorder(ctx context.Context, userID string, ids []string) error {
	live := s.collections.Load(ctx, userID)
	return s.order.Save(ctx, userID, Reconcile(ids, live))
}

// View resolves the effective view of a binder.
func (s *BinderService) View(ctx context.Context, userID, collectionID string) (*BinderView, error) {
	c := s.collections.Get(ctx, userID, collectionID)
	if c == nil {
		return nil, errors.NotFoundf("binder %s not found", collectionID)
	}

	in, names, entries := s.overlayInput(ctx, c)
	removals := in.LocalRemovals
	slots := overlay.Resolve(in)

	var defaults domain.DefaultCardOverrides
	if c.Type.IsRoster() {
		defaults = s.admin.DefaultCards(ctx)
		s.localizeNames(ctx, s.language(c), names, entries)
	}

	variants := newVariantMemo(s, c)
	view := &BinderView{
		Collection: c,
		Slots:      make([]ViewSlot, len(slots)),
		Count:      overlay.CountSlots(slots),
	}
	for i, slot := range slots {
		vs := ViewSlot{
			Key:    slot.Key,
			Name:   names[slot.Key],
			Card:   slot.Card,
			Hidden: removals.Has(slot.Key),
		}
		if slot.Card != nil {
			vs.DisplayVariant = variants.display(ctx, *slot.Card)
		}
		if entry, ok := entries[slot.Key]; ok {
			vs.PreviewCardID = overlay.PreviewCardID(slot, entry, defaults)
		}
		view.Slots[i] = vs
	}
	return view, nil
}

// overlayInput gathers the layers of c. For roster binders it also returns the display name
// and roster entry of every slot key.
func (s *BinderService) overlayInput(ctx context.Context, c *domain.Collection) (overlay.Input, map[string]string, map[string]domain.RosterEntry) {
	in := overlay.Input{
		Own:           c.Slots,
		LocalRemovals: s.localRemovals(ctx, c.ID),
		Exclusions:    s.admin.Exclusions(ctx),
	}

	switch {
	case c.Type.IsRoster():
		res := s.expand(ctx, c)
		in.Own = make([]domain.Slot, len(res.Entries))
		names := make(map[string]string, len(res.Entries))
		entries := make(map[string]domain.RosterEntry, len(res.Entries))
		for i, entry := range res.Entries {
			key := slotkey.Roster(entry)
			slot, _ := GetSlot(c, key)
			slot.Key = key
			in.Own[i] = slot
			names[key] = entry.DisplayName()
			entries[key] = entry
		}
		return in, names, entries

	case c.Type.HasBaseline():
		if baseline, ok := s.admin.Baseline(ctx, slotkey.Binder(c)); ok {
			in.Baseline = baseline
		}
	}
	return in, nil, nil
}

// expand builds the roster of a roster binder.
func (s *BinderService) expand(ctx context.Context, c *domain.Collection) roster.Result {
	opts, conflict := roster.ResolveOptions(c.Config)
	if conflict {
		s.logger.Warn("binder has conflicting variation family toggles, enabling both",
			"collection_id", c.ID)
	}

	res := s.roster.Expand(s.baseRoster(ctx), opts, s.admin.CustomEntries(ctx), roster.UserEntriesFromSlots(c))
	if len(res.Duplicates) > 0 {
		s.logger.Warn("duplicate roster keys dropped", "collection_id", c.ID, "keys", res.Duplicates)
	}
	return res
}

// baseRoster returns the species roster, fetched once per service. When the species
// provider is unreachable an empty roster is used and the fetch is retried next time.
func (s *BinderService) baseRoster(ctx context.Context) []domain.Species {
	s.baseMu.Lock()
	defer s.baseMu.Unlock()
	if s.base != nil {
		return s.base
	}

	base, err := s.species.BaseRoster(ctx)
	if err != nil {
		s.logger.Warn("species provider unavailable, roster limited to custom and user entries", "error", err)
		return nil
	}
	s.base = base
	return base
}

// language is the catalog language of a binder.
func (s *BinderService) language(c *domain.Collection) string {
	if len(c.Config.Languages) > 0 && c.Config.Languages[0] != "" {
		return c.Config.Languages[0]
	}
	return s.cfg.ReferenceLanguage
}

// localizeNames replaces the names of base species with their names in lang. Names the
// species provider cannot supply keep the reference name.
func (s *BinderService) localizeNames(ctx context.Context, lang string, names map[string]string, entries map[string]domain.RosterEntry) {
	if slotkey.NormalizeLanguage(lang) == slotkey.NormalizeLanguage(s.cfg.ReferenceLanguage) {
		return
	}
	for key, entry := range entries {
		sp, ok := entry.(domain.SpeciesEntry)
		if !ok || sp.Form != "" {
			continue
		}
		name, err := s.localizedName(ctx, sp.DexID, lang)
		if err != nil {
			s.logger.Debug("localized names unavailable", "language", lang, "error", err)
			return
		}
		if name != "" {
			names[key] = name
		}
	}
}

// localizedName memoizes species.LocalizedName. Failures are not memoized.
func (s *BinderService) localizedName(ctx context.Context, dexID int, lang string) (string, error) {
	memoKey := slotkey.NormalizeLanguage(lang) + "/" + strconv.Itoa(dexID)

	s.namesMu.Lock()
	name, ok := s.names[memoKey]
	s.namesMu.Unlock()
	if ok {
		return name, nil
	}

	name, err := s.species.LocalizedName(ctx, dexID, lang)
	if err != nil {
		return "", err
	}

	s.namesMu.Lock()
	s.names[memoKey] = name
	s.namesMu.Unlock()
	return name, nil
}

func (s *BinderService) localRemovals(ctx context.Context, collectionID string) domain.LocalRemovalSet {
	set, err := s.removals.LocalRemovals(ctx, collectionID)
	if err != nil {
		s.logger.Warn("local removals unavailable", "collection_id", collectionID, "error", err)
		return nil
	}
	return set
}

// Collect assigns a card to a slot after checking the finish is valid for the printing
// and the binder's edition filter. For binders keyed by card, an empty key is derived
// from the card; a non-empty key must match it.
func (s *BinderService) Collect(ctx context.Context, userID, collectionID, key string, card domain.SlotCard) (*domain.Collection, error) {
	c := s.collections.Get(ctx, userID, collectionID)
	if c == nil {
		return nil, errors.NotFoundf("binder %s not found", collectionID)
	}
	if card.Language == "" && c.Type == domain.TypeSingleSubject {
		card.Language = s.language(c)
	}

	if derived := slotkey.ForCard(c.Type, card); derived != "" {
		switch key {
		case "":
			key = derived
		case derived:
		default:
			return nil, errors.Validationf("slot %q cannot hold %s", key, slotkey.Printing(card.CardID, card.Variant))
		}
	}
	if key == "" {
		return nil, errors.Validation("slot key is required")
	}
	if err := s.checkWritable(ctx, c, key); err != nil {
		return nil, err
	}
	if c.Type.IsRoster() && !slotkey.IsUser(key) {
		if _, ok := s.rosterEntry(ctx, c, key); !ok {
			return nil, errors.Validationf("slot %q is not in binder %s", key, collectionID)
		}
	}

	if _, isUserCard := c.UserCards[card.CardID]; !isUserCard {
		printing, in, err := s.lookup(ctx, card)
		if err != nil {
			return nil, err
		}
		if c.Type == domain.TypeSet && printing.GroupID != c.Config.TargetGroupID {
			return nil, errors.Validationf("card %s is not part of group %s", card.CardID, c.Config.TargetGroupID)
		}
		valid := variant.ValidVariants(in, c.Config.Edition())
		if !slices.Contains(valid, card.Variant) {
			return nil, errors.ValidationWithDetails(
				fmt.Sprintf("finish %q is not available for %s", card.Variant, card.CardID),
				map[string]any{"valid": valid},
			)
		}
	}

	updated, err := s.collections.SetSlot(ctx, userID, collectionID, key, &card)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NotFoundf("binder %s not found", collectionID)
	}
	return updated, nil
}

// SearchSlot searches the catalog for printings that fit a roster slot, in the binder's
// language with the reference-language fallback.
func (s *BinderService) SearchSlot(ctx context.Context, userID, collectionID, key string) ([]domain.PrintingBrief, error) {
	c := s.collections.Get(ctx, userID, collectionID)
	if c == nil {
		return nil, errors.NotFoundf("binder %s not found", collectionID)
	}
	if !c.Type.IsRoster() {
		return nil, errors.Validationf("binder type %s has no roster", c.Type)
	}

	entry, ok := s.rosterEntry(ctx, c, key)
	if !ok {
		return nil, errors.NotFoundf("slot %s not in binder %s", key, collectionID)
	}
	return catalog.LocalizedSearch(ctx, s.catalog, s.language(c), s.cfg.ReferenceLanguage, roster.SearchName(entry))
}

// rosterEntry finds the entry of a roster binder stored under key.
func (s *BinderService) rosterEntry(ctx context.Context, c *domain.Collection, key string) (domain.RosterEntry, bool) {
	for _, entry := range s.expand(ctx, c).Entries {
		if slotkey.Roster(entry) == key {
			return entry, true
		}
	}
	return nil, false
}

// checkWritable rejects writes to slots that a shared baseline supplies. Such binders
// render only the baseline and user-added slots, so a personal assignment would never show.
func (s *BinderService) checkWritable(ctx context.Context, c *domain.Collection, key string) error {
	if !c.Type.HasBaseline() || slotkey.IsUser(key) {
		return nil
	}
	if _, ok := s.admin.Baseline(ctx, slotkey.Binder(c)); ok {
		return errors.Validationf("slot %q follows the shared baseline of %s and can only be hidden", key, slotkey.Binder(c))
	}
	return nil
}

// Uncollect empties a slot. The slot stays addressable.
func (s *BinderService) Uncollect(ctx context.Context, userID, collectionID, key string) (*domain.Collection, error) {
	c := s.collections.Get(ctx, userID, collectionID)
	if c == nil {
		return nil, errors.NotFoundf("binder %s not found", collectionID)
	}
	if err := s.checkWritable(ctx, c, key); err != nil {
		return nil, err
	}

	updated, err := s.collections.SetSlot(ctx, userID, collectionID, key, nil)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NotFoundf("binder %s not found", collectionID)
	}
	return updated, nil
}

// AddUserEntry adds a user-defined roster entry holding a card the catalog does not know.
// It returns the updated binder and the new slot key.
func (s *BinderService) AddUserEntry(ctx context.Context, userID, collectionID string, card domain.SlotCard, meta domain.UserCard) (*domain.Collection, string, error) {
	if meta.Name == "" {
		return nil, "", errors.Validation("entry name is required")
	}
	if card.CardID == "" {
		return nil, "", errors.Validation("card id is required")
	}
	if card.Variant == "" {
		card.Variant = domain.VariantNormal
	}

	c := s.collections.Get(ctx, userID, collectionID)
	if c == nil {
		return nil, "", errors.NotFoundf("binder %s not found", collectionID)
	}
	if !c.Type.IsRoster() {
		return nil, "", errors.Validationf("binder type %s has no roster", c.Type)
	}

	key, err := slotkey.NewUser(s.now())
	if err != nil {
		return nil, "", fmt.Errorf("generate user key: %w", err)
	}

	updated, err := s.collections.SetUserSlot(ctx, userID, collectionID, key, card, meta)
	if err != nil {
		return nil, "", err
	}
	if updated == nil {
		return nil, "", errors.NotFoundf("binder %s not found", collectionID)
	}
	return updated, key, nil
}

// Delete removes a binder and forgets its local hides.
func (s *BinderService) Delete(ctx context.Context, userID, collectionID string) (bool, error) {
	deleted, err := s.collections.Delete(ctx, userID, collectionID)
	if err != nil || !deleted {
		return deleted, err
	}
	if err := s.removals.ClearLocalRemovals(ctx, collectionID); err != nil {
		s.logger.Warn("clear local removals failed", "collection_id", collectionID, "error", err)
	}
	return true, nil
}

// Hide empties a slot on this device only. The stored assignment is untouched.
func (s *BinderService) Hide(ctx context.Context, collectionID, key string) error {
	return s.removals.HideSlot(ctx, collectionID, key)
}

// Unhide restores a slot hidden on this device.
func (s *BinderService) Unhide(ctx context.Context, collectionID, key string) error {
	return s.removals.UnhideSlot(ctx, collectionID, key)
}

// ClearHidden restores every slot of a binder hidden on this device.
func (s *BinderService) ClearHidden(ctx context.Context, collectionID string) error {
	return s.removals.ClearLocalRemovals(ctx, collectionID)
}

// BinderProgress is the filled/total tally of one binder.
type BinderProgress struct {
	CollectionID string        `json:"collectionId"`
	Name         string        `json:"name"`
	Count        overlay.Count `json:"count"`
}

// Progress tallies every binder of the user in display order. It returns ctx.Err() as
// soon as the caller abandons the scan.
func (s *BinderService) Progress(ctx context.Context, userID string) ([]BinderProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	binders := s.Binders(ctx, userID)

	inputs := make([]overlay.Input, 0, len(binders))
	for _, c := range binders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in, _, _ := s.overlayInput(ctx, c)
		inputs = append(inputs, in)
	}

	counts, err := overlay.Progress(ctx, inputs)
	if err != nil {
		return nil, err
	}

	out := make([]BinderProgress, len(binders))
	for i, c := range binders {
		out[i] = BinderProgress{CollectionID: c.ID, Name: c.Name, Count: counts[i]}
	}
	return out, nil
}

// lookup fetches the printing of card and its group. A missing group only loses the
// group-level corrections.
func (s *BinderService) lookup(ctx context.Context, card domain.SlotCard) (*domain.Printing, variant.Input, error) {
	lang := card.Language
	if lang == "" {
		lang = s.cfg.ReferenceLanguage
	}

	printing, err := s.catalog.GetPrinting(ctx, lang, card.CardID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, variant.Input{}, errors.Validationf("card %s not found in the catalog", card.CardID)
	}
	if err != nil {
		return nil, variant.Input{}, fmt.Errorf("look up card %s: %w", card.CardID, err)
	}

	var group *domain.Group
	if printing.GroupID != "" {
		group, err = s.catalog.GetGroup(ctx, lang, printing.GroupID)
		if err != nil {
			s.logger.Debug("group lookup failed, using printing data only",
				"group_id", printing.GroupID, "error", err)
			group = nil
		}
	}
	return printing, variant.InputFor(printing, group), nil
}

// variantMemo computes display finishes for one view, looking each printing up once.
type variantMemo struct {
	svc   *BinderService
	c     *domain.Collection
	valid map[string][]domain.Variant
}

func newVariantMemo(svc *BinderService, c *domain.Collection) *variantMemo {
	return &variantMemo{svc: svc, c: c, valid: make(map[string][]domain.Variant)}
}

// display returns the finish to render for card, checked against the printing's live
// finishes. Cards the catalog cannot describe render as stored.
func (m *variantMemo) display(ctx context.Context, card domain.SlotCard) domain.Variant {
	if _, isUserCard := m.c.UserCards[card.CardID]; isUserCard {
		return card.Variant
	}

	memoKey := card.Language + "/" + card.CardID
	valid, ok := m.valid[memoKey]
	if !ok {
		if _, in, err := m.svc.lookup(ctx, card); err == nil {
			valid = variant.DisplayVariants(in)
		}
		m.valid[memoKey] = valid
	}
	if valid == nil {
		return card.Variant
	}
	return variant.DisplayVariant(card.Variant, valid)
}
