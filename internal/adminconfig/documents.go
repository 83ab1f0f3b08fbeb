package adminconfig

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/errors"
	"github.com/listenupapp/binderkeep/internal/slotkey"
)

// derivedKey matches keys the roster derives from species ids ("25", "25-alola").
var derivedKey = regexp.MustCompile(`^[0-9]+(-.*)?$`)

// Baselines returns the baseline document.
func (s *Service) Baselines(ctx context.Context) domain.GlobalSlotOverride {
	return decode[domain.GlobalSlotOverride](s.logger, DocBaselines, s.read(ctx, DocBaselines))
}

// Baseline returns the baseline slots of one binder. The bool is false when the
// binder has no baseline. The returned slots are a copy.
func (s *Service) Baseline(ctx context.Context, binderKey string) ([]domain.Slot, bool) {
	if binderKey == "" {
		return nil, false
	}
	slots, ok := s.Baselines(ctx).Baseline(binderKey)
	if !ok {
		return nil, false
	}
	if slots == nil {
		slots = []domain.Slot{}
	}
	return domain.CloneSlots(slots), true
}

// Exclusions returns the globally hidden cardId|variant keys.
func (s *Service) Exclusions(ctx context.Context) domain.KeySet {
	doc := decode[domain.ExclusionSet](s.logger, DocExclusions, s.read(ctx, DocExclusions))
	return domain.NewKeySet(doc.Keys...)
}

// DefaultCards returns the preview card overrides for unfilled roster slots.
func (s *Service) DefaultCards(ctx context.Context) domain.DefaultCardOverrides {
	doc := decode[domain.DefaultCardOverrides](s.logger, DocDefaultCards, s.read(ctx, DocDefaultCards))
	if doc == nil {
		doc = domain.DefaultCardOverrides{}
	}
	return doc
}

// CustomEntries returns the admin-added roster entries.
func (s *Service) CustomEntries(ctx context.Context) []domain.CustomEntry {
	return decode[domain.CustomRosterEntries](s.logger, DocCustomEntries, s.read(ctx, DocCustomEntries)).Entries
}

// SetBaseline replaces the baseline of one binder.
func (s *Service) SetBaseline(ctx context.Context, actor, binderKey string, slots []domain.Slot) error {
	if err := validateBaseline(binderKey, slots); err != nil {
		return err
	}

	doc, err := fresh[domain.GlobalSlotOverride](ctx, s, DocBaselines)
	if err != nil {
		return err
	}
	if doc.SlotsByKey == nil {
		doc.SlotsByKey = make(map[string][]domain.Slot)
	}
	doc.SlotsByKey[binderKey] = domain.CloneSlots(slots)
	if doc.SlotsByKey[binderKey] == nil {
		doc.SlotsByKey[binderKey] = []domain.Slot{}
	}
	return s.write(ctx, DocBaselines, doc, actor)
}

// ClearBaseline removes the baseline of one binder. Clearing a missing baseline is a no-op.
func (s *Service) ClearBaseline(ctx context.Context, actor, binderKey string) error {
	doc, err := fresh[domain.GlobalSlotOverride](ctx, s, DocBaselines)
	if err != nil {
		return err
	}
	if _, ok := doc.SlotsByKey[binderKey]; !ok {
		return nil
	}
	delete(doc.SlotsByKey, binderKey)
	return s.write(ctx, DocBaselines, doc, actor)
}

// AddExclusion hides a card finish for everyone.
func (s *Service) AddExclusion(ctx context.Context, actor, cardID string, variant domain.Variant) error {
	if cardID == "" {
		return errors.Validation("card id is required")
	}
	if !variant.Valid() {
		return errors.Validationf("unknown variant %q", variant)
	}

	doc, err := fresh[domain.ExclusionSet](ctx, s, DocExclusions)
	if err != nil {
		return err
	}
	key := slotkey.Exclusion(cardID, variant)
	if slices.Contains(doc.Keys, key) {
		return nil
	}
	doc.Keys = append(doc.Keys, key)
	slices.Sort(doc.Keys)
	return s.write(ctx, DocExclusions, doc, actor)
}

// RemoveExclusion restores a card finish. Removing an absent exclusion is a no-op.
func (s *Service) RemoveExclusion(ctx context.Context, actor, cardID string, variant domain.Variant) error {
	doc, err := fresh[domain.ExclusionSet](ctx, s, DocExclusions)
	if err != nil {
		return err
	}
	key := slotkey.Exclusion(cardID, variant)
	i := slices.Index(doc.Keys, key)
	if i < 0 {
		return nil
	}
	doc.Keys = slices.Delete(doc.Keys, i, i+1)
	return s.write(ctx, DocExclusions, doc, actor)
}

// SetDefaultCard sets the preview card of a roster slot. An empty cardID clears it.
func (s *Service) SetDefaultCard(ctx context.Context, actor, slotKey, cardID string) error {
	if slotKey == "" {
		return errors.Validation("slot key is required")
	}

	doc, err := fresh[domain.DefaultCardOverrides](ctx, s, DocDefaultCards)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = domain.DefaultCardOverrides{}
	}
	if cardID == "" {
		if _, ok := doc[slotKey]; !ok {
			return nil
		}
		delete(doc, slotKey)
	} else {
		doc[slotKey] = cardID
	}
	return s.write(ctx, DocDefaultCards, doc, actor)
}

// AddCustomEntry adds an admin roster entry. The key must be unique among custom entries
// and must not look like a derived species key or a user-added key; a card id may back
// at most one entry.
func (s *Service) AddCustomEntry(ctx context.Context, actor string, entry domain.CustomEntry) error {
	if err := s.validator.Validate(entry); err != nil {
		return err
	}
	if derivedKey.MatchString(entry.Key) || slotkey.IsUser(entry.Key) {
		return errors.Validationf("custom entry key %q collides with a derived roster key", entry.Key)
	}

	doc, err := fresh[domain.CustomRosterEntries](ctx, s, DocCustomEntries)
	if err != nil {
		return err
	}
	for _, e := range doc.Entries {
		if e.Key == entry.Key {
			return errors.Validationf("custom entry key %q already exists", entry.Key)
		}
		if entry.CardID != "" && e.CardID == entry.CardID {
			return errors.Validationf("card %q already backs custom entry %q", entry.CardID, e.Key)
		}
	}

	doc.Entries = append(doc.Entries, entry)
	return s.write(ctx, DocCustomEntries, doc, actor)
}

// RemoveCustomEntry deletes an admin roster entry. It reports whether the entry existed.
func (s *Service) RemoveCustomEntry(ctx context.Context, actor, key string) (bool, error) {
	doc, err := fresh[domain.CustomRosterEntries](ctx, s, DocCustomEntries)
	if err != nil {
		return false, err
	}
	i := slices.IndexFunc(doc.Entries, func(e domain.CustomEntry) bool { return e.Key == key })
	if i < 0 {
		return false, nil
	}
	doc.Entries = slices.Delete(doc.Entries, i, i+1)
	return true, s.write(ctx, DocCustomEntries, doc, actor)
}

func validateBaseline(binderKey string, slots []domain.Slot) error {
	namespace, id, ok := strings.Cut(binderKey, ":")
	if !ok || (namespace != "group" && namespace != "subject") || id == "" {
		return errors.Validationf("binder key %q must be group:<id> or subject:<slug>", binderKey)
	}
	if namespace == "subject" && id != slotkey.Slug(id) {
		return errors.Validationf("binder key %q: subject must be the slug %q", binderKey, slotkey.Slug(id))
	}

	seen := make(map[string]bool, len(slots))
	for i, slot := range slots {
		if slot.Key == "" {
			return errors.Validationf("slot %d: key is required", i)
		}
		if seen[slot.Key] {
			return errors.Validationf("slot key %q appears twice", slot.Key)
		}
		seen[slot.Key] = true
		if slot.Card != nil {
			if slot.Card.CardID == "" {
				return errors.Validationf("slot %q: card id is required", slot.Key)
			}
			if !slot.Card.Variant.Valid() {
				return errors.Validationf("slot %q: unknown variant %q", slot.Key, slot.Card.Variant)
			}
		}
	}
	return nil
}
