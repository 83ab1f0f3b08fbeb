// Package overlay composes the effective view of a binder from its independently scoped
// state sources: the admin baseline, the user's own slots, per-device hides and global exclusions.
//
// Every function here is pure. Inputs are never mutated and the result shares no
// card pointers with them.
package overlay

import (
	"context"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/slotkey"
)

// Input is the pre-fetched state a binder view is resolved from.
type Input struct {
	// Baseline is the admin baseline for the binder. Nil means no baseline exists;
	// an empty non-nil slice is a baseline with no slots.
	Baseline []domain.Slot
	// Own is the collection's stored slots.
	Own []domain.Slot
	// LocalRemovals holds the slot keys hidden on this device.
	LocalRemovals domain.LocalRemovalSet
	// Exclusions holds the globally hidden cardId|variant pairs.
	Exclusions domain.KeySet
}

// Resolve returns the effective slots.
//
// With a baseline present the effective list is the baseline followed by the
// user-added slots of Own; otherwise it is Own. Locally removed slots and slots
// holding an excluded card stay in the list with their card cleared.
func Resolve(in Input) []domain.Slot {
	var source []domain.Slot
	if in.Baseline != nil {
		source = make([]domain.Slot, 0, len(in.Baseline)+len(in.Own))
		source = append(source, in.Baseline...)
		for _, s := range in.Own {
			if slotkey.IsUser(s.Key) {
				source = append(source, s)
			}
		}
	} else {
		source = in.Own
	}

	out := make([]domain.Slot, len(source))
	for i, s := range source {
		out[i] = resolveSlot(s, in.LocalRemovals, in.Exclusions)
	}
	return out
}

func resolveSlot(s domain.Slot, removals, exclusions domain.KeySet) domain.Slot {
	if removals.Has(s.Key) {
		return domain.Slot{Key: s.Key}
	}
	if s.Card != nil && exclusions.Has(slotkey.Exclusion(s.Card.CardID, s.Card.Variant)) {
		return domain.Slot{Key: s.Key}
	}
	return s.Clone()
}

// Count is a filled/total tally of effective slots.
type Count struct {
	Filled int `json:"filled"`
	Total  int `json:"total"`
}

// Add accumulates other into c.
func (c *Count) Add(other Count) {
	c.Filled += other.Filled
	c.Total += other.Total
}

// Percent returns the filled share in [0, 100]. An empty binder is 0%.
func (c Count) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Filled) * 100 / float64(c.Total)
}

// CountSlots tallies resolved slots.
func CountSlots(slots []domain.Slot) Count {
	c := Count{Total: len(slots)}
	for _, s := range slots {
		if s.Card != nil {
			c.Filled++
		}
	}
	return c
}

// Progress tallies each input in order. It stops and returns ctx.Err() as soon as
// the caller abandons the scan; the partial tallies are discarded.
func Progress(ctx context.Context, inputs []Input) ([]Count, error) {
	out := make([]Count, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, CountSlots(Resolve(in)))
	}
	return out, nil
}

// PreviewCardID picks the card whose image represents a roster slot.
// A filled slot shows its own card; an empty one uses the admin default when set,
// then the entry's own card id if it carries one.
func PreviewCardID(slot domain.Slot, entry domain.RosterEntry, defaults domain.DefaultCardOverrides) string {
	if slot.Card != nil {
		return slot.Card.CardID
	}
	if id := defaults[slot.Key]; id != "" {
		return id
	}
	switch e := entry.(type) {
	case domain.CustomEntry:
		return e.CardID
	case domain.UserEntry:
		return e.CardID
	}
	return ""
}
