package domain

// GlobalSlotOverride holds admin-curated baseline slots per binder key.
type GlobalSlotOverride struct {
	SlotsByKey map[string][]Slot `json:"slotsByKey"`
}

// Baseline returns the baseline for binderKey and whether one exists.
func (g GlobalSlotOverride) Baseline(binderKey string) ([]Slot, bool) {
	slots, ok := g.SlotsByKey[binderKey]
	return slots, ok
}

// ExclusionSet is the document of (cardId, variant) pairs hidden for everyone.
// Keys are formatted by slotkey.Exclusion.
type ExclusionSet struct {
	Keys []string `json:"keys"`
}

// DefaultCardOverrides maps roster slot keys to the card used for the unfilled preview image.
type DefaultCardOverrides map[string]string

// CustomRosterEntries is the document of admin-added roster entries.
type CustomRosterEntries struct {
	Entries []CustomEntry `json:"entries"`
}

// KeySet is a set of string keys.
type KeySet map[string]struct{}

// NewKeySet builds a set from keys.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set. A nil set contains nothing.
func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// LocalRemovalSet is the per-device set of slot keys the current user has hidden.
type LocalRemovalSet = KeySet
