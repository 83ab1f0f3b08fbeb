package domain

import (
	"slices"
	"time"
)

// CollectionType selects the slot addressing scheme of a binder.
type CollectionType string

// Binder types.
const (
	// TypeCollectThemAll has one slot per roster entry.
	TypeCollectThemAll CollectionType = "collect-them-all"
	// TypeMaster is a roster binder that also expands curated form and finish families.
	TypeMaster CollectionType = "master"
	// TypeSingleSubject collects every printing of one subject, per language.
	TypeSingleSubject CollectionType = "single-subject"
	// TypeSet collects every printing and finish of one catalog group.
	TypeSet CollectionType = "set"
	// TypeCustom is a freeform binder.
	TypeCustom CollectionType = "custom"
)

// CollectionTypes lists every binder type.
var CollectionTypes = []CollectionType{TypeCollectThemAll, TypeMaster, TypeSingleSubject, TypeSet, TypeCustom}

// Valid reports whether t is a known binder type.
func (t CollectionType) Valid() bool {
	return slices.Contains(CollectionTypes, t)
}

// IsRoster reports whether slots are addressed by roster keys.
func (t CollectionType) IsRoster() bool {
	return t == TypeCollectThemAll || t == TypeMaster
}

// HasBaseline reports whether an admin baseline may be layered under this binder.
func (t CollectionType) HasBaseline() bool {
	return t == TypeSingleSubject || t == TypeSet
}

// Category is the default-ordering group of the type: roster binders first, custom last.
func (t CollectionType) Category() int {
	switch t {
	case TypeCollectThemAll, TypeMaster:
		return 0
	case TypeSingleSubject:
		return 1
	case TypeSet:
		return 2
	default:
		return 3
	}
}

// ExpansionOptions toggles the curated extra-entry tables of roster binders.
type ExpansionOptions struct {
	RegionalForms   bool `json:"regionalForms,omitempty"`
	VariationGroups bool `json:"variationGroups,omitempty"`
	Megas           bool `json:"megas,omitempty"`
	Gmax            bool `json:"gmax,omitempty"`
}

// CollectionConfig is the type-specific configuration of a binder.
type CollectionConfig struct {
	Languages     []string         `json:"languages,omitempty"`
	EditionFilter EditionFilter    `json:"editionFilter,omitempty"`
	Expansions    ExpansionOptions `json:"expansions"`
	// IncludeVariationFamilies is the older switch for variation families, still honored.
	IncludeVariationFamilies *bool  `json:"includeVariationFamilies,omitempty"`
	TargetGroupID            string `json:"targetGroupId,omitempty"`
	SubjectName              string `json:"subjectName,omitempty"`
}

// Edition returns the configured edition filter, defaulting to all.
func (c CollectionConfig) Edition() EditionFilter {
	if c.EditionFilter == "" {
		return EditionAll
	}
	return c.EditionFilter
}

// SlotCard is a card assignment held by a slot.
type SlotCard struct {
	CardID   string  `json:"cardId"`
	Variant  Variant `json:"variant"`
	Language string  `json:"language,omitempty"`
}

// Slot is one addressable unit of a binder. A nil Card means not collected.
type Slot struct {
	Key  string    `json:"key"`
	Card *SlotCard `json:"card"`
}

// Clone returns a deep copy of the slot.
func (s Slot) Clone() Slot {
	if s.Card != nil {
		card := *s.Card
		s.Card = &card
	}
	return s
}

// UserCard is locally-defined card metadata for cards the catalog does not know.
type UserCard struct {
	Name     string `json:"name"`
	SetName  string `json:"setName,omitempty"`
	Number   string `json:"number,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Collection is a named binder of slots.
type Collection struct {
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Type      CollectionType      `json:"type"`
	Config    CollectionConfig    `json:"config"`
	Slots     []Slot              `json:"slots"`
	UserCards map[string]UserCard `json:"userCards,omitempty"`
}

// Touch updates the UpdatedAt timestamp.
func (c *Collection) Touch(now time.Time) {
	c.UpdatedAt = now
}

// SlotIndex returns the index of the slot with key, or -1.
func (c *Collection) SlotIndex(key string) int {
	for i := range c.Slots {
		if c.Slots[i].Key == key {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	out := *c
	out.Slots = CloneSlots(c.Slots)
	out.Config.Languages = slices.Clone(c.Config.Languages)
	if c.Config.IncludeVariationFamilies != nil {
		v := *c.Config.IncludeVariationFamilies
		out.Config.IncludeVariationFamilies = &v
	}
	if c.UserCards != nil {
		out.UserCards = make(map[string]UserCard, len(c.UserCards))
		for k, v := range c.UserCards {
			out.UserCards[k] = v
		}
	}
	return &out
}

// CloneSlots deep-copies a slot list. A nil input yields nil.
func CloneSlots(slots []Slot) []Slot {
	if slots == nil {
		return nil
	}
	out := make([]Slot, len(slots))
	for i, s := range slots {
		out[i] = s.Clone()
	}
	return out
}
