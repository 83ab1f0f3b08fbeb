package domain

import "math"

// FormFamily classifies curated extra roster entries.
type FormFamily string

// Form families of the curated tables.
const (
	FamilyBase      FormFamily = ""
	FamilyRegional  FormFamily = "regional"
	FamilyVariation FormFamily = "variation"
	FamilyMega      FormFamily = "mega"
	FamilyGmax      FormFamily = "gmax"
)

// unanchoredSortID places entries without a species anchor after every species.
const unanchoredSortID = math.MaxInt32

// RosterEntry is one addressable entry of a roster binder.
// The implementations are SpeciesEntry, CustomEntry and UserEntry.
type RosterEntry interface {
	// DisplayName is the label shown for the entry.
	DisplayName() string
	// SortID is the numeric species id used as the primary sort key.
	SortID() int
	rosterEntry()
}

// Species is a base roster row from the species provider.
type Species struct {
	DexID int    `json:"dexId"`
	Name  string `json:"name"`
}

// SpeciesEntry is a base species or one of its curated forms.
type SpeciesEntry struct {
	DexID  int        `json:"dexId" toml:"dex_id"`
	Name   string     `json:"name" toml:"name"`
	Form   string     `json:"form,omitempty" toml:"form"`
	Family FormFamily `json:"family,omitempty" toml:"-"`
	// BaseName is the species name the form derives from.
	BaseName string `json:"baseName,omitempty" toml:"base_name"`
	// SearchName overrides the derived catalog search name.
	SearchName string `json:"searchName,omitempty" toml:"search_name"`
}

// DisplayName implements RosterEntry.
func (e SpeciesEntry) DisplayName() string { return e.Name }

// SortID implements RosterEntry.
func (e SpeciesEntry) SortID() int { return e.DexID }

func (SpeciesEntry) rosterEntry() {}

// CustomEntry is an admin-curated roster entry with an explicit key.
type CustomEntry struct {
	Key        string `json:"key" validate:"required,slotkey,max=64"`
	DexID      int    `json:"dexId,omitempty" validate:"gte=0"`
	Name       string `json:"name" validate:"required,max=100"`
	CardID     string `json:"cardId,omitempty"`
	SearchName string `json:"searchName,omitempty"`
}

// DisplayName implements RosterEntry.
func (e CustomEntry) DisplayName() string { return e.Name }

// SortID implements RosterEntry. Entries without a species anchor sort last.
func (e CustomEntry) SortID() int {
	if e.DexID <= 0 {
		return unanchoredSortID
	}
	return e.DexID
}

func (CustomEntry) rosterEntry() {}

// UserEntry is a roster entry the user added to a single binder.
type UserEntry struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	CardID string `json:"cardId,omitempty"`
}

// DisplayName implements RosterEntry.
func (e UserEntry) DisplayName() string { return e.Name }

// SortID implements RosterEntry. User entries always sort after species.
func (UserEntry) SortID() int { return unanchoredSortID }

func (UserEntry) rosterEntry() {}
