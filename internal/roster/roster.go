// Package roster builds the full roster of roster-type binders from the base species list,
// the curated extra-entry tables and the admin and user entries.
package roster

import (
	"cmp"
	"slices"
	"sync/atomic"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/slotkey"
)

// Engine expands rosters against a swappable set of curated tables.
type Engine struct {
	tables atomic.Pointer[Tables]
}

// NewEngine creates an engine over tables.
func NewEngine(tables *Tables) *Engine {
	e := &Engine{}
	e.tables.Store(tables)
	return e
}

// Tables returns the tables currently in use.
func (e *Engine) Tables() *Tables {
	return e.tables.Load()
}

// SetTables swaps the tables used by subsequent expansions.
func (e *Engine) SetTables(t *Tables) {
	e.tables.Store(t)
}

// Result is an expanded roster plus the keys dropped as duplicates.
type Result struct {
	Entries    []domain.RosterEntry
	Duplicates []string
}

// Keys returns the slot key of every entry, in roster order.
func (r Result) Keys() []string {
	keys := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		keys[i] = slotkey.Roster(e)
	}
	return keys
}

// Expand builds the roster. It is deterministic: identical inputs give an identical roster
// in identical order, so filled/total counts never jitter across reloads.
//
// Curated rows are only added for species present in base. When two entries share a key
// the first one wins, in the order base, curated tables, custom, user.
func (e *Engine) Expand(base []domain.Species, opts domain.ExpansionOptions, custom []domain.CustomEntry, user []domain.UserEntry) Result {
	tables := e.Tables()

	present := make(map[int]bool, len(base))
	entries := make([]domain.RosterEntry, 0, len(base)+len(custom)+len(user))
	for _, s := range base {
		present[s.DexID] = true
		entries = append(entries, domain.SpeciesEntry{DexID: s.DexID, Name: s.Name})
	}

	if tables != nil {
		for _, family := range enabledFamilies(tables, opts) {
			for _, row := range family {
				if present[row.DexID] {
					entries = append(entries, row)
				}
			}
		}
	}
	for _, c := range custom {
		entries = append(entries, c)
	}
	for _, u := range user {
		entries = append(entries, u)
	}

	seen := make(map[string]bool, len(entries))
	var dups []string
	unique := entries[:0]
	for _, entry := range entries {
		key := slotkey.Roster(entry)
		if seen[key] {
			dups = append(dups, key)
			continue
		}
		seen[key] = true
		unique = append(unique, entry)
	}

	slices.SortStableFunc(unique, func(a, b domain.RosterEntry) int {
		return cmp.Or(
			cmp.Compare(a.SortID(), b.SortID()),
			NaturalCompare(slotkey.Roster(a), slotkey.Roster(b)),
		)
	})

	return Result{Entries: unique, Duplicates: dups}
}

func enabledFamilies(t *Tables, opts domain.ExpansionOptions) [][]domain.SpeciesEntry {
	var out [][]domain.SpeciesEntry
	if opts.RegionalForms {
		out = append(out, t.Regional)
	}
	if opts.VariationGroups {
		out = append(out, t.Variation)
	}
	if opts.Megas {
		out = append(out, t.Mega)
	}
	if opts.Gmax {
		out = append(out, t.Gmax)
	}
	return out
}

// ResolveOptions returns the expansion options of a binder config.
//
// Variation families can be enabled by the current toggle or by the older
// IncludeVariationFamilies switch. Either one enables them; conflict reports
// that both are set and disagree so the caller can surface it.
func ResolveOptions(cfg domain.CollectionConfig) (opts domain.ExpansionOptions, conflict bool) {
	opts = cfg.Expansions
	if legacy := cfg.IncludeVariationFamilies; legacy != nil {
		conflict = *legacy != opts.VariationGroups
		opts.VariationGroups = opts.VariationGroups || *legacy
	}
	return opts, conflict
}

// UserEntriesFromSlots recovers the user-added roster entries of a binder from its slots.
// Names come from the binder's user card metadata when the slot holds a card.
func UserEntriesFromSlots(c *domain.Collection) []domain.UserEntry {
	var out []domain.UserEntry
	for _, s := range c.Slots {
		if !slotkey.IsUser(s.Key) {
			continue
		}
		entry := domain.UserEntry{Key: s.Key}
		if s.Card != nil {
			entry.CardID = s.Card.CardID
			entry.Name = c.UserCards[s.Card.CardID].Name
		}
		out = append(out, entry)
	}
	return out
}
