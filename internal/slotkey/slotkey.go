// Package slotkey derives the canonical slot keys for every binder type.
//
// Assignment, local removal and exclusion lookups must all go through these functions:
// a key built any other way silently fails to match.
package slotkey

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/id"
)

const (
	// UserPrefix starts every user-added roster key so it cannot collide with numeric keys.
	UserPrefix = "user-"

	groupNamespace   = "group:"
	subjectNamespace = "subject:"
	exclusionSep     = "|"
	userRandomLength = 6
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Roster returns the key of a roster entry.
func Roster(entry domain.RosterEntry) string {
	switch e := entry.(type) {
	case domain.SpeciesEntry:
		return Species(e.DexID, e.Form)
	case domain.CustomEntry:
		return e.Key
	case domain.UserEntry:
		return e.Key
	default:
		panic(fmt.Sprintf("slotkey: unknown roster entry %T", entry))
	}
}

// Species returns "dexId" for a base species and "dexId-form" for a form.
func Species(dexID int, form string) string {
	if form == "" {
		return strconv.Itoa(dexID)
	}
	return strconv.Itoa(dexID) + "-" + form
}

// NewUser returns a fresh user-added roster key: user-<unixMillis>-<random>.
func NewUser(now time.Time) (string, error) {
	suffix, err := id.Short(userRandomLength)
	if err != nil {
		return "", err
	}
	return UserPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix, nil
}

// IsUser reports whether key was produced by NewUser.
func IsUser(key string) bool {
	return strings.HasPrefix(key, UserPrefix)
}

// Printing returns the per-printing key "cardId-variant" used by set and custom binders.
func Printing(cardID string, variant domain.Variant) string {
	return cardID + "-" + string(variant)
}

// Subject returns the single-subject key "language:cardId-variant".
// The language is embedded because one upstream id can denote different printings per language.
func Subject(lang, cardID string, variant domain.Variant) string {
	return NormalizeLanguage(lang) + ":" + Printing(cardID, variant)
}

// SplitSubject splits a single-subject key into its language and unqualified parts.
// Keys without a language prefix return an empty language.
func SplitSubject(key string) (lang, unqualified string) {
	if before, after, ok := strings.Cut(key, ":"); ok {
		return before, after
	}
	return "", key
}

// ForCard returns the key a card occupies in a binder of type t, or "" for roster binders,
// whose keys do not derive from the card.
func ForCard(t domain.CollectionType, card domain.SlotCard) string {
	switch t {
	case domain.TypeSingleSubject:
		if card.Language == "" {
			return Printing(card.CardID, card.Variant)
		}
		return Subject(card.Language, card.CardID, card.Variant)
	case domain.TypeSet, domain.TypeCustom:
		return Printing(card.CardID, card.Variant)
	default:
		return ""
	}
}

// Exclusion returns the exclusion-set key "cardId|variant".
func Exclusion(cardID string, variant domain.Variant) string {
	return cardID + exclusionSep + string(variant)
}

// GroupBinder returns the admin binder key of a set binder.
func GroupBinder(groupID string) string {
	return groupNamespace + groupID
}

// SubjectBinder returns the admin binder key of a single-subject binder.
func SubjectBinder(name string) string {
	return subjectNamespace + Slug(name)
}

// Binder returns the admin binder key for a collection, or "" when its type has no baseline.
func Binder(c *domain.Collection) string {
	switch c.Type {
	case domain.TypeSet:
		if c.Config.TargetGroupID == "" {
			return ""
		}
		return GroupBinder(c.Config.TargetGroupID)
	case domain.TypeSingleSubject:
		name := c.Config.SubjectName
		if name == "" {
			name = c.Name
		}
		return SubjectBinder(name)
	default:
		return ""
	}
}

// Slug folds diacritics, lowercases s, replaces every run of non-alphanumeric characters
// with a single hyphen and trims leading and trailing hyphens.
//
//	"Mr. Mime"   -> "mr-mime"
//	"Flabébé"    -> "flabebe"
//	"  Pikachu " -> "pikachu"
func Slug(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// NormalizeLanguage canonicalizes a language tag for embedding in keys ("EN" -> "en",
// "pt-br" -> "pt-br"). Unparseable input is lowercased unchanged.
func NormalizeLanguage(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	return strings.ToLower(tag.String())
}

// Candidates returns the keys to try, in order, when resolving key: the key itself and,
// for language-qualified single-subject keys, the legacy unqualified form.
func Candidates(key string) []string {
	lang, unqualified := SplitSubject(key)
	if lang == "" {
		return []string{key}
	}
	return []string{key, unqualified}
}
