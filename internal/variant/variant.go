// Package variant decides which finishes of a printing are valid and presentable.
//
// The pipeline runs in a fixed order. Steps 1-4 (DisplayVariants) never return an empty
// list; only the edition filter (FilterByEdition) may.
package variant

import (
	"slices"
	"strings"
	"time"

	"github.com/listenupapp/binderkeep/internal/domain"
)

// FirstEditionCutoff is the release date of the last group printed with a first-edition run.
var FirstEditionCutoff = time.Date(2002, time.February, 28, 0, 0, 0, 0, time.UTC)

// singleRunMarkers are name suffixes of rarity classes printed in a single finish.
var singleRunMarkers = []string{
	"v",
	"vmax",
	"vstar",
	"v-union",
	"gx",
	"ex",
	"break",
	"lv.x",
	"prime",
	"legend",
}

// Input is everything the resolver needs to know about one printing.
type Input struct {
	Flags domain.FinishFlags
	Name  string
	// GroupCounts are the aggregate finish counts of the containing group, if known.
	GroupCounts map[domain.Variant]int
	// ReleaseDate of the containing group, if known.
	ReleaseDate *time.Time
}

// InputFor assembles an Input from catalog records. group may be nil.
func InputFor(p *domain.Printing, group *domain.Group) Input {
	in := Input{Flags: p.Variants, Name: p.Name}
	if group != nil {
		in.GroupCounts = group.VariantCounts
		in.ReleaseDate = group.ReleaseDate
	}
	return in
}

// DisplayVariants runs steps 1-4 of the pipeline and returns the finishes to present,
// in canonical order. The result is never empty.
func DisplayVariants(in Input) []domain.Variant {
	// 1. Base set from flags.
	out := make([]domain.Variant, 0, len(domain.AllVariants))
	for _, v := range domain.AllVariants {
		if in.Flags.Has(v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return []domain.Variant{domain.VariantNormal}
	}

	// 2. Single-print-run rarity classes only exist in the normal finish.
	if IsSingleRun(in.Name) && slices.Contains(out, domain.VariantNormal) {
		out = []domain.Variant{domain.VariantNormal}
	}

	// 3. Group aggregate correction.
	if in.GroupCounts != nil {
		out = dropUnlessEmpty(out, func(v domain.Variant) bool {
			count, reported := in.GroupCounts[v]
			return reported && count == 0
		})
	}

	// 4. Release-date correction.
	if in.ReleaseDate != nil && in.ReleaseDate.After(FirstEditionCutoff) {
		out = dropUnlessEmpty(out, func(v domain.Variant) bool {
			return v == domain.VariantFirstEdition
		})
	}

	return out
}

// FilterByEdition applies the binder edition filter. The result may be empty, in which
// case the printing has no slot in the binder.
func FilterByEdition(filter domain.EditionFilter, variants []domain.Variant) []domain.Variant {
	switch filter {
	case domain.EditionFirstEditionOnly:
		if slices.Contains(variants, domain.VariantFirstEdition) {
			return []domain.Variant{domain.VariantFirstEdition}
		}
		return []domain.Variant{}
	case domain.EditionUnlimitedOnly:
		out := make([]domain.Variant, 0, len(variants))
		for _, v := range variants {
			if v != domain.VariantFirstEdition {
				out = append(out, v)
			}
		}
		return out
	default:
		return slices.Clone(variants)
	}
}

// ValidVariants runs the whole pipeline for a binder with the given edition filter.
func ValidVariants(in Input, filter domain.EditionFilter) []domain.Variant {
	return FilterByEdition(filter, DisplayVariants(in))
}

// DisplayVariant returns the finish to render for a stored assignment. A stored variant
// that is no longer valid renders as normal; the stored value is never rewritten.
func DisplayVariant(stored domain.Variant, valid []domain.Variant) domain.Variant {
	if slices.Contains(valid, stored) {
		return stored
	}
	return domain.VariantNormal
}

// IsSingleRun reports whether name ends with a single-print-run rarity marker, joined to
// the name by a space or a hyphen ("Lugia V", "Charizard-GX").
func IsSingleRun(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, marker := range singleRunMarkers {
		rest, ok := strings.CutSuffix(lower, marker)
		if !ok || rest == "" {
			continue
		}
		if sep := rest[len(rest)-1]; sep == ' ' || sep == '-' {
			return true
		}
	}
	return false
}

func dropUnlessEmpty(in []domain.Variant, drop func(domain.Variant) bool) []domain.Variant {
	out := make([]domain.Variant, 0, len(in))
	for _, v := range in {
		if !drop(v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return in
	}
	return out
}
