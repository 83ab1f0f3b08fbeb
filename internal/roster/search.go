package roster

import (
	"strings"

	"github.com/listenupapp/binderkeep/internal/domain"
)

// regionalAdjectives maps the region prefix of a form to the printed adjective.
var regionalAdjectives = map[string]string{
	"alola":  "Alolan",
	"galar":  "Galarian",
	"hisui":  "Hisuian",
	"paldea": "Paldean",
}

// SearchName returns the name to search the catalog with for entry.
//
// General entries search by their display name. Derived forms search by the name the
// catalog actually prints, which is not a transcription of the form name.
func SearchName(entry domain.RosterEntry) string {
	switch e := entry.(type) {
	case domain.SpeciesEntry:
		if e.SearchName != "" {
			return e.SearchName
		}
		return speciesSearchName(e)
	case domain.CustomEntry:
		if e.SearchName != "" {
			return e.SearchName
		}
		return e.Name
	default:
		return entry.DisplayName()
	}
}

func speciesSearchName(e domain.SpeciesEntry) string {
	base := e.BaseName
	if base == "" {
		base = e.Name
	}
	switch e.Family {
	case domain.FamilyRegional:
		region, _, _ := strings.Cut(e.Form, "-")
		if adj, ok := regionalAdjectives[region]; ok {
			return adj + " " + base
		}
		return e.Name
	case domain.FamilyMega:
		return "M " + base + "-EX"
	case domain.FamilyGmax:
		return base + " VMAX"
	case domain.FamilyVariation:
		return base
	default:
		return e.Name
	}
}
