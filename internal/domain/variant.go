package domain

// Variant is the physical finish of a printing.
type Variant string

// The six finishes a slot assignment may carry.
const (
	VariantNormal       Variant = "normal"
	VariantReverse      Variant = "reverse"
	VariantHolo         Variant = "holo"
	VariantFirstEdition Variant = "firstEdition"
	VariantWPromo       Variant = "wPromo"
	VariantSpecial      Variant = "special"
)

// AllVariants lists every finish in canonical display order.
var AllVariants = []Variant{
	VariantNormal,
	VariantReverse,
	VariantHolo,
	VariantFirstEdition,
	VariantWPromo,
	VariantSpecial,
}

// Valid reports whether v is one of the known finishes.
func (v Variant) Valid() bool {
	for _, known := range AllVariants {
		if v == known {
			return true
		}
	}
	return false
}

// Rank returns the canonical display position of v, or len(AllVariants) when unknown.
func (v Variant) Rank() int {
	for i, known := range AllVariants {
		if v == known {
			return i
		}
	}
	return len(AllVariants)
}

// EditionFilter narrows which finishes a binder accepts.
type EditionFilter string

// Edition filters.
const (
	EditionAll              EditionFilter = "all"
	EditionFirstEditionOnly EditionFilter = "firstEditionOnly"
	EditionUnlimitedOnly    EditionFilter = "unlimitedOnly"
)

// FinishFlags are the raw per-printing finish flags reported by the catalog.
type FinishFlags struct {
	Normal       bool `json:"normal"`
	Reverse      bool `json:"reverse"`
	Holo         bool `json:"holo"`
	FirstEdition bool `json:"firstEdition"`
	WPromo       bool `json:"wPromo"`
	Special      bool `json:"special"`
}

// Has reports whether the flag for v is set.
func (f FinishFlags) Has(v Variant) bool {
	switch v {
	case VariantNormal:
		return f.Normal
	case VariantReverse:
		return f.Reverse
	case VariantHolo:
		return f.Holo
	case VariantFirstEdition:
		return f.FirstEdition
	case VariantWPromo:
		return f.WPromo
	case VariantSpecial:
		return f.Special
	default:
		return false
	}
}
