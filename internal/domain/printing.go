package domain

import "time"

// PrintingBrief is a catalog search hit.
type PrintingBrief struct {
	ID      string `json:"id"`
	LocalID string `json:"localId,omitempty"`
	Name    string `json:"name"`
	Image   string `json:"image,omitempty"`
}

// Printing is a full catalog entry for one card printing.
type Printing struct {
	ID       string      `json:"id"`
	LocalID  string      `json:"localId,omitempty"`
	Name     string      `json:"name"`
	Image    string      `json:"image,omitempty"`
	GroupID  string      `json:"groupId"`
	Variants FinishFlags `json:"variants"`
}

// Group is a catalog group (a set) with optional aggregate finish counts.
type Group struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
	// VariantCounts holds the number of printings per finish, when the catalog reports it.
	// A missing key means unknown, a zero value means the group has none.
	VariantCounts map[Variant]int `json:"variantCounts,omitempty"`
}
