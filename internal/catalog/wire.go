package catalog

import (
	"log/slog"
	"time"

	"github.com/listenupapp/binderkeep/internal/domain"
)

type wireGroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wirePrinting struct {
	ID       string             `json:"id"`
	LocalID  string             `json:"localId"`
	Name     string             `json:"name"`
	Image    string             `json:"image"`
	Set      wireGroupRef       `json:"set"`
	Variants domain.FinishFlags `json:"variants"`
}

func (w wirePrinting) toDomain() *domain.Printing {
	return &domain.Printing{
		ID:       w.ID,
		LocalID:  w.LocalID,
		Name:     w.Name,
		Image:    w.Image,
		GroupID:  w.Set.ID,
		Variants: w.Variants,
	}
}

type wireGroup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"releaseDate"`
	// CardCount.Variants holds per-finish printing counts, keyed by finish name.
	CardCount struct {
		Variants map[string]int `json:"variants"`
	} `json:"cardCount"`
}

var releaseDateLayouts = []string{time.DateOnly, time.RFC3339}

func (w wireGroup) toDomain(logger *slog.Logger) *domain.Group {
	g := &domain.Group{ID: w.ID, Name: w.Name}

	if w.ReleaseDate != "" {
		for _, layout := range releaseDateLayouts {
			if t, err := time.Parse(layout, w.ReleaseDate); err == nil {
				g.ReleaseDate = &t
				break
			}
		}
		if g.ReleaseDate == nil {
			logger.Warn("unparseable group release date", "group_id", w.ID, "release_date", w.ReleaseDate)
		}
	}

	if len(w.CardCount.Variants) > 0 {
		g.VariantCounts = make(map[domain.Variant]int, len(w.CardCount.Variants))
		for name, n := range w.CardCount.Variants {
			if v := domain.Variant(name); v.Valid() {
				g.VariantCounts[v] = n
			}
		}
	}
	return g
}
