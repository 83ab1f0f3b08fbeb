// Package species is the client for the species provider: the base roster and
// localized species names.
package species

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/errors"
	"github.com/listenupapp/binderkeep/internal/fetch"
	"github.com/listenupapp/binderkeep/internal/slotkey"
)

// Provider supplies the base roster.
type Provider interface {
	BaseRoster(ctx context.Context) ([]domain.Species, error)
	// LocalizedName returns the name of a species in lang, or "" when it has none.
	LocalizedName(ctx context.Context, dexID int, lang string) (string, error)
}

// Client is the HTTP client for the species API.
type Client struct {
	baseURL string
	http    *fetch.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a species client for the API rooted at baseURL.
func NewClient(baseURL string, cfg fetch.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    fetch.New("species", cfg, logger),
	}
}

// BaseRoster returns every species ordered by dex id. Rows without a positive id or a
// name are dropped.
func (c *Client) BaseRoster(ctx context.Context) ([]domain.Species, error) {
	var rows []domain.Species
	if err := c.http.GetJSON(ctx, c.baseURL+"/species", &rows); err != nil {
		return nil, fmt.Errorf("get base roster: %w", err)
	}

	rows = slices.DeleteFunc(rows, func(s domain.Species) bool {
		return s.DexID <= 0 || s.Name == ""
	})
	slices.SortStableFunc(rows, func(a, b domain.Species) int {
		return cmp.Compare(a.DexID, b.DexID)
	})
	return rows, nil
}

type wireNames struct {
	Names map[string]string `json:"names"`
}

// LocalizedName returns the species name in lang. It tries the exact tag, then the base
// language ("pt-BR" falls back to "pt"). An unknown species or language yields "".
func (c *Client) LocalizedName(ctx context.Context, dexID int, lang string) (string, error) {
	var wire wireNames
	err := c.http.GetJSON(ctx, fmt.Sprintf("%s/species/%d", c.baseURL, dexID), &wire)
	if errors.Is(err, errors.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get species %d names: %w", dexID, err)
	}

	names := make(map[string]string, len(wire.Names))
	for tag, name := range wire.Names {
		names[slotkey.NormalizeLanguage(tag)] = name
	}

	tag := slotkey.NormalizeLanguage(lang)
	if name, ok := names[tag]; ok {
		return name, nil
	}
	if base, _, found := strings.Cut(tag, "-"); found {
		return names[base], nil
	}
	return "", nil
}
