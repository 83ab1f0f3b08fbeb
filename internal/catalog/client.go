// Package catalog is the client for the card catalog: printing search, printing details
// and group (set) details, per language.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/errors"
	"github.com/listenupapp/binderkeep/internal/fetch"
)

// Client is the HTTP client for the catalog API.
type Client struct {
	baseURL string
	http    *fetch.Client
	logger  *slog.Logger
}

// NewClient creates a catalog client for the API rooted at baseURL.
func NewClient(baseURL string, cfg fetch.Config, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    fetch.New("catalog", cfg, logger),
		logger:  logger,
	}
}

// SearchByName returns the printings whose name matches name in language lang.
// No match is an empty result, not an error.
func (c *Client) SearchByName(ctx context.Context, lang, name string) ([]domain.PrintingBrief, error) {
	endpoint := fmt.Sprintf("%s/%s/cards?name=%s", c.baseURL, url.PathEscape(lang), url.QueryEscape(name))

	var briefs []domain.PrintingBrief
	err := c.http.GetJSON(ctx, endpoint, &briefs)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search %q (%s): %w", name, lang, err)
	}
	return briefs, nil
}

// GetPrinting returns a printing in language lang. A missing printing is errors.ErrNotFound.
func (c *Client) GetPrinting(ctx context.Context, lang, id string) (*domain.Printing, error) {
	endpoint := fmt.Sprintf("%s/%s/cards/%s", c.baseURL, url.PathEscape(lang), url.PathEscape(id))

	var wire wirePrinting
	if err := c.http.GetJSON(ctx, endpoint, &wire); err != nil {
		return nil, fmt.Errorf("get printing %s (%s): %w", id, lang, err)
	}
	return wire.toDomain(), nil
}

// GetGroup returns a group in language lang. A missing group is errors.ErrNotFound.
func (c *Client) GetGroup(ctx context.Context, lang, id string) (*domain.Group, error) {
	endpoint := fmt.Sprintf("%s/%s/sets/%s", c.baseURL, url.PathEscape(lang), url.PathEscape(id))

	var wire wireGroup
	if err := c.http.GetJSON(ctx, endpoint, &wire); err != nil {
		return nil, fmt.Errorf("get group %s (%s): %w", id, lang, err)
	}
	return wire.toDomain(c.logger), nil
}
