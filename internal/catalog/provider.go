package catalog

import (
	"context"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/errors"
	"github.com/listenupapp/binderkeep/internal/slotkey"
)

// Provider is the catalog as consumed by the binder engine.
type Provider interface {
	SearchByName(ctx context.Context, lang, name string) ([]domain.PrintingBrief, error)
	GetPrinting(ctx context.Context, lang, id string) (*domain.Printing, error)
	GetGroup(ctx context.Context, lang, id string) (*domain.Group, error)
}

var _ Provider = (*Client)(nil)

// LocalizedSearch searches in lang and falls back to the reference language when lang has
// no hits, as happens when a name has no localization yet.
//
// On fallback every reference hit is refetched by id in lang. Hits that exist in lang are
// returned localized; hits that do not are returned as the reference brief.
func LocalizedSearch(ctx context.Context, p Provider, lang, referenceLang, name string) ([]domain.PrintingBrief, error) {
	briefs, err := p.SearchByName(ctx, lang, name)
	if err != nil {
		return nil, err
	}
	if len(briefs) > 0 || slotkey.NormalizeLanguage(lang) == slotkey.NormalizeLanguage(referenceLang) {
		return briefs, nil
	}

	refs, err := p.SearchByName(ctx, referenceLang, name)
	if err != nil || len(refs) == 0 {
		return nil, err
	}

	out := make([]domain.PrintingBrief, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		printing, err := p.GetPrinting(ctx, lang, ref.ID)
		switch {
		case err == nil:
			out = append(out, domain.PrintingBrief{
				ID:      printing.ID,
				LocalID: printing.LocalID,
				Name:    printing.Name,
				Image:   printing.Image,
			})
		case errors.Is(err, errors.ErrNotFound):
			out = append(out, ref)
		default:
			return nil, err
		}
	}
	return out, nil
}
