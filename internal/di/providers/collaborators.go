package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/binderkeep/internal/catalog"
	"github.com/listenupapp/binderkeep/internal/config"
	"github.com/listenupapp/binderkeep/internal/fetch"
	"github.com/listenupapp/binderkeep/internal/logger"
	"github.com/listenupapp/binderkeep/internal/species"
)

// ProvideCatalogClient provides the card catalog client.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := catalog.NewClient(cfg.Catalog.BaseURL, fetch.Config{
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Timeout:           cfg.Catalog.Timeout,
	}, log.Component("catalog"))

	log.Info("Catalog client initialized",
		"base_url", cfg.Catalog.BaseURL,
		"reference_language", cfg.Catalog.ReferenceLanguage,
	)
	return client, nil
}

// ProvideSpeciesClient provides the species roster client.
func ProvideSpeciesClient(i do.Injector) (*species.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := species.NewClient(cfg.Species.BaseURL, fetch.Config{
		RequestsPerSecond: cfg.Species.RequestsPerSecond,
	}, log.Component("species"))

	log.Info("Species client initialized", "base_url", cfg.Species.BaseURL)
	return client, nil
}
