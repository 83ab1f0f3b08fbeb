// Package di provides dependency injection configuration for the binder engine.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/binderkeep/internal/catalog"
	"github.com/listenupapp/binderkeep/internal/config"
	"github.com/listenupapp/binderkeep/internal/di/providers"
	"github.com/listenupapp/binderkeep/internal/logger"
	"github.com/listenupapp/binderkeep/internal/roster"
	"github.com/listenupapp/binderkeep/internal/service"
	"github.com/listenupapp/binderkeep/internal/species"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideDeviceStore)
	do.Provide(injector, providers.ProvideAccountStore)
	do.Provide(injector, providers.ProvideAdminDocuments)
	do.Provide(injector, providers.ProvideAdminConfig)

	// Collaborators
	do.Provide(injector, providers.ProvideCatalogClient)
	do.Provide(injector, providers.ProvideSpeciesClient)

	// Roster
	do.Provide(injector, providers.ProvideRosterEngine)
	do.Provide(injector, providers.ProvideRosterWatcher)

	// Binder services
	do.Provide(injector, providers.ProvideSnapshotCache)
	do.Provide(injector, providers.ProvideCollectionStore)
	do.Provide(injector, providers.ProvideBinderOrderStore)
	do.Provide(injector, providers.ProvideBinderService)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.DeviceStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.AccountStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.AdminConfigHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*catalog.Client](injector)
	_ = do.MustInvoke[*species.Client](injector)
	_ = do.MustInvoke[*roster.Engine](injector)
	if _, err := do.Invoke[*providers.RosterWatcherHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*service.BinderService](injector)
	return nil
}
