package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/binderkeep/internal/catalog"
	"github.com/listenupapp/binderkeep/internal/config"
	"github.com/listenupapp/binderkeep/internal/logger"
	"github.com/listenupapp/binderkeep/internal/roster"
	"github.com/listenupapp/binderkeep/internal/service"
	"github.com/listenupapp/binderkeep/internal/species"
)

// ProvideSnapshotCache provides the shared cache of last good binder loads.
func ProvideSnapshotCache(i do.Injector) (*service.SnapshotCache, error) {
	return service.NewSnapshotCache(), nil
}

// ProvideCollectionStore provides the binder persistence layer.
func ProvideCollectionStore(i do.Injector) (*service.CollectionStore, error) {
	device := do.MustInvoke[*DeviceStoreHandle](i)
	account := do.MustInvoke[*AccountStoreHandle](i)
	snapshot := do.MustInvoke[*service.SnapshotCache](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCollectionStore(device.Store, account.Store, snapshot, log.Component("collections")), nil
}

// ProvideBinderOrderStore provides the binder display order store.
func ProvideBinderOrderStore(i do.Injector) (*service.BinderOrderStore, error) {
	device := do.MustInvoke[*DeviceStoreHandle](i)
	account := do.MustInvoke[*AccountStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBinderOrderStore(device.Store, account.Store, log.Component("binder-order")), nil
}

// ProvideBinderService provides the binder view and action service.
func ProvideBinderService(i do.Injector) (*service.BinderService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	collections := do.MustInvoke[*service.CollectionStore](i)
	order := do.MustInvoke[*service.BinderOrderStore](i)
	device := do.MustInvoke[*DeviceStoreHandle](i)
	admin := do.MustInvoke[*AdminConfigHandle](i)
	catalogClient := do.MustInvoke[*catalog.Client](i)
	speciesClient := do.MustInvoke[*species.Client](i)
	engine := do.MustInvoke[*roster.Engine](i)

	return service.NewBinderService(
		collections,
		order,
		device.Store,
		admin.Service,
		catalogClient,
		speciesClient,
		engine,
		service.BinderConfig{ReferenceLanguage: cfg.Catalog.ReferenceLanguage},
		log.Component("binders"),
	), nil
}
