package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/binderkeep/internal/adminconfig"
	"github.com/listenupapp/binderkeep/internal/config"
	"github.com/listenupapp/binderkeep/internal/logger"
	"github.com/listenupapp/binderkeep/internal/store"
	redisstore "github.com/listenupapp/binderkeep/internal/store/redis"
	"github.com/listenupapp/binderkeep/internal/store/sqlite"
)

// DeviceStoreHandle wraps the device store with shutdown capability.
type DeviceStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *DeviceStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideDeviceStore provides the badger-backed device store.
func ProvideDeviceStore(i do.Injector) (*DeviceStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.Storage.DevicePath, log.Component("device"))
	if err != nil {
		return nil, err
	}

	log.Info("Device store initialized", "path", cfg.Storage.DevicePath)
	return &DeviceStoreHandle{Store: db}, nil
}

// AccountStoreHandle wraps the account database with shutdown capability.
// It also serves admin documents when the sqlite admin backend is selected.
type AccountStoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *AccountStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideAccountStore provides the sqlite account store.
func ProvideAccountStore(i do.Injector) (*AccountStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.AccountDBPath), 0o750); err != nil {
		return nil, fmt.Errorf("create account db directory: %w", err)
	}

	db, err := sqlite.Open(cfg.Storage.AccountDBPath, log.Component("account"),
		sqlite.WithAdminAllowList(store.NewAllowList(cfg.Admin.Actors)))
	if err != nil {
		return nil, err
	}

	log.Info("Account store initialized", "path", cfg.Storage.AccountDBPath)
	return &AccountStoreHandle{Store: db}, nil
}

// AdminDocumentsHandle is the configured admin document backend.
type AdminDocumentsHandle struct {
	adminconfig.DocumentStore
	close func() error
}

// Shutdown implements do.Shutdownable.
func (h *AdminDocumentsHandle) Shutdown() error {
	if h.close == nil {
		return nil
	}
	return h.close()
}

// ProvideAdminDocuments provides the admin document backend selected by configuration.
// The sqlite backend shares the account database, which owns its lifecycle.
func ProvideAdminDocuments(i do.Injector) (*AdminDocumentsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Admin.Backend != config.AdminBackendRedis {
		account := do.MustInvoke[*AccountStoreHandle](i)
		return &AdminDocumentsHandle{DocumentStore: account.Store}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	client, err := redisstore.NewClient(ctx, cfg.Admin.RedisURL, log.Component("redis"))
	if err != nil {
		return nil, err
	}

	docs := redisstore.NewDocumentStore(client, store.NewAllowList(cfg.Admin.Actors), log.Component("admin-docs"))
	log.Info("Admin documents served from redis")
	return &AdminDocumentsHandle{DocumentStore: docs, close: client.Close}, nil
}

// AdminConfigHandle wraps the admin document service with shutdown capability.
type AdminConfigHandle struct {
	*adminconfig.Service
}

// Shutdown implements do.Shutdownable.
func (h *AdminConfigHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideAdminConfig provides the cached admin document service and primes its cache.
func ProvideAdminConfig(i do.Injector) (*AdminConfigHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	docs := do.MustInvoke[*AdminDocumentsHandle](i)

	svc, err := adminconfig.New(docs.DocumentStore, cfg.Admin.CacheTTL, log.Component("adminconfig"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := svc.Prime(ctx); err != nil {
		log.Warn("Admin documents unavailable at startup, serving defaults until reachable", "error", err)
	}

	return &AdminConfigHandle{Service: svc}, nil
}
