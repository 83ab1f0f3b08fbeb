package di

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/binderkeep/internal/config"
	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/logger"
	"github.com/listenupapp/binderkeep/internal/service"
)

func testContainer(t *testing.T) *do.RootScope {
	t.Helper()
	dir := t.TempDir()

	injector := NewContainer()
	do.OverrideValue(injector, &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Logger: config.LoggerConfig{Level: "error"},
		Storage: config.StorageConfig{
			DataPath:      dir,
			DevicePath:    filepath.Join(dir, "device"),
			AccountDBPath: filepath.Join(dir, "account.db"),
		},
		Catalog: config.CatalogConfig{
			BaseURL:           "http://127.0.0.1:1",
			RequestsPerSecond: 100,
			ReferenceLanguage: "en",
		},
		Species: config.SpeciesConfig{BaseURL: "http://127.0.0.1:1", RequestsPerSecond: 100},
		Admin: config.AdminConfig{
			Backend:  config.AdminBackendSQLite,
			Actors:   []string{"admin@example.com"},
			CacheTTL: time.Minute,
		},
	})
	do.OverrideValue(injector, logger.New(logger.Config{Writer: &bytes.Buffer{}, Environment: "development"}))

	t.Cleanup(func() { _ = injector.Shutdown() })
	return injector
}

func TestBootstrap(t *testing.T) {
	injector := testContainer(t)
	require.NoError(t, Bootstrap(injector))

	binders := do.MustInvoke[*service.BinderService](injector)
	collections := do.MustInvoke[*service.CollectionStore](injector)
	ctx := context.Background()

	c, err := collections.Create(ctx, "user-1", domain.TypeCustom, "Mine", domain.CollectionConfig{})
	require.NoError(t, err)

	listed := binders.Binders(ctx, "user-1")
	require.Len(t, listed, 1)
	assert.Equal(t, c.ID, listed[0].ID)
}
