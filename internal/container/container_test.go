package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seodash/domain/searchdata"
	"seodash/internal/config"
	"seodash/internal/errors"
)

func testConfig(driver, path string) *config.Config {
	return &config.Config{
		Mirror:        config.MirrorConfig{Driver: driver, SQLitePath: path},
		Upload:        config.UploadConfig{MaxBytes: 1 << 20},
		SearchConsole: config.SearchConsoleConfig{RowLimit: 1000},
		Notifications: config.NotificationConfig{History: 10},
		LogLevel:      "ERROR",
	}
}

func TestContainerSQLiteWarmStart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seodash.db")

	first, err := New(testConfig(config.MirrorSQLite, path))
	require.NoError(t, err)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.Store.SetRecords(ctx, []searchdata.Record{
		searchdata.NewRecord(searchdata.CategoryQuery, "seo tips"),
	}))
	require.NoError(t, first.Shutdown(ctx))

	second, err := New(testConfig(config.MirrorSQLite, path))
	require.NoError(t, err)
	require.NoError(t, second.Init(ctx))
	defer second.Shutdown(ctx)

	assert.True(t, second.Store.Loaded())
	assert.Equal(t, "seo tips", second.Store.ByCategory(searchdata.CategoryQuery)[0].Key)
	assert.False(t, second.SearchConsole.Configured())
}

func TestContainerWithoutMirror(t *testing.T) {
	c, err := New(testConfig(config.MirrorNone, ""))
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background()))

	assert.Nil(t, c.DB)
	assert.Nil(t, c.Mirror)
	assert.False(t, c.Store.Loaded())
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestContainerUnknownDriver(t *testing.T) {
	c, err := New(testConfig("redis", ""))
	require.NoError(t, err)

	err = c.Init(context.Background())
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = New(nil)
	assert.Error(t, err)
}

func TestContainerUnopenableSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "seodash.db")
	c, err := New(testConfig(config.MirrorSQLite, path))
	require.NoError(t, err)

	err = c.Init(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	assert.Nil(t, c.DB)
}
