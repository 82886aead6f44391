package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videosplus/storefront/internal/config"
	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/repository"
	"videosplus/storefront/internal/service"
	"videosplus/storefront/internal/storage"
)

func TestCatalogService_VideoHealth(t *testing.T) {
	repos := newRepos(t, domain.Defaults{})
	catalog := service.NewCatalogService(repos.Documents)
	ctx := context.Background()

	_, err := repos.Videos.Create(ctx, domain.Video{Title: "Complete", Description: "d", Price: 4.5})
	require.NoError(t, err)
	broken, err := repos.Videos.Create(ctx, domain.Video{Title: "No price"})
	require.NoError(t, err)

	report, err := catalog.VideoHealth(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalVideos)
	assert.Equal(t, 1, report.ValidVideos)
	assert.Equal(t, service.IntegrityWarning, report.DataIntegrity)
	require.Len(t, report.InvalidVideos, 1)
	assert.Equal(t, broken.ID, report.InvalidVideos[0].ID)
	assert.Equal(t, []string{"description", "price"}, report.InvalidVideos[0].MissingFields)
	assert.Equal(t, "No backup found", report.LastBackup)
}

func TestCatalogService_FileBackups(t *testing.T) {
	fs := afero.NewMemMapFs()
	file := storage.NewFileStore(fs, config.FileConfig{DataDir: "/data"}, domain.Defaults{}, nil)
	docs := repository.NewDocuments(storage.NewInstrumented(file, "file"), repository.Options{Key: "store.json"})
	t.Cleanup(docs.Close)
	repos := repository.NewRepositories(docs)
	catalog := service.NewCatalogService(docs)
	ctx := context.Background()

	status, err := catalog.BackupStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.HasBackup)

	for i := 0; i < 3; i++ {
		_, err := repos.Videos.Create(ctx, domain.Video{Title: "v"})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	status, err = catalog.BackupStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.HasBackup)
	assert.Equal(t, "store.json", status.MetadataKey)
	require.Len(t, status.Backups, 2)

	report, err := catalog.VideoHealth(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "No backup found", report.LastBackup)

	stats, err := catalog.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Stored)
	assert.Equal(t, 3, stats.Counts.Videos)

	oldest := status.Backups[len(status.Backups)-1]
	require.NoError(t, catalog.Restore(ctx, oldest.Name))
	stats, err = catalog.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Counts.Videos)
}

func TestCatalogService_BackupsUnsupported(t *testing.T) {
	repos := newRepos(t, domain.Defaults{})
	catalog := service.NewCatalogService(repos.Documents)

	_, err := catalog.Backups(context.Background())
	assert.ErrorIs(t, err, service.ErrBackupsUnsupported)
	assert.ErrorIs(t, catalog.Restore(context.Background(), "x"), service.ErrBackupsUnsupported)
}
