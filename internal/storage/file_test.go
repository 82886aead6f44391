package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videosplus/storefront/internal/codec"
	"videosplus/storefront/internal/config"
	"videosplus/storefront/internal/domain"
)

const (
	testDataDir = "/data"
	testKey     = "videosplus-data.json"
)

// stepClock advances by one second on every call.
func stepClock() func() time.Time {
	var n atomic.Int64
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

func newTestFileStore(t *testing.T, fs afero.Fs, log logrus.FieldLogger) *FileStore {
	t.Helper()
	return NewFileStore(fs, config.FileConfig{DataDir: testDataDir, Retention: 5}, testDefaults(), log, WithClock(stepClock()))
}

func docWithVideos(n int) *domain.Document {
	doc := domain.NewDocument()
	for i := 0; i < n; i++ {
		doc.Videos = append(doc.Videos, domain.Video{ID: string(rune('a' + i)), Title: "t", Description: "d", Price: 1})
	}
	return doc
}

func listBackups(t *testing.T, fs afero.Fs) []string {
	t.Helper()
	infos, err := afero.ReadDir(fs, testDataDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, info := range infos {
		if strings.HasPrefix(info.Name(), testKey+".backup.") {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names
}

func TestFileFetchMissingReturnsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newTestFileStore(t, fs, nil)

	doc, version, err := store.FetchDocument(context.Background(), testKey)
	require.NoError(t, err)

	assert.True(t, version.Missing)
	assert.Len(t, doc.Users, 1)
	assert.NotNil(t, doc.SiteConfig)
	assert.Empty(t, listBackups(t, fs))
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newTestFileStore(t, fs, nil)
	ctx := context.Background()

	written, err := store.StoreDocument(ctx, testKey, docWithVideos(2), Version{})
	require.NoError(t, err)

	got, version, err := store.FetchDocument(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, written, version)
	assert.Len(t, got.Videos, 2)

	// first write has nothing to back up
	assert.Empty(t, listBackups(t, fs))

	exists, err := store.Exists(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileBackupRetention(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newTestFileStore(t, fs, nil)
	ctx := context.Background()

	for i := 1; i <= 8; i++ {
		_, err := store.StoreDocument(ctx, testKey, docWithVideos(i), Version{})
		require.NoError(t, err)
	}

	names := listBackups(t, fs)
	require.Len(t, names, 5, "only the newest five backups are kept")

	// eight writes produce seven backups; the two oldest were pruned
	assert.Equal(t, testKey+".backup.2024-03-01T12-00-03-000Z", names[0])
	assert.Equal(t, testKey+".backup.2024-03-01T12-00-07-000Z", names[4])

	latest, err := afero.ReadFile(fs, filepath.Join(testDataDir, testKey+".backup"))
	require.NoError(t, err)
	doc, err := codec.Decode(latest)
	require.NoError(t, err)
	assert.Len(t, doc.Videos, 7, "latest copy holds the content replaced by the last write")

	backups, err := store.Backups(ctx, testKey)
	require.NoError(t, err)
	require.Len(t, backups, 5)
	assert.Equal(t, names[4], backups[0].Name, "newest first")
	assert.True(t, backups[0].CreatedAt.After(backups[4].CreatedAt))
}

func TestFileBackupNameCollision(t *testing.T) {
	fs := afero.NewMemMapFs()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewFileStore(fs, config.FileConfig{DataDir: testDataDir}, domain.Defaults{}, nil,
		WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.StoreDocument(ctx, testKey, docWithVideos(i), Version{})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{
		testKey + ".backup.2024-03-01T12-00-00-000Z",
		testKey + ".backup.2024-03-01T12-00-00-000Z-1",
	}, listBackups(t, fs))
}

func TestFileManifestRebuiltFromListing(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newTestFileStore(t, fs, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.StoreDocument(ctx, testKey, docWithVideos(i), Version{})
		require.NoError(t, err)
	}
	require.NoError(t, fs.Remove(filepath.Join(testDataDir, testKey+".backups.json")))

	backups, err := store.Backups(ctx, testKey)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Greater(t, backups[0].Name, backups[1].Name)

	_, err = store.StoreDocument(ctx, testKey, docWithVideos(5), Version{})
	require.NoError(t, err)

	backups, err = store.Backups(ctx, testKey)
	require.NoError(t, err)
	require.Len(t, backups, 3, "rebuilt manifest keeps older backups and lists the new one once")
	assert.Equal(t, listBackups(t, fs)[2], backups[0].Name)
}

// failingBackupFs refuses to create any backup or manifest file.
type failingBackupFs struct{ afero.Fs }

func (f failingBackupFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if strings.Contains(filepath.Base(name), ".backup") && flag&os.O_CREATE != 0 {
		return nil, errors.New("disk quota exceeded")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestFileBackupFailureDoesNotBlockWrite(t *testing.T) {
	log, hook := test.NewNullLogger()
	fs := failingBackupFs{Fs: afero.NewMemMapFs()}
	store := newTestFileStore(t, fs, log)
	ctx := context.Background()

	_, err := store.StoreDocument(ctx, testKey, docWithVideos(1), Version{})
	require.NoError(t, err)
	_, err = store.StoreDocument(ctx, testKey, docWithVideos(2), Version{})
	require.NoError(t, err)

	doc, _, err := store.FetchDocument(ctx, testKey)
	require.NoError(t, err)
	assert.Len(t, doc.Videos, 2)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "backup") {
			warned = true
		}
	}
	assert.True(t, warned, "backup failure is logged as a warning")
}

// staleReadFs serves older content for target once armed, as a disk that lost the write would.
type staleReadFs struct {
	afero.Fs
	target string
	stale  []byte
	armed  atomic.Bool
}

func (f *staleReadFs) Open(name string) (afero.File, error) {
	if f.armed.Load() && filepath.Clean(name) == f.target {
		file, err := afero.TempFile(f.Fs, "/", "stale-*")
		if err != nil {
			return nil, err
		}
		if _, err := file.Write(f.stale); err != nil {
			return nil, err
		}
		if _, err := file.Seek(0, 0); err != nil {
			return nil, err
		}
		return file, nil
	}
	return f.Fs.Open(name)
}

func TestFileIntegrityCheckFailure(t *testing.T) {
	stale, err := codec.Encode(docWithVideos(1))
	require.NoError(t, err)

	fs := &staleReadFs{Fs: afero.NewMemMapFs(), target: filepath.Join(testDataDir, testKey), stale: stale}
	store := newTestFileStore(t, fs, nil)
	fs.armed.Store(true)

	_, err = store.StoreDocument(context.Background(), testKey, docWithVideos(3), Version{})
	require.Error(t, err)

	var integrityErr *IntegrityCheckFailedError
	require.True(t, errors.As(err, &integrityErr))
	assert.Equal(t, "videos", integrityErr.Collection)
	assert.Equal(t, 3, integrityErr.Expected)
	assert.Equal(t, 1, integrityErr.Actual)
}

func TestFileMalformedContentFallsBackToDefaults(t *testing.T) {
	log, hook := test.NewNullLogger()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testDataDir, testKey), []byte("[1,2,3]"), 0o644))
	store := newTestFileStore(t, fs, log)

	doc, version, err := store.FetchDocument(context.Background(), testKey)
	require.NoError(t, err)
	assert.False(t, version.Missing)
	assert.NotNil(t, doc.SiteConfig)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestFileVersionConflict(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newTestFileStore(t, fs, nil)
	ctx := context.Background()

	_, missing, err := store.FetchDocument(ctx, testKey)
	require.NoError(t, err)

	first, err := store.StoreDocument(ctx, testKey, docWithVideos(1), missing)
	require.NoError(t, err)

	_, err = store.StoreDocument(ctx, testKey, docWithVideos(2), missing)
	assert.ErrorIs(t, err, ErrVersionConflict)

	second, err := store.StoreDocument(ctx, testKey, docWithVideos(2), first)
	require.NoError(t, err)

	_, err = store.StoreDocument(ctx, testKey, docWithVideos(3), first)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Len(t, listBackups(t, fs), 1, "a rejected write takes no backup")

	_, err = store.StoreDocument(ctx, testKey, docWithVideos(3), second)
	assert.NoError(t, err)
}

func TestFileRestore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := newTestFileStore(t, fs, nil)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := store.StoreDocument(ctx, testKey, docWithVideos(i), Version{})
		require.NoError(t, err)
	}
	backups, err := store.Backups(ctx, testKey)
	require.NoError(t, err)
	require.Len(t, backups, 2)

	oldest := backups[len(backups)-1]
	require.NoError(t, store.Restore(ctx, testKey, oldest.Name))

	doc, _, err := store.FetchDocument(ctx, testKey)
	require.NoError(t, err)
	assert.Len(t, doc.Videos, 1)

	backups, err = store.Backups(ctx, testKey)
	require.NoError(t, err)
	assert.Len(t, backups, 3, "restoring backs up the replaced content")

	assert.Error(t, store.Restore(ctx, testKey, "../../etc/passwd"))
	assert.ErrorIs(t, store.Restore(ctx, testKey, testKey+".backup.1999-01-01T00-00-00-000Z"), ErrObjectNotFound)
}

func TestBackupStamp(t *testing.T) {
	ts := time.Date(2024, 12, 31, 23, 59, 58, 123_000_000, time.FixedZone("X", 3600))
	assert.Equal(t, "2024-12-31T22-59-58-123Z", backupStamp(ts))
}
