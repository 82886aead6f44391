package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"videosplus/storefront/internal/codec"
	"videosplus/storefront/internal/config"
	"videosplus/storefront/internal/domain"
)

const DefaultBackupRetention = 5

// FileStore keeps the document in a local file. Every overwrite is preceded by a
// timestamped backup and followed by a read-back integrity check.
type FileStore struct {
	fs        afero.Fs
	dataDir   string
	retention int
	docs      documentSource
	log       logrus.FieldLogger

	mu sync.Mutex // serializes writers within this process
}

var (
	_ DocumentStore  = (*FileStore)(nil)
	_ BackupLister   = (*FileStore)(nil)
	_ BackupRestorer = (*FileStore)(nil)
	_ Prober         = (*FileStore)(nil)
)

// FileOption customizes a FileStore.
type FileOption func(*FileStore)

// WithClock replaces the clock used for backup names and seeded timestamps.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) { s.docs.now = now }
}

// NewFileStore creates a file-backed store rooted at cfg.DataDir on fs.
func NewFileStore(fs afero.Fs, cfg config.FileConfig, defaults domain.Defaults, log logrus.FieldLogger, opts ...FileOption) *FileStore {
	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultBackupRetention
	}
	s := &FileStore{
		fs:        fs,
		dataDir:   cfg.DataDir,
		retention: retention,
		docs:      newDocumentSource(defaults, log, "file-store"),
	}
	s.log = s.docs.log
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file that holds the document for key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dataDir, filepath.FromSlash(key))
}

func (s *FileStore) FetchDocument(ctx context.Context, key string) (*domain.Document, Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, Version{}, err
	}
	path := s.Path(key)
	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.docs.fresh(), missingVersion, nil
		}
		return nil, Version{}, unavailable("fetch", path, err)
	}
	return s.docs.decode(path, raw), Version{Tag: contentHash(raw)}, nil
}

func (s *FileStore) StoreDocument(ctx context.Context, key string, doc *domain.Document, expected Version) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	raw, err := codec.Encode(doc)
	if err != nil {
		return Version{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(s.Path(key), raw, doc.Counts(), expected)
}

func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := afero.Exists(s.fs, s.Path(key))
	if err != nil {
		return false, unavailable("stat", s.Path(key), err)
	}
	return ok, nil
}

// replace runs check, backup, write and verify for one new content. Callers hold s.mu.
func (s *FileStore) replace(path string, raw []byte, counts domain.Counts, expected Version) (Version, error) {
	current, err := afero.ReadFile(s.fs, path)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Version{}, unavailable("read", path, err)
	}

	if !expected.IsZero() {
		switch {
		case expected.Missing && exists,
			!expected.Missing && !exists,
			!expected.Missing && contentHash(current) != expected.Tag:
			return Version{}, fmt.Errorf("store %s: %w", path, ErrVersionConflict)
		}
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Version{}, unavailable("mkdir", path, err)
	}
	if exists {
		s.backup(path, current)
	}

	if err := syncedWriteFile(s.fs, path, raw, 0o644); err != nil {
		return Version{}, unavailable("write", path, err)
	}
	if err := s.verify(path, counts); err != nil {
		return Version{}, err
	}

	s.log.WithFields(logrus.Fields{
		"path":     path,
		"videos":   counts.Videos,
		"users":    counts.Users,
		"sessions": counts.Sessions,
	}).Debug("document written")
	return Version{Tag: contentHash(raw)}, nil
}

// verify re-reads the file and checks that every collection kept its record count.
func (s *FileStore) verify(path string, want domain.Counts) error {
	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return &IntegrityCheckFailedError{Path: path, Err: err}
	}
	doc, err := codec.Decode(raw)
	if err != nil {
		return &IntegrityCheckFailedError{Path: path, Err: err}
	}
	got := doc.Counts()
	for _, c := range []struct {
		name      string
		want, got int
	}{
		{"videos", want.Videos, got.Videos},
		{"users", want.Users, got.Users},
		{"sessions", want.Sessions, got.Sessions},
	} {
		if c.want != c.got {
			return &IntegrityCheckFailedError{Path: path, Collection: c.name, Expected: c.want, Actual: c.got}
		}
	}
	return nil
}

// syncedWriteFile writes data to a temp file, fsyncs it and renames it over path.
func syncedWriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Write to a temp file in the same directory (same filesystem for atomic rename)
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fs.Chmod(tmpName, perm); err != nil {
		return err
	}
	if err := fs.Rename(tmpName, path); err != nil {
		return err
	}
	success = true
	return nil
}

func contentHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
