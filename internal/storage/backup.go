package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"videosplus/storefront/internal/codec"
	"videosplus/storefront/internal/idgen"
	"videosplus/storefront/internal/metrics"
)

// backupManifest lists the retained backups of one document, newest first.
type backupManifest struct {
	Backups []manifestEntry `json:"backups"`
}

type manifestEntry struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

func latestBackupPath(path string) string { return path + ".backup" }
func manifestPath(path string) string     { return path + ".backups.json" }
func backupPrefix(path string) string     { return filepath.Base(path) + ".backup." }

// backupStamp renders t as an ISO-8601 UTC string that is safe in file names.
func backupStamp(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(idgen.Timestamp(t))
}

// backup copies current into a new timestamped file, refreshes the latest copy and
// prunes old copies. Failures are logged and never reach the caller.
func (s *FileStore) backup(path string, current []byte) {
	dir := filepath.Dir(path)
	now := s.docs.now().UTC()

	name := backupPrefix(path) + backupStamp(now)
	for i := 1; ; i++ {
		exists, err := afero.Exists(s.fs, filepath.Join(dir, name))
		if err != nil || !exists {
			break
		}
		name = backupPrefix(path) + backupStamp(now) + "-" + strconv.Itoa(i)
	}

	log := s.log.WithField("path", path)
	if err := afero.WriteFile(s.fs, filepath.Join(dir, name), current, 0o644); err != nil {
		log.WithError(err).Warn("failed to create backup, continuing with write")
		metrics.RecordBackupEvent(metrics.BackupFailed)
		return
	}
	metrics.RecordBackupEvent(metrics.BackupCreated)

	if err := afero.WriteFile(s.fs, latestBackupPath(path), current, 0o644); err != nil {
		log.WithError(err).Warn("failed to refresh latest backup copy")
	}

	manifest := s.loadManifest(path)
	entries := []manifestEntry{{Name: name, Size: int64(len(current)), CreatedAt: now}}
	for _, e := range manifest.Backups {
		// a rebuilt manifest already lists the file just written
		if e.Name != name {
			entries = append(entries, e)
		}
	}
	manifest.Backups = entries
	manifest.Backups = s.prune(dir, manifest.Backups)

	if err := s.saveManifest(path, manifest); err != nil {
		log.WithError(err).Warn("failed to write backup manifest")
	}
	log.WithField("backup", name).Debug("backup created")
}

// prune deletes every entry beyond the retention limit and returns the entries kept.
func (s *FileStore) prune(dir string, entries []manifestEntry) []manifestEntry {
	if len(entries) <= s.retention {
		return entries
	}
	kept := entries[:s.retention:s.retention]
	for _, e := range entries[s.retention:] {
		err := s.fs.Remove(filepath.Join(dir, e.Name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.WithError(err).WithField("backup", e.Name).Warn("failed to delete old backup")
			metrics.RecordBackupEvent(metrics.BackupPruneFailed)
			kept = append(kept, e)
			continue
		}
		metrics.RecordBackupEvent(metrics.BackupPruned)
	}
	return kept
}

// loadManifest reads the manifest, rebuilding it from the directory listing when it
// is missing or unreadable.
func (s *FileStore) loadManifest(path string) backupManifest {
	raw, err := afero.ReadFile(s.fs, manifestPath(path))
	if err == nil {
		var m backupManifest
		if err = json.Unmarshal(raw, &m); err == nil {
			return m
		}
	}
	if !errors.Is(err, os.ErrNotExist) {
		s.log.WithError(err).WithField("path", manifestPath(path)).Warn("backup manifest unreadable, rebuilding")
	}
	m, err := s.rebuildManifest(path)
	if err != nil {
		s.log.WithError(err).Warn("failed to list backups")
	}
	return m
}

// rebuildManifest lists backup files next to path, newest name first.
func (s *FileStore) rebuildManifest(path string) (backupManifest, error) {
	infos, err := afero.ReadDir(s.fs, filepath.Dir(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return backupManifest{}, nil
		}
		return backupManifest{}, err
	}
	prefix := backupPrefix(path)
	var m backupManifest
	for _, info := range infos {
		if info.IsDir() || !strings.HasPrefix(info.Name(), prefix) {
			continue
		}
		m.Backups = append(m.Backups, manifestEntry{Name: info.Name(), Size: info.Size(), CreatedAt: info.ModTime().UTC()})
	}
	sort.Slice(m.Backups, func(i, j int) bool { return m.Backups[i].Name > m.Backups[j].Name })
	return m, nil
}

func (s *FileStore) saveManifest(path string, m backupManifest) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return syncedWriteFile(s.fs, manifestPath(path), raw, 0o644)
}

// Backups lists the retained backups for key, newest first.
func (s *FileStore) Backups(ctx context.Context, key string) ([]BackupInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)
	dir := filepath.Dir(path)
	manifest := s.loadManifest(path)

	backups := make([]BackupInfo, 0, len(manifest.Backups))
	for _, e := range manifest.Backups {
		full := filepath.Join(dir, e.Name)
		info, err := s.fs.Stat(full)
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{Name: e.Name, Path: full, Size: info.Size(), CreatedAt: e.CreatedAt})
	}
	return backups, nil
}

// Restore replaces the document for key with the named backup. The current content is
// backed up first, like any other write.
func (s *FileStore) Restore(ctx context.Context, key, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(key)
	if name != filepath.Base(name) || !strings.HasPrefix(name, backupPrefix(path)) {
		return fmt.Errorf("%q is not a backup of %s: %w", name, path, ErrObjectNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := afero.ReadFile(s.fs, filepath.Join(filepath.Dir(path), name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("backup %s: %w", name, ErrObjectNotFound)
		}
		return unavailable("read", name, err)
	}
	doc, err := codec.Decode(raw)
	if err != nil {
		return fmt.Errorf("backup %s: %w", name, err)
	}

	if _, err := s.replace(path, raw, doc.Counts(), Version{}); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"path": path, "backup": name}).Info("document restored from backup")
	return nil
}
