package storage

import (
	"context"
	"time"

	"videosplus/storefront/internal/domain"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = time.Hour

// FileStorage defines the interface for media object operations (videos, thumbnails).
type FileStorage interface {
	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// DocumentStore persists the whole storefront document under a key.
//
// FetchDocument never fails because the document is absent or unreadable: it hands out
// the seeded default document instead. StoreDocument replaces the stored document
// wholesale. When expected is non-zero the write only succeeds if the stored revision
// still matches it, otherwise ErrVersionConflict is returned.
type DocumentStore interface {
	FetchDocument(ctx context.Context, key string) (*domain.Document, Version, error)
	StoreDocument(ctx context.Context, key string, doc *domain.Document, expected Version) (Version, error)
}

// Version identifies the stored revision of a document. The zero value means
// "unknown" and disables the conditional check on write.
type Version struct {
	Tag     string // backend revision: ETag, content hash or counter
	Missing bool   // nothing was stored when the document was fetched
}

// IsZero reports whether v carries no revision information.
func (v Version) IsZero() bool {
	return v.Tag == "" && !v.Missing
}

// missingVersion is returned by every backend when the key holds nothing yet.
var missingVersion = Version{Missing: true}

// BackupInfo describes one retained backup copy of a document.
type BackupInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// BackupLister is implemented by backends that keep local backup copies.
type BackupLister interface {
	Backups(ctx context.Context, key string) ([]BackupInfo, error)
}

// BackupRestorer is implemented by backends that can roll back to a backup copy.
type BackupRestorer interface {
	Restore(ctx context.Context, key, name string) error
}

// Prober is implemented by backends that can tell whether anything is stored
// under a key without decoding it.
type Prober interface {
	Exists(ctx context.Context, key string) (bool, error)
}
