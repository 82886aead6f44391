package service

import (
	"context"
	"errors"

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/idgen"
	"videosplus/storefront/internal/repository"
	"videosplus/storefront/internal/storage"
)

// Data integrity verdicts of the video health report.
const (
	IntegrityOK      = "OK"
	IntegrityWarning = "WARNING"
	noBackupFound    = "No backup found"
)

// InvalidVideo points at a catalog entry missing required fields.
type InvalidVideo struct {
	Index         int      `json:"index"`
	ID            string   `json:"id"`
	MissingFields []string `json:"missingFields"`
}

// VideoHealth summarizes catalog integrity.
type VideoHealth struct {
	TotalVideos   int            `json:"totalVideos"`
	ValidVideos   int            `json:"validVideos"`
	InvalidVideos []InvalidVideo `json:"invalidVideos"`
	LastBackup    string         `json:"lastBackup"`
	DataIntegrity string         `json:"dataIntegrity"`
}

// BackupStatus reports whether the document is stored and which backups exist.
type BackupStatus struct {
	HasBackup   bool                 `json:"hasBackup"`
	Message     string               `json:"message"`
	MetadataKey string               `json:"metadataKey,omitempty"`
	Backups     []storage.BackupInfo `json:"backups,omitempty"`
}

// Stats is a quick summary of the stored document.
type Stats struct {
	Key    string        `json:"key"`
	Counts domain.Counts `json:"counts"`
	Stored bool          `json:"stored"`
}

// CatalogService reports on the state of the stored document.
type CatalogService interface {
	VideoHealth(ctx context.Context) (*VideoHealth, error)
	BackupStatus(ctx context.Context) (*BackupStatus, error)
	Stats(ctx context.Context) (*Stats, error)
	Backups(ctx context.Context) ([]storage.BackupInfo, error)
	Restore(ctx context.Context, name string) error
}

type catalogService struct {
	docs *repository.Documents
}

var ErrBackupsUnsupported = errors.New("the configured store keeps no local backups")

func NewCatalogService(docs *repository.Documents) CatalogService {
	return &catalogService{docs: docs}
}

func (s *catalogService) VideoHealth(ctx context.Context) (*VideoHealth, error) {
	doc, err := s.docs.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	report := &VideoHealth{
		TotalVideos:   len(doc.Videos),
		InvalidVideos: []InvalidVideo{},
		LastBackup:    noBackupFound,
		DataIntegrity: IntegrityOK,
	}
	for i := range doc.Videos {
		missing := doc.Videos[i].MissingFields()
		if len(missing) == 0 {
			report.ValidVideos++
			continue
		}
		id := doc.Videos[i].ID
		if id == "" {
			id = "unknown"
		}
		report.InvalidVideos = append(report.InvalidVideos, InvalidVideo{Index: i, ID: id, MissingFields: missing})
	}
	if len(report.InvalidVideos) > 0 {
		report.DataIntegrity = IntegrityWarning
	}

	if lister, ok := storage.Capability[storage.BackupLister](s.docs.Store()); ok {
		backups, err := lister.Backups(ctx, s.docs.Key())
		if err == nil && len(backups) > 0 {
			report.LastBackup = idgen.Timestamp(backups[0].CreatedAt)
		}
	}
	return report, nil
}

func (s *catalogService) BackupStatus(ctx context.Context) (*BackupStatus, error) {
	status := &BackupStatus{Message: "No metadata file found"}

	stored := false
	if prober, ok := storage.Capability[storage.Prober](s.docs.Store()); ok {
		exists, err := prober.Exists(ctx, s.docs.Key())
		if err != nil {
			return nil, err
		}
		stored = exists
	}
	if stored {
		status.HasBackup = true
		status.Message = "Metadata file exists"
		status.MetadataKey = s.docs.Key()
	}

	if lister, ok := storage.Capability[storage.BackupLister](s.docs.Store()); ok {
		backups, err := lister.Backups(ctx, s.docs.Key())
		if err != nil {
			return nil, err
		}
		status.Backups = backups
	}
	return status, nil
}

func (s *catalogService) Stats(ctx context.Context) (*Stats, error) {
	doc, err := s.docs.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Key: s.docs.Key(), Counts: doc.Counts()}
	if prober, ok := storage.Capability[storage.Prober](s.docs.Store()); ok {
		if stats.Stored, err = prober.Exists(ctx, s.docs.Key()); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (s *catalogService) Backups(ctx context.Context) ([]storage.BackupInfo, error) {
	lister, ok := storage.Capability[storage.BackupLister](s.docs.Store())
	if !ok {
		return nil, ErrBackupsUnsupported
	}
	return lister.Backups(ctx, s.docs.Key())
}

func (s *catalogService) Restore(ctx context.Context, name string) error {
	restorer, ok := storage.Capability[storage.BackupRestorer](s.docs.Store())
	if !ok {
		return ErrBackupsUnsupported
	}
	return restorer.Restore(ctx, s.docs.Key(), name)
}
