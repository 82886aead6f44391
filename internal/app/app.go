// Package app assembles the storage stack and repositories from configuration. It is
// shared by the API server and storectl.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"videosplus/storefront/internal/config"
	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/lock"
	"videosplus/storefront/internal/logger"
	"videosplus/storefront/internal/repository"
	"videosplus/storefront/internal/storage"
)

// App owns every long-lived client. Close releases them in reverse order.
type App struct {
	Config config.Config
	Log    logrus.FieldLogger

	Store storage.DocumentStore
	Files storage.FileStorage
	Docs  *repository.Documents
	Repos *repository.Repositories

	closers []func(context.Context) error
}

// Option adjusts how New builds the stack.
type Option func(*options)

type options struct {
	fs afero.Fs
}

// WithFs replaces the OS filesystem used by the file backend.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// New connects the configured backend and starts the repository writer.
func New(ctx context.Context, cfg config.Config, log logrus.FieldLogger, opts ...Option) (*App, error) {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = logger.Discard()
	}

	a := &App{Config: cfg, Log: log}
	defaults := Defaults(cfg)

	// Media always lives in the bucket, whatever backend keeps the document.
	s3Store, err := storage.NewS3Storage(ctx, cfg.S3, defaults, log)
	if err != nil {
		return nil, fmt.Errorf("init object store: %w", err)
	}
	a.Files = s3Store

	var store storage.DocumentStore
	switch cfg.Store.Backend {
	case config.BackendS3, "":
		store = s3Store
	case config.BackendFile:
		store = storage.NewFileStore(o.fs, cfg.File, defaults, log)
	case config.BackendMongo:
		client, err := storage.ConnectMongo(ctx, cfg.Database.URI)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return storage.DisconnectMongo(client) })
		store = storage.NewMongoStore(client.Database(cfg.Database.Name), cfg.Database.Collection, defaults, log)
	case config.BackendMemory:
		store = storage.NewMemoryStore(defaults, log)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	backend := cfg.Store.Backend
	if backend == "" {
		backend = config.BackendS3
	}
	a.Store = storage.NewInstrumented(store, backend)

	var locker lock.Locker = lock.Noop{}
	if cfg.Lock.RedisURL != "" {
		rdb, err := lock.NewRedisClient(cfg.Lock.RedisURL)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		locker = lock.NewRedisLocker(rdb, cfg.Lock, logger.Component(log, "lock"))
	}

	a.Docs = repository.NewDocuments(a.Store, repository.Options{
		Key:        cfg.Store.Key,
		Defaults:   defaults,
		Locker:     locker,
		Optimistic: cfg.Store.OptimisticConcurrency,
		MaxRetries: cfg.Store.MaxRetries,
		Log:        log,
	})
	a.closers = append(a.closers, func(context.Context) error { a.Docs.Close(); return nil })
	a.Repos = repository.NewRepositories(a.Docs)

	log.WithFields(logrus.Fields{
		"backend":    backend,
		"key":        a.Docs.Key(),
		"optimistic": cfg.Store.OptimisticConcurrency,
		"redis_lock": cfg.Lock.RedisURL != "",
	}).Info("document store ready")
	return a, nil
}

// Close stops the writer and disconnects clients, newest first.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Defaults derives the seed document from configuration. The administrator is only
// seeded when both the address and the password hash are configured.
func Defaults(cfg config.Config) domain.Defaults {
	d := domain.Defaults{
		Wasabi: domain.WasabiConfig{
			AccessKey: cfg.S3.AccessKeyID,
			SecretKey: cfg.S3.SecretAccessKey,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.BucketName,
			Endpoint:  cfg.S3.Endpoint,
		},
	}
	b := cfg.Bootstrap
	if strings.TrimSpace(b.AdminEmail) != "" && b.AdminPasswordHash != "" {
		d.Admin = &domain.User{
			ID:       "admin",
			Email:    strings.TrimSpace(b.AdminEmail),
			Name:     b.AdminName,
			Password: b.AdminPasswordHash,
			Role:     domain.RoleAdmin,
		}
	}
	return d
}
