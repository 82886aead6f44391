package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/lock"
	"videosplus/storefront/internal/logger"
	"videosplus/storefront/internal/retry"
	"videosplus/storefront/internal/storage"
)

const DefaultKey = "metadata/videosplus-data.json"

var tracer = otel.Tracer("videosplus/storefront/internal/repository")

// Options configures a Documents repository.
type Options struct {
	Key      string
	Defaults domain.Defaults
	// Locker serializes mutation cycles across processes. Nil means lock.Noop.
	Locker lock.Locker
	// Optimistic makes every store conditional on the version fetched and re-runs the
	// cycle on conflict, at most MaxRetries times.
	Optimistic bool
	MaxRetries int
	Log        logrus.FieldLogger
	Clock      func() time.Time
}

// mutateFunc changes doc in place and reports whether anything needs persisting.
type mutateFunc func(doc *domain.Document) (changed bool, err error)

type mutation struct {
	ctx    context.Context
	op     string
	fn     mutateFunc
	result chan error
}

// Documents mediates every access to the stored document. Reads fetch the document
// directly; mutations are queued to a single writer goroutine so that writers in one
// process never overwrite each other.
type Documents struct {
	store    storage.DocumentStore
	key      string
	defaults domain.Defaults
	locker   lock.Locker
	retryCfg *retry.Config
	log      logrus.FieldLogger
	now      func() time.Time

	optimistic bool

	mutations chan *mutation
	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewDocuments starts the writer goroutine. Call Close to stop it.
func NewDocuments(store storage.DocumentStore, opts Options) *Documents {
	d := &Documents{
		store:      store,
		key:        opts.Key,
		defaults:   opts.Defaults,
		locker:     opts.Locker,
		log:        logger.Component(opts.Log, "repository"),
		now:        opts.Clock,
		optimistic: opts.Optimistic,
		mutations:  make(chan *mutation),
		closing:    make(chan struct{}),
	}
	if d.key == "" {
		d.key = DefaultKey
	}
	if d.locker == nil {
		d.locker = lock.Noop{}
	}
	if d.now == nil {
		d.now = time.Now
	}
	d.retryCfg = retry.DefaultConfig()
	d.retryCfg.InitialBackoff = 20 * time.Millisecond
	d.retryCfg.MaxBackoff = time.Second
	d.retryCfg.Retryable = func(err error) bool { return errors.Is(err, storage.ErrVersionConflict) }
	if opts.MaxRetries > 0 {
		d.retryCfg.MaxAttempts = opts.MaxRetries
	}

	d.wg.Add(1)
	go d.writer()
	return d
}

// Key is the storage key of the document.
func (d *Documents) Key() string { return d.key }

// Store returns the backend the repository reads and writes.
func (d *Documents) Store() storage.DocumentStore { return d.store }

// Close stops accepting mutations and waits for the one in flight.
func (d *Documents) Close() {
	d.closeOnce.Do(func() { close(d.closing) })
	d.wg.Wait()
}

// Snapshot fetches the whole current document.
func (d *Documents) Snapshot(ctx context.Context) (*domain.Document, error) {
	ctx, span := tracer.Start(ctx, "repository.Snapshot")
	defer span.End()

	doc, _, err := d.store.FetchDocument(ctx, d.key)
	return doc, err
}

// Replace overwrites the stored document with doc, going through the writer like any
// other mutation.
func (d *Documents) Replace(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return errors.New("replace: nil document")
	}
	next := *doc
	next.Normalize()
	return d.mutate(ctx, "document.replace", func(cur *domain.Document) (bool, error) {
		*cur = next
		return true, nil
	})
}

// mutate queues fn and waits for the writer to run it. ctx bounds the wait for the
// queue and the lock; once the writer picks the mutation up it runs to completion.
func (d *Documents) mutate(ctx context.Context, op string, fn mutateFunc) error {
	m := &mutation{ctx: ctx, op: op, fn: fn, result: make(chan error, 1)}
	select {
	case d.mutations <- m:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.closing:
		return ErrClosed
	}
	return <-m.result
}

func (d *Documents) writer() {
	defer d.wg.Done()
	for {
		select {
		case m := <-d.mutations:
			m.result <- d.run(m)
		case <-d.closing:
			return
		}
	}
}

func (d *Documents) run(m *mutation) error {
	ctx, span := tracer.Start(m.ctx, "repository."+m.op)
	span.SetAttributes(attribute.String("document.key", d.key), attribute.Bool("document.optimistic", d.optimistic))
	defer span.End()

	release, err := d.locker.Acquire(ctx, d.key)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer release()

	ctx = context.WithoutCancel(ctx)
	if !d.optimistic {
		return d.cycle(ctx, m.fn)
	}
	_, err = retry.Do(ctx, d.retryCfg, d.log, m.op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.cycle(ctx, m.fn)
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// cycle is one load-mutate-store round trip.
func (d *Documents) cycle(ctx context.Context, fn mutateFunc) error {
	doc, version, err := d.store.FetchDocument(ctx, d.key)
	if err != nil {
		return err
	}
	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	if !d.optimistic {
		version = storage.Version{}
	}
	_, err = d.store.StoreDocument(ctx, d.key, doc, version)
	return err
}

// Repositories bundles the per-collection views over one Documents.
type Repositories struct {
	Documents  *Documents
	Videos     VideoRepository
	Users      UserRepository
	Sessions   SessionRepository
	SiteConfig SiteConfigRepository
}

func NewRepositories(d *Documents) *Repositories {
	return &Repositories{
		Documents:  d,
		Videos:     NewVideoRepository(d),
		Users:      NewUserRepository(d),
		Sessions:   NewSessionRepository(d),
		SiteConfig: NewSiteConfigRepository(d),
	}
}
