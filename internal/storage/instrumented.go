package storage

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/metrics"
)

var tracer = otel.Tracer("videosplus/storefront/internal/storage")

// Instrumented wraps a DocumentStore with metrics and tracing spans. Optional
// capabilities of the wrapped store stay reachable through Unwrap.
type Instrumented struct {
	next    DocumentStore
	backend string
}

var _ DocumentStore = (*Instrumented)(nil)

func NewInstrumented(next DocumentStore, backend string) *Instrumented {
	return &Instrumented{next: next, backend: backend}
}

// Unwrap returns the decorated store.
func (s *Instrumented) Unwrap() DocumentStore { return s.next }

func (s *Instrumented) FetchDocument(ctx context.Context, key string) (*domain.Document, Version, error) {
	ctx, span := tracer.Start(ctx, "storage.FetchDocument", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("store.backend", s.backend), attribute.String("store.key", key))
	defer span.End()

	start := time.Now()
	doc, version, err := s.next.FetchDocument(ctx, key)
	metrics.ObserveStoreOperation(s.backend, "fetch", err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return doc, version, err
}

func (s *Instrumented) StoreDocument(ctx context.Context, key string, doc *domain.Document, expected Version) (Version, error) {
	ctx, span := tracer.Start(ctx, "storage.StoreDocument", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("store.backend", s.backend),
		attribute.String("store.key", key),
		attribute.Bool("store.conditional", !expected.IsZero()),
	)
	defer span.End()

	start := time.Now()
	version, err := s.next.StoreDocument(ctx, key, doc, expected)
	metrics.ObserveStoreOperation(s.backend, "store", err, time.Since(start))
	switch {
	case err == nil:
		counts := doc.Counts()
		metrics.SetDocumentRecords(counts.Videos, counts.Users, counts.Sessions)
	case errors.Is(err, ErrVersionConflict):
		metrics.RecordVersionConflict()
		span.SetStatus(codes.Error, "version conflict")
	default:
		var integrity *IntegrityCheckFailedError
		if errors.As(err, &integrity) {
			metrics.RecordBackupEvent(metrics.IntegrityViolation)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return version, err
}

// Capability finds an optional interface such as BackupLister on store or any store
// it decorates.
func Capability[T any](store DocumentStore) (T, bool) {
	for store != nil {
		if c, ok := store.(T); ok {
			return c, true
		}
		u, ok := store.(interface{ Unwrap() DocumentStore })
		if !ok {
			break
		}
		store = u.Unwrap()
	}
	var zero T
	return zero, false
}
