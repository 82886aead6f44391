package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"videosplus/storefront/internal/codec"
	"videosplus/storefront/internal/domain"
)

// MemoryStore keeps encoded documents in process memory. Writes still go through the
// codec so callers never share state with the store.
type MemoryStore struct {
	mu       sync.Mutex
	objects  map[string]memoryObject
	docs     documentSource
	failWith error
}

type memoryObject struct {
	raw      []byte
	revision int64
}

var (
	_ DocumentStore = (*MemoryStore)(nil)
	_ Prober        = (*MemoryStore)(nil)
)

func NewMemoryStore(defaults domain.Defaults, log logrus.FieldLogger) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		docs:    newDocumentSource(defaults, log, "memory-store"),
	}
}

// Put stores raw bytes under key as-is. Handy for seeding malformed content.
func (s *MemoryStore) Put(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj := s.objects[key]
	s.objects[key] = memoryObject{raw: append([]byte(nil), raw...), revision: obj.revision + 1}
}

// Raw returns the bytes stored under key.
func (s *MemoryStore) Raw(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj.raw, ok
}

// FailWith makes every later operation return err wrapped as UnavailableError. Nil clears it.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *MemoryStore) FetchDocument(ctx context.Context, key string) (*domain.Document, Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, Version{}, err
	}
	s.mu.Lock()
	obj, ok := s.objects[key]
	failWith := s.failWith
	s.mu.Unlock()

	if failWith != nil {
		return nil, Version{}, unavailable("fetch", key, failWith)
	}
	if !ok {
		return s.docs.fresh(), missingVersion, nil
	}
	return s.docs.decode(key, obj.raw), revisionVersion(obj.revision), nil
}

func (s *MemoryStore) StoreDocument(ctx context.Context, key string, doc *domain.Document, expected Version) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	raw, err := codec.Encode(doc)
	if err != nil {
		return Version{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return Version{}, unavailable("store", key, s.failWith)
	}

	obj, exists := s.objects[key]
	if !expected.IsZero() {
		current := strconv.FormatInt(obj.revision, 10)
		if expected.Missing && exists || !expected.Missing && (!exists || current != expected.Tag) {
			return Version{}, fmt.Errorf("store %s: %w", key, ErrVersionConflict)
		}
	}
	next := memoryObject{raw: raw, revision: obj.revision + 1}
	s.objects[key] = next
	return revisionVersion(next.revision), nil
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, unavailable("exists", key, s.failWith)
	}
	_, ok := s.objects[key]
	return ok, nil
}
