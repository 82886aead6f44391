package repository

import (
	"context"
	"slices"

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/idgen"
)

type entity interface {
	EntityID() string
}

func indexByID[T entity](items []T, id string) int {
	return slices.IndexFunc(items, func(e T) bool { return e.EntityID() == id })
}

// newID returns an identifier not yet used in items.
func newID[T entity](items []T) string {
	for {
		id := idgen.NewID()
		if indexByID(items, id) < 0 {
			return id
		}
	}
}

// findByID reads the collection picked by pick and returns a copy of the match.
func findByID[T entity](ctx context.Context, d *Documents, pick func(*domain.Document) []T, id string) (*T, error) {
	doc, err := d.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	items := pick(doc)
	i := indexByID(items, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	found := items[i]
	return &found, nil
}

// updateByID applies change to the matching record and persists. A missing id writes nothing.
func updateByID[T entity](ctx context.Context, d *Documents, op string, pick func(*domain.Document) *[]T, id string, change func(doc *domain.Document, item *T) error) (*T, error) {
	var updated T
	err := d.mutate(ctx, op, func(doc *domain.Document) (bool, error) {
		items := pick(doc)
		i := indexByID(*items, id)
		if i < 0 {
			return false, ErrNotFound
		}
		candidate := (*items)[i]
		if err := change(doc, &candidate); err != nil {
			return false, err
		}
		(*items)[i] = candidate
		updated = candidate
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// deleteByID splices out the matching record. It reports false without writing when absent.
func deleteByID[T entity](ctx context.Context, d *Documents, op string, pick func(*domain.Document) *[]T, id string) (bool, error) {
	deleted := false
	err := d.mutate(ctx, op, func(doc *domain.Document) (bool, error) {
		items := pick(doc)
		i := indexByID(*items, id)
		if i < 0 {
			deleted = false
			return false, nil
		}
		*items = slices.Delete(*items, i, i+1)
		deleted = true
		return true, nil
	})
	return deleted, err
}

func (d *Documents) timestamp() string {
	return idgen.Timestamp(d.now())
}
