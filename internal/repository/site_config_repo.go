package repository

import (
	"context"

	"videosplus/storefront/internal/domain"
)

type siteConfigRepository struct {
	docs *Documents
}

// NewSiteConfigRepository creates the configuration view over docs.
func NewSiteConfigRepository(docs *Documents) SiteConfigRepository {
	return &siteConfigRepository{docs: docs}
}

// Get returns the configuration, persisting the default one when the stored document
// has none.
func (r *siteConfigRepository) Get(ctx context.Context) (*domain.SiteConfig, error) {
	doc, err := r.docs.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if doc.SiteConfig != nil {
		return doc.SiteConfig, nil
	}

	var cfg domain.SiteConfig
	err = r.docs.mutate(ctx, "site_config.init", func(doc *domain.Document) (bool, error) {
		if doc.SiteConfig != nil {
			cfg = *doc.SiteConfig
			return false, nil
		}
		cfg = r.docs.defaults.SiteConfigOrDefault(doc)
		stored := cfg
		doc.SiteConfig = &stored
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *siteConfigRepository) Update(ctx context.Context, patch domain.SiteConfigPatch) (*domain.SiteConfig, error) {
	var cfg domain.SiteConfig
	err := r.docs.mutate(ctx, "site_config.update", func(doc *domain.Document) (bool, error) {
		cfg = r.docs.defaults.SiteConfigOrDefault(doc)
		patch.Apply(&cfg)
		stored := cfg
		doc.SiteConfig = &stored
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
