package repository

import (
	"context"

	"videosplus/storefront/internal/domain"
)

type videoRepository struct {
	docs *Documents
}

// NewVideoRepository creates the catalog view over docs.
func NewVideoRepository(docs *Documents) VideoRepository {
	return &videoRepository{docs: docs}
}

func videos(doc *domain.Document) []domain.Video     { return doc.Videos }
func videosPtr(doc *domain.Document) *[]domain.Video { return &doc.Videos }

// List returns the catalog in display order.
func (r *videoRepository) List(ctx context.Context) ([]domain.Video, error) {
	doc, err := r.docs.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Videos, nil
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	return findByID(ctx, r.docs, videos, id)
}

// Create assigns id and createdAt and appends the video to the catalog.
func (r *videoRepository) Create(ctx context.Context, video domain.Video) (*domain.Video, error) {
	err := r.docs.mutate(ctx, "videos.create", func(doc *domain.Document) (bool, error) {
		video.ID = newID(doc.Videos)
		video.CreatedAt = r.docs.timestamp()
		doc.Videos = append(doc.Videos, video)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepository) Update(ctx context.Context, id string, patch domain.VideoPatch) (*domain.Video, error) {
	return updateByID(ctx, r.docs, "videos.update", videosPtr, id, func(_ *domain.Document, v *domain.Video) error {
		patch.Apply(v)
		return nil
	})
}

func (r *videoRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.docs, "videos.delete", videosPtr, id)
}

func (r *videoRepository) IncrementViews(ctx context.Context, id string) (*domain.Video, error) {
	return updateByID(ctx, r.docs, "videos.increment_views", videosPtr, id, func(_ *domain.Document, v *domain.Video) error {
		v.Views++
		return nil
	})
}
