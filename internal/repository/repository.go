package repository

import (
	"context"

	"videosplus/storefront/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound = RepositoryError("not found")
	ErrConflict = RepositoryError("conflict")
	ErrClosed   = RepositoryError("repository closed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// VideoRepository defines the interface for interacting with catalog data.
type VideoRepository interface {
	List(ctx context.Context) ([]domain.Video, error)
	GetByID(ctx context.Context, id string) (*domain.Video, error)
	Create(ctx context.Context, video domain.Video) (*domain.Video, error)
	Update(ctx context.Context, id string, patch domain.VideoPatch) (*domain.Video, error)
	Delete(ctx context.Context, id string) (bool, error)
	// IncrementViews adds one view. A missing id returns ErrNotFound and writes nothing.
	IncrementViews(ctx context.Context, id string) (*domain.Video, error)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// SessionRepository defines the interface for interacting with login sessions.
type SessionRepository interface {
	List(ctx context.Context) ([]domain.Session, error)
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// GetByToken only finds sessions that are active and not expired.
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Create(ctx context.Context, session domain.Session) (*domain.Session, error)
	Update(ctx context.Context, id string, patch domain.SessionPatch) (*domain.Session, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteInactive(ctx context.Context) (int, error)
}

// SiteConfigRepository manages the configuration singleton.
type SiteConfigRepository interface {
	Get(ctx context.Context) (*domain.SiteConfig, error)
	Update(ctx context.Context, patch domain.SiteConfigPatch) (*domain.SiteConfig, error)
}
