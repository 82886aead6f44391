package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"videosplus/storefront/internal/domain"
)

type userRepository struct {
	docs *Documents
}

// NewUserRepository creates the user view over docs.
func NewUserRepository(docs *Documents) UserRepository {
	return &userRepository{docs: docs}
}

func users(doc *domain.Document) []domain.User     { return doc.Users }
func usersPtr(doc *domain.Document) *[]domain.User { return &doc.Users }

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	doc, err := r.docs.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return findByID(ctx, r.docs, users, id)
}

// GetByEmail matches the address case-insensitively.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	doc, err := r.docs.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	i := indexByEmail(doc.Users, email)
	if i < 0 {
		return nil, ErrNotFound
	}
	user := doc.Users[i]
	return &user, nil
}

// Create assigns id and createdAt. An address already in use yields ErrConflict.
func (r *userRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	user.Email = strings.TrimSpace(user.Email)
	err := r.docs.mutate(ctx, "users.create", func(doc *domain.Document) (bool, error) {
		if indexByEmail(doc.Users, user.Email) >= 0 {
			return false, fmt.Errorf("email %s: %w", user.Email, ErrConflict)
		}
		user.ID = newID(doc.Users)
		user.CreatedAt = r.docs.timestamp()
		doc.Users = append(doc.Users, user)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	return updateByID(ctx, r.docs, "users.update", usersPtr, id, func(doc *domain.Document, u *domain.User) error {
		patch.Apply(u)
		if patch.Email == nil {
			return nil
		}
		if i := indexByEmail(doc.Users, u.Email); i >= 0 && doc.Users[i].ID != id {
			return fmt.Errorf("email %s: %w", u.Email, ErrConflict)
		}
		return nil
	})
}

func (r *userRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.docs, "users.delete", usersPtr, id)
}

func indexByEmail(items []domain.User, email string) int {
	if strings.TrimSpace(email) == "" {
		return -1
	}
	return slices.IndexFunc(items, func(u domain.User) bool { return u.HasEmail(email) })
}
