package repository

import (
	"context"
	"fmt"

	"videosplus/storefront/internal/domain"
)

type sessionRepository struct {
	docs *Documents
}

// NewSessionRepository creates the session view over docs.
func NewSessionRepository(docs *Documents) SessionRepository {
	return &sessionRepository{docs: docs}
}

func sessions(doc *domain.Document) []domain.Session     { return doc.Sessions }
func sessionsPtr(doc *domain.Document) *[]domain.Session { return &doc.Sessions }

func (r *sessionRepository) List(ctx context.Context) ([]domain.Session, error) {
	doc, err := r.docs.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Sessions, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	return findByID(ctx, r.docs, sessions, id)
}

func (r *sessionRepository) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	doc, err := r.docs.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := r.docs.now()
	for _, s := range doc.Sessions {
		if s.Token == token && s.Resolvable(now) {
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

// Create assigns id and createdAt. A token held by another active session yields ErrConflict.
func (r *sessionRepository) Create(ctx context.Context, session domain.Session) (*domain.Session, error) {
	err := r.docs.mutate(ctx, "sessions.create", func(doc *domain.Document) (bool, error) {
		if err := checkToken(doc.Sessions, "", session); err != nil {
			return false, err
		}
		session.ID = newID(doc.Sessions)
		session.CreatedAt = r.docs.timestamp()
		doc.Sessions = append(doc.Sessions, session)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Update(ctx context.Context, id string, patch domain.SessionPatch) (*domain.Session, error) {
	return updateByID(ctx, r.docs, "sessions.update", sessionsPtr, id, func(doc *domain.Document, s *domain.Session) error {
		patch.Apply(s)
		return checkToken(doc.Sessions, id, *s)
	})
}

func (r *sessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, r.docs, "sessions.delete", sessionsPtr, id)
}

// DeleteInactive removes every session that can no longer authenticate and returns
// how many were removed.
func (r *sessionRepository) DeleteInactive(ctx context.Context) (int, error) {
	removed := 0
	err := r.docs.mutate(ctx, "sessions.delete_inactive", func(doc *domain.Document) (bool, error) {
		now := r.docs.now()
		kept := doc.Sessions[:0:0]
		for _, s := range doc.Sessions {
			if s.Resolvable(now) {
				kept = append(kept, s)
			}
		}
		removed = len(doc.Sessions) - len(kept)
		doc.Sessions = kept
		return removed > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// checkToken rejects an active session whose token another active session already holds.
func checkToken(all []domain.Session, selfID string, s domain.Session) error {
	if !s.IsActive || s.Token == "" {
		return nil
	}
	for _, other := range all {
		if other.ID != selfID && other.IsActive && other.Token == s.Token {
			return fmt.Errorf("session token: %w", ErrConflict)
		}
	}
	return nil
}
