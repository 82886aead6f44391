package domain

import "time"

// Session is a login session. It resolves by token only while IsActive is true and,
// when ExpiresAt is set, before that instant. Inactive sessions stay in the document
// until deleted explicitly.
type Session struct {
	ID        string `json:"id"`
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt,omitempty"` // ISO-8601; empty means no age limit
}

// EntityID returns the session's identifier.
func (s Session) EntityID() string { return s.ID }

// Expired reports whether the session carries an expiry that lies before now.
// An unparseable expiry counts as expired.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt == "" {
		return false
	}
	exp, err := time.Parse(time.RFC3339Nano, s.ExpiresAt)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}

// Resolvable reports whether the session may authenticate a request at now.
func (s *Session) Resolvable(now time.Time) bool {
	return s.IsActive && !s.Expired(now)
}

// SessionPatch holds the fields an update may change.
type SessionPatch struct {
	Token     *string `json:"token,omitempty" binding:"omitempty,min=1"`
	UserID    *string `json:"userId,omitempty" binding:"omitempty,min=1"`
	IsActive  *bool   `json:"isActive,omitempty"`
	ExpiresAt *string `json:"expiresAt,omitempty" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// Apply merges the patch into s.
func (p SessionPatch) Apply(s *Session) {
	if p.Token != nil {
		s.Token = *p.Token
	}
	if p.UserID != nil {
		s.UserID = *p.UserID
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	if p.ExpiresAt != nil {
		s.ExpiresAt = *p.ExpiresAt
	}
}
