package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/repository"
)

// SessionHandler exposes the session collection.
type SessionHandler struct {
	sessionRepo repository.SessionRepository
}

func NewSessionHandler(sessionRepo repository.SessionRepository) *SessionHandler {
	return &SessionHandler{sessionRepo: sessionRepo}
}

type CreateSessionRequest struct {
	Token     string `json:"token" binding:"required"`
	UserID    string `json:"userId" binding:"required"`
	IsActive  *bool  `json:"isActive"` // defaults to true
	ExpiresAt string `json:"expiresAt" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// GetByToken only resolves active, unexpired sessions.
func (h *SessionHandler) GetByToken(c *gin.Context) {
	session, err := h.sessionRepo.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err, "Session")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Session")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := bindStrict(c, &req); err != nil {
		abortValidation(c, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	session, err := h.sessionRepo.Create(c.Request.Context(), domain.Session{
		Token:     req.Token,
		UserID:    req.UserID,
		IsActive:  active,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err, "Session")
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) UpdateSession(c *gin.Context) {
	var patch domain.SessionPatch
	if err := bindStrict(c, &patch); err != nil {
		abortValidation(c, err)
		return
	}

	session, err := h.sessionRepo.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err, "Session")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	deleted, err := h.sessionRepo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Session")
		return
	}
	if !deleted {
		abortWithError(c, http.StatusNotFound, "Session not found")
		return
	}
	c.Status(http.StatusNoContent)
}
