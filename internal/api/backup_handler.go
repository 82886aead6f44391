package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videosplus/storefront/internal/service"
)

// BackupHandler reports on the stored document and its backup copies.
type BackupHandler struct {
	catalog service.CatalogService
}

func NewBackupHandler(catalog service.CatalogService) *BackupHandler {
	return &BackupHandler{catalog: catalog}
}

type RestoreRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *BackupHandler) Status(c *gin.Context) {
	status, err := h.catalog.BackupStatus(c.Request.Context())
	if err != nil {
		requestLog(c).WithError(err).Error("failed to check backup status")
		abortInternal(c, "Failed to check backup status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *BackupHandler) List(c *gin.Context) {
	backups, err := h.catalog.Backups(c.Request.Context())
	if err != nil {
		respondError(c, err, "Backup")
		return
	}
	c.JSON(http.StatusOK, backups)
}

// Restore rolls the document back to a named backup copy.
func (h *BackupHandler) Restore(c *gin.Context) {
	var req RestoreRequest
	if err := bindStrict(c, &req); err != nil {
		abortValidation(c, err)
		return
	}
	if err := h.catalog.Restore(c.Request.Context(), req.Name); err != nil {
		respondError(c, err, "Backup")
		return
	}
	requestLog(c).WithField("backup", req.Name).Warn("document restored from backup")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document restored from " + req.Name})
}

func (h *BackupHandler) Stats(c *gin.Context) {
	stats, err := h.catalog.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Document")
		return
	}
	c.JSON(http.StatusOK, stats)
}
