package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"videosplus/storefront/internal/storage"
)

// MediaHandler hands out signed links to bucket objects and removes them.
type MediaHandler struct {
	files         storage.FileStorage
	presignExpiry time.Duration
}

func NewMediaHandler(files storage.FileStorage, presignExpiry time.Duration) *MediaHandler {
	if presignExpiry <= 0 {
		presignExpiry = storage.DefaultPresignedURLExpiry
	}
	return &MediaHandler{files: files, presignExpiry: presignExpiry}
}

// fileID accepts nested object keys such as videos/abc.mp4.
func fileID(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("fileId"), "/")
}

// SignedURL godoc
// @Summary Generate a temporary download link
// @Tags Media
// @Produce json
// @Param fileId path string true "Object key"
// @Success 200 {object} gin.H "success, url, expiresIn"
// @Failure 500 {object} gin.H "Failed to generate signed URL"
// @Router /signed-url/{fileId} [get]
func (h *MediaHandler) SignedURL(c *gin.Context) {
	id := fileID(c)
	if id == "" {
		abortWithError(c, http.StatusBadRequest, "File ID is required")
		return
	}

	url, err := h.files.GeneratePresignedDownloadURL(c.Request.Context(), id, h.presignExpiry)
	if err != nil {
		requestLog(c).WithError(err).WithField("file_id", id).Error("failed to generate signed URL")
		abortInternal(c, "Failed to generate signed URL", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"url":       url,
		"expiresIn": int(h.presignExpiry.Seconds()),
	})
}

func (h *MediaHandler) DeleteFile(c *gin.Context) {
	id := fileID(c)
	if id == "" {
		abortWithError(c, http.StatusBadRequest, "File ID is required")
		return
	}

	if err := h.files.DeleteObject(c.Request.Context(), id); err != nil {
		requestLog(c).WithError(err).WithField("file_id", id).Error("failed to delete file")
		abortInternal(c, "Failed to delete file", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted successfully"})
}
