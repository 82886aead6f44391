package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/repository"
	"videosplus/storefront/internal/service"
)

// VideoHandler serves the catalog.
type VideoHandler struct {
	videoRepo repository.VideoRepository
	catalog   service.CatalogService
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(videoRepo repository.VideoRepository, catalog service.CatalogService) *VideoHandler {
	return &VideoHandler{videoRepo: videoRepo, catalog: catalog}
}

// CreateVideoRequest defines the expected JSON for creating a video.
type CreateVideoRequest struct {
	Title           string          `json:"title" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	Price           float64         `json:"price" binding:"required,gt=0"`
	Duration        domain.Duration `json:"duration"`
	VideoFileID     string          `json:"videoFileId"`
	ThumbnailFileID string          `json:"thumbnailFileId"`
	ProductLink     string          `json:"productLink" binding:"omitempty,url"`
	IsActive        *bool           `json:"isActive"` // defaults to true
	IsPurchased     bool            `json:"isPurchased"`
}

func (r CreateVideoRequest) toDomain() domain.Video {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return domain.Video{
		Title:           r.Title,
		Description:     r.Description,
		Price:           r.Price,
		Duration:        r.Duration,
		VideoFileID:     r.VideoFileID,
		ThumbnailFileID: r.ThumbnailFileID,
		ProductLink:     r.ProductLink,
		IsActive:        active,
		IsPurchased:     r.IsPurchased,
	}
}

// ListVideos godoc
// @Summary List the catalog
// @Tags Videos
// @Produce json
// @Success 200 {array} domain.Video
// @Router /videos [get]
func (h *VideoHandler) ListVideos(c *gin.Context) {
	videos, err := h.videoRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Video")
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	video, err := h.videoRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Video")
		return
	}
	c.JSON(http.StatusOK, video)
}

// CreateVideo godoc
// @Summary Add a video to the catalog
// @Tags Videos
// @Accept json
// @Produce json
// @Param video body CreateVideoRequest true "Video details"
// @Success 201 {object} domain.Video
// @Failure 400 {object} gin.H "Missing required field"
// @Security BearerAuth
// @Router /videos [post]
func (h *VideoHandler) CreateVideo(c *gin.Context) {
	var req CreateVideoRequest
	if err := bindStrict(c, &req); err != nil {
		abortValidation(c, err)
		return
	}

	video, err := h.videoRepo.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err, "Video")
		return
	}
	requestLog(c).WithField("video_id", video.ID).Info("video created")
	c.JSON(http.StatusCreated, video)
}

// UpdateVideo applies the allow-listed fields of the body. Unknown fields are rejected.
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	var patch domain.VideoPatch
	if err := bindStrict(c, &patch); err != nil {
		abortValidation(c, err)
		return
	}

	video, err := h.videoRepo.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err, "Video")
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	deleted, err := h.videoRepo.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Video")
		return
	}
	if !deleted {
		abortWithError(c, http.StatusNotFound, "Video not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Video deleted successfully"})
}

func (h *VideoHandler) IncrementViews(c *gin.Context) {
	video, err := h.videoRepo.IncrementViews(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Video")
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": video.Views})
}

// Health reports catalog entries missing required fields.
func (h *VideoHandler) Health(c *gin.Context) {
	report, err := h.catalog.VideoHealth(c.Request.Context())
	if err != nil {
		respondError(c, err, "Document")
		return
	}
	c.JSON(http.StatusOK, report)
}
