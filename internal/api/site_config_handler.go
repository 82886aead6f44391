package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/repository"
)

// SiteConfigHandler serves the configuration singleton. Anonymous callers only ever
// see the public projection.
type SiteConfigHandler struct {
	configRepo repository.SiteConfigRepository
}

func NewSiteConfigHandler(configRepo repository.SiteConfigRepository) *SiteConfigHandler {
	return &SiteConfigHandler{configRepo: configRepo}
}

func (h *SiteConfigHandler) GetPublic(c *gin.Context) {
	cfg, err := h.configRepo.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, "Site config")
		return
	}
	c.JSON(http.StatusOK, cfg.Public())
}

func (h *SiteConfigHandler) GetFull(c *gin.Context) {
	cfg, err := h.configRepo.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, "Site config")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *SiteConfigHandler) Update(c *gin.Context) {
	var patch domain.SiteConfigPatch
	if err := bindStrict(c, &patch); err != nil {
		abortValidation(c, err)
		return
	}

	cfg, err := h.configRepo.Update(c.Request.Context(), patch)
	if err != nil {
		respondError(c, err, "Site config")
		return
	}
	requestLog(c).Info("site config updated")
	c.JSON(http.StatusOK, cfg)
}
