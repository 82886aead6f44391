package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"videosplus/storefront/internal/repository"
	"videosplus/storefront/internal/service"
	"videosplus/storefront/internal/storage"
)

// abortInternal answers 500 with message. The cause goes to the client as details
// unless the backend was unavailable: that error names buckets, keys and credential
// settings, so it stays in the server log.
func abortInternal(c *gin.Context, message string, err error) {
	var unavailableErr *storage.UnavailableError
	if errors.As(err, &unavailableErr) {
		abortWithError(c, http.StatusInternalServerError, message)
		return
	}
	abortWithDetails(c, http.StatusInternalServerError, message, err.Error())
}

// respondError maps a service or repository error to a status code and aborts.
// resource names the entity in 404 messages.
func respondError(c *gin.Context, err error, resource string) {
	log := requestLog(c).WithError(err)

	var integrity *storage.IntegrityCheckFailedError
	var unavailable *storage.UnavailableError
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, storage.ErrObjectNotFound):
		log.Debug("resource not found")
		abortWithError(c, http.StatusNotFound, resource+" not found")
	case errors.Is(err, repository.ErrConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrBackupsUnsupported):
		abortWithError(c, http.StatusNotImplemented, err.Error())
	case errors.Is(err, storage.ErrVersionConflict):
		log.Warn("write kept conflicting with concurrent updates")
		abortWithError(c, http.StatusInternalServerError, "concurrent update, retry")
	case errors.As(err, &integrity):
		log.Error("stored document failed verification")
		abortWithError(c, http.StatusInternalServerError, "Failed to persist data")
	case errors.As(err, &unavailable):
		log.Error("storage unavailable")
		abortWithError(c, http.StatusInternalServerError, "Storage is unavailable")
	case errors.Is(err, repository.ErrClosed):
		abortWithError(c, http.StatusServiceUnavailable, "Server is shutting down")
	default:
		log.Error("unexpected error")
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// bindStrict decodes the JSON body into obj, rejecting unknown fields, then runs the
// binding tags. An empty body decodes as an empty object.
func bindStrict(c *gin.Context, obj any) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) > 0 {
		decoder := json.NewDecoder(bytes.NewReader(body))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(obj); err != nil {
			return err
		}
	}
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}

// abortValidation answers 400 for a body bindStrict rejected.
func abortValidation(c *gin.Context, err error) {
	abortWithDetails(c, http.StatusBadRequest, "Validation error", err.Error())
}
