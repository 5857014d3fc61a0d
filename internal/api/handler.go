package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"workshop-backend/internal/cache"
	"workshop-backend/internal/store"
)

// Dispatcher queues a best-effort notification. Implemented by the notify
// worker pool; failures never reach the request path.
type Dispatcher interface {
	Dispatch(text string)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store         store.Store
	cache         *cache.QueryCache
	notifier      Dispatcher
	dueSoonWindow time.Duration
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, qc *cache.QueryCache, notifier Dispatcher, dueSoonWindow time.Duration) *Handler {
	return &Handler{
		store:         s,
		cache:         qc,
		notifier:      notifier,
		dueSoonWindow: dueSoonWindow,
	}
}

// notifyAsync queues a notification text if a notifier is configured.
func (h *Handler) notifyAsync(text string) {
	if h.notifier != nil {
		h.notifier.Dispatch(text)
	}
}

// respondOK writes the uniform success envelope.
func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondError writes the uniform failure envelope. Every failure crosses
// the API boundary as a value, never as a panic.
func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}

// respondStoreError maps persistence failures onto the envelope.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrAlreadyTriaged):
		respondError(c, http.StatusConflict, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}

// requireLocation reads the mandatory location scope from the query
// string. Every read and write is explicitly scoped; there is no ambient
// default location.
func requireLocation(c *gin.Context) (string, bool) {
	locationID := c.Query("location")
	if locationID == "" {
		respondError(c, http.StatusBadRequest, "location query parameter is required")
		return "", false
	}
	return locationID, true
}
