package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"beo-inventory-backend/config"
	"beo-inventory-backend/internal/integrity"
	"beo-inventory-backend/internal/lending"
	"beo-inventory-backend/internal/model"
	"beo-inventory-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	engine   *lending.Engine
	checker  *integrity.Checker
	repairer *integrity.Repairer
	webpush  *webpush.Options
	lending  config.LendingConfig
}

// Deps are the services the API exposes.
type Deps struct {
	Store    store.Store
	Engine   *lending.Engine
	Checker  *integrity.Checker
	Repairer *integrity.Repairer
	WebPush  *webpush.Options
	Lending  config.LendingConfig
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		store:    d.Store,
		engine:   d.Engine,
		checker:  d.Checker,
		repairer: d.Repairer,
		webpush:  d.WebPush,
		lending:  d.Lending,
	}
}

// statusFor maps engine and store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrAlreadyReturned),
		errors.Is(err, model.ErrNoop),
		errors.Is(err, model.ErrIntegrityViolation):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// idParam parses a numeric path parameter, writing 400 when it is malformed.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
