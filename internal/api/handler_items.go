package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"beo-inventory-backend/internal/lending"
	"beo-inventory-backend/internal/model"
	"beo-inventory-backend/internal/mw"
	"beo-inventory-backend/internal/store"
)

type createItemRequest struct {
	Code         string     `json:"code" binding:"required"`
	Name         string     `json:"name" binding:"required"`
	CategoryID   int64      `json:"categoryId" binding:"required"`
	LocationID   int64      `json:"locationId" binding:"required"`
	Description  string     `json:"description"`
	Brand        string     `json:"brand"`
	Model        string     `json:"model"`
	SerialNumber string     `json:"serialNumber"`
	IntakeDate   *time.Time `json:"intakeDate"`
	Notes        string     `json:"notes"`
}

// CreateItem handles POST /api/items.
func (h *Handler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := lending.NewItem{
		Code:         req.Code,
		Name:         req.Name,
		CategoryID:   req.CategoryID,
		LocationID:   req.LocationID,
		Description:  req.Description,
		Brand:        req.Brand,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Notes:        req.Notes,
	}
	if req.IntakeDate != nil {
		in.IntakeDate = *req.IntakeDate
	}

	item, err := h.engine.RegisterItem(c.Request.Context(), in, mw.Operator(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ListItems handles GET /api/items?status=&locationId=&categoryId=&includeInactive=.
func (h *Handler) ListItems(c *gin.Context) {
	filter := store.ItemFilter{Status: model.ItemStatus(c.Query("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	for param, dst := range map[string]*int64{"locationId": &filter.LocationID, "categoryId": &filter.CategoryID} {
		if raw := c.Query(param); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
				return
			}
			*dst = v
		}
	}
	filter.IncludeInactive = c.Query("includeInactive") == "true"

	items, err := h.store.ListItems(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetItem handles GET /api/items/:id.
func (h *Handler) GetItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.store.GetItem(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type deactivateRequest struct {
	Reason string `json:"reason"`
}

// DeactivateItem handles POST /api/items/:id/deactivate.
func (h *Handler) DeactivateItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req deactivateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if err := h.engine.DeactivateItem(c.Request.Context(), id, req.Reason, mw.Operator(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type statusChangeRequest struct {
	Status model.ItemStatus `json:"status" binding:"required"`
	Reason string           `json:"reason" binding:"required"`
	Notes  string           `json:"notes"`
}

// ChangeItemStatus handles POST /api/items/:id/status.
func (h *Handler) ChangeItemStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.engine.ManualStatusChange(c.Request.Context(), lending.ManualChange{
		ItemID:    id,
		NewStatus: req.Status,
		Reason:    req.Reason,
		Notes:     req.Notes,
		Operator:  mw.Operator(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListItemHistory handles GET /api/items/:id/history.
func (h *Handler) ListItemHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.store.ListStatusHistory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListItemActiveLoans handles GET /api/items/:id/loans/active.
func (h *Handler) ListItemActiveLoans(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	loans, err := h.store.ListActiveLoansByItem(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}
