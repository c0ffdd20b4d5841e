package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beo-inventory-backend/internal/mw"
)

// CheckIntegrity handles GET /api/integrity.
func (h *Handler) CheckIntegrity(c *gin.Context) {
	report, err := h.checker.CheckIntegrity(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RepairIntegrity handles POST /api/integrity/repair. It checks first so that
// the repair always works from a fresh report.
func (h *Handler) RepairIntegrity(c *gin.Context) {
	report, err := h.checker.CheckIntegrity(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	repairLog, err := h.repairer.Repair(c.Request.Context(), report, mw.Operator(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "repair": repairLog})
}
