package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"beo-inventory-backend/internal/lending"
	"beo-inventory-backend/internal/model"
	"beo-inventory-backend/internal/mw"
)

type createLoanRequest struct {
	ItemID             int64  `json:"itemId" binding:"required"`
	BeneficiaryID      int64  `json:"beneficiaryId" binding:"required"`
	RequestingMemberID int64  `json:"requestingMemberId" binding:"required"`
	DurationDays       *int   `json:"durationDays"`
	Notes              string `json:"notes"`
}

// CreateLoan handles POST /api/loans. The configured default duration applies
// when the form leaves it out.
func (h *Handler) CreateLoan(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	duration := h.lending.DefaultDurationDays
	if req.DurationDays != nil {
		duration = *req.DurationDays
	}

	loanID, err := h.engine.RegisterLoan(c.Request.Context(), lending.LoanRequest{
		ItemID:             req.ItemID,
		BeneficiaryID:      req.BeneficiaryID,
		RequestingMemberID: req.RequestingMemberID,
		DurationDays:       duration,
		Notes:              req.Notes,
		Operator:           mw.Operator(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	loan, err := h.store.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// GetLoan handles GET /api/loans/:id.
func (h *Handler) GetLoan(c *gin.Context) {
	loan, err := h.store.GetLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

type returnLoanRequest struct {
	ReturnLocationID int64               `json:"returnLocationId" binding:"required"`
	Condition        model.ItemCondition `json:"condition" binding:"required"`
	Notes            string              `json:"notes"`
}

// ReturnLoan handles POST /api/loans/:id/return.
func (h *Handler) ReturnLoan(c *gin.Context) {
	var req returnLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.engine.ReturnLoan(c.Request.Context(), lending.ReturnRequest{
		LoanID:           c.Param("id"),
		ReturnLocationID: req.ReturnLocationID,
		Condition:        req.Condition,
		Notes:            req.Notes,
		Operator:         mw.Operator(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	loan, err := h.store.GetLoan(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loan)
}

// ListOverdueLoans handles GET /api/loans/overdue.
func (h *Handler) ListOverdueLoans(c *gin.Context) {
	loans, err := h.store.ListOverdueLoans(c.Request.Context(), time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}

// ListBeneficiaryLoans handles GET /api/beneficiaries/:id/loans.
func (h *Handler) ListBeneficiaryLoans(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	loans, err := h.store.ListLoansByBeneficiary(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}

// ListMemberLoans handles GET /api/members/:id/loans.
func (h *Handler) ListMemberLoans(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	loans, err := h.store.ListLoansByMember(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}

// GetStats handles GET /api/stats.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context(), time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
