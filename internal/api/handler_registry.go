package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"beo-inventory-backend/internal/model"
	"beo-inventory-backend/internal/store"
)

type createLocationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Manager string `json:"manager"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// CreateLocation handles POST /api/locations.
func (h *Handler) CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loc := model.Location{Name: req.Name, Address: req.Address, Manager: req.Manager, Phone: req.Phone, Email: req.Email}
	if err := h.store.CreateLocation(c.Request.Context(), &loc); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

type createCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateCategory handles POST /api/categories.
func (h *Handler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat := model.Category{Name: req.Name, Description: req.Description}
	if err := h.store.CreateCategory(c.Request.Context(), &cat); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

type createLodgeRequest struct {
	Name   string `json:"name" binding:"required"`
	Number int    `json:"number"`
}

// CreateLodge handles POST /api/lodges.
func (h *Handler) CreateLodge(c *gin.Context) {
	var req createLodgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lodge := model.Lodge{Name: req.Name, Number: req.Number}
	if err := h.store.CreateLodge(c.Request.Context(), &lodge); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lodge)
}

type createMemberRequest struct {
	Name    string `json:"name" binding:"required"`
	LodgeID int64  `json:"lodgeId" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Degree  string `json:"degree"`
}

// CreateMember handles POST /api/members.
func (h *Handler) CreateMember(c *gin.Context) {
	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member := model.Member{Name: req.Name, LodgeID: req.LodgeID, Phone: req.Phone, Email: req.Email, Degree: req.Degree}
	if err := h.store.CreateMember(c.Request.Context(), &member); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

type createBeneficiaryRequest struct {
	Kind                model.BeneficiaryKind `json:"kind" binding:"required"`
	MemberID            *int64                `json:"memberId"`
	ResponsibleMemberID *int64                `json:"responsibleMemberId"`
	Relationship        string                `json:"relationship"`
	Name                string                `json:"name"`
	Phone               string                `json:"phone"`
	Address             string                `json:"address" binding:"required"`
	Notes               string                `json:"notes"`
}

// CreateBeneficiary handles POST /api/beneficiaries.
func (h *Handler) CreateBeneficiary(c *gin.Context) {
	var req createBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b := model.Beneficiary{
		Kind:                req.Kind,
		MemberID:            req.MemberID,
		ResponsibleMemberID: req.ResponsibleMemberID,
		Relationship:        req.Relationship,
		Name:                req.Name,
		Phone:               req.Phone,
		Address:             req.Address,
		Notes:               req.Notes,
	}
	if err := h.store.CreateBeneficiary(c.Request.Context(), &b); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// UpdateBeneficiaryContact handles PATCH /api/beneficiaries/:id/contact.
func (h *Handler) UpdateBeneficiaryContact(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req store.ContactUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.store.UpdateBeneficiaryContact(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
