package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/sellers"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// SellerService is implemented by sellers.Service.
type SellerService interface {
	Create(ctx context.Context, seller *sellers.Seller) error
	Update(ctx context.Context, seller *sellers.Seller) error
	Get(ctx context.Context, sellerID id.ID) (*sellers.Seller, error)
	List(ctx context.Context) ([]sellers.Seller, error)
	Delete(ctx context.Context, sellerID id.ID) error
	SetBrandCommission(ctx context.Context, sellerID id.ID, brand string, pct types.Percent) (*sellers.BrandCommission, error)
	BrandCommissions(ctx context.Context, sellerID id.ID) ([]sellers.BrandCommission, error)
	DeleteBrandCommission(ctx context.Context, sellerID, commissionID id.ID) error
	Statement(ctx context.Context, sellerID id.ID) (*sellers.Statement, error)
	Statements(ctx context.Context) ([]sellers.Statement, error)
}

type SellerHandler struct {
	*BaseHandler
	service SellerService
}

func NewSellerHandler(base *BaseHandler, service SellerService) *SellerHandler {
	return &SellerHandler{BaseHandler: base, service: service}
}

func (h *SellerHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Items(c, items, len(items), len(items), 0)
}

func (h *SellerHandler) Get(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	s, err := h.service.Get(c.Request.Context(), sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SellerHandler) Create(c *gin.Context) {
	var req dto.CreateSellerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	s := req.ToDomain()
	if err := h.service.Create(c.Request.Context(), s); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, s)
}

func (h *SellerHandler) Update(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSellerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	s, err := h.service.Get(ctx, sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(s)
	if err := h.service.Update(ctx, s); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// Delete removes the seller with their commissions, payments and bonuses.
func (h *SellerHandler) Delete(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), sellerID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Commissions handles GET /sellers/:id/commissions.
func (h *SellerHandler) Commissions(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.BrandCommissions(c.Request.Context(), sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SetCommission handles PUT /sellers/:id/commissions (upsert by brand).
func (h *SellerHandler) SetCommission(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.BrandCommissionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	rule, err := h.service.SetBrandCommission(c.Request.Context(), sellerID, req.Brand, req.Percent)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rule)
}

// DeleteCommission handles DELETE /sellers/:id/commissions/:commissionId.
func (h *SellerHandler) DeleteCommission(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	ruleID, ok := h.ParseID(c, "commissionId")
	if !ok {
		return
	}
	if err := h.service.DeleteBrandCommission(c.Request.Context(), sellerID, ruleID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Statement handles GET /sellers/:id/statement.
func (h *SellerHandler) Statement(c *gin.Context) {
	sellerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	st, err := h.service.Statement(c.Request.Context(), sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Statements handles GET /statements.
func (h *SellerHandler) Statements(c *gin.Context) {
	items, err := h.service.Statements(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
