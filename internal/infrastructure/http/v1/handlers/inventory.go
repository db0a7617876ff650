package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// StockService is the ledger side of inventory.Service.
type StockService interface {
	Receive(ctx context.Context, productID id.ID, in inventory.ReceiveInput) (*inventory.Lot, error)
	Lots(ctx context.Context, productID id.ID) ([]inventory.Lot, error)
	StockLevels(ctx context.Context) (low, near []inventory.Product, err error)
	Expiring(ctx context.Context, days int) ([]inventory.ExpiringLot, error)
	Expired(ctx context.Context) ([]inventory.ExpiringLot, types.Money, error)
	Audit(ctx context.Context, productID *id.ID) ([]inventory.AuditRow, error)
	BackfillUntracked(ctx context.Context) (int64, error)
}

type InventoryHandler struct {
	*BaseHandler
	service StockService
}

func NewInventoryHandler(base *BaseHandler, service StockService) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// Receive handles POST /products/:id/receipts.
func (h *InventoryHandler) Receive(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ReceiveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	lot, err := h.service.Receive(c.Request.Context(), productID, req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, lot)
}

// Lots handles GET /products/:id/lots.
func (h *InventoryHandler) Lots(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lots, err := h.service.Lots(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lots})
}

// ProductAudit handles GET /products/:id/audit.
func (h *InventoryHandler) ProductAudit(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	h.audit(c, &productID)
}

// Audit handles GET /inventory/audit.
func (h *InventoryHandler) Audit(c *gin.Context) {
	h.audit(c, nil)
}

func (h *InventoryHandler) audit(c *gin.Context, productID *id.ID) {
	rows, err := h.service.Audit(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAudit(rows))
}

// LowStock handles GET /inventory/low-stock.
func (h *InventoryHandler) LowStock(c *gin.Context) {
	low, near, err := h.service.StockLevels(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StockLevelsResponse{Low: dto.FromProducts(low), Near: dto.FromProducts(near)})
}

// Expiring handles GET /inventory/expiring?days=N.
func (h *InventoryHandler) Expiring(c *gin.Context) {
	lots, err := h.service.Expiring(c.Request.Context(), h.ParseIntQuery(c, "days", 0))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lots})
}

// Expired handles GET /inventory/expired.
func (h *InventoryHandler) Expired(c *gin.Context) {
	lots, loss, err := h.service.Expired(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ExpiredResponse{Lots: lots, Loss: loss})
}

// Backfill handles POST /inventory/backfill.
func (h *InventoryHandler) Backfill(c *gin.Context) {
	n, err := h.service.BackfillUntracked(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.BackfillResponse{Updated: n})
}
