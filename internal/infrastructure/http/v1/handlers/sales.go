package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/invoice"
	"backoffice/internal/domain/sales"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// SaleService is implemented by sales.Service.
type SaleService interface {
	Register(ctx context.Context, in sales.RegisterInput) (*sales.Sale, error)
	Get(ctx context.Context, saleID id.ID) (*sales.Sale, error)
	List(ctx context.Context, filter sales.Filter) ([]sales.Sale, error)
	Delete(ctx context.Context, saleID id.ID) error
}

// InvoiceService is implemented by invoice.Service.
type InvoiceService interface {
	Summary(ctx context.Context, saleID id.ID) (*invoice.Summary, error)
	Render(ctx context.Context, saleID id.ID) (*invoice.Document, error)
}

type SaleHandler struct {
	*BaseHandler
	service  SaleService
	invoices InvoiceService
}

func NewSaleHandler(base *BaseHandler, service SaleService, invoices InvoiceService) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service, invoices: invoices}
}

// Create handles POST /sales. Stock is consumed FEFO; a shortage on any line
// rejects the whole sale.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sale, err := h.service.Register(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, sale)
}

func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	sale, err := h.service.Get(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// List handles GET /sales?sellerId=&from=&to=&limit=&offset=.
func (h *SaleHandler) List(c *gin.Context) {
	sellerID, ok := h.QueryID(c, "sellerId")
	if !ok {
		return
	}
	from, ok := h.QueryDate(c, "from")
	if !ok {
		return
	}
	to, ok := h.QueryDate(c, "to")
	if !ok {
		return
	}
	limit, offset := h.Paging(c)
	items, err := h.service.List(c.Request.Context(), sales.Filter{
		SellerID: sellerID, From: from, To: to, Limit: limit, Offset: offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Items(c, items, len(items), limit, offset)
}

// Delete reverses the sale's stock movements and removes it.
func (h *SaleHandler) Delete(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), saleID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Invoice handles GET /sales/:id/invoice. With ?format=file the rendered
// document is sent as an attachment; otherwise the summary is returned.
func (h *SaleHandler) Invoice(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if c.Query("format") != "file" {
		summary, err := h.invoices.Summary(ctx, saleID)
		if err != nil {
			h.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
		return
	}

	doc, err := h.invoices.Render(ctx, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
