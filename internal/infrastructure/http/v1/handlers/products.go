package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// ProductService is the catalog side of inventory.Service.
type ProductService interface {
	CreateProduct(ctx context.Context, p *inventory.Product) error
	UpdateProduct(ctx context.Context, p *inventory.Product) error
	GetProduct(ctx context.Context, productID id.ID) (*inventory.Product, error)
	ListProducts(ctx context.Context, filter inventory.ProductFilter) ([]inventory.Product, error)
	Brands(ctx context.Context) ([]string, error)
	DeleteProduct(ctx context.Context, productID id.ID) error
}

type ProductHandler struct {
	*BaseHandler
	service ProductService
}

func NewProductHandler(base *BaseHandler, service ProductService) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// List handles GET /products?brand=&q=&limit=&offset=.
func (h *ProductHandler) List(c *gin.Context) {
	limit, offset := h.Paging(c)
	items, err := h.service.ListProducts(c.Request.Context(), inventory.ProductFilter{
		Brand:  c.Query("brand"),
		Search: c.Query("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Items(c, dto.FromProducts(items), len(items), limit, offset)
}

func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProduct(p))
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p := req.ToDomain()
	if err := h.service.CreateProduct(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromProduct(p))
}

func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	p, err := h.service.GetProduct(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(p)
	if err := h.service.UpdateProduct(ctx, p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Brands handles GET /brands.
func (h *ProductHandler) Brands(c *gin.Context) {
	brands, err := h.service.Brands(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": brands})
}
