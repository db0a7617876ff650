package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/returns"
	"backoffice/internal/infrastructure/http/v1/dto"
)

// ReturnService is implemented by returns.Service.
type ReturnService interface {
	Register(ctx context.Context, in returns.RegisterInput) (*returns.Return, error)
	Get(ctx context.Context, returnID id.ID) (*returns.Return, error)
	List(ctx context.Context, filter returns.Filter) ([]returns.Return, error)
	UpdateHeader(ctx context.Context, returnID id.ID, upd returns.HeaderUpdate) (*returns.Return, error)
	Delete(ctx context.Context, returnID id.ID) error
}

type ReturnHandler struct {
	*BaseHandler
	service ReturnService
}

func NewReturnHandler(base *BaseHandler, service ReturnService) *ReturnHandler {
	return &ReturnHandler{BaseHandler: base, service: service}
}

func (h *ReturnHandler) Create(c *gin.Context) {
	var req dto.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ret, err := h.service.Register(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, ret)
}

func (h *ReturnHandler) Get(c *gin.Context) {
	returnID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	ret, err := h.service.Get(c.Request.Context(), returnID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}

func (h *ReturnHandler) List(c *gin.Context) {
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
	items, err := h.service.List(c.Request.Context(), returns.Filter{
		SellerID: sellerID, From: from, To: to, Limit: limit, Offset: offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Items(c, items, len(items), limit, offset)
}

// Update changes client name, reason and date. Lines are immutable.
func (h *ReturnHandler) Update(c *gin.Context) {
	returnID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ret, err := h.service.UpdateHeader(c.Request.Context(), returnID, req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ret)
}

func (h *ReturnHandler) Delete(c *gin.Context) {
	returnID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), returnID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
