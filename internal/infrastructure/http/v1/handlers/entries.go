package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/payments"
)

// EntryService is implemented by payments.Book.
type EntryService[T payments.Entry] interface {
	Create(ctx context.Context, e T) error
	Update(ctx context.Context, e T) error
	Get(ctx context.Context, entryID id.ID) (T, error)
	List(ctx context.Context, filter payments.Filter) ([]T, error)
	Delete(ctx context.Context, entryID id.ID) error
}

// EntryHandler provides CRUD handlers for one payments book.
type EntryHandler[T payments.Entry, Req any] struct {
	*BaseHandler
	service  EntryService[T]
	mapNew   func(req Req) T
	mapApply func(req Req, existing T) T
}

// EntryHandlerConfig configures an entry handler.
type EntryHandlerConfig[T payments.Entry, Req any] struct {
	Service EntryService[T]
	// MapCreate builds a new entry from the request.
	MapCreate func(req Req) T
	// MapUpdate writes the request onto the stored entry.
	MapUpdate func(req Req, existing T) T
}

func NewEntryHandler[T payments.Entry, Req any](base *BaseHandler, cfg EntryHandlerConfig[T, Req]) *EntryHandler[T, Req] {
	return &EntryHandler[T, Req]{
		BaseHandler: base,
		service:     cfg.Service,
		mapNew:      cfg.MapCreate,
		mapApply:    cfg.MapUpdate,
	}
}

// List handles GET /{entries}?sellerId=&from=&to=&month=YYYY-MM&limit=&offset=.
// month overrides from and to.
func (h *EntryHandler[T, Req]) List(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Items(c, items, len(items), filter.Limit, filter.Offset)
}

func (h *EntryHandler[T, Req]) filter(c *gin.Context) (payments.Filter, bool) {
	var f payments.Filter
	var ok bool
	if f.SellerID, ok = h.QueryID(c, "sellerId"); !ok {
		return f, false
	}
	if f.From, ok = h.QueryDate(c, "from"); !ok {
		return f, false
	}
	if f.To, ok = h.QueryDate(c, "to"); !ok {
		return f, false
	}
	if month := c.Query("month"); month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid month, expected YYYY-MM").WithDetail("param", "month"))
			return f, false
		}
		end := start.AddDate(0, 1, -1)
		f.From, f.To = &start, &end
	}
	f.Limit, f.Offset = h.Paging(c)
	return f, true
}

func (h *EntryHandler[T, Req]) Get(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	e, err := h.service.Get(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EntryHandler[T, Req]) Create(c *gin.Context) {
	var req Req
	if !h.BindJSON(c, &req) {
		return
	}
	e := h.mapNew(req)
	if err := h.service.Create(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// Update handles PUT /{entries}/:id. The body replaces every editable field.
func (h *EntryHandler[T, Req]) Update(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req Req
	if !h.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	existing, err := h.service.Get(ctx, entryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	e := h.mapApply(req, existing)
	if err := h.service.Update(ctx, e); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

func (h *EntryHandler[T, Req]) Delete(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), entryID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
