package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"backoffice/internal/domain/reports"
)

// DashboardService is implemented by reports.Service.
type DashboardService interface {
	Dashboard(ctx context.Context) (*reports.Dashboard, error)
}

type DashboardHandler struct {
	*BaseHandler
	service DashboardService
}

func NewDashboardHandler(base *BaseHandler, service DashboardService) *DashboardHandler {
	return &DashboardHandler{BaseHandler: base, service: service}
}

// Get handles GET /dashboard.
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
