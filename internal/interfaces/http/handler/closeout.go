package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mld/backend/internal/application/closeoutsync"
	"github.com/mld/backend/internal/domain/closeout"
	"github.com/mld/backend/internal/domain/shared"
)

// CloseoutHandler exposes the closeout inventory endpoints
type CloseoutHandler struct {
	BaseHandler
	sync    *closeoutsync.SyncService
	records closeout.Repository
}

// NewCloseoutHandler creates a new closeout handler
func NewCloseoutHandler(sync *closeoutsync.SyncService, records closeout.Repository) *CloseoutHandler {
	return &CloseoutHandler{sync: sync, records: records}
}

// RegisterRoutes registers closeout routes
func (h *CloseoutHandler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/closeout")
	{
		group.GET("/inventory", h.List)
		group.POST("/inventory", h.Sync)
		group.POST("/events", h.Events)
		group.POST("/create", h.Create)
	}
}

// Sync godoc
// @Summary      Run closeout inventory sync
// @Description  Fetch the full ERP snapshot and reconcile stored records
// @Tags         closeout
// @Produce      json
// @Success      200 {object} dto.Response{data=closeout.SyncReport}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /closeout/inventory [post]
func (h *CloseoutHandler) Sync(c *gin.Context) {
	report, err := h.sync.RunSnapshot(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// List godoc
// @Summary      List closeout inventory
// @Description  Page through in-stock closeout records with their products
// @Tags         closeout
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        type query string false "Product type filter"
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /closeout/inventory [get]
func (h *CloseoutHandler) List(c *gin.Context) {
	filter := shared.DefaultFilter()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("page_size")); err == nil && pageSize > 0 {
		filter.PageSize = pageSize
	}
	if typ := c.Query("type"); typ != "" {
		filter.Filters["type"] = typ
	}

	page, err := h.records.FindPage(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Events godoc
// @Summary      Apply inventory change events
// @Description  Apply an ERP webhook batch of inserted and deleted rows
// @Tags         closeout
// @Accept       json
// @Produce      json
// @Param        batch body closeoutsync.EventBatch true "Event batch"
// @Success      200 {object} dto.Response{data=closeout.SyncReport}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /closeout/events [post]
func (h *CloseoutHandler) Events(c *gin.Context) {
	var batch closeoutsync.EventBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	report, err := h.sync.ApplyEvents(c.Request.Context(), batch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Create godoc
// @Summary      Create closeout record from event
// @Description  Create a zero-quantity record for the first inserted event
// @Tags         closeout
// @Accept       json
// @Produce      json
// @Param        batch body closeoutsync.EventBatch true "Event batch"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /closeout/create [post]
func (h *CloseoutHandler) Create(c *gin.Context) {
	var batch closeoutsync.EventBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	record, err := h.sync.CreateFromEvent(c.Request.Context(), batch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}
