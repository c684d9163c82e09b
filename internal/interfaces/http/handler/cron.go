package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mld/backend/internal/application/catalogsync"
	"github.com/mld/backend/internal/application/closeoutsync"
	"github.com/mld/backend/internal/interfaces/http/middleware"
)

// CronHandler exposes scheduler-trigger routes guarded by a shared secret.
// External cron services hit these with GET requests.
type CronHandler struct {
	BaseHandler
	sync   *closeoutsync.SyncService
	ingest *catalogsync.IngestService
	secret string
}

// NewCronHandler creates a new cron handler
func NewCronHandler(sync *closeoutsync.SyncService, ingest *catalogsync.IngestService, secret string) *CronHandler {
	return &CronHandler{sync: sync, ingest: ingest, secret: secret}
}

// RegisterRoutes registers cron routes
func (h *CronHandler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/cron", middleware.CronSecret(h.secret))
	{
		group.GET("/closeout-sync", h.RunCloseoutSync)
		group.GET("/catalog-ingest", h.RunCatalogIngest)
	}
}

// RunCloseoutSync godoc
// @Summary      Trigger closeout inventory sync
// @Tags         cron
// @Produce      json
// @Param        secret query string true "Cron secret"
// @Success      200 {object} dto.Response{data=closeout.SyncReport}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cron/closeout-sync [get]
func (h *CronHandler) RunCloseoutSync(c *gin.Context) {
	report, err := h.sync.RunSnapshot(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// RunCatalogIngest godoc
// @Summary      Trigger catalog feed ingest for all manufacturers
// @Tags         cron
// @Produce      json
// @Param        secret query string true "Cron secret"
// @Success      200 {object} dto.Response{data=catalogsync.IngestSummary}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cron/catalog-ingest [get]
func (h *CronHandler) RunCatalogIngest(c *gin.Context) {
	summary, err := h.ingest.IngestAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
