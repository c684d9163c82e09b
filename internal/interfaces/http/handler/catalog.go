package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mld/backend/internal/application/catalogsync"
	"github.com/mld/backend/internal/interfaces/http/dto"
)

// CatalogHandler exposes the catalog ingestion endpoints
type CatalogHandler struct {
	BaseHandler
	ingest *catalogsync.IngestService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(ingest *catalogsync.IngestService) *CatalogHandler {
	return &CatalogHandler{ingest: ingest}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/catalog")
	{
		group.POST("/ingest", h.Ingest)
	}
}

// Ingest godoc
// @Summary      Ingest manufacturer spec feeds
// @Description  Fetch and ingest one manufacturer's feed, or all of them when man is ALL or omitted
// @Tags         catalog
// @Produce      json
// @Param        man query string false "Manufacturer code, or ALL"
// @Success      200 {object} dto.Response
// @Success      207 {object} dto.Response{data=catalogsync.IngestSummary}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/ingest [post]
func (h *CatalogHandler) Ingest(c *gin.Context) {
	man := strings.ToUpper(strings.TrimSpace(c.Query("man")))
	if man == "" || man == "ALL" {
		summary, err := h.ingest.IngestAll(c.Request.Context())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if len(summary.Failures) > 0 {
			c.JSON(http.StatusMultiStatus, dto.NewSuccessResponse(summary))
			return
		}
		h.Success(c, summary)
		return
	}

	result, err := h.ingest.FetchAndIngest(c.Request.Context(), man)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
