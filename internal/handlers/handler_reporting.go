package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
	"github.com/kassenwart/kassenwart_backend/internal/middleware"
)

// reportingHandler handles HTTP requests related to budget reconciliation reports
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers routes related to reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/events", h.getEventReports)
	}
}

// getEventReports godoc
// @Summary Planned-vs-actual report per funding event
// @Description Generates the reconciliation report for every funding event whose date falls within the inclusive range. Actual spend counts only approved and paid requests.
// @Tags reports
// @Produce json
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.EventReportListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/events [get]
func (h *reportingHandler) getEventReports(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.EventReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	var from, to *time.Time
	if params.From != "" {
		t, err := time.Parse("2006-01-02", params.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid from date"})
			return
		}
		from = &t
	}
	if params.To != "" {
		t, err := time.Parse("2006-01-02", params.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid to date"})
			return
		}
		to = &t
	}

	reports, summary, err := h.reportingService.EventReports(c.Request.Context(), from, to)
	if err != nil {
		logger.Error("Failed to generate event reports", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate report"})
		return
	}
	c.JSON(http.StatusOK, dto.ToEventReportListResponse(reports, summary))
}
