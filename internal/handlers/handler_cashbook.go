package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
	"github.com/kassenwart/kassenwart_backend/internal/middleware"
)

// cashbookHandler handles HTTP requests related to the cash ledger.
type cashbookHandler struct {
	cashbookService portssvc.CashbookSvcFacade
}

// newCashbookHandler creates a new cashbookHandler.
func newCashbookHandler(cs portssvc.CashbookSvcFacade) *cashbookHandler {
	return &cashbookHandler{cashbookService: cs}
}

// registerCashbookRoutes registers the cashbook ledger routes.
func registerCashbookRoutes(rg *gin.RouterGroup, cashbookService portssvc.CashbookSvcFacade) {
	h := newCashbookHandler(cashbookService)

	cashbook := rg.Group("/cashbook")
	{
		cashbook.GET("", h.listEntries)
		cashbook.POST("/expenses", h.appendExpense)
		cashbook.POST("/incomes", h.appendIncome)
		cashbook.DELETE("/:id", h.deleteEntry)
	}
}

func respondCashbookError(c *gin.Context, err error, logger *slog.Logger, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Concurrent cashbook update, please retry"})
	default:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to " + action})
	}
}

// listEntries godoc
// @Summary List the cashbook ledger
// @Description Retrieves cashbook entries in chronological order with their stored running balances. Without a limit the full ledger is returned; with one, pages are linked via nextToken. Admin only.
// @Tags cashbook
// @Produce json
// @Param limit query int false "Page size (0 = full ledger)"
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListCashbookResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /cashbook [get]
func (h *cashbookHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit parameter"})
		return
	}

	entries, nextToken, err := h.cashbookService.ListEntries(c.Request.Context(), userID, limit, c.Query("nextToken"))
	if err != nil {
		respondCashbookError(c, err, logger, "list cashbook entries")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCashbookResponse(entries, nextToken))
}

// appendExpense godoc
// @Summary Append a cash expense
// @Description Appends an expense entry to the ledger, deriving the running balance from the latest entry. Booking dates before the newest entry are rejected. Admin only.
// @Tags cashbook
// @Accept json
// @Produce json
// @Param expense body dto.CreateCashExpenseRequest true "Expense details"
// @Success 201 {object} dto.CashbookEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /cashbook/expenses [post]
func (h *cashbookHandler) appendExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateCashExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	entry, err := h.cashbookService.AppendExpense(c.Request.Context(), req, userID)
	if err != nil {
		respondCashbookError(c, err, logger, "append expense")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCashbookEntryResponse(entry))
}

// appendIncome godoc
// @Summary Append a cash income
// @Description Appends an income entry derived from a recorded donation. Admin only.
// @Tags cashbook
// @Accept json
// @Produce json
// @Param income body dto.CreateCashIncomeRequest true "Income details"
// @Success 201 {object} dto.CashbookEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /cashbook/incomes [post]
func (h *cashbookHandler) appendIncome(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateCashIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	entry, err := h.cashbookService.AppendIncome(c.Request.Context(), req, userID)
	if err != nil {
		respondCashbookError(c, err, logger, "append income")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCashbookEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete a cashbook entry
// @Description Removes an entry. Stored balances of later entries are not recomputed. Admin only.
// @Tags cashbook
// @Produce json
// @Param id path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /cashbook/{id} [delete]
func (h *cashbookHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.cashbookService.DeleteEntry(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondCashbookError(c, err, logger, "delete cashbook entry")
		return
	}
	c.Status(http.StatusNoContent)
}
