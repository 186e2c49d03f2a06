package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
	"github.com/kassenwart/kassenwart_backend/internal/middleware"
)

// eventHandler handles HTTP requests related to funding events.
type eventHandler struct {
	eventService portssvc.EventSvcFacade
}

// newEventHandler creates a new eventHandler.
func newEventHandler(es portssvc.EventSvcFacade) *eventHandler {
	return &eventHandler{eventService: es}
}

// registerEventRoutes registers funding event, budget and income routes.
func registerEventRoutes(rg *gin.RouterGroup, eventService portssvc.EventSvcFacade) {
	h := newEventHandler(eventService)

	events := rg.Group("/events")
	{
		events.GET("", h.listEvents)
		events.POST("", h.createEvent)
		events.GET("/:id", h.getEvent)
		events.DELETE("/:id", h.deleteEvent)
	}
	budgets := rg.Group("/budgets")
	{
		budgets.POST("", h.createBudgetCategory)
		budgets.DELETE("/:id", h.deleteBudgetCategory)
	}
	incomes := rg.Group("/incomes")
	{
		incomes.POST("", h.createIncomeEntry)
		incomes.DELETE("/:id", h.deleteIncomeEntry)
	}
}

func respondEventError(c *gin.Context, err error, logger *slog.Logger, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to " + action})
	}
}

// listEvents godoc
// @Summary List funding events
// @Description Retrieves all funding events with their budgets and income entries, ordered by date.
// @Tags events
// @Produce json
// @Success 200 {object} dto.ListEventsResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /events [get]
func (h *eventHandler) listEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	events, err := h.eventService.ListEvents(c.Request.Context())
	if err != nil {
		respondEventError(c, err, logger, "list events")
		return
	}
	c.JSON(http.StatusOK, dto.ToListEventsResponse(events))
}

// createEvent godoc
// @Summary Create a funding event
// @Description Creates a new named, optionally dated funding event. Admin only.
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.CreateEventRequest true "Event details"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /events [post]
func (h *eventHandler) createEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), req, userID)
	if err != nil {
		respondEventError(c, err, logger, "create event")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

// getEvent godoc
// @Summary Get a funding event by ID
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /events/{id} [get]
func (h *eventHandler) getEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	event, err := h.eventService.GetEventByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondEventError(c, err, logger, "retrieve event")
		return
	}
	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// deleteEvent godoc
// @Summary Delete a funding event
// @Description Removes an event with its budgets and income entries. Line items keep existing with cleared references. Admin only.
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /events/{id} [delete]
func (h *eventHandler) deleteEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondEventError(c, err, logger, "delete event")
		return
	}
	c.Status(http.StatusNoContent)
}

// createBudgetCategory godoc
// @Summary Create a budget category
// @Description Adds a planned spending bucket to a funding event. Admin only.
// @Tags events
// @Accept json
// @Produce json
// @Param budget body dto.CreateBudgetCategoryRequest true "Budget category"
// @Success 201 {object} dto.BudgetCategoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /budgets [post]
func (h *eventHandler) createBudgetCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateBudgetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	category, err := h.eventService.CreateBudgetCategory(c.Request.Context(), req, userID)
	if err != nil {
		respondEventError(c, err, logger, "create budget category")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBudgetCategoryResponse(category))
}

// deleteBudgetCategory godoc
// @Summary Delete a budget category
// @Description Removes a budget bucket; line items referencing it keep existing with a cleared reference. Admin only.
// @Tags events
// @Produce json
// @Param id path string true "Category ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /budgets/{id} [delete]
func (h *eventHandler) deleteBudgetCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.eventService.DeleteBudgetCategory(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondEventError(c, err, logger, "delete budget category")
		return
	}
	c.Status(http.StatusNoContent)
}

// createIncomeEntry godoc
// @Summary Record an income entry
// @Description Records a donation or other income for a funding event. Admin only.
// @Tags events
// @Accept json
// @Produce json
// @Param income body dto.CreateIncomeEntryRequest true "Income entry"
// @Success 201 {object} dto.IncomeEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /incomes [post]
func (h *eventHandler) createIncomeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateIncomeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	entry, err := h.eventService.CreateIncomeEntry(c.Request.Context(), req, userID)
	if err != nil {
		respondEventError(c, err, logger, "create income entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToIncomeEntryResponse(entry))
}

// deleteIncomeEntry godoc
// @Summary Delete an income entry
// @Tags events
// @Produce json
// @Param id path string true "Income ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /incomes/{id} [delete]
func (h *eventHandler) deleteIncomeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.eventService.DeleteIncomeEntry(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondEventError(c, err, logger, "delete income entry")
		return
	}
	c.Status(http.StatusNoContent)
}
