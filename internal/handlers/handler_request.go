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

// requestHandler handles HTTP requests related to reimbursement requests.
type requestHandler struct {
	requestService portssvc.RequestSvcFacade
}

// newRequestHandler creates a new requestHandler.
func newRequestHandler(rs portssvc.RequestSvcFacade) *requestHandler {
	return &requestHandler{requestService: rs}
}

// RegisterRequestRoutes registers all reimbursement request routes.
func RegisterRequestRoutes(rg *gin.RouterGroup, requestService portssvc.RequestSvcFacade) {
	h := newRequestHandler(requestService)

	requests := rg.Group("/requests")
	{
		requests.POST("", h.createRequest)
		requests.GET("", h.listRequests)
		requests.GET("/mine", h.listMyRequests)
		requests.GET("/available-for-cashbook", h.listAvailableForCashbook)
		requests.GET("/:id", h.getRequest)
		requests.DELETE("/:id", h.deleteRequest)
		requests.PATCH("/:id/status", h.updateStatus)
		requests.POST("/:id/items", h.addLineItem)
		requests.DELETE("/:id/items/:itemID", h.removeLineItem)
	}
}

// respondRequestError maps common service errors to HTTP responses.
func respondRequestError(c *gin.Context, err error, logger *slog.Logger, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Request not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to " + action})
	}
}

// createRequest godoc
// @Summary Submit a reimbursement request
// @Description Creates a new request with its line items. The request starts in PENDING_DECISION.
// @Tags requests
// @Accept json
// @Produce json
// @Param request body dto.CreateRequestRequest true "Request details"
// @Success 201 {object} dto.RequestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests [post]
func (h *requestHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	request, err := h.requestService.CreateRequest(c.Request.Context(), req, userID)
	if err != nil {
		respondRequestError(c, err, logger, "create request")
		return
	}
	c.JSON(http.StatusCreated, dto.ToRequestResponse(request))
}

// listRequests godoc
// @Summary List all requests
// @Description Retrieves all requests, newest first, optionally filtered. All filter criteria are combined with AND. Admin only.
// @Tags requests
// @Produce json
// @Param applicantName query string false "Substring match on applicant name (case-insensitive)"
// @Param comment query string false "Substring match on comment (case-insensitive)"
// @Param minAmount query string false "Minimum request total"
// @Param maxAmount query string false "Maximum request total"
// @Param status query string false "Exact status match"
// @Param submittedFrom query string false "Submission date lower bound (YYYY-MM-DD)"
// @Param submittedTo query string false "Submission date upper bound (YYYY-MM-DD)"
// @Param eventName query []string false "Funding event names (any line item matches)"
// @Success 200 {object} dto.ListRequestsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests [get]
func (h *requestHandler) listRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	requests, err := h.requestService.ListRequests(c.Request.Context(), params.ToRequestFilter(), userID)
	if err != nil {
		respondRequestError(c, err, logger, "list requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRequestsResponse(requests))
}

// listMyRequests godoc
// @Summary List own requests
// @Description Retrieves the caller's requests, newest first.
// @Tags requests
// @Produce json
// @Success 200 {object} dto.ListRequestsResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/mine [get]
func (h *requestHandler) listMyRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	requests, err := h.requestService.ListMyRequests(c.Request.Context(), userID)
	if err != nil {
		respondRequestError(c, err, logger, "list requests")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRequestsResponse(requests))
}

// listAvailableForCashbook godoc
// @Summary List requests bookable as cash expenses
// @Description Retrieves approved requests that have no cashbook entry yet. Admin only.
// @Tags requests
// @Produce json
// @Success 200 {object} dto.ListRequestsResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/available-for-cashbook [get]
func (h *requestHandler) listAvailableForCashbook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	requests, err := h.requestService.ListAvailableForCashbook(c.Request.Context(), userID)
	if err != nil {
		respondRequestError(c, err, logger, "list cashbook candidates")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRequestsResponse(requests))
}

// getRequest godoc
// @Summary Get a request by ID
// @Description Retrieves one request. Members may only read their own.
// @Tags requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{id} [get]
func (h *requestHandler) getRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	request, err := h.requestService.GetRequestByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondRequestError(c, err, logger, "retrieve request")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(request))
}

// deleteRequest godoc
// @Summary Delete a request
// @Description Owners may delete pending requests; admins may delete any.
// @Tags requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{id} [delete]
func (h *requestHandler) deleteRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.requestService.DeleteRequest(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondRequestError(c, err, logger, "delete request")
		return
	}
	c.Status(http.StatusNoContent)
}

// updateStatus godoc
// @Summary Change a request's status
// @Description Sets the decision status of a request. Admin only; the status must be a member of the enum.
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param status body dto.UpdateRequestStatusRequest true "New status"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{id}/status [patch]
func (h *requestHandler) updateStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	request, err := h.requestService.SetStatus(c.Request.Context(), c.Param("id"), req.Status, userID)
	if err != nil {
		respondRequestError(c, err, logger, "update request status")
		return
	}
	c.JSON(http.StatusOK, dto.ToRequestResponse(request))
}

// addLineItem godoc
// @Summary Add a line item
// @Description Appends one line item to a pending request.
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param item body dto.CreateLineItemRequest true "Line item"
// @Success 201 {object} dto.LineItemResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{id}/items [post]
func (h *requestHandler) addLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	item, err := h.requestService.AddLineItem(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondRequestError(c, err, logger, "add line item")
		return
	}
	c.JSON(http.StatusCreated, dto.ToLineItemResponse(item))
}

// removeLineItem godoc
// @Summary Remove a line item
// @Description Deletes one line item from a pending request. The last remaining item cannot be removed.
// @Tags requests
// @Produce json
// @Param id path string true "Request ID"
// @Param itemID path string true "Line item ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /requests/{id}/items/{itemID} [delete]
func (h *requestHandler) removeLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.requestService.RemoveLineItem(c.Request.Context(), c.Param("id"), c.Param("itemID"), userID); err != nil {
		respondRequestError(c, err, logger, "remove line item")
		return
	}
	c.Status(http.StatusNoContent)
}
