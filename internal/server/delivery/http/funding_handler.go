package http

import (
	"net/http"
	"strconv"
	"strings"

	"biotech-funding-tracker/internal/server/dto"
	"biotech-funding-tracker/internal/server/service"
	"biotech-funding-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// FundingHandler handles HTTP requests for the funding dataset.
type FundingHandler struct {
	fundingService service.FundingService
	queryService   service.QueryService
	logger         *logger.Logger
}

// NewFundingHandler creates a new FundingHandler.
func NewFundingHandler(fundingService service.FundingService, queryService service.QueryService, log *logger.Logger) *FundingHandler {
	return &FundingHandler{
		fundingService: fundingService,
		queryService:   queryService,
		logger:         log,
	}
}

// RegisterRoutes registers the funding routes to the given echo group.
func (h *FundingHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/funding", h.GetFundingEvents)
	g.POST("/query", h.Query)
	g.GET("/health", h.Health)
}

// GetFundingEvents godoc
// @Summary Get funding events
// @Description Returns stored funding events. count is the total dataset size regardless of limit.
// @Tags funding
// @Produce json
// @Param limit query int false "Maximum number of rows to return (default: all)"
// @Param order query string false "Set to funding_date for reverse-chronological order"
// @Success 200 {object} dto.FundingListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /funding [get]
func (h *FundingHandler) GetFundingEvents(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = parsed
	}

	resp, err := h.fundingService.GetFundingEvents(c.Request().Context(), limit, c.QueryParam("order"))
	if err != nil {
		h.logger.Error("failed to get funding events", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to get funding events"})
	}

	return c.JSON(http.StatusOK, resp)
}

// Query godoc
// @Summary Query the funding dataset
// @Description Answers a natural-language question over stored funding events. Falls back to keyword matching when no model provider is configured.
// @Tags funding
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "Question"
// @Success 200 {object} dto.QueryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /query [post]
func (h *FundingHandler) Query(c echo.Context) error {
	var req dto.QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "query must not be empty"})
	}

	resp, err := h.queryService.Query(c.Request().Context(), req.Query)
	if err != nil {
		h.logger.Error("failed to answer query", logger.ErrorField(err), logger.StringField("query", req.Query))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to answer query"})
	}

	return c.JSON(http.StatusOK, resp)
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *FundingHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.HealthResponse{OK: true})
}
