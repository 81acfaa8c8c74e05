package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-market-sync/internal/api/middleware"
	"github.com/feral-file/ff-market-sync/internal/api/rest/dto"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/messaging"
	"github.com/feral-file/ff-market-sync/internal/query"
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// ListTokens retrieves one page of tokens
	// GET /api/v1/tokens?page=<page>&per_page=<n>&sort=<sort>&on_sale=<bool>&currency=<c1>,<c2>&owner=<address>&attribute=<trait>:<value>&...
	ListTokens(c *gin.Context)

	// ResyncToken requests a full rebuild of one token aggregate (admin only)
	// POST /api/v1/tokens/:contract_address/:token_id/resync
	ResyncToken(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

type handler struct {
	engine    query.Engine
	publisher messaging.Publisher
}

// NewHandler creates a new REST API handler
func NewHandler(engine query.Engine, publisher messaging.Publisher) Handler {
	return &handler{
		engine:    engine,
		publisher: publisher,
	}
}

func (h *handler) ListTokens(c *gin.Context) {
	params, err := ParseListTokensQuery(c)
	if err != nil {
		respondInvalidQuery(c, err.Error())
		return
	}

	filter, err := params.Filter()
	if err != nil {
		respondInvalidQuery(c, err.Error())
		return
	}

	page, err := h.engine.ListTokens(
		c.Request.Context(),
		params.Pagination(),
		filter,
		params.SortKey(),
		middleware.CallerFromContext(c),
	)
	if err != nil {
		respondError(c, err, "Failed to list tokens")
		return
	}

	c.JSON(http.StatusOK, dto.MapTokenPageToResponse(page))
}

func (h *handler) ResyncToken(c *gin.Context) {
	key := domain.NewTokenKey(c.Param("contract_address"), c.Param("token_id"))
	if !key.Valid() || !domain.ValidAddress(key.ContractAddress) {
		respondBadRequest(c, "Invalid token key", key.String())
		return
	}

	notification := domain.Notification{
		Operation: domain.OperationUpdateToken,
		Key:       key.String(),
	}
	if err := h.publisher.PublishNotification(c.Request.Context(), notification); err != nil {
		respondServiceError(c, err, "Failed to request token resync")
		return
	}

	logger.InfoCtx(c.Request.Context(), "Token resync requested",
		zap.String("token_key", key.String()),
		zap.String("caller", middleware.CallerFromContext(c).Address))

	c.JSON(http.StatusAccepted, gin.H{
		"operation": notification.Operation,
		"key":       notification.Key,
	})
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-market-sync-api",
	})
}
