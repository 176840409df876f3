package attention

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"beacon/internal/constants"
	"beacon/internal/engine"
	"beacon/internal/logger"
	"beacon/pkg/errors"
)

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/attention", h.ListItems)
		v1.GET("/attention/summary", h.Summary)
	}
}

// ListItems returns the current action items, most urgent first. Query
// parameters: urgency (critical|warning|info), limit, refresh.
func (h *Handler) ListItems(c *gin.Context) {
	query, err := parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	items, err := h.service.Evaluate(c.Request.Context(), query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if items == nil {
		items = []engine.ActionItem{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *Handler) Summary(c *gin.Context) {
	refresh := c.Query("refresh") == "true"

	summary, err := h.service.Summary(c.Request.Context(), refresh)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

func parseQuery(c *gin.Context) (Query, error) {
	query := Query{
		Limit:   constants.DefaultItemLimit,
		Refresh: c.Query("refresh") == "true",
	}

	if raw := c.Query("urgency"); raw != "" {
		urgency := engine.Urgency(raw)
		if !urgency.Valid() {
			return Query{}, errors.ErrValidation.WithDetail("message", "urgency must be critical, warning, or info")
		}
		query.Urgency = urgency
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return Query{}, errors.ErrValidation.WithDetail("message", "limit must be a non-negative integer")
		}
		if limit > constants.MaxItemLimit {
			limit = constants.MaxItemLimit
		}
		query.Limit = limit
	}

	return query, nil
}
