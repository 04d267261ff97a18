package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agora/internal/forum"
	"agora/internal/metrics"
	"agora/internal/models"
	"agora/internal/utils"
)

const indexCacheKey = "forum:index"

// Handler serves the forum JSON API on top of forum.Service.
type Handler struct {
	svc     *forum.Service
	log     *zap.Logger
	index   *utils.TTLCache[[]models.Section]
	metrics *metrics.Metrics
}

func New(svc *forum.Service, log *zap.Logger, index *utils.TTLCache[[]models.Section], m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, index: index, metrics: m}
}

// mutated drops cached listings after a successful mutation.
func (h *Handler) mutated() {
	h.index.Purge()
}

// RenderError maps service errors onto HTTP status codes.
func (h *Handler) RenderError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, forum.ErrNotFound):
		h.metrics.RecordFailure(ctx, "not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, forum.ErrConflict):
		h.metrics.RecordFailure(ctx, "conflict")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	default:
		h.metrics.RecordFailure(ctx, "internal")
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
}

// paramID reads a positive integer path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		badRequest(c, "invalid "+name)
	}
	return id, ok
}
