package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agora/internal/auth"
	"agora/internal/forum"
	"agora/internal/middleware"
)

// Index lists sections and forums with their cached counters.
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	if sections, ok := h.index.Get(indexCacheKey); ok {
		h.metrics.RecordCacheHit(ctx, indexCacheKey)
		c.JSON(http.StatusOK, gin.H{"sections": sections})
		return
	}
	h.metrics.RecordCacheMiss(ctx, indexCacheKey)
	sections, err := h.svc.ForumIndex(ctx)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	h.index.Set(indexCacheKey, sections)
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

func (h *Handler) ShowForum(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	f, err := h.svc.Forum(ctx, id)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	// 隐藏主题只对版主可见
	topics, err := h.svc.ForumTopics(ctx, id, auth.IsModerator(middleware.CurrentUser(c)))
	if err != nil {
		h.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forum": f, "topics": topics})
}

func (h *Handler) CreateSection(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	sec, err := h.svc.CreateSection(c.Request.Context(), req.Name)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	h.mutated()
	c.JSON(http.StatusCreated, sec)
}

func (h *Handler) CreateForum(c *gin.Context) {
	sectionID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name" binding:"required,max=100"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	f, err := h.svc.CreateForum(c.Request.Context(), sectionID, req.Name, req.Description)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	h.mutated()
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) DeleteSection(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteSection(c.Request.Context(), id); err != nil {
		h.RenderError(c, err)
		return
	}
	h.mutated()
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteForum(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteForum(c.Request.Context(), id); err != nil {
		h.RenderError(c, err)
		return
	}
	h.mutated()
	c.Status(http.StatusNoContent)
}

// Verify reports cached values that disagree with a full rescan.
func (h *Handler) Verify(c *gin.Context) {
	ctx := c.Request.Context()
	violations, err := h.svc.Verify(ctx)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	if len(violations) > 0 {
		h.metrics.RecordViolations(ctx, len(violations))
		h.log.Warn("inconsistent cached values", zap.Int("violations", len(violations)))
	}
	if violations == nil {
		violations = []forum.Violation{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": len(violations) == 0, "violations": violations})
}
