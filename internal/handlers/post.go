package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agora/internal/auth"
	"agora/internal/forum"
	"agora/internal/middleware"
)

func (h *Handler) CreatePost(c *gin.Context) {
	user := middleware.CurrentUser(c)
	topicID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Body      string `json:"body" binding:"required"`
		Meta      bool   `json:"meta"`
		Emoticons *bool  `json:"emoticons"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	topic, err := h.svc.Topic(ctx, topicID)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	if !auth.UserCanPostIn(user, topic, req.Meta) {
		forbidden(c)
		return
	}

	post, err := h.svc.CreatePost(ctx, forum.NewPost{
		TopicID:   topicID,
		UserID:    user.ID,
		Body:      req.Body,
		Meta:      req.Meta,
		Emoticons: req.Emoticons == nil || *req.Emoticons,
		UserIP:    c.ClientIP(),
	})
	if err != nil {
		h.RenderError(c, err)
		return
	}
	h.mutated()
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) EditPost(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !h.canEditPost(c, id) {
		return
	}

	post, err := h.svc.EditPost(c.Request.Context(), id, req.Body)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
	h.log.Debug("post edited", zap.Uint("post_id", id), zap.Uint("user_id", user.ID))
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.canEditPost(c, id) {
		return
	}
	res, err := h.svc.DeletePost(c.Request.Context(), id)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	h.mutated()
	c.JSON(http.StatusOK, res)
}

// canEditPost loads the post and its topic and checks the current user may
// edit it, answering the request itself when not.
func (h *Handler) canEditPost(c *gin.Context, postID uint) bool {
	ctx := c.Request.Context()
	post, err := h.svc.Post(ctx, postID)
	if err != nil {
		h.RenderError(c, err)
		return false
	}
	topic, err := h.svc.Topic(ctx, post.TopicID)
	if err != nil {
		h.RenderError(c, err)
		return false
	}
	if !auth.UserCanEditPost(middleware.CurrentUser(c), post, topic) {
		forbidden(c)
		return false
	}
	return true
}
