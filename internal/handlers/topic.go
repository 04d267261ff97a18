package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agora/internal/auth"
	"agora/internal/forum"
	"agora/internal/middleware"
)

// ShowTopic returns the topic with forum/creator details and its posts
// with author details.
func (h *Handler) ShowTopic(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	topic, err := h.svc.TopicDetail(ctx, id)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	if topic.Hidden && !auth.IsModerator(middleware.CurrentUser(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
		return
	}
	posts, err := h.svc.PostsWithUserDetails(ctx, id)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topic": topic, "posts": posts})
}

func (h *Handler) CreateTopic(c *gin.Context) {
	user := middleware.CurrentUser(c)
	forumID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title       string `json:"title" binding:"required,max=100"`
		Description string `json:"description" binding:"max=100"`
		Body        string `json:"body" binding:"required"`
		Sticky      bool   `json:"sticky"`
		Locked      bool   `json:"locked"`
		Emoticons   *bool  `json:"emoticons"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	// 置顶和锁定只有版主可以设置
	if (req.Sticky || req.Locked) && !auth.IsModerator(user) {
		forbidden(c)
		return
	}

	topic, post, err := h.svc.CreateTopic(c.Request.Context(), forum.NewTopic{
		ForumID:     forumID,
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		Sticky:      req.Sticky,
		Locked:      req.Locked,
		Emoticons:   req.Emoticons == nil || *req.Emoticons,
		UserIP:      c.ClientIP(),
	})
	if err != nil {
		h.RenderError(c, err)
		return
	}
	h.mutated()
	c.JSON(http.StatusCreated, gin.H{"topic": topic, "post": post})
}

func (h *Handler) UpdateTopic(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title       *string `json:"title" binding:"omitempty,min=1,max=100"`
		Description *string `json:"description" binding:"omitempty,max=100"`
		Locked      *bool   `json:"locked"`
		Sticky      *bool   `json:"sticky"`
		Hidden      *bool   `json:"hidden"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	topic, err := h.svc.Topic(ctx, id)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	if !auth.UserCanEditTopic(user, topic) {
		forbidden(c)
		return
	}
	if (req.Locked != nil || req.Sticky != nil || req.Hidden != nil) && !auth.IsModerator(user) {
		forbidden(c)
		return
	}

	topic, err = h.svc.UpdateTopic(ctx, id, forum.TopicChanges{
		Title:       req.Title,
		Description: req.Description,
		Locked:      req.Locked,
		Sticky:      req.Sticky,
		Hidden:      req.Hidden,
	})
	if err != nil {
		h.RenderError(c, err)
		return
	}
	h.mutated()
	c.JSON(http.StatusOK, topic)
}

// DeleteTopic is reserved for moderators.
func (h *Handler) DeleteTopic(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !auth.IsModerator(middleware.CurrentUser(c)) {
		forbidden(c)
		return
	}
	if err := h.svc.DeleteTopic(c.Request.Context(), id); err != nil {
		h.RenderError(c, err)
		return
	}
	h.mutated()
	c.Status(http.StatusNoContent)
}
