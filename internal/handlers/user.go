package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agora/internal/auth"
	"agora/internal/forum"
	"agora/internal/middleware"
	"agora/internal/models"
)

func (h *Handler) ShowProfile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	profile, err := h.svc.Profile(c.Request.Context(), id)
	if err != nil {
		h.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile edits the public profile; post_count is not accepted.
func (h *Handler) UpdateProfile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title    *string `json:"title" binding:"omitempty,max=100"`
		Location *string `json:"location" binding:"omitempty,max=100"`
		Avatar   *string `json:"avatar" binding:"omitempty,max=200"`
		Website  *string `json:"website" binding:"omitempty,max=200"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !auth.UserCanEditUserProfile(middleware.CurrentUser(c), &models.User{ID: id}) {
		forbidden(c)
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), id, forum.ProfileChanges{
		Title:    req.Title,
		Location: req.Location,
		Avatar:   req.Avatar,
		Website:  req.Website,
	})
	if err != nil {
		h.RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
