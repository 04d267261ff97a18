package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"agora/internal/handlers"
	"agora/internal/metrics"
	"agora/internal/middleware"
)

// New builds the gin engine with sessions, user loading, request metrics
// and all routes. metricsHandler is mounted at /metrics.
func New(db *gorm.DB, h *handlers.Handler, m *metrics.Metrics, metricsHandler http.Handler, sessionSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(m.Middleware())
	r.GET("/metrics", gin.WrapH(metricsHandler))

	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("agora_session", store))
	r.Use(middleware.LoadUser(db))

	RegisterRoutes(r, db, h)
	return r
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, h *handlers.Handler) {
	authHandler := handlers.NewAuthHandler(db)

	// 公共路由 (Public Routes)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)
	r.GET("/", h.Index)                       // 分区与版块列表
	r.GET("/forum/:id", h.ShowForum)          // 版块主题列表
	r.GET("/topic/:id", h.ShowTopic)          // 主题详情
	r.GET("/user/:id/profile", h.ShowProfile) // 用户资料

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/forum/:id/topics", h.CreateTopic)
		authorized.PATCH("/topic/:id", h.UpdateTopic)
		authorized.DELETE("/topic/:id", h.DeleteTopic)
		authorized.POST("/topic/:id/posts", h.CreatePost)
		authorized.PATCH("/post/:id", h.EditPost)
		authorized.DELETE("/post/:id", h.DeletePost)
		authorized.PATCH("/user/:id/profile", h.UpdateProfile)
	}

	// 管理路由 (Admin Routes)
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.POST("/sections", h.CreateSection)
		admin.POST("/sections/:id/forums", h.CreateForum)
		admin.DELETE("/section/:id", h.DeleteSection)
		admin.DELETE("/forum/:id", h.DeleteForum)
		admin.GET("/verify", h.Verify)
	}
}
