package router

import (
	"net/http"

	"github.com/collegecms/internal/config"
	"github.com/collegecms/internal/handler"
	"github.com/collegecms/internal/storage"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "college_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(handler.LocaleMiddleware())

	// 本地存储时由 gin 直接提供媒体文件
	if cfg.StorageBackend == "" || cfg.StorageBackend == storage.BackendLocal {
		r.Static(cfg.MediaURLPath, cfg.MediaDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/", api.Index)

		auth := apiGroup.Group("/auth")
		{
			auth.POST("/login/", api.Login)
			auth.POST("/logout/", api.Logout)
			auth.GET("/me/", api.Me)
		}

		// 读接口公开，写接口需要管理员会话
		protected := apiGroup.Group("")
		protected.Use(api.StaffRequired())
		{
			protected.GET("/pages/", api.ListPages)
			protected.POST("/pages/", api.CreatePage)
			protected.POST("/pages/bulk-publish/", api.BulkPublishPages)
			protected.GET("/pages/:slug/", api.GetPage)
			protected.PUT("/pages/:slug/", api.UpdatePage)
			protected.DELETE("/pages/:slug/", api.DeletePage)

			protected.GET("/page-navigation/", api.GetNavigation)

			protected.GET("/contents/", api.ListContents)
			protected.POST("/contents/", api.CreateContent)
			protected.GET("/contents/:id/", api.GetContent)
			protected.PUT("/contents/:id/", api.UpdateContent)
			protected.DELETE("/contents/:id/", api.DeleteContent)

			protected.GET("/carousel/", api.ListCarousel)

			protected.GET("/tags/", api.ListTags)
			protected.POST("/tags/", api.CreateTag)
			protected.GET("/tags/:id/", api.GetTag)
			protected.PUT("/tags/:id/", api.UpdateTag)
			protected.DELETE("/tags/:id/", api.DeleteTag)

			protected.GET("/content-images/", api.ListContentImages)
			protected.POST("/content-images/", api.CreateContentImage)
			protected.GET("/content-images/:id/", api.GetContentImage)
			protected.PUT("/content-images/:id/", api.UpdateContentImage)
			protected.DELETE("/content-images/:id/", api.DeleteContentImage)

			protected.GET("/content-texts/", api.ListContentTexts)
			protected.POST("/content-texts/", api.CreateContentText)
			protected.GET("/content-texts/:id/", api.GetContentText)
			protected.PUT("/content-texts/:id/", api.UpdateContentText)
			protected.DELETE("/content-texts/:id/", api.DeleteContentText)

			protected.GET("/videos/", api.ListVideos)
			protected.GET("/videos/:id/", api.GetVideo)

			protected.GET("/news/", api.ListNews)
			protected.POST("/news/", api.CreateNews)
			protected.GET("/news/:slug/", api.GetNews)
			protected.PUT("/news/:slug/", api.UpdateNews)
			protected.DELETE("/news/:slug/", api.DeleteNews)

			protected.GET("/news-categories/", api.ListNewsCategories)
			protected.POST("/news-categories/", api.CreateNewsCategory)
			protected.GET("/news-categories/:id/", api.GetNewsCategory)
			protected.PUT("/news-categories/:id/", api.UpdateNewsCategory)
			protected.DELETE("/news-categories/:id/", api.DeleteNewsCategory)

			protected.POST("/uploads/", api.UploadMedia)
		}
	}

	return r
}
