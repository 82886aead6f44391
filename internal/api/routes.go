package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"videosplus/storefront/internal/domain"
	"videosplus/storefront/internal/metrics"
	"videosplus/storefront/internal/repository"
	"videosplus/storefront/internal/service"
	"videosplus/storefront/internal/storage"
)

func SetupRoutes(
	router *gin.Engine,
	log logrus.FieldLogger,
	authService service.AuthService,
	catalogService service.CatalogService,
	repos *repository.Repositories,
	files storage.FileStorage,
	presignExpiry time.Duration,
) {
	authHandler := NewAuthHandler(authService, repos.Users)
	videoHandler := NewVideoHandler(repos.Videos, catalogService)
	userHandler := NewUserHandler(repos.Users, authService)
	sessionHandler := NewSessionHandler(repos.Sessions)
	siteConfigHandler := NewSiteConfigHandler(repos.SiteConfig)
	mediaHandler := NewMediaHandler(files, presignExpiry)
	backupHandler := NewBackupHandler(catalogService)

	authMiddleware := AuthMiddleware(authService)
	adminOnly := RoleMiddleware(domain.RoleAdmin)

	router.Use(RequestLogger(log), metrics.GinMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := router.Group("/api")

	// --- Public Routes ---
	{
		apiGroup.POST("/auth/login", authHandler.Login)

		apiGroup.GET("/videos", videoHandler.ListVideos)
		apiGroup.GET("/videos/:id", videoHandler.GetVideo)
		apiGroup.POST("/videos/:id/views", videoHandler.IncrementViews)

		apiGroup.GET("/sessions/token/:token", sessionHandler.GetByToken)
		apiGroup.GET("/site-config", siteConfigHandler.GetPublic)
		apiGroup.GET("/signed-url/*fileId", mediaHandler.SignedURL)
	}

	protected := apiGroup.Group("")
	protected.Use(authMiddleware)
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)
	}

	admin := protected.Group("")
	admin.Use(adminOnly)
	{
		// --- Catalog ---
		admin.GET("/videos/health", videoHandler.Health)
		admin.POST("/videos", videoHandler.CreateVideo)
		admin.PUT("/videos/:id", videoHandler.UpdateVideo)
		admin.DELETE("/videos/:id", videoHandler.DeleteVideo)

		// --- Accounts ---
		admin.GET("/users", userHandler.ListUsers)
		admin.GET("/users/:id", userHandler.GetUser)
		admin.GET("/users/email/:email", userHandler.GetUserByEmail)
		admin.POST("/users", userHandler.CreateUser)
		admin.PUT("/users/:id", userHandler.UpdateUser)
		admin.DELETE("/users/:id", userHandler.DeleteUser)

		// --- Sessions ---
		admin.GET("/sessions/:id", sessionHandler.GetSession)
		admin.POST("/sessions", sessionHandler.CreateSession)
		admin.PUT("/sessions/:id", sessionHandler.UpdateSession)
		admin.DELETE("/sessions/:id", sessionHandler.DeleteSession)

		// --- Site configuration ---
		admin.GET("/site-config/full", siteConfigHandler.GetFull)
		admin.PUT("/site-config", siteConfigHandler.Update)

		// --- Media ---
		admin.DELETE("/delete-file/*fileId", mediaHandler.DeleteFile)

		// --- Backups ---
		admin.GET("/backup/status", backupHandler.Status)
		admin.GET("/backup/list", backupHandler.List)
		admin.POST("/backup/restore", backupHandler.Restore)
		admin.GET("/stats", backupHandler.Stats)
	}
}
