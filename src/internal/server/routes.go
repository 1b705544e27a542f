package server

import (
	"context"
	"net/http"
	"time"

	"account-admin-svc/src/internal/dependency"
	"account-admin-svc/src/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

func SetupRoutes(deps *dependency.Manager) {
	router := deps.Router
	if err := router.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		log.WithError(err).Warn("Invalid trusted proxies, forwarding headers ignored")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(deps.Config.Cors.AllowedOrigins))

	setupHealthEndpoint(deps)
	setupPublicRoutes(router, deps)
	setupUserRoutes(router, deps)
	setupAdminRoutes(router, deps)
}

func setupHealthEndpoint(deps *dependency.Manager) {
	router := deps.Router
	cfg := deps.Config

	router.GET("/health", func(c *gin.Context) {
		log.Debug("Health check endpoint requested")

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(cfg.App.Timeout)*time.Second)
		defer cancel()

		counts, err := deps.Store.Counts(ctx)
		if err != nil {
			log.WithError(err).Error("Health check failed")
			c.JSON(http.StatusOK, gin.H{
				"status": "unhealthy",
				"error":  "database unavailable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":           "healthy",
			"users_count":      counts.Users,
			"admins_count":     counts.Admins,
			"activities_count": counts.Activities,
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		log.Debug("Detailed health check endpoint requested")

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(cfg.App.Timeout)*time.Second)
		defer cancel()

		database := getStatus(deps.Store.Ping(ctx) == nil)
		throttle := gin.H{"backend": deps.Limiter.Name()}
		if deps.Redis != nil {
			throttle["status"] = getStatus(deps.Redis.Client.Ping(ctx).Err() == nil)
		}

		status := "operational"
		if database != "connected" {
			status = "degraded"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  status,
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"components": gin.H{
				"database":  database,
				"throttle":  throttle,
				"publisher": deps.Recorder.PublisherName(),
			},
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}

func setupPublicRoutes(router *gin.Engine, deps *dependency.Manager) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to " + deps.Config.App.Name})
	})

	router.POST("/register", deps.AuthHandler.Register)
	router.POST("/login", deps.AuthHandler.Login)
	router.POST("/admin/login", deps.AuthHandler.AdminLogin)
}

func setupUserRoutes(router *gin.Engine, deps *dependency.Manager) {
	handler := deps.AccountHandler

	user := router.Group("/", deps.AuthMiddleware.RequireUser())
	{
		user.GET("/me", handler.Me)
		user.GET("/dashboard", handler.Dashboard)
		user.PUT("/profile", handler.UpdateProfile)
	}
}

func setupAdminRoutes(router *gin.Engine, deps *dependency.Manager) {
	handler := deps.AdminHandler

	admin := router.Group("/admin", deps.AuthMiddleware.RequireAdmin())
	{
		admin.GET("/me", handler.Me)
		admin.GET("/dashboard", handler.Dashboard)
		admin.GET("/users", handler.GetUsers)
		admin.GET("/users/:id", handler.GetUser)
		admin.POST("/users/:id/activate", handler.ActivateUser)
		admin.POST("/users/:id/deactivate", handler.DeactivateUser)
		admin.DELETE("/users/:id", handler.DeleteUser)
		admin.GET("/activities", handler.GetActivities)
	}
}

func getStatus(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}
