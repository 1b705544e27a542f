package auth

import (
	"context"
	"net/http"
	"time"

	"account-admin-svc/src/internal/config"
	"account-admin-svc/src/internal/middleware"
	"account-admin-svc/src/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	AdminLogin(c *gin.Context)
}

type handler struct {
	config  *config.Configuration
	service Service
}

func NewHandler(cfg *config.Configuration, service Service) Handler {
	return &handler{
		config:  cfg,
		service: service,
	}
}

func (h *handler) Register(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Debug("Invalid register request body")
		response.SendError(c, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}

	result, err := h.service.Register(ctx, &req, middleware.Origin(c))
	if err != nil {
		response.HandleError(c, err, "register")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *handler) Login(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Debug("Invalid login request body")
		response.SendError(c, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}

	result, err := h.service.Login(ctx, &req, middleware.Origin(c))
	if err != nil {
		response.HandleError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *handler) AdminLogin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Debug("Invalid admin login request body")
		response.SendError(c, http.StatusBadRequest, "Invalid request", "Request body must be valid JSON")
		return
	}

	result, err := h.service.AdminLogin(ctx, &req, middleware.Origin(c))
	if err != nil {
		response.HandleError(c, err, "admin_login")
		return
	}

	c.JSON(http.StatusOK, result)
}
