package account

import (
	"context"
	"net/http"
	"time"

	"account-admin-svc/src/internal/config"
	"account-admin-svc/src/internal/middleware"
	"account-admin-svc/src/internal/response"

	"github.com/gin-gonic/gin"
)

type Handler interface {
	Me(c *gin.Context)
	Dashboard(c *gin.Context)
	UpdateProfile(c *gin.Context)
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

func (h *handler) Me(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	user, err := h.service.Me(ctx, middleware.Subject(c))
	if err != nil {
		response.HandleError(c, err, "me")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	result, err := h.service.Dashboard(ctx, middleware.Subject(c), middleware.Origin(c))
	if err != nil {
		response.HandleError(c, err, "dashboard")
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateProfile renames the caller; the new name comes from the name query parameter.
func (h *handler) UpdateProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	req := &UpdateProfileRequest{Name: c.Query("name")}
	user, err := h.service.UpdateProfile(ctx, middleware.Subject(c), req, middleware.Origin(c))
	if err != nil {
		response.HandleError(c, err, "update_profile")
		return
	}
	c.JSON(http.StatusOK, user)
}
