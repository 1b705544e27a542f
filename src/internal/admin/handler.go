package admin

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
	Me(c *gin.Context)
	Dashboard(c *gin.Context)
	GetUsers(c *gin.Context)
	GetUser(c *gin.Context)
	ActivateUser(c *gin.Context)
	DeactivateUser(c *gin.Context)
	DeleteUser(c *gin.Context)
	GetActivities(c *gin.Context)
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

func (h *handler) timeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
}

func (h *handler) Me(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	admin, err := h.service.Me(ctx, middleware.Subject(c))
	if err != nil {
		response.HandleError(c, err, "admin_me")
		return
	}
	c.JSON(http.StatusOK, admin)
}

func (h *handler) Dashboard(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	result, err := h.service.Dashboard(ctx, middleware.Subject(c))
	if err != nil {
		response.HandleError(c, err, "admin_dashboard")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) GetUsers(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	req := &GetUsersRequest{}
	if err := c.ShouldBindQuery(req); err != nil {
		response.SendError(c, http.StatusBadRequest, "Invalid request", "Invalid query parameters")
		return
	}

	logrus.WithFields(logrus.Fields{
		"sortBy": req.SortBy,
		"order":  req.SortOrder,
		"admin":  middleware.Subject(c),
	}).Info("GetUsers request received")

	result, err := h.service.GetUsers(ctx, middleware.Subject(c), req)
	if err != nil {
		response.HandleError(c, err, "get_users")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) GetUser(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	result, err := h.service.GetUser(ctx, middleware.Subject(c), c.Param("id"))
	if err != nil {
		response.HandleError(c, err, "get_user")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handler) ActivateUser(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	userID := c.Param("id")
	if err := h.service.ActivateUser(ctx, middleware.Subject(c), userID, middleware.Origin(c)); err != nil {
		response.HandleError(c, err, "activate_user")
		return
	}

	logrus.WithField("userID", userID).Info("User activated successfully")
	c.JSON(http.StatusOK, MessageResponse{Message: "User activated successfully"})
}

func (h *handler) DeactivateUser(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	userID := c.Param("id")
	if err := h.service.DeactivateUser(ctx, middleware.Subject(c), userID, middleware.Origin(c)); err != nil {
		response.HandleError(c, err, "deactivate_user")
		return
	}

	logrus.WithField("userID", userID).Info("User deactivated successfully")
	c.JSON(http.StatusOK, MessageResponse{Message: "User deactivated successfully"})
}

func (h *handler) DeleteUser(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	userID := c.Param("id")
	if err := h.service.DeleteUser(ctx, middleware.Subject(c), userID, middleware.Origin(c)); err != nil {
		response.HandleError(c, err, "delete_user")
		return
	}

	logrus.WithField("userID", userID).Info("User deleted successfully")
	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

func (h *handler) GetActivities(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	req := &GetActivitiesRequest{}
	if err := c.ShouldBindQuery(req); err != nil {
		response.SendError(c, http.StatusBadRequest, "Invalid request", "Invalid query parameters")
		return
	}

	result, err := h.service.GetActivities(ctx, middleware.Subject(c), req)
	if err != nil {
		response.HandleError(c, err, "get_activities")
		return
	}
	c.JSON(http.StatusOK, result)
}
