package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"taskboard/internal/http/middleware"
	"taskboard/internal/logger"
	"taskboard/internal/service"
	"taskboard/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Tasks        *service.TaskService
	Auth         *service.AuthService
	Hub          *ws.Hub
	CookieSecure bool
}

func NewHandler(tasks *service.TaskService, auths *service.AuthService, hub *ws.Hub, cookieSecure bool) *Handler {
	return &Handler{
		Tasks:        tasks,
		Auth:         auths,
		Hub:          hub,
		CookieSecure: cookieSecure,
	}
}

// writeError maps a service error onto a status code. Internal errors are
// logged and answered with an opaque message.
func writeError(c *gin.Context, err error) {
	switch service.Classify(err) {
	case service.KindValidation:
		var verr *service.ValidationError
		errors.As(err, &verr)
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case service.KindUnauthenticated:
		msg := "unauthorized"
		if errors.Is(err, service.ErrInvalidCredentials) {
			msg = err.Error()
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	case service.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	default:
		logger.WithContext(c.Request.Context()).Error("request failed",
			"path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer", "field": "id"})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return false
	}
	return true
}

// mutated answers a task mutation and tells the caller's open sockets to
// refetch the list.
func (h *Handler) mutated(c *gin.Context, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if h.Hub != nil {
		if userID, ok := middleware.UserID(c); ok {
			h.Hub.Invalidate(userID, nil, service.ProcList)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
