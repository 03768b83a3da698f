package handlers

import (
	"net/http"

	"taskboard/internal/auth"

	"github.com/gin-gonic/gin"
)

// Me returns the signed-in user, or null for anonymous callers.
func (h *Handler) Me(c *gin.Context) {
	id, ok := auth.FromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, id)
}
