package handlers

import (
	"net/http"

	"taskboard/internal/domain"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
)

// ListTasks returns the caller's tasks, newest first. ?filter= selects
// all, active or completed.
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.Tasks.List(c.Request.Context(), domain.TaskFilter(c.Query("filter")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	var in service.CreateTaskInput
	if !bindJSON(c, &in) {
		return
	}
	h.mutated(c, h.Tasks.Create(c.Request.Context(), in))
}

// UpdateTask applies the fields present in the body. A task that is not
// the caller's is left alone and the call still succeeds.
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in service.UpdateTaskInput
	if !bindJSON(c, &in) {
		return
	}
	in.ID = id
	h.mutated(c, h.Tasks.Update(c.Request.Context(), in))
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.mutated(c, h.Tasks.Delete(c.Request.Context(), service.DeleteTaskInput{ID: id}))
}

func (h *Handler) ToggleTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in service.ToggleTaskInput
	if !bindJSON(c, &in) {
		return
	}
	in.ID = id
	h.mutated(c, h.Tasks.Toggle(c.Request.Context(), in))
}
