package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopinath21052006/NeuroTrain/internal/store"
)

// ListTasks returns all stored tasks.
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.deps.Tasks.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list tasks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": tasks})
}

// CreateTask adds a task.
func (h *Handler) CreateTask(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "title is required"})
		return
	}

	task, err := h.deps.Tasks.Create(c.Request.Context(), req.Title)
	if err != nil {
		log.Printf("Failed to create task: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create task"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "task": task})
}

// UpdateTask changes a task's title or completion state.
func (h *Handler) UpdateTask(c *gin.Context) {
	var req struct {
		Title     *string `json:"title"`
		Completed *bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid payload"})
		return
	}

	task, err := h.deps.Tasks.Update(c.Request.Context(), c.Param("id"), req.Title, req.Completed)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

// DeleteTask removes a task.
func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.deps.Tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to delete task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListReminders returns all stored reminders.
func (h *Handler) ListReminders(c *gin.Context) {
	reminders, err := h.deps.Schedule.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list reminders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reminders": reminders})
}

// CreateReminder adds a reminder.
func (h *Handler) CreateReminder(c *gin.Context) {
	var req struct {
		Time    string `json:"time" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "time and message are required"})
		return
	}

	reminder, err := h.deps.Schedule.Create(c.Request.Context(), req.Time, req.Message)
	if err != nil {
		log.Printf("Failed to create reminder: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create reminder"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "reminder": reminder})
}

// UpdateReminder changes a reminder's time or message.
func (h *Handler) UpdateReminder(c *gin.Context) {
	var req struct {
		Time    *string `json:"time"`
		Message *string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid payload"})
		return
	}

	reminder, err := h.deps.Schedule.Update(c.Request.Context(), c.Param("id"), req.Time, req.Message)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update reminder"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reminder": reminder})
}

// DeleteReminder removes one reminder.
func (h *Handler) DeleteReminder(c *gin.Context) {
	if err := h.deps.Schedule.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to delete reminder"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearReminders removes every reminder.
func (h *Handler) ClearReminders(c *gin.Context) {
	if err := h.deps.Schedule.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to clear reminders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SystemStats returns host resource usage.
func (h *Handler) SystemStats(c *gin.Context) {
	stats, err := h.deps.Monitor.Stats(c.Request.Context())
	if err != nil {
		log.Printf("Failed to read system stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to read system stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// SupportedApps lists the applications the launcher can open.
func (h *Handler) SupportedApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "apps": h.deps.Launcher.SupportedApps()})
}

// OpenApp launches an application by name.
func (h *Handler) OpenApp(c *gin.Context) {
	var req struct {
		App string `json:"app" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "app is required"})
		return
	}

	if err := h.deps.Launcher.Open(c.Request.Context(), req.App); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
