package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudpane/backend/internal/notify"
	"github.com/cloudpane/backend/internal/tasks"
	"github.com/cloudpane/backend/internal/vfs"
)

// ListTasks returns all background tasks.
func (h *Handlers) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.tasks.List()})
}

// GetTask returns one task.
func (h *Handlers) GetTask(c *gin.Context) {
	task, err := h.tasks.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// CancelTask stops a running task.
func (h *Handlers) CancelTask(c *gin.Context) {
	if err := h.tasks.Cancel(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canceled": true})
}

type uploadRequest struct {
	Name     string  `json:"name" binding:"required"`
	Size     string  `json:"size"`
	ByteSize int64   `json:"byte_size"`
	ParentID *string `json:"parent_id"`
}

// StartUpload launches a simulated upload. The item materializes in the
// store when the task reaches 100%.
func (h *Handlers) StartUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	byteSize := req.ByteSize
	if byteSize == 0 && req.Size != "" {
		byteSize = vfs.ParseSize(req.Size)
	}

	task, err := h.tasks.Start(c.Request.Context(), tasks.TypeUpload, req.Name, func() error {
		item, err := h.store.CreateFile(req.Name, byteSize, nil, req.ParentID)
		if err != nil {
			return err
		}
		h.recordMutation("upload")
		h.notify.Add("Upload complete", fmt.Sprintf("%s uploaded", item.Name), notify.TypeSuccess)
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.metrics.RecordTaskStarted(string(tasks.TypeUpload))
	h.metrics.SetTasksActive(h.tasks.Active())
	c.JSON(http.StatusAccepted, gin.H{"task": task})
}

// StartBackup launches a backup task writing a gzipped snapshot of every
// item plus the persisted settings.
func (h *Handlers) StartBackup(c *gin.Context) {
	dir := "backups"
	if h.cfg != nil && h.cfg.Store.BackupDir != "" {
		dir = h.cfg.Store.BackupDir
	}

	task, err := h.tasks.Start(c.Request.Context(), tasks.TypeBackup, "snapshot", func() error {
		items := make([]vfs.Item, 0, h.store.Len())
		for _, item := range h.store.Items() {
			items = append(items, *item)
		}
		var settings json.RawMessage
		if raw, err := h.kv.Export(); err == nil {
			settings = raw
		}

		path, err := tasks.WriteBackup(dir, items, settings)
		if err != nil {
			h.notify.Error("Backup failed", err.Error())
			return err
		}
		h.notify.Add("Backup complete", fmt.Sprintf("snapshot written to %s", path), notify.TypeSuccess)
		h.logger.Info("backup written", zap.String("path", path), zap.Int("items", len(items)))
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.metrics.RecordTaskStarted(string(tasks.TypeBackup))
	h.metrics.SetTasksActive(h.tasks.Active())
	c.JSON(http.StatusAccepted, gin.H{"task": task})
}

type syncRequest struct {
	Name string `json:"name"`
}

// StartSync launches a simulated sync pass.
func (h *Handlers) StartSync(c *gin.Context) {
	var req syncRequest
	_ = c.ShouldBindJSON(&req)
	if req.Name == "" {
		req.Name = "remote"
	}

	task, err := h.tasks.Start(c.Request.Context(), tasks.TypeSync, req.Name, func() error {
		h.notify.Add("Sync complete", fmt.Sprintf("%s is up to date", req.Name), notify.TypeSuccess)
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.metrics.RecordTaskStarted(string(tasks.TypeSync))
	h.metrics.SetTasksActive(h.tasks.Active())
	c.JSON(http.StatusAccepted, gin.H{"task": task})
}

// ListNotifications returns the notification center contents.
func (h *Handlers) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"notifications": h.notify.List(),
		"unread":        h.notify.UnreadCount(),
	})
}

// MarkNotificationRead flags one notification as read.
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := h.notify.MarkRead(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkAllNotificationsRead flags everything as read.
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	h.notify.MarkAllRead()
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// DeleteNotification removes one notification.
func (h *Handlers) DeleteNotification(c *gin.Context) {
	if err := h.notify.Remove(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ClearNotifications removes everything.
func (h *Handlers) ClearNotifications(c *gin.Context) {
	h.notify.Clear()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
