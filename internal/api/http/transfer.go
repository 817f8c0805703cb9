package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cloudpane/backend/internal/events"
	"github.com/cloudpane/backend/internal/vfs"
)

type dragStartRequest struct {
	IDs       []string      `json:"ids" binding:"required"`
	Operation vfs.Operation `json:"operation"`
}

// DragStart captures the dragged item set and enters the drag.
func (h *Handlers) DragStart(c *gin.Context) {
	var req dragStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]vfs.Item, 0, len(req.IDs))
	for _, itemID := range req.IDs {
		item, err := h.store.Get(itemID)
		if err != nil {
			h.fail(c, err)
			return
		}
		items = append(items, *item)
	}

	if err := h.drag.Start(items, req.Operation); err != nil {
		h.fail(c, err)
		return
	}

	h.bus.Publish(events.TopicDragStarted, gin.H{"ids": req.IDs, "operation": req.Operation})
	c.JSON(http.StatusOK, gin.H{"state": h.drag.State().String()})
}

type hoverRequest struct {
	TargetID string `json:"target_id"` // "" targets the root
}

// DragHover marks the hovered drop target.
func (h *Handlers) DragHover(c *gin.Context) {
	var req hoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.drag.HoverTarget(req.TargetID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.drag.State().String()})
}

// DragLeave clears the hovered target.
func (h *Handlers) DragLeave(c *gin.Context) {
	h.drag.LeaveTarget()
	c.JSON(http.StatusOK, gin.H{"state": h.drag.State().String()})
}

// DragCancel ends the drag without mutating anything.
func (h *Handlers) DragCancel(c *gin.Context) {
	h.drag.Cancel()
	h.bus.Publish(events.TopicDragEnded, gin.H{"dropped": false})
	c.JSON(http.StatusOK, gin.H{"state": h.drag.State().String()})
}

// DragDrop commits the drag into the hovered folder. Dropping with no
// pending target ends the drag and mutates nothing.
func (h *Handlers) DragDrop(c *gin.Context) {
	items, err := h.drag.Drop(h.store)
	if err != nil {
		h.notifyTransferFailure(err)
		h.fail(c, err)
		return
	}

	h.bus.Publish(events.TopicDragEnded, gin.H{"dropped": len(items) > 0})
	if len(items) > 0 {
		h.recordMutation("drop")
		h.bus.Publish(events.TopicItemsDropped, gin.H{"items": items})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "state": h.drag.State().String()})
}

type transferRequest struct {
	Payload  json.RawMessage `json:"payload" binding:"required"`
	TargetID *string         `json:"target_id"`
}

// CommitTransfer applies a raw transfer payload directly, the path the
// context menu uses. Malformed payloads leave the store untouched.
func (h *Handlers) CommitTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := vfs.CommitTransfer(h.store, req.Payload, req.TargetID)
	if err != nil {
		h.notifyTransferFailure(err)
		h.fail(c, err)
		return
	}

	h.recordMutation("transfer")
	h.bus.Publish(events.TopicItemsDropped, gin.H{"items": items})
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handlers) notifyTransferFailure(err error) {
	if h.notify == nil {
		return
	}
	h.notify.Error("Transfer failed", fmt.Sprintf("items were not moved: %v", err))
}

type toggleRequest struct {
	ID       string `json:"id" binding:"required"`
	Additive bool   `json:"additive"`
}

// SelectionToggle handles a click on an item.
func (h *Handlers) SelectionToggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.selection.Toggle(req.ID, req.Additive)
	h.selectionState(c)
}

type selectAllRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// SelectionAll replaces the selection with the visible ids.
func (h *Handlers) SelectionAll(c *gin.Context) {
	var req selectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.selection.SelectAll(req.IDs)
	h.selectionState(c)
}

// SelectionClear empties the selection.
func (h *Handlers) SelectionClear(c *gin.Context) {
	h.selection.Clear()
	h.selectionState(c)
}

type selectionModeRequest struct {
	Active bool `json:"active"`
}

// SelectionMode enters or leaves selection mode.
func (h *Handlers) SelectionMode(c *gin.Context) {
	var req selectionModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Active {
		h.selection.EnterMode()
	} else {
		h.selection.LeaveMode()
	}
	h.selectionState(c)
}

// GetSelection returns the current selection.
func (h *Handlers) GetSelection(c *gin.Context) {
	h.selectionState(c)
}

func (h *Handlers) selectionState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ids":   h.selection.IDs(),
		"count": h.selection.Count(),
		"mode":  h.selection.InMode(),
	})
}
