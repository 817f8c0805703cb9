package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudpane/backend/internal/events"
	"github.com/cloudpane/backend/internal/notify"
	"github.com/cloudpane/backend/internal/vfs"
)

// ListItems renders one page of the item view. All pipeline knobs arrive
// as query parameters.
func (h *Handlers) ListItems(c *gin.Context) {
	q := vfs.Query{
		Tab:      vfs.Tab(c.Query("tab")),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		SortKey:  vfs.SortKey(c.Query("sort")),
		SortDir:  vfs.SortDir(c.Query("dir")),
	}
	if parent := c.Query("parent"); parent != "" {
		q.FolderID = &parent
	}
	if types, ok := c.GetQueryArray("type"); ok {
		q.Types = types
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil {
		q.PageSize = size
	} else if h.cfg != nil && h.cfg.View.PageSize > 0 {
		q.PageSize = h.cfg.View.PageSize
	}

	c.JSON(http.StatusOK, h.store.View(q))
}

// GetItem returns a single item with its display size.
func (h *Handlers) GetItem(c *gin.Context) {
	item, err := h.store.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item":         item,
		"display_size": item.DisplaySize(h.store.ChildCount(item.ID)),
	})
}

// GetAncestors returns the breadcrumb chain, root first.
func (h *Handlers) GetAncestors(c *gin.Context) {
	ancestors, err := h.store.AncestorsOf(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ancestors": ancestors})
}

// GetTree returns the nested folder hierarchy for the sidebar.
func (h *Handlers) GetTree(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tree": h.store.FolderTree()})
}

type createFolderRequest struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *string `json:"parent_id"`
}

// CreateFolder creates a folder and announces it.
func (h *Handlers) CreateFolder(c *gin.Context) {
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	folder, err := h.store.CreateFolder(req.Name, req.ParentID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.recordMutation("create_folder")
	h.bus.Publish(events.TopicFolderCreated, folder)
	h.logger.Info("folder created", zap.String("id", folder.ID), zap.String("name", folder.Name))
	c.JSON(http.StatusCreated, gin.H{"item": folder})
}

type createFileRequest struct {
	Name       string  `json:"name" binding:"required"`
	Size       string  `json:"size"`
	ByteSize   int64   `json:"byte_size"`
	CategoryID *string `json:"category_id"`
	ParentID   *string `json:"parent_id"`
}

// CreateFile creates a leaf item. Size may arrive as raw bytes or as a
// human string ("1.5 MB").
func (h *Handlers) CreateFile(c *gin.Context) {
	var req createFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	byteSize := req.ByteSize
	if byteSize == 0 && req.Size != "" {
		byteSize = vfs.ParseSize(req.Size)
	}

	item, err := h.store.CreateFile(req.Name, byteSize, req.CategoryID, req.ParentID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.recordMutation("create_file")
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

type patchItemRequest struct {
	Name          *string `json:"name"`
	Starred       *bool   `json:"starred"`
	ByteSize      *int64  `json:"byte_size"`
	CategoryID    *string `json:"category_id"`
	ClearCategory bool    `json:"clear_category"`
}

// PatchItem applies a partial update.
func (h *Handlers) PatchItem(c *gin.Context) {
	var req patchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.store.Update(c.Param("id"), vfs.Patch{
		Name:          req.Name,
		Starred:       req.Starred,
		ByteSize:      req.ByteSize,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.recordMutation("patch")
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// ToggleStar flips the star flag.
func (h *Handlers) ToggleStar(c *gin.Context) {
	item, err := h.store.ToggleStar(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	h.recordMutation("star")
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DeleteItem removes one item; folders cascade to their descendants.
func (h *Handlers) DeleteItem(c *gin.Context) {
	itemID := c.Param("id")
	if err := h.store.Remove(itemID); err != nil {
		h.fail(c, err)
		return
	}

	h.recordMutation("delete")
	c.JSON(http.StatusOK, gin.H{"deleted": true, "id": itemID})
}

type bulkIDsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// DeleteItems removes a batch, skipping ids that no longer exist.
func (h *Handlers) DeleteItems(c *gin.Context) {
	var req bulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed := h.store.BulkRemove(req.IDs)
	h.selection.Clear()
	h.recordMutation("delete_bulk")

	if removed > 0 && h.notify != nil {
		h.notify.Add("Items deleted", strconv.Itoa(removed)+" item(s) removed", notify.TypeInfo)
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

type moveRequest struct {
	IDs      []string `json:"ids" binding:"required"`
	TargetID string   `json:"target_id" binding:"required"`
}

// MoveItems reparents a batch into a target folder. The cycle guard
// rejects the whole batch before any mutation.
func (h *Handlers) MoveItems(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Move(req.IDs, req.TargetID); err != nil {
		h.fail(c, err)
		return
	}

	h.recordMutation("move")
	h.bus.Publish(events.TopicItemsDropped, gin.H{"ids": req.IDs, "target_id": req.TargetID, "operation": vfs.OpMove})
	c.JSON(http.StatusOK, gin.H{"moved": len(req.IDs)})
}

type copyRequest struct {
	IDs      []string `json:"ids" binding:"required"`
	TargetID *string  `json:"target_id"`
}

// CopyItems duplicates a batch into a target folder (or the root).
func (h *Handlers) CopyItems(c *gin.Context) {
	var req copyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	copies, err := h.store.Copy(req.IDs, req.TargetID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.recordMutation("copy")
	c.JSON(http.StatusOK, gin.H{"items": copies})
}
