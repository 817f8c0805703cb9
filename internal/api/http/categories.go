package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cloudpane/backend/internal/events"
)

// ListCategories returns all categories in creation order.
func (h *Handlers) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.categories.List()})
}

type categoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// CreateCategory adds a category.
func (h *Handlers) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categories.Create(req.Name, req.Color)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

type renameCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameCategory renames a category.
func (h *Handlers) RenameCategory(c *gin.Context) {
	var req renameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.categories.Rename(c.Param("id"), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory removes a category; items keep existing but lose the
// reference.
func (h *Handlers) DeleteCategory(c *gin.Context) {
	cleared, err := h.categories.Delete(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "items_cleared": cleared})
}

// SelectCategory broadcasts a sidebar category selection so every
// connected view can refilter.
func (h *Handlers) SelectCategory(c *gin.Context) {
	categoryID := c.Param("id")
	h.bus.Publish(events.TopicCategorySelected, gin.H{"category_id": categoryID})
	c.JSON(http.StatusOK, gin.H{"selected": categoryID})
}

// SelectFolder broadcasts a sidebar folder selection.
func (h *Handlers) SelectFolder(c *gin.Context) {
	folderID := c.Param("id")
	if _, err := h.store.Get(folderID); err != nil {
		h.fail(c, err)
		return
	}
	h.bus.Publish(events.TopicFolderSelected, gin.H{"folder_id": folderID})
	c.JSON(http.StatusOK, gin.H{"selected": folderID})
}
