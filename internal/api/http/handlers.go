// Package http implements the REST surface of the dashboard backend.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cloudpane/backend/internal/events"
	"github.com/cloudpane/backend/internal/infrastructure/config"
	"github.com/cloudpane/backend/internal/infrastructure/logging"
	"github.com/cloudpane/backend/internal/infrastructure/monitoring"
	"github.com/cloudpane/backend/internal/kvstore"
	"github.com/cloudpane/backend/internal/notify"
	"github.com/cloudpane/backend/internal/service"
	"github.com/cloudpane/backend/internal/tasks"
	"github.com/cloudpane/backend/internal/vfs"
)

// Handlers carries the dependencies every endpoint needs.
type Handlers struct {
	logger     *logging.Logger
	store      *vfs.Store
	categories *vfs.Categories
	selection  *vfs.Selection
	drag       *vfs.Drag
	registry   *service.Registry
	tasks      *tasks.Manager
	notify     *notify.Center
	kv         *kvstore.Store
	bus        *events.Bus
	metrics    *monitoring.Metrics
	cfg        *config.Config
	version    string
}

// Deps bundles the constructor arguments for Handlers.
type Deps struct {
	Logger     *logging.Logger
	Store      *vfs.Store
	Categories *vfs.Categories
	Selection  *vfs.Selection
	Drag       *vfs.Drag
	Registry   *service.Registry
	Tasks      *tasks.Manager
	Notify     *notify.Center
	KV         *kvstore.Store
	Bus        *events.Bus
	Metrics    *monitoring.Metrics
	Config     *config.Config
	Version    string
}

// NewHandlers creates the handler set.
func NewHandlers(deps Deps) *Handlers {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	return &Handlers{
		logger:     deps.Logger,
		store:      deps.Store,
		categories: deps.Categories,
		selection:  deps.Selection,
		drag:       deps.Drag,
		registry:   deps.Registry,
		tasks:      deps.Tasks,
		notify:     deps.Notify,
		kv:         deps.KV,
		bus:        deps.Bus,
		metrics:    deps.Metrics,
		cfg:        deps.Config,
		version:    deps.Version,
	}
}

// Root returns service identity.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "cloudpane-backend",
		"version": h.version,
		"status":  "running",
	})
}

// Health reports liveness and a few cheap figures.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"items":        h.store.Len(),
		"active_tasks": h.tasks.Active(),
		"uptime":       h.metrics.UptimeSeconds(),
	})
}

// Stats returns store totals plus the HTTP metrics snapshot.
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":       h.store.Len(),
		"total_bytes": h.store.TotalBytes(),
		"categories":  len(h.categories.List()),
		"tasks":       len(h.tasks.List()),
		"unread":      h.notify.UnreadCount(),
		"http":        h.metrics.CurrentSnapshot(),
	})
}

// fail maps domain errors onto HTTP status codes.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, vfs.ErrValidation), errors.Is(err, vfs.ErrTransferParse):
		status = http.StatusBadRequest
	case errors.Is(err, vfs.ErrCycleDetected), errors.Is(err, vfs.ErrNotAFolder), errors.Is(err, vfs.ErrTransferState):
		status = http.StatusConflict
	case errors.Is(err, tasks.ErrTaskNotFound), errors.Is(err, notify.ErrNotFound), errors.Is(err, kvstore.ErrKeyNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tasks.ErrNotRunning):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// recordMutation bumps the mutation counter and the stored-items gauge.
func (h *Handlers) recordMutation(operation string) {
	h.metrics.RecordMutation(operation)
	h.metrics.SetItemsStored(h.store.Len())
}
