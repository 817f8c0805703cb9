// Package server wires the dashboard backend together: store, providers,
// background tasks, HTTP routes and the WebSocket stream.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/cloudpane/backend/internal/api/http"
	"github.com/cloudpane/backend/internal/api/middleware"
	"github.com/cloudpane/backend/internal/api/ws"
	"github.com/cloudpane/backend/internal/events"
	"github.com/cloudpane/backend/internal/infrastructure/config"
	"github.com/cloudpane/backend/internal/infrastructure/logging"
	"github.com/cloudpane/backend/internal/infrastructure/monitoring"
	"github.com/cloudpane/backend/internal/kvstore"
	"github.com/cloudpane/backend/internal/notify"
	"github.com/cloudpane/backend/internal/providers/settings"
	"github.com/cloudpane/backend/internal/providers/storage"
	"github.com/cloudpane/backend/internal/service"
	"github.com/cloudpane/backend/internal/tasks"
	"github.com/cloudpane/backend/internal/vfs"
)

// Version is the reported service version.
const Version = "1.0.0"

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	store   *vfs.Store
	kv      *kvstore.Store
	bus     *events.Bus
	tasks   *tasks.Manager
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a fully wired server instance.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing CloudPane backend",
		zap.String("port", cfg.Server.Port),
		zap.String("store_path", cfg.Store.Path),
	)

	metrics := monitoring.NewMetrics()
	bus := events.NewBus(64)

	kv, err := kvstore.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	store := vfs.NewStore()
	categories := vfs.NewCategories(store)
	categories.SeedDefaults()
	if cfg.Store.SeedDemo {
		seedDemoItems(store, categories, logger)
	}
	metrics.SetItemsStored(store.Len())

	notifyCenter := notify.NewCenter(kv, bus)
	taskManager := tasks.NewManager(tasks.Config{
		Tick:          cfg.Tasks.Tick,
		Step:          cfg.Tasks.Step,
		MaxConcurrent: cfg.Tasks.MaxConcurrent,
	}, bus)

	registry := service.NewRegistry()
	if err := registry.Register(storage.NewProvider(kv)); err != nil {
		logger.Warn("failed to register storage provider", zap.Error(err))
	}
	if err := registry.Register(settings.NewProvider(kv)); err != nil {
		logger.Warn("failed to register settings provider", zap.Error(err))
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Logger:     logger,
		Store:      store,
		Categories: categories,
		Selection:  vfs.NewSelection(),
		Drag:       vfs.NewDrag(),
		Registry:   registry,
		Tasks:      taskManager,
		Notify:     notifyCenter,
		KV:         kv,
		Bus:        bus,
		Metrics:    metrics,
		Config:     cfg,
		Version:    Version,
	})
	wsHandler := ws.NewHandler(bus, logger, metrics)

	registerRoutes(router, handlers, wsHandler, metrics)

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		store:   store,
		kv:      kv,
		bus:     bus,
		tasks:   taskManager,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

func registerRoutes(router *gin.Engine, handlers *apihttp.Handlers, wsHandler *ws.Handler, metrics *monitoring.Metrics) {
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	api := router.Group("/api")
	{
		// Item view and mutations
		api.GET("/items", handlers.ListItems)
		api.POST("/items", handlers.CreateFile)
		api.GET("/items/:id", handlers.GetItem)
		api.PATCH("/items/:id", handlers.PatchItem)
		api.DELETE("/items/:id", handlers.DeleteItem)
		api.GET("/items/:id/ancestors", handlers.GetAncestors)
		api.POST("/items/:id/star", handlers.ToggleStar)

		// Batch mutations live under /batch so the static segments never
		// collide with the :id routes.
		api.POST("/batch/delete", handlers.DeleteItems)
		api.POST("/batch/move", handlers.MoveItems)
		api.POST("/batch/copy", handlers.CopyItems)

		// Folder tree
		api.GET("/tree", handlers.GetTree)
		api.POST("/folders", handlers.CreateFolder)
		api.POST("/folders/:id/select", handlers.SelectFolder)

		// Categories
		api.GET("/categories", handlers.ListCategories)
		api.POST("/categories", handlers.CreateCategory)
		api.PATCH("/categories/:id", handlers.RenameCategory)
		api.DELETE("/categories/:id", handlers.DeleteCategory)
		api.POST("/categories/:id/select", handlers.SelectCategory)

		// Selection
		api.GET("/selection", handlers.GetSelection)
		api.POST("/selection/toggle", handlers.SelectionToggle)
		api.POST("/selection/all", handlers.SelectionAll)
		api.POST("/selection/clear", handlers.SelectionClear)
		api.POST("/selection/mode", handlers.SelectionMode)

		// Drag and transfer
		api.POST("/drag/start", handlers.DragStart)
		api.POST("/drag/hover", handlers.DragHover)
		api.POST("/drag/leave", handlers.DragLeave)
		api.POST("/drag/cancel", handlers.DragCancel)
		api.POST("/drag/drop", handlers.DragDrop)
		api.POST("/transfer", handlers.CommitTransfer)

		// Background tasks: canceling is DELETE so the :id route never
		// shares a method tree with the static starters.
		api.GET("/tasks", handlers.ListTasks)
		api.GET("/tasks/:id", handlers.GetTask)
		api.DELETE("/tasks/:id", handlers.CancelTask)
		api.POST("/uploads", handlers.StartUpload)
		api.POST("/backups", handlers.StartBackup)
		api.POST("/syncs", handlers.StartSync)

		// Notifications
		api.GET("/notifications", handlers.ListNotifications)
		api.POST("/notifications/read", handlers.MarkAllNotificationsRead)
		api.PATCH("/notifications/:id", handlers.MarkNotificationRead)
		api.DELETE("/notifications/:id", handlers.DeleteNotification)
		api.DELETE("/notifications", handlers.ClearNotifications)

		// Images
		api.GET("/images", handlers.LoadImage)
		api.GET("/images/thumbnail", handlers.LoadThumbnail)

		// Stats
		api.GET("/stats", handlers.Stats)
	}

	// Service registry
	router.GET("/services", handlers.ListServices)
	router.GET("/services/stats", handlers.ServiceStats)
	router.POST("/services/discover", handlers.DiscoverServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// WebSocket stream
	router.GET("/stream", wsHandler.HandleConnection)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close gracefully shuts down background work.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.tasks.Shutdown()
	s.bus.Close()
	s.logger.Sync()
	return nil
}
