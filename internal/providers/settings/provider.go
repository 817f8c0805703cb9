// Package settings implements dashboard settings management: typed,
// categorized settings with defaults, persisted through the key-value
// store and exportable as YAML.
package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/cloudpane/backend/internal/kvstore"
	"github.com/cloudpane/backend/internal/shared/types"
)

const persistKey = "settings"

// Setting represents a configuration setting
type Setting struct {
	Key         string      `json:"key"`
	Value       interface{} `json:"value"`
	Type        string      `json:"type"` // "string", "number", "boolean", "json"
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Default     interface{} `json:"default"`
}

// Provider implements settings and configuration management
type Provider struct {
	mu    sync.Mutex
	cache map[string]Setting
	store *kvstore.Store
}

// NewProvider creates a settings provider. Persisted values override the
// built-in defaults.
func NewProvider(store *kvstore.Store) *Provider {
	p := &Provider{
		cache: make(map[string]Setting),
		store: store,
	}
	p.initializeDefaults()
	p.loadPersisted()
	return p
}

// Definition returns service metadata
func (s *Provider) Definition() types.Service {
	return types.Service{
		ID:          "settings",
		Name:        "Settings Service",
		Description: "Dashboard settings and configuration management",
		Category:    types.CategorySettings,
		Capabilities: []string{
			"get",
			"set",
			"list",
			"reset",
			"export",
			"import",
		},
		Tools: []types.Tool{
			{
				ID:          "settings.get",
				Name:        "Get Setting",
				Description: "Get a configuration setting value",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Setting key", Required: true},
				},
				Returns: "Setting",
			},
			{
				ID:          "settings.set",
				Name:        "Set Setting",
				Description: "Set a configuration setting value",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Setting key", Required: true},
					{Name: "value", Type: "any", Description: "Setting value", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "settings.list",
				Name:        "List Settings",
				Description: "List all settings optionally filtered by category",
				Parameters: []types.Parameter{
					{Name: "category", Type: "string", Description: "Category filter (optional)", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "settings.reset",
				Name:        "Reset Setting",
				Description: "Reset a setting to its default value",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Setting key", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "settings.export",
				Name:        "Export Settings",
				Description: "Export all settings as YAML",
				Parameters:  []types.Parameter{},
				Returns:     "string",
			},
			{
				ID:          "settings.import",
				Name:        "Import Settings",
				Description: "Import settings from YAML",
				Parameters: []types.Parameter{
					{Name: "yaml", Type: "string", Description: "YAML document to import", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "settings.categories",
				Name:        "List Categories",
				Description: "Get all setting categories",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
		},
	}
}

// Execute runs a settings operation
func (s *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "settings.get":
		return s.get(params)
	case "settings.set":
		return s.set(params)
	case "settings.list":
		return s.list(params)
	case "settings.reset":
		return s.reset(params)
	case "settings.export":
		return s.exportSettings()
	case "settings.import":
		return s.importSettings(params)
	case "settings.categories":
		return s.categories()
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

// initializeDefaults sets up default settings
func (s *Provider) initializeDefaults() {
	defaults := []Setting{
		// General
		{Key: "general.theme", Value: "dark", Type: "string", Category: "general", Description: "UI theme", Default: "dark"},
		{Key: "general.language", Value: "en", Type: "string", Category: "general", Description: "Interface language", Default: "en"},
		{Key: "general.notifications", Value: true, Type: "boolean", Category: "general", Description: "Enable notifications", Default: true},

		// View
		{Key: "view.page_size", Value: 10, Type: "number", Category: "view", Description: "Items per page", Default: 10},
		{Key: "view.default_sort", Value: "name", Type: "string", Category: "view", Description: "Default sort column", Default: "name"},
		{Key: "view.show_hidden", Value: false, Type: "boolean", Category: "view", Description: "Show hidden items", Default: false},

		// Storage
		{Key: "storage.quota_gb", Value: 256, Type: "number", Category: "storage", Description: "Storage quota (GB)", Default: 256},
		{Key: "storage.warn_percent", Value: 90, Type: "number", Category: "storage", Description: "Quota warning threshold (%)", Default: 90},

		// Sync
		{Key: "sync.auto_backup", Value: false, Type: "boolean", Category: "sync", Description: "Run nightly backups", Default: false},
		{Key: "sync.upload_concurrency", Value: 3, Type: "number", Category: "sync", Description: "Parallel uploads", Default: 3},
	}

	for _, setting := range defaults {
		s.cache[setting.Key] = setting
	}
}

// loadPersisted overlays persisted values onto the defaults.
func (s *Provider) loadPersisted() {
	if s.store == nil {
		return
	}

	var persisted map[string]interface{}
	if err := s.store.Get(persistKey, &persisted); err != nil {
		return
	}
	for key, value := range persisted {
		setting, ok := s.cache[key]
		if !ok {
			setting = Setting{Key: key, Type: inferType(value), Category: "custom"}
		}
		setting.Value = value
		s.cache[key] = setting
	}
}

// persistLocked writes every non-default value through the kv store.
func (s *Provider) persistLocked() {
	if s.store == nil {
		return
	}

	values := make(map[string]interface{}, len(s.cache))
	for key, setting := range s.cache {
		values[key] = setting.Value
	}
	_ = s.store.Set(persistKey, values)
}

func (s *Provider) get(params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return failure("key parameter required")
	}

	s.mu.Lock()
	setting, ok := s.cache[key]
	s.mu.Unlock()

	if !ok {
		return failure(fmt.Sprintf("setting not found: %s", key))
	}
	return success(map[string]interface{}{
		"key":         setting.Key,
		"value":       setting.Value,
		"type":        setting.Type,
		"category":    setting.Category,
		"description": setting.Description,
		"default":     setting.Default,
	})
}

func (s *Provider) set(params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return failure("key parameter required")
	}
	value, ok := params["value"]
	if !ok || value == nil {
		return failure("value parameter required")
	}

	s.mu.Lock()
	setting, ok := s.cache[key]
	if ok {
		setting.Value = value
	} else {
		setting = Setting{
			Key:      key,
			Value:    value,
			Type:     inferType(value),
			Category: "custom",
		}
	}
	s.cache[key] = setting
	s.persistLocked()
	s.mu.Unlock()

	return success(map[string]interface{}{"stored": true, "key": key})
}

func (s *Provider) list(params map[string]interface{}) (*types.Result, error) {
	category, _ := params["category"].(string)

	s.mu.Lock()
	var settings []Setting
	for _, setting := range s.cache {
		if category == "" || setting.Category == category {
			settings = append(settings, setting)
		}
	}
	s.mu.Unlock()

	return success(map[string]interface{}{"settings": settings, "count": len(settings)})
}

func (s *Provider) reset(params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return failure("key parameter required")
	}

	s.mu.Lock()
	setting, ok := s.cache[key]
	if !ok {
		s.mu.Unlock()
		return failure(fmt.Sprintf("setting not found: %s", key))
	}
	setting.Value = setting.Default
	s.cache[key] = setting
	s.persistLocked()
	s.mu.Unlock()

	return success(map[string]interface{}{"reset": true, "key": key, "value": setting.Default})
}

func (s *Provider) exportSettings() (*types.Result, error) {
	s.mu.Lock()
	values := make(map[string]interface{}, len(s.cache))
	for key, setting := range s.cache {
		values[key] = setting.Value
	}
	s.mu.Unlock()

	raw, err := yaml.Marshal(values)
	if err != nil {
		return failure(fmt.Sprintf("failed to serialize settings: %v", err))
	}
	return success(map[string]interface{}{"yaml": string(raw)})
}

func (s *Provider) importSettings(params map[string]interface{}) (*types.Result, error) {
	doc, ok := params["yaml"].(string)
	if !ok || doc == "" {
		return failure("yaml parameter required")
	}

	var values map[string]interface{}
	if err := yaml.Unmarshal([]byte(doc), &values); err != nil {
		return failure(fmt.Sprintf("failed to parse settings: %v", err))
	}

	count := 0
	for key, value := range values {
		if value == nil {
			continue
		}
		if result, _ := s.set(map[string]interface{}{"key": key, "value": value}); result.Success {
			count++
		}
	}
	return success(map[string]interface{}{"imported": count})
}

func (s *Provider) categories() (*types.Result, error) {
	s.mu.Lock()
	categorySet := make(map[string]bool)
	for _, setting := range s.cache {
		categorySet[setting.Category] = true
	}
	s.mu.Unlock()

	categories := make([]string, 0, len(categorySet))
	for cat := range categorySet {
		categories = append(categories, cat)
	}
	return success(map[string]interface{}{"categories": categories})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return types.Success(data), nil
}

func failure(message string) (*types.Result, error) {
	return types.Failure(message), nil
}

func inferType(value interface{}) string {
	switch value.(type) {
	case bool:
		return "boolean"
	case float64, int, int64, uint64:
		return "number"
	case string:
		return "string"
	default:
		return "json"
	}
}
