// Package storage exposes the dashboard's persisted key-value state as a
// tool provider: the auth flag, remembered user, storage config and any
// other small blobs the shell wants to keep across restarts.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudpane/backend/internal/kvstore"
	"github.com/cloudpane/backend/internal/shared/types"
)

// Provider implements persistent key-value storage tools.
type Provider struct {
	store *kvstore.Store
}

// NewProvider creates a storage provider over an opened store.
func NewProvider(store *kvstore.Store) *Provider {
	return &Provider{store: store}
}

// Definition returns service metadata
func (s *Provider) Definition() types.Service {
	return types.Service{
		ID:          "storage",
		Name:        "Storage Service",
		Description: "Persistent key-value storage for the dashboard shell",
		Category:    types.CategoryStorage,
		Capabilities: []string{
			"read",
			"write",
			"delete",
			"list",
		},
		Tools: []types.Tool{
			{
				ID:          "storage.set",
				Name:        "Set Value",
				Description: "Store a value by key",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Storage key", Required: true},
					{Name: "value", Type: "any", Description: "Value to store", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "storage.get",
				Name:        "Get Value",
				Description: "Retrieve a value by key",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Storage key", Required: true},
				},
				Returns: "any",
			},
			{
				ID:          "storage.remove",
				Name:        "Remove Value",
				Description: "Delete a value by key",
				Parameters: []types.Parameter{
					{Name: "key", Type: "string", Description: "Storage key", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "storage.list",
				Name:        "List Keys",
				Description: "List all storage keys",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
			{
				ID:          "storage.clear",
				Name:        "Clear All",
				Description: "Remove all stored values",
				Parameters:  []types.Parameter{},
				Returns:     "boolean",
			},
		},
	}
}

// Execute runs a storage operation
func (s *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "storage.set":
		return s.set(params)
	case "storage.get":
		return s.get(params)
	case "storage.remove":
		return s.remove(params)
	case "storage.list":
		return s.list()
	case "storage.clear":
		return s.clear()
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (s *Provider) set(params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return failure("key parameter required")
	}
	value, ok := params["value"]
	if !ok {
		return failure("value parameter required")
	}

	if err := s.store.Set(key, value); err != nil {
		return failure(fmt.Sprintf("failed to store value: %v", err))
	}
	return success(map[string]interface{}{"stored": true, "key": key})
}

func (s *Provider) get(params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return failure("key parameter required")
	}

	raw, err := s.store.GetRaw(key)
	if err != nil {
		return failure(fmt.Sprintf("key not found: %s", key))
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return failure(fmt.Sprintf("failed to decode value: %v", err))
	}
	return success(map[string]interface{}{"key": key, "value": value})
}

func (s *Provider) remove(params map[string]interface{}) (*types.Result, error) {
	key, ok := params["key"].(string)
	if !ok || key == "" {
		return failure("key parameter required")
	}

	existed := s.store.Has(key)
	if err := s.store.Delete(key); err != nil {
		return failure(fmt.Sprintf("failed to remove value: %v", err))
	}
	return success(map[string]interface{}{"removed": existed, "key": key})
}

func (s *Provider) list() (*types.Result, error) {
	keys := s.store.Keys()
	return success(map[string]interface{}{"keys": keys, "count": len(keys)})
}

func (s *Provider) clear() (*types.Result, error) {
	if err := s.store.Clear(); err != nil {
		return failure(fmt.Sprintf("failed to clear storage: %v", err))
	}
	return success(map[string]interface{}{"cleared": true})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return types.Success(data), nil
}

func failure(message string) (*types.Result, error) {
	return types.Failure(message), nil
}
