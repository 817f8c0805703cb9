package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpane/backend/internal/kvstore"
	"github.com/cloudpane/backend/internal/shared/types"
)

func newTestProvider(t *testing.T) (*Provider, *kvstore.Store) {
	t.Helper()
	store, err := kvstore.Open("")
	require.NoError(t, err)
	return NewProvider(store), store
}

func exec(t *testing.T, p *Provider, toolID string, params map[string]interface{}) *types.Result {
	t.Helper()
	result, err := p.Execute(context.Background(), toolID, params, nil)
	require.NoError(t, err)
	return result
}

func TestDefaultsArePresent(t *testing.T) {
	p, _ := newTestProvider(t)

	got := exec(t, p, "settings.get", map[string]interface{}{"key": "general.theme"})
	require.True(t, got.Success)
	assert.Equal(t, "dark", got.Data["value"])
	assert.Equal(t, "general", got.Data["category"])
}

func TestSetAndReset(t *testing.T) {
	p, _ := newTestProvider(t)

	set := exec(t, p, "settings.set", map[string]interface{}{"key": "general.theme", "value": "light"})
	require.True(t, set.Success)

	got := exec(t, p, "settings.get", map[string]interface{}{"key": "general.theme"})
	assert.Equal(t, "light", got.Data["value"])

	reset := exec(t, p, "settings.reset", map[string]interface{}{"key": "general.theme"})
	require.True(t, reset.Success)

	got = exec(t, p, "settings.get", map[string]interface{}{"key": "general.theme"})
	assert.Equal(t, "dark", got.Data["value"])
}

func TestCustomKeyGetsCustomCategory(t *testing.T) {
	p, _ := newTestProvider(t)

	exec(t, p, "settings.set", map[string]interface{}{"key": "experimental.flag", "value": true})

	got := exec(t, p, "settings.get", map[string]interface{}{"key": "experimental.flag"})
	require.True(t, got.Success)
	assert.Equal(t, "custom", got.Data["category"])
	assert.Equal(t, "boolean", got.Data["type"])
}

func TestListFiltersByCategory(t *testing.T) {
	p, _ := newTestProvider(t)

	all := exec(t, p, "settings.list", map[string]interface{}{})
	require.True(t, all.Success)
	total := all.Data["count"].(int)

	view := exec(t, p, "settings.list", map[string]interface{}{"category": "view"})
	require.True(t, view.Success)
	assert.Equal(t, 3, view.Data["count"])
	assert.Less(t, 3, total)
}

func TestExportImportYAMLRoundTrip(t *testing.T) {
	p, _ := newTestProvider(t)
	exec(t, p, "settings.set", map[string]interface{}{"key": "general.language", "value": "de"})

	exported := exec(t, p, "settings.export", nil)
	require.True(t, exported.Success)
	doc := exported.Data["yaml"].(string)
	assert.Contains(t, doc, "general.language")

	fresh, _ := newTestProvider(t)
	imported := exec(t, fresh, "settings.import", map[string]interface{}{"yaml": doc})
	require.True(t, imported.Success)

	got := exec(t, fresh, "settings.get", map[string]interface{}{"key": "general.language"})
	assert.Equal(t, "de", got.Data["value"])
}

func TestImportRejectsBadYAML(t *testing.T) {
	p, _ := newTestProvider(t)

	result := exec(t, p, "settings.import", map[string]interface{}{"yaml": ":\n  - ["})
	assert.False(t, result.Success)
}

func TestPersistsAcrossProviders(t *testing.T) {
	p, store := newTestProvider(t)
	exec(t, p, "settings.set", map[string]interface{}{"key": "storage.quota_gb", "value": 512})

	reloaded := NewProvider(store)
	got := exec(t, reloaded, "settings.get", map[string]interface{}{"key": "storage.quota_gb"})
	require.True(t, got.Success)
	assert.EqualValues(t, 512, got.Data["value"])
}

func TestCategories(t *testing.T) {
	p, _ := newTestProvider(t)

	result := exec(t, p, "settings.categories", nil)
	require.True(t, result.Success)
	categories := result.Data["categories"].([]string)
	assert.Contains(t, categories, "general")
	assert.Contains(t, categories, "view")
	assert.Contains(t, categories, "storage")
	assert.Contains(t, categories, "sync")
}
