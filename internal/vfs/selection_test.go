package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTogglePlainClickOutsideModeIsNoop(t *testing.T) {
	sel := NewSelection()

	sel.Toggle("itm_1", false)
	assert.Equal(t, 0, sel.Count())
}

func TestToggleAdditiveAlwaysToggles(t *testing.T) {
	sel := NewSelection()

	sel.Toggle("itm_1", true)
	sel.Toggle("itm_2", true)
	assert.Equal(t, 2, sel.Count())
	assert.True(t, sel.Has("itm_1"))

	sel.Toggle("itm_1", true)
	assert.False(t, sel.Has("itm_1"))
	assert.Equal(t, 1, sel.Count())
}

func TestSelectionModeMakesClicksAdditive(t *testing.T) {
	sel := NewSelection()

	sel.EnterMode()
	assert.Equal(t, 0, sel.Count(), "entering selection mode must not auto-select")

	sel.Toggle("itm_1", false)
	sel.Toggle("itm_2", false)
	assert.Equal(t, 2, sel.Count())

	sel.LeaveMode()
	assert.False(t, sel.InMode())
	assert.Equal(t, 0, sel.Count(), "leaving selection mode clears the selection")
}

func TestSelectAllAndClear(t *testing.T) {
	sel := NewSelection()

	sel.SelectAll([]string{"itm_b", "itm_a", "itm_c"})
	assert.Equal(t, 3, sel.Count())
	assert.Equal(t, []string{"itm_a", "itm_b", "itm_c"}, sel.IDs())

	sel.Clear()
	assert.Equal(t, 0, sel.Count())
	assert.Empty(t, sel.IDs())
}

func TestBatchOperationsSkipStaleSelections(t *testing.T) {
	s := NewStore()
	sel := NewSelection()

	a, _ := s.CreateFile("a.txt", 1, nil, nil)
	b, _ := s.CreateFile("b.txt", 1, nil, nil)
	sel.SelectAll([]string{a.ID, b.ID})

	// Item b disappears between selection and execution.
	require.NoError(t, s.Remove(b.ID))

	removed := s.BulkRemove(sel.IDs())
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, s.Len())
}
