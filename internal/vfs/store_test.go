package vfs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testClock() func() time.Time {
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestCreateFolderUnderFolder(t *testing.T) {
	s := NewStore().WithClock(testClock())

	_, err := s.CreateFile("A.txt", 1024, nil, nil)
	require.NoError(t, err)
	folder, err := s.CreateFolder("Folder", nil)
	require.NoError(t, err)

	sub, err := s.CreateFolder("Sub", &folder.ID)
	require.NoError(t, err)
	require.NotNil(t, sub.ParentID)
	assert.Equal(t, folder.ID, *sub.ParentID)

	kids := s.ChildrenOf(&folder.ID)
	require.Len(t, kids, 1)
	assert.Equal(t, sub.ID, kids[0].ID)

	roots := s.ChildrenOf(nil)
	assert.Len(t, roots, 2)
}

func TestCreateFolderRejectsBlankName(t *testing.T) {
	s := NewStore()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := s.CreateFolder(name, nil)
		assert.ErrorIs(t, err, ErrValidation, "name %q should be rejected", name)
	}
	assert.Equal(t, 0, s.Len())
}

func TestCreateUnderMissingParent(t *testing.T) {
	s := NewStore()

	_, err := s.CreateFolder("Sub", strPtr("itm_missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUnderLeafRejected(t *testing.T) {
	s := NewStore()

	leaf, err := s.CreateFile("notes.txt", 10, nil, nil)
	require.NoError(t, err)

	_, err = s.CreateFolder("Sub", &leaf.ID)
	assert.ErrorIs(t, err, ErrNotAFolder)
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	s := NewStore()

	_, err := s.Update("itm_missing", Patch{Starred: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func boolPtr(b bool) *bool { return &b }

func TestUpdateBumpsModifiedAt(t *testing.T) {
	s := NewStore().WithClock(testClock())

	item, err := s.CreateFile("report.pdf", 2048, nil, nil)
	require.NoError(t, err)

	updated, err := s.Rename(item.ID, "report-final.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report-final.pdf", updated.Name)
	assert.True(t, updated.ModifiedAt.After(item.ModifiedAt))
}

func TestToggleStar(t *testing.T) {
	s := NewStore()

	item, err := s.CreateFile("a.txt", 1, nil, nil)
	require.NoError(t, err)

	starred, err := s.ToggleStar(item.ID)
	require.NoError(t, err)
	assert.True(t, starred.Starred)

	unstarred, err := s.ToggleStar(item.ID)
	require.NoError(t, err)
	assert.False(t, unstarred.Starred)

	_, err = s.ToggleStar("itm_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignAndClearCategory(t *testing.T) {
	s := NewStore()

	item, err := s.CreateFile("a.txt", 1, nil, nil)
	require.NoError(t, err)

	tagged, err := s.AssignCategory(item.ID, strPtr("cat_docs"))
	require.NoError(t, err)
	require.NotNil(t, tagged.CategoryID)
	assert.Equal(t, "cat_docs", *tagged.CategoryID)

	cleared, err := s.AssignCategory(item.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.CategoryID)
}

func TestRemoveCascadesToDescendants(t *testing.T) {
	s := NewStore()

	a, _ := s.CreateFolder("A", nil)
	b, _ := s.CreateFolder("B", &a.ID)
	c, _ := s.CreateFolder("C", &b.ID)
	leaf, _ := s.CreateFile("deep.txt", 5, nil, &c.ID)
	outside, _ := s.CreateFile("outside.txt", 5, nil, nil)

	require.NoError(t, s.Remove(a.ID))

	for _, gone := range []string{a.ID, b.ID, c.ID, leaf.ID} {
		_, err := s.Get(gone)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	_, err := s.Get(outside.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestBulkRemoveSkipsStaleIDs(t *testing.T) {
	s := NewStore()

	a, _ := s.CreateFile("a.txt", 1, nil, nil)
	b, _ := s.CreateFile("b.txt", 1, nil, nil)

	removed := s.BulkRemove([]string{a.ID, "itm_gone", b.ID, a.ID})
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, s.Len())
}

func TestMoveCycleGuard(t *testing.T) {
	s := NewStore()

	// A -> B -> C
	a, _ := s.CreateFolder("A", nil)
	b, _ := s.CreateFolder("B", &a.ID)
	c, _ := s.CreateFolder("C", &b.ID)

	err := s.Move([]string{a.ID}, c.ID)
	assert.ErrorIs(t, err, ErrCycleDetected)

	err = s.Move([]string{a.ID}, a.ID)
	assert.ErrorIs(t, err, ErrCycleDetected)

	// Rejection happens before any mutation.
	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
}

func TestMoveRejectsNonFolderTarget(t *testing.T) {
	s := NewStore()

	leaf, _ := s.CreateFile("a.txt", 1, nil, nil)
	other, _ := s.CreateFile("b.txt", 1, nil, nil)

	err := s.Move([]string{other.ID}, leaf.ID)
	assert.ErrorIs(t, err, ErrNotAFolder)

	err = s.Move([]string{other.ID}, "itm_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveReparents(t *testing.T) {
	s := NewStore().WithClock(testClock())

	folder, _ := s.CreateFolder("Target", nil)
	a, _ := s.CreateFile("a.txt", 1, nil, nil)
	b, _ := s.CreateFile("b.txt", 1, nil, nil)

	require.NoError(t, s.Move([]string{a.ID, "itm_stale", b.ID}, folder.ID))

	kids := s.ChildrenOf(&folder.ID)
	require.Len(t, kids, 2)
	assert.Equal(t, a.ID, kids[0].ID)
	assert.Equal(t, b.ID, kids[1].ID)
	assert.Empty(t, filterRoots(s.ChildrenOf(nil), KindFolder))
}

func filterRoots(items []*Item, exclude Kind) []*Item {
	var out []*Item
	for _, item := range items {
		if item.Kind != exclude {
			out = append(out, item)
		}
	}
	return out
}

func TestCopyProducesFreshItems(t *testing.T) {
	s := NewStore().WithClock(testClock())

	folder, _ := s.CreateFolder("Target", nil)
	original, _ := s.CreateFile("photo.png", 4096, strPtr("cat_img"), nil)
	before, _ := s.Get(original.ID)

	copies, err := s.Copy([]string{original.ID}, &folder.ID)
	require.NoError(t, err)
	require.Len(t, copies, 1)

	dup := copies[0]
	assert.NotEqual(t, original.ID, dup.ID)
	assert.Equal(t, "Copy of photo.png", dup.Name)
	require.NotNil(t, dup.ParentID)
	assert.Equal(t, folder.ID, *dup.ParentID)
	assert.Equal(t, original.ByteSize, dup.ByteSize)

	// The original is not touched, including its timestamp.
	after, _ := s.Get(original.ID)
	assert.Equal(t, before.ModifiedAt, after.ModifiedAt)
	assert.Equal(t, before.Name, after.Name)
}

func TestCopyToRootAndStaleIDs(t *testing.T) {
	s := NewStore()

	a, _ := s.CreateFile("a.txt", 1, nil, nil)

	copies, err := s.Copy([]string{a.ID, "itm_gone"}, nil)
	require.NoError(t, err)
	require.Len(t, copies, 1)
	assert.Nil(t, copies[0].ParentID)
}

func TestInsertAllIsAtomic(t *testing.T) {
	s := NewStore()
	folder, _ := s.CreateFolder("Target", nil)
	before := s.Len()

	parent := folder.ID
	_, err := s.InsertAll([]*Item{
		{Name: "ok.txt", Kind: KindDocument, ParentID: &parent},
		{Name: "   ", Kind: KindDocument, ParentID: &parent},
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, before, s.Len())
	assert.Equal(t, 0, s.ChildCount(folder.ID))

	missing := "itm_missing"
	_, err = s.InsertAll([]*Item{
		{Name: "ok.txt", Kind: KindDocument},
		{Name: "orphan.txt", Kind: KindDocument, ParentID: &missing},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, s.Len())

	inserted, err := s.InsertAll([]*Item{
		{Name: "a.txt", Kind: KindDocument, ParentID: &parent},
		{Name: "b.txt", Kind: KindDocument, ParentID: &parent},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)
	assert.Equal(t, 2, s.ChildCount(folder.ID))
}

func TestClearCategory(t *testing.T) {
	s := NewStore()

	a, _ := s.CreateFile("a.txt", 1, strPtr("cat_x"), nil)
	b, _ := s.CreateFile("b.txt", 1, strPtr("cat_x"), nil)
	c, _ := s.CreateFile("c.txt", 1, strPtr("cat_y"), nil)

	assert.Equal(t, 2, s.ClearCategory("cat_x"))

	for _, itemID := range []string{a.ID, b.ID} {
		item, _ := s.Get(itemID)
		assert.Nil(t, item.CategoryID)
	}
	item, _ := s.Get(c.ID)
	require.NotNil(t, item.CategoryID)
	assert.Equal(t, "cat_y", *item.CategoryID)
}

func TestTotalBytesCountsLeavesOnly(t *testing.T) {
	s := NewStore()

	s.CreateFolder("F", nil)
	s.CreateFile("a.txt", 100, nil, nil)
	s.CreateFile("b.txt", 150, nil, nil)

	assert.Equal(t, int64(250), s.TotalBytes())
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore()

	item, _ := s.CreateFile("a.txt", 1, nil, nil)
	got, err := s.Get(item.ID)
	require.NoError(t, err)

	got.Name = "mutated"
	again, _ := s.Get(item.ID)
	assert.Equal(t, "a.txt", again.Name)
}

func TestErrorsAreDiscriminable(t *testing.T) {
	s := NewStore()

	_, err := s.Get("itm_x")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
}
