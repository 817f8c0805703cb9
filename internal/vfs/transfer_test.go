package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadDefaultsToCopy(t *testing.T) {
	p, err := DecodePayload([]byte(`{"items":[{"id":"itm_1","name":"a.txt","kind":"document"}]}`))
	require.NoError(t, err)
	assert.Equal(t, OpCopy, p.Operation)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "a.txt", p.Items[0].Name)
}

func TestDecodePayloadRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		`{"items": not json`,
		`{}`,
		`{"items":[]}`,
		`{"items":[{"id":"x","name":"a","kind":"document"}],"operation":"teleport"}`,
	} {
		_, err := DecodePayload([]byte(raw))
		assert.ErrorIs(t, err, ErrTransferParse, "payload %q", raw)
	}
}

func TestCommitTransferMalformedLeavesStoreUnchanged(t *testing.T) {
	s := NewStore()
	s.CreateFile("existing.txt", 1, nil, nil)

	_, err := CommitTransfer(s, []byte(`{{broken`), nil)
	assert.ErrorIs(t, err, ErrTransferParse)
	assert.Equal(t, 1, s.Len())
}

func TestCommitTransferBadItemLeavesStoreUnchanged(t *testing.T) {
	s := NewStore()
	folder, _ := s.CreateFolder("Drop", nil)
	before := s.Len()

	// The first payload item is fine; the second has a blank name. Nothing
	// may be committed.
	raw := []byte(`{"items":[{"name":"ok.txt","kind":"document"},{"name":"   ","kind":"document"}]}`)
	created, err := CommitTransfer(s, raw, &folder.ID)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, created)
	assert.Equal(t, before, s.Len())
	assert.Equal(t, 0, s.ChildCount(folder.ID))
}

func TestCommitTransferCopyMaterializesFreshItems(t *testing.T) {
	s := NewStore().WithClock(testClock())

	folder, _ := s.CreateFolder("Drop", nil)
	source, _ := s.CreateFile("dragged.txt", 64, nil, nil)

	raw, err := EncodePayload([]Item{*source}, OpCopy)
	require.NoError(t, err)

	created, err := CommitTransfer(s, raw, &folder.ID)
	require.NoError(t, err)
	require.Len(t, created, 1)

	dup := created[0]
	assert.NotEqual(t, source.ID, dup.ID)
	assert.Equal(t, "dragged.txt", dup.Name)
	require.NotNil(t, dup.ParentID)
	assert.Equal(t, folder.ID, *dup.ParentID)
	assert.True(t, dup.ModifiedAt.After(source.ModifiedAt))

	// The source stays where it was: drop semantics are copy, not move.
	orig, err := s.Get(source.ID)
	require.NoError(t, err)
	assert.Nil(t, orig.ParentID)
}

func TestCommitTransferMoveReparents(t *testing.T) {
	s := NewStore()

	folder, _ := s.CreateFolder("Drop", nil)
	source, _ := s.CreateFile("dragged.txt", 64, nil, nil)

	raw, err := EncodePayload([]Item{*source}, OpMove)
	require.NoError(t, err)

	moved, err := CommitTransfer(s, raw, &folder.ID)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	require.NotNil(t, moved[0].ParentID)
	assert.Equal(t, folder.ID, *moved[0].ParentID)
	assert.Equal(t, 2, s.Len(), "move must not duplicate items")
}

func TestCommitTransferMoveCycleGuarded(t *testing.T) {
	s := NewStore()

	a, _ := s.CreateFolder("A", nil)
	b, _ := s.CreateFolder("B", &a.ID)

	raw, err := EncodePayload([]Item{*a}, OpMove)
	require.NoError(t, err)

	_, err = CommitTransfer(s, raw, &b.ID)
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestDragStateMachine(t *testing.T) {
	s := NewStore()
	folder, _ := s.CreateFolder("Target", nil)
	source, _ := s.CreateFile("a.txt", 1, nil, nil)

	d := NewDrag()
	assert.Equal(t, StateIdle, d.State())

	require.NoError(t, d.Start([]Item{*source}, OpCopy))
	assert.Equal(t, StateDragging, d.State())

	// Starting a second drag mid-flight is invalid.
	assert.ErrorIs(t, d.Start([]Item{*source}, OpCopy), ErrTransferState)

	require.NoError(t, d.HoverTarget(folder.ID))
	assert.Equal(t, StateDropTargetHover, d.State())

	// Hovering another folder replaces the pending target.
	require.NoError(t, d.HoverTarget(folder.ID))

	created, err := d.Drop(s)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, 1, s.ChildCount(folder.ID))
}

func TestDragLeaveTargetThenDropIsNoop(t *testing.T) {
	s := NewStore()
	folder, _ := s.CreateFolder("Target", nil)
	source, _ := s.CreateFile("a.txt", 1, nil, nil)

	d := NewDrag()
	require.NoError(t, d.Start([]Item{*source}, OpCopy))
	require.NoError(t, d.HoverTarget(folder.ID))
	d.LeaveTarget()
	assert.Equal(t, StateDragging, d.State())

	created, err := d.Drop(s)
	assert.NoError(t, err)
	assert.Nil(t, created)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, StateIdle, d.State())
}

func TestDragCancel(t *testing.T) {
	s := NewStore()
	source, _ := s.CreateFile("a.txt", 1, nil, nil)

	d := NewDrag()
	require.NoError(t, d.Start([]Item{*source}, OpCopy))
	d.Cancel()
	assert.Equal(t, StateIdle, d.State())
	assert.Equal(t, 1, s.Len())
}

func TestDragDropOnRoot(t *testing.T) {
	s := NewStore()
	folder, _ := s.CreateFolder("F", nil)
	source, _ := s.CreateFile("a.txt", 1, nil, &folder.ID)

	d := NewDrag()
	require.NoError(t, d.Start([]Item{*source}, OpCopy))
	require.NoError(t, d.HoverTarget("")) // sidebar root target
	created, err := d.Drop(s)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Nil(t, created[0].ParentID)
}
