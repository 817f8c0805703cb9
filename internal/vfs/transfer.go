package vfs

import (
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
)

// Operation is the transfer mode. Drag-and-drop and the explicit move/copy
// menu share one code path; the mode is always an explicit flag rather than
// being implied by the gesture.
type Operation string

const (
	OpCopy Operation = "copy"
	OpMove Operation = "move"
)

// Payload is the envelope carried from a drag source to a drop target: a
// serialized item list plus the requested operation. Copy is the default
// when the field is absent.
type Payload struct {
	Items     []Item    `json:"items"`
	Operation Operation `json:"operation"`
}

// EncodePayload serializes a transfer envelope.
func EncodePayload(items []Item, op Operation) ([]byte, error) {
	if op == "" {
		op = OpCopy
	}
	data, err := sonic.Marshal(Payload{Items: items, Operation: op})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %v: %w", err, ErrTransferParse)
	}
	return data, nil
}

// DecodePayload parses a transfer envelope. Malformed input returns
// ErrTransferParse; the caller surfaces one notification and leaves the
// store untouched.
func DecodePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := sonic.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %v: %w", err, ErrTransferParse)
	}
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("empty payload: %w", ErrTransferParse)
	}
	if p.Operation == "" {
		p.Operation = OpCopy
	}
	if p.Operation != OpCopy && p.Operation != OpMove {
		return nil, fmt.Errorf("operation %q: %w", p.Operation, ErrTransferParse)
	}
	return &p, nil
}

// DragState is the transfer state machine position.
type DragState int

const (
	StateIdle DragState = iota
	StateDragging
	StateDropTargetHover
)

func (s DragState) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateDropTargetHover:
		return "drop-target-hover"
	default:
		return "idle"
	}
}

// Drag coordinates one in-flight drag between the list view and the
// sidebar tree. The payload is captured at drag start; at most one folder
// is the pending drop target at a time.
type Drag struct {
	mu      sync.Mutex
	state   DragState
	payload []byte
	target  *string // nil while hovering nothing; "" means root
}

// NewDrag creates an idle drag coordinator.
func NewDrag() *Drag {
	return &Drag{}
}

// State returns the current machine position.
func (d *Drag) State() DragState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start captures the dragged item set and moves Idle -> Dragging.
func (d *Drag) Start(items []Item, op Operation) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateIdle {
		return fmt.Errorf("start from %s: %w", d.state, ErrTransferState)
	}
	payload, err := EncodePayload(items, op)
	if err != nil {
		return err
	}
	d.payload = payload
	d.state = StateDragging
	return nil
}

// HoverTarget marks a folder as the pending drop target, replacing any
// previous one. The empty string targets the root.
func (d *Drag) HoverTarget(folderID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateDragging && d.state != StateDropTargetHover {
		return fmt.Errorf("hover from %s: %w", d.state, ErrTransferState)
	}
	v := folderID
	d.target = &v
	d.state = StateDropTargetHover
	return nil
}

// LeaveTarget clears the pending target and falls back to Dragging.
func (d *Drag) LeaveTarget() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateDropTargetHover {
		d.target = nil
		d.state = StateDragging
	}
}

// Cancel ends the drag with no mutation (drag-end without a valid drop).
func (d *Drag) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

// Drop commits the captured payload into the hovered folder and resets the
// machine. With no pending target the drag simply ends, mutating nothing.
func (d *Drag) Drop(store *Store) ([]*Item, error) {
	d.mu.Lock()
	payload := d.payload
	target := d.target
	state := d.state
	d.reset()
	d.mu.Unlock()

	if state != StateDropTargetHover || target == nil {
		return nil, nil
	}
	var folderID *string
	if *target != "" {
		folderID = target
	}
	return CommitTransfer(store, payload, folderID)
}

func (d *Drag) reset() {
	d.state = StateIdle
	d.payload = nil
	d.target = nil
}

// CommitTransfer applies a raw payload to the store. Copy materializes each
// payload item as a new record with a fresh id, the target folder as parent
// and a fresh timestamp. Move resolves the payload items against the store
// by id and reparents them (cycle-guarded by Store.Move). A parse or
// validation failure leaves the store untouched.
func CommitTransfer(store *Store, raw []byte, targetFolderID *string) ([]*Item, error) {
	payload, err := DecodePayload(raw)
	if err != nil {
		return nil, err
	}

	if payload.Operation == OpMove {
		if targetFolderID == nil {
			return nil, fmt.Errorf("move needs a folder target: %w", ErrNotAFolder)
		}
		ids := make([]string, 0, len(payload.Items))
		for _, item := range payload.Items {
			ids = append(ids, item.ID)
		}
		if err := store.Move(ids, *targetFolderID); err != nil {
			return nil, err
		}
		moved := make([]*Item, 0, len(ids))
		for _, itemID := range ids {
			if item, err := store.Get(itemID); err == nil {
				moved = append(moved, item)
			}
		}
		return moved, nil
	}

	dups := make([]*Item, 0, len(payload.Items))
	for _, item := range payload.Items {
		dup := item.Clone()
		dup.ID = ""
		dup.ModifiedAt = store.now()
		dup.ParentID = nil
		if targetFolderID != nil {
			v := *targetFolderID
			dup.ParentID = &v
		}
		dups = append(dups, dup)
	}
	// One atomic batch: a bad item anywhere in the payload must not leave
	// a partial commit behind.
	return store.InsertAll(dups)
}
