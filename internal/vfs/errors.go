package vfs

import "errors"

// Sentinel errors returned by store and transfer operations. Callers
// discriminate with errors.Is and map them to user-facing notifications or
// HTTP status codes.
var (
	// ErrNotFound marks operations referencing an id absent from the store.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks rejected input, e.g. a blank folder name.
	ErrValidation = errors.New("validation failed")

	// ErrCycleDetected marks a move that would place a folder under itself
	// or one of its descendants.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrNotAFolder marks a move/copy target that is not a folder.
	ErrNotAFolder = errors.New("target is not a folder")

	// ErrTransferParse marks a drag payload that could not be decoded.
	ErrTransferParse = errors.New("transfer payload unparsable")

	// ErrTransferState marks an invalid drag state transition.
	ErrTransferState = errors.New("invalid transfer state")
)
