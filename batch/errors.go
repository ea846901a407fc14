package batch

import "errors"

// Sentinel errors forming the coordinator's side of spec.md §7's taxonomy.
var (
	ErrBatchNotFound           = errors.New("batch: not found")
	ErrBatchParentNotFinalized = errors.New("batch: parent not finalized")
	ErrInvalidBatchStatus      = errors.New("batch: invalid status")
	ErrTrieWriteError          = errors.New("batch: trie write error")
)
