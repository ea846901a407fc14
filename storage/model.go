// Package storage implements the relational storage port (spec.md §4.2,
// §6): the read capabilities the trie engine depends on, plus the write
// capabilities the batch coordinator depends on, over three logical tables
// (trie_nodes, leaves, batches).
package storage

import (
	"encoding/json"
	"fmt"
)

// BatchStatus is a batch's lifecycle state (spec.md §3's three-state
// machine). Values are strictly typed in memory; only the persistence layer
// and JSON marshaling render them as the lowercase string the schema stores (spec.md §9,
// "Finalization status as string vs integer").
type BatchStatus int

const (
	StatusCreated BatchStatus = iota
	StatusFinalized
	StatusReverted
)

// String renders the lowercase wire/column representation.
func (s BatchStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusFinalized:
		return "finalized"
	case StatusReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// ParseBatchStatus is String's inverse.
func ParseBatchStatus(s string) (BatchStatus, bool) {
	switch s {
	case "created":
		return StatusCreated, true
	case "finalized":
		return StatusFinalized, true
	case "reverted":
		return StatusReverted, true
	default:
		return 0, false
	}
}

// MarshalJSON renders the wire/column lowercase string form.
func (s BatchStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON is MarshalJSON's inverse.
func (s *BatchStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, ok := ParseBatchStatus(str)
	if !ok {
		return fmt.Errorf("storage: invalid batch status %q", str)
	}
	*s = parsed
	return nil
}

// Batch is the persisted batch row (spec.md §3).
type Batch struct {
	ID       uint64      `json:"id"`
	ParentID *uint64     `json:"parent_id,omitempty"`
	Status   BatchStatus `json:"status"`
	RootIdx  uint64      `json:"root_idx"`
}
