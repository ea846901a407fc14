package storage

import (
	"github.com/petscheit/sn-mpt/felt"
	"github.com/petscheit/sn-mpt/item"
	"github.com/petscheit/sn-mpt/trie"
)

// Store is the full storage port: the read capabilities the trie engine
// depends on (embedded trie.EngineStorage) plus the write capabilities the
// batch coordinator depends on (spec.md §4.2's second bullet list, and
// batch lineage CRUD). Every write the coordinator makes during a single
// create_batch call happens inside one Transaction.
type Store interface {
	trie.EngineStorage

	// PersistNodes writes (hash, data, trie_idx) rows for nodes, whose
	// trie_idx values start at startIndex and increase by one per entry.
	PersistNodes(nodes []trie.StoredNode, hashes []felt.Felt, startIndex uint64) error

	// PersistLeaves appends one leaves row per item, tagged with batchID.
	PersistLeaves(items []item.CachedItem, batchID uint64) error

	// GetNodeIdx returns MAX(trie_idx) over trie_nodes, or 0 if empty.
	GetNodeIdx() (uint64, error)

	// CreateBatch inserts a new batches row.
	CreateBatch(b Batch) error

	// GetBatch fetches a batch by id, ok=false if absent.
	GetBatch(id uint64) (Batch, bool, error)

	// ListBatches returns every batch ordered by id ascending.
	ListBatches() ([]Batch, error)

	// Latest returns the highest-id batch regardless of status, ok=false if
	// the store has no batches yet (original_source/rust/src/cache.rs's
	// get_latest_batch is likewise unfiltered by status).
	Latest() (Batch, bool, error)

	// SetBatchStatus updates a batch's status column.
	SetBatchStatus(id uint64, status BatchStatus) error

	// Transaction runs fn against a Store scoped to a single storage
	// transaction: if fn returns an error, every write it made is rolled
	// back (spec.md §5's cancellation contract).
	Transaction(fn func(Store) error) error
}
