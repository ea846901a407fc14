package storage

import (
	"fmt"
	"sync"

	"github.com/petscheit/sn-mpt/felt"
	"github.com/petscheit/sn-mpt/item"
	"github.com/petscheit/sn-mpt/trie"
)

// Memory is an in-process Store backed by plain maps, grounded on the
// original implementation's HashMap-based Persistance used ahead of a real
// database in tests (original_source/rust/src/tree.rs, src/cache.rs). Used
// by this repo's own tests and by any caller that wants a throwaway store.
type Memory struct {
	mu sync.Mutex

	nodes   map[uint64]trie.StoredNode
	hashes  map[uint64]felt.Felt
	leaves  map[string]felt.Felt // keyed by path bytes; last write wins on lookup
	batches map[uint64]Batch
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		nodes:   make(map[uint64]trie.StoredNode),
		hashes:  make(map[uint64]felt.Felt),
		leaves:  make(map[string]felt.Felt),
		batches: make(map[uint64]Batch),
	}
}

func (m *Memory) Get(index uint64) (trie.StoredNode, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[index]
	return n, ok, nil
}

func (m *Memory) Hash(index uint64) (felt.Felt, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[index]
	return h, ok, nil
}

func (m *Memory) Leaf(path felt.BitPath) (felt.Felt, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.leaves[string(path.Bytes())]
	return v, ok, nil
}

func (m *Memory) PersistNodes(nodes []trie.StoredNode, hashes []felt.Felt, startIndex uint64) error {
	if len(nodes) != len(hashes) {
		return fmt.Errorf("storage: persist nodes: %d nodes but %d hashes", len(nodes), len(hashes))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range nodes {
		idx := startIndex + uint64(i)
		m.nodes[idx] = n
		m.hashes[idx] = hashes[i]
	}
	return nil
}

func (m *Memory) PersistLeaves(items []item.CachedItem, batchID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		commitment := it.Commitment
		path := it.Key.ViewBits()
		m.leaves[string(path.Bytes())] = commitment
	}
	return nil
}

func (m *Memory) GetNodeIdx() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var max uint64
	for idx := range m.nodes {
		if idx > max {
			max = idx
		}
	}
	return max, nil
}

func (m *Memory) CreateBatch(b Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.batches[b.ID]; exists {
		return fmt.Errorf("storage: batch %d already exists", b.ID)
	}
	m.batches[b.ID] = b
	return nil
}

func (m *Memory) GetBatch(id uint64) (Batch, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	return b, ok, nil
}

func (m *Memory) ListBatches() ([]Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Batch, 0, len(m.batches))
	for _, b := range m.batches {
		out = append(out, b)
	}
	sortBatchesByID(out)
	return out, nil
}

func (m *Memory) Latest() (Batch, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best Batch
	found := false
	for _, b := range m.batches {
		if !found || b.ID > best.ID {
			best = b
			found = true
		}
	}
	return best, found, nil
}

func (m *Memory) SetBatchStatus(id uint64, status BatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		return fmt.Errorf("storage: set batch %d status: no such batch", id)
	}
	b.Status = status
	m.batches[id] = b
	return nil
}

// Transaction snapshots every map, runs fn against a scratch Memory seeded
// from the snapshot, and only merges the scratch state back in on success —
// an in-process analogue of a SQL transaction's all-or-nothing write set.
func (m *Memory) Transaction(fn func(Store) error) error {
	m.mu.Lock()
	scratch := &Memory{
		nodes:   cloneMap(m.nodes),
		hashes:  cloneMap(m.hashes),
		leaves:  cloneMap(m.leaves),
		batches: cloneMap(m.batches),
	}
	m.mu.Unlock()

	if err := fn(scratch); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = scratch.nodes
	m.hashes = scratch.hashes
	m.leaves = scratch.leaves
	m.batches = scratch.batches
	return nil
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortBatchesByID(batches []Batch) {
	for i := 1; i < len(batches); i++ {
		for j := i; j > 0 && batches[j-1].ID > batches[j].ID; j-- {
			batches[j-1], batches[j] = batches[j], batches[j-1]
		}
	}
}
