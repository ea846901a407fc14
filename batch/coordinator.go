// Package batch implements the batch coordinator (spec.md §4.4, C6): the
// only component that drives the trie engine against the storage port and
// assembles the BatchProof an external verifier consumes.
package batch

import (
	"fmt"
	"log/slog"

	"github.com/petscheit/sn-mpt/felt"
	"github.com/petscheit/sn-mpt/item"
	"github.com/petscheit/sn-mpt/storage"
	"github.com/petscheit/sn-mpt/trie"
)

var logger = slog.Default().With("component", "batch")

// bootstrapRootIdx is root_idx_pre for batch 1, under this implementation's
// resolution of the bootstrap-dummy open question (SPEC_FULL.md §5, option
// (b)): no dummy item is ever inserted, so the pre-existing root is simply
// the empty-trie sentinel at trie_idx 0.
const bootstrapRootIdx = 0

// Coordinator drives create_batch/finalize against a storage.Store, hashing
// with hasher. It holds no trie state of its own between calls: every
// create_batch rebuilds a fresh trie.Trie rooted at whatever root_idx the
// prior batch (or bootstrap) left behind.
type Coordinator struct {
	store  storage.Store
	hasher felt.Hasher
}

// New returns a Coordinator backed by store and hasher.
func New(store storage.Store, hasher felt.Hasher) *Coordinator {
	if hasher == nil {
		hasher = felt.DefaultHasher
	}
	return &Coordinator{store: store, hasher: hasher}
}

// CreateBatch derives a CachedItem per value, inserts them into the trie
// rooted at the latest batch's root (or the bootstrap root for batch 1),
// and returns the assembled BatchProof. It implements spec.md §4.4's
// ten-step create_batch algorithm. Step 4 (pre-proofs and staged Sets) only
// reads storage and runs first; steps 5-9 (commit through the batch row) run
// inside a single storage.Store.Transaction so the batch row, its nodes, and
// its leaves are all written or none are (spec.md §5's cancellation contract).
func (c *Coordinator) CreateBatch(values [][]byte) (*Proof, error) {
	last, hasLast, err := c.store.Latest()
	if err != nil {
		return nil, fmt.Errorf("batch: loading latest batch: %w", err)
	}

	var parentID *uint64
	var newID uint64
	var rootIdxPre uint64
	if hasLast {
		id := last.ID
		parentID = &id
		newID = last.ID + 1
		rootIdxPre = last.RootIdx
	} else {
		newID = 1
		rootIdxPre = bootstrapRootIdx
	}

	preRoot, ok, err := c.store.Hash(rootIdxPre)
	if err != nil {
		return nil, fmt.Errorf("batch: loading pre-root hash: %w", err)
	}
	if !ok {
		preRoot = felt.Zero
	}

	items := make([]item.CachedItem, len(values))
	keys := make([]felt.BitPath, len(values))
	preProofs := make([][]trie.ProofNode, len(values))
	for i, v := range values {
		it := item.New(c.hasher, v)
		items[i] = it
		keys[i] = it.Key.ViewBits()

		proofPre, err := trie.GetProof(c.store, rootIdxPre, keys[i])
		if err != nil {
			return nil, fmt.Errorf("%w: pre-proof for item %d: %v", ErrTrieWriteError, i, err)
		}
		preProofs[i] = proofPre
	}

	t := trie.New(c.hasher, rootIdxPre)
	for i, it := range items {
		t.Set(keys[i], it.Commitment)
	}

	var update *trie.TrieUpdate
	var rootIdxNew uint64
	var postProofs [][]trie.ProofNode

	err = c.store.Transaction(func(s storage.Store) error {
		update, err = t.Commit(s)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTrieWriteError, err)
		}

		nextIndex, err := s.GetNodeIdx()
		if err != nil {
			return fmt.Errorf("batch: loading next node index: %w", err)
		}
		nextIndex++

		nodes := trie.ResolveIndices(nextIndex, update.NodesAdded)
		hashes := make([]felt.Felt, len(update.NodesAdded))
		for i, a := range update.NodesAdded {
			hashes[i] = a.Hash
		}
		if err := s.PersistNodes(nodes, hashes, nextIndex); err != nil {
			return fmt.Errorf("batch: persisting nodes: %w", err)
		}
		if err := s.PersistLeaves(items, newID); err != nil {
			return fmt.Errorf("batch: persisting leaves: %w", err)
		}

		rootIdxNew = nextIndex + uint64(len(update.NodesAdded)) - 1

		postProofs = make([][]trie.ProofNode, len(items))
		for i := range items {
			proofPost, err := trie.GetProof(s, rootIdxNew, keys[i])
			if err != nil {
				return fmt.Errorf("%w: post-proof for item %d: %v", ErrTrieWriteError, i, err)
			}
			postProofs[i] = proofPost
		}

		if err := s.CreateBatch(storage.Batch{
			ID:       newID,
			ParentID: parentID,
			Status:   storage.StatusCreated,
			RootIdx:  rootIdxNew,
		}); err != nil {
			return fmt.Errorf("batch: creating batch row: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updates := make([]LeafUpdate, len(items))
	proofSets := make([][]trie.ProofNode, 0, 2*len(items))
	for i, it := range items {
		updates[i] = LeafUpdate{
			Key:       it.Key.Hex(),
			PreValue:  felt.Zero.Hex(),
			PostValue: it.Commitment.Hex(),
		}
		proofSets = append(proofSets, preProofs[i])
	}
	proofSets = append(proofSets, postProofs...)

	proof := assembleProof(newID, preRoot, update.RootCommitment, updates, proofSets, c.hasher)
	logger.Info("created batch", "id", newID, "items", len(items), "root_idx", rootIdxNew)
	return &proof, nil
}

// Finalize transitions batch batchID from Created to Finalized, guarding
// spec.md §3.6's invariant that a batch can only finalize once its parent
// has (if it has one).
func (c *Coordinator) Finalize(batchID uint64) error {
	b, ok, err := c.store.GetBatch(batchID)
	if err != nil {
		return fmt.Errorf("batch: loading batch %d: %w", batchID, err)
	}
	if !ok {
		return fmt.Errorf("%w: id %d", ErrBatchNotFound, batchID)
	}

	if b.ParentID != nil {
		parent, ok, err := c.store.GetBatch(*b.ParentID)
		if err != nil {
			return fmt.Errorf("batch: loading parent batch %d: %w", *b.ParentID, err)
		}
		if !ok {
			return fmt.Errorf("%w: parent id %d", ErrBatchNotFound, *b.ParentID)
		}
		if parent.Status != storage.StatusFinalized {
			return fmt.Errorf("%w: batch %d's parent %d is %s", ErrBatchParentNotFinalized, batchID, parent.ID, parent.Status)
		}
	}

	if err := c.store.SetBatchStatus(batchID, storage.StatusFinalized); err != nil {
		return fmt.Errorf("batch: finalizing batch %d: %w", batchID, err)
	}
	logger.Info("finalized batch", "id", batchID)
	return nil
}
