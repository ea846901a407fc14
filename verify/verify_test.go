package verify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petscheit/sn-mpt/felt"
	"github.com/petscheit/sn-mpt/trie"
	"github.com/petscheit/sn-mpt/verify"
)

type memStore struct {
	nodes  map[uint64]trie.StoredNode
	hashes map[uint64]felt.Felt
	leaves map[string]felt.Felt
}

func newMemStore() *memStore {
	return &memStore{
		nodes:  make(map[uint64]trie.StoredNode),
		hashes: make(map[uint64]felt.Felt),
		leaves: make(map[string]felt.Felt),
	}
}

func (m *memStore) Get(index uint64) (trie.StoredNode, bool, error) {
	n, ok := m.nodes[index]
	return n, ok, nil
}

func (m *memStore) Hash(index uint64) (felt.Felt, bool, error) {
	h, ok := m.hashes[index]
	return h, ok, nil
}

func (m *memStore) Leaf(path felt.BitPath) (felt.Felt, bool, error) {
	v, ok := m.leaves[string(path.Bytes())]
	return v, ok, nil
}

func (m *memStore) persist(update *trie.TrieUpdate, leaves map[string]felt.Felt) uint64 {
	next := uint64(1)
	for idx := range m.nodes {
		if idx >= next {
			next = idx + 1
		}
	}
	resolved := trie.ResolveIndices(next, update.NodesAdded)
	for i, s := range resolved {
		m.nodes[next+uint64(i)] = s
		m.hashes[next+uint64(i)] = update.NodesAdded[i].Hash
	}
	for k, v := range leaves {
		m.leaves[k] = v
	}
	return next + uint64(len(resolved)) - 1
}

func toVerifyProof(p []trie.ProofNode) []verify.ProofNode {
	out := make([]verify.ProofNode, len(p))
	for i, n := range p {
		out[i] = verify.ProofNode{
			IsEdge:    n.Kind == trie.KindEdge,
			LeftHash:  n.LeftHash,
			RightHash: n.RightHash,
			ChildHash: n.ChildHash,
			Path:      n.Path,
		}
	}
	return out
}

func TestVerifyMemberAfterInsert(t *testing.T) {
	store := newMemStore()
	hasher := felt.PoseidonHasher{}
	tr := trie.New(hasher, 0)

	pathA := felt.FromUint64(1).ViewBits()
	pathB := felt.FromUint64(2).ViewBits()
	valA := felt.FromUint64(111)
	valB := felt.FromUint64(222)

	tr.Set(pathA, valA)
	tr.Set(pathB, valB)

	update, err := tr.Commit(store)
	require.NoError(t, err)

	rootIdx := store.persist(update, map[string]felt.Felt{
		string(pathA.Bytes()): valA,
		string(pathB.Bytes()): valB,
	})

	proofA, err := trie.GetProof(store, rootIdx, pathA)
	require.NoError(t, err)

	root, ok, err := store.Hash(rootIdx)
	require.NoError(t, err)
	require.True(t, ok)

	result := verify.Verify(hasher, root, pathA, valA, toVerifyProof(proofA))
	assert.Equal(t, verify.Member, result)
}

func TestVerifyNoneForWrongValue(t *testing.T) {
	store := newMemStore()
	hasher := felt.PoseidonHasher{}
	tr := trie.New(hasher, 0)

	pathA := felt.FromUint64(3).ViewBits()
	valA := felt.FromUint64(333)
	tr.Set(pathA, valA)

	update, err := tr.Commit(store)
	require.NoError(t, err)
	rootIdx := store.persist(update, map[string]felt.Felt{string(pathA.Bytes()): valA})

	proofA, err := trie.GetProof(store, rootIdx, pathA)
	require.NoError(t, err)

	root, _, err := store.Hash(rootIdx)
	require.NoError(t, err)

	result := verify.Verify(hasher, root, pathA, felt.FromUint64(999), toVerifyProof(proofA))
	assert.Equal(t, verify.None, result)
}

func TestVerifyRejectsShortKey(t *testing.T) {
	result := verify.Verify(felt.PoseidonHasher{}, felt.Zero, felt.NewBitPath(true, false), felt.Zero, nil)
	assert.Equal(t, verify.None, result)
}
