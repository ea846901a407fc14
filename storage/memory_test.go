package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petscheit/sn-mpt/felt"
	"github.com/petscheit/sn-mpt/item"
	"github.com/petscheit/sn-mpt/trie"
)

func TestMemoryGetNodeIdxEmpty(t *testing.T) {
	m := NewMemory()
	idx, err := m.GetNodeIdx()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), idx)
}

func TestMemoryPersistAndGetNode(t *testing.T) {
	m := NewMemory()
	nodes := []trie.StoredNode{{Kind: trie.KindLeafBinary}}
	hashes := []felt.Felt{felt.FromUint64(42)}
	require.NoError(t, m.PersistNodes(nodes, hashes, 1))

	got, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, trie.KindLeafBinary, got.Kind)

	h, ok, err := m.Hash(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, h.Equal(felt.FromUint64(42)))

	idx, err := m.GetNodeIdx()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), idx)
}

func TestMemoryBatchLifecycle(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.CreateBatch(Batch{ID: 1, Status: StatusCreated, RootIdx: 1}))

	b, ok, err := m.GetBatch(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusCreated, b.Status)

	_, ok, err = m.GetBatch(99)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.SetBatchStatus(1, StatusFinalized))
	b, _, _ = m.GetBatch(1)
	assert.Equal(t, StatusFinalized, b.Status)

	latest, found, err := m.Latest()
	require.NoError(t, err)
	require.True(t, found, "latest is unfiltered by status")
	assert.Equal(t, uint64(1), latest.ID)
	assert.Equal(t, StatusFinalized, latest.Status)
}

func TestMemoryTransactionRollsBackOnError(t *testing.T) {
	m := NewMemory()
	sentinel := errors.New("boom")

	err := m.Transaction(func(s Store) error {
		require.NoError(t, s.CreateBatch(Batch{ID: 1, Status: StatusCreated, RootIdx: 1}))
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	_, ok, err := m.GetBatch(1)
	require.NoError(t, err)
	assert.False(t, ok, "a rolled-back transaction must not leave partial writes visible")
}

func TestMemoryTransactionCommitsOnSuccess(t *testing.T) {
	m := NewMemory()
	err := m.Transaction(func(s Store) error {
		return s.CreateBatch(Batch{ID: 1, Status: StatusCreated, RootIdx: 1})
	})
	require.NoError(t, err)

	_, ok, err := m.GetBatch(1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryPersistLeavesEnablesLookupByKey(t *testing.T) {
	m := NewMemory()
	it := item.New(felt.PoseidonHasher{}, []byte("hello"))
	require.NoError(t, m.PersistLeaves([]item.CachedItem{it}, 1))

	commitment, ok, err := m.Leaf(it.Key.ViewBits())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, commitment.Equal(it.Commitment))
}
