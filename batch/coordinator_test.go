package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petscheit/sn-mpt/felt"
	"github.com/petscheit/sn-mpt/storage"
)

func newTestCoordinator() (*Coordinator, *storage.Memory) {
	store := storage.NewMemory()
	return New(store, felt.PoseidonHasher{}), store
}

func TestCreateBatchFirstBatchHasNoParent(t *testing.T) {
	c, store := newTestCoordinator()

	proof, err := c.CreateBatch([][]byte{[]byte("hello"), []byte("world")})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proof.ID)
	assert.Len(t, proof.LeafUpdates, 2)
	assert.NotEmpty(t, proof.Preimage, "a multi-item batch must split, producing at least one binary/edge preimage entry")

	b, ok, err := store.GetBatch(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, b.ParentID)
	assert.Equal(t, storage.StatusCreated, b.Status)
}

func TestCreateBatchSecondBatchChainsToFirst(t *testing.T) {
	c, store := newTestCoordinator()

	_, err := c.CreateBatch([][]byte{[]byte("first")})
	require.NoError(t, err)

	proof2, err := c.CreateBatch([][]byte{[]byte("second")})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), proof2.ID)

	b2, ok, err := store.GetBatch(2)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, b2.ParentID)
	assert.Equal(t, uint64(1), *b2.ParentID)
	assert.NotEqual(t, proof2.PreRoot, proof2.PostRoot, "inserting a new item must move the root")
}

func TestFinalizeRequiresParentFinalizedFirst(t *testing.T) {
	c, _ := newTestCoordinator()

	_, err := c.CreateBatch([][]byte{[]byte("first")})
	require.NoError(t, err)
	_, err = c.CreateBatch([][]byte{[]byte("second")})
	require.NoError(t, err)

	err = c.Finalize(2)
	assert.ErrorIs(t, err, ErrBatchParentNotFinalized)

	require.NoError(t, c.Finalize(1))
	require.NoError(t, c.Finalize(2))
}

func TestFinalizeUnknownBatchFails(t *testing.T) {
	c, _ := newTestCoordinator()
	err := c.Finalize(99)
	assert.ErrorIs(t, err, ErrBatchNotFound)
}
