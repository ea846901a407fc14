package item

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petscheit/sn-mpt/felt"
)

func seededValue(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	b := make([]byte, n)
	r.Read(b)
	return b
}

func TestNewIsDeterministic(t *testing.T) {
	v := seededValue(48, 1)
	a := New(felt.PoseidonHasher{}, v)
	b := New(felt.PoseidonHasher{}, v)

	assert.True(t, a.Key.Equal(b.Key))
	assert.True(t, a.Commitment.Equal(b.Commitment))
}

func TestNewKeyIsPairHashOfCommitment(t *testing.T) {
	v := seededValue(64, 2)
	hasher := felt.PoseidonHasher{}
	i := New(hasher, v)

	assert.True(t, i.Key.Equal(hasher.PairHash(i.Commitment, i.Commitment)))
}

func TestDifferentValuesProduceDifferentCommitments(t *testing.T) {
	a := New(felt.PoseidonHasher{}, seededValue(32, 3))
	b := New(felt.PoseidonHasher{}, seededValue(32, 4))

	assert.False(t, a.Commitment.Equal(b.Commitment))
	assert.False(t, a.Key.Equal(b.Key))
}

func TestChunkingHandlesUnalignedLength(t *testing.T) {
	short := New(felt.PoseidonHasher{}, []byte{1, 2, 3})
	padded := make([]byte, 32)
	padded[0], padded[1], padded[2] = 1, 2, 3
	long := New(felt.PoseidonHasher{}, padded)

	assert.True(t, short.Commitment.Equal(long.Commitment), "zero-padding the final chunk must make equivalent short/long inputs hash identically")
}

func TestEmptyValueStillDerivesAnItem(t *testing.T) {
	i := New(felt.PoseidonHasher{}, nil)
	assert.False(t, i.Commitment.IsZero() && i.Key.IsZero(), "hashing a single all-zero chunk should not trivially collide with the zero element")
}
