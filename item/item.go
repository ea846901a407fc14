// Package item implements value -> (key, commitment) derivation (spec.md
// §4.3): the only way a client payload enters the trie's 251-bit key space.
package item

import "github.com/petscheit/sn-mpt/felt"

const chunkSize = 32

// CachedItem is a client-submitted value together with its derived
// commitment and trie key.
type CachedItem struct {
	Value      []byte
	Key        felt.Felt
	Commitment felt.Felt
}

// New splits value into 32-byte big-endian chunks (zero-padding the final
// chunk on its low-order end), derives the commitment as their many-argument
// Poseidon hash, and the key as the two-argument Poseidon hash of the
// commitment with itself. Determinism is essential: the same bytes always
// produce the same (key, commitment), so resubmission is idempotent.
func New(hasher felt.Hasher, value []byte) CachedItem {
	commitment := Commitment(hasher, value)
	key := hasher.PairHash(commitment, commitment)
	return CachedItem{Value: value, Key: key, Commitment: commitment}
}

// Commitment computes only the commitment half of item derivation, without
// allocating a full CachedItem; New derives the key from its result.
func Commitment(hasher felt.Hasher, value []byte) felt.Felt {
	return hasher.ManyHash(chunks(value)...)
}

// chunks splits value into 32-byte big-endian field elements, zero-padding
// the final chunk.
func chunks(value []byte) []felt.Felt {
	n := (len(value) + chunkSize - 1) / chunkSize
	if n == 0 {
		n = 1
	}
	out := make([]felt.Felt, n)
	for i := 0; i < n; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(value) {
			end = len(value)
		}
		var buf [chunkSize]byte
		copy(buf[:], value[start:end])
		out[i] = felt.FromBEBytes(buf[:])
	}
	return out
}
