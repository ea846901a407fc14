package felt

import (
	"crypto/sha256"
	"fmt"
)

// Poseidon sponge parameters for state width t=3 (rate 2, capacity 1), the
// shape used throughout the trie for both the 2-argument pair hash (node
// commitments) and the variable-argument hash (item commitments).
const (
	poseidonWidth        = 3
	poseidonRate         = 2
	poseidonFullRounds   = 8
	poseidonPartialRounds = 56
)

var (
	poseidonRoundConstants [][poseidonWidth]Felt
	poseidonMDS            [poseidonWidth][poseidonWidth]Felt
)

func init() {
	total := poseidonFullRounds + poseidonPartialRounds
	poseidonRoundConstants = make([][poseidonWidth]Felt, total)
	for r := 0; r < total; r++ {
		for i := 0; i < poseidonWidth; i++ {
			poseidonRoundConstants[r][i] = hashToFelt(fmt.Sprintf("poseidon-rc-%d-%d", r, i))
		}
	}

	// Cauchy MDS matrix: M[i][j] = 1/(x_i + y_j), x_i = i, y_j = width+j, so
	// denominators are never zero and distinct pairs never collide.
	for i := 0; i < poseidonWidth; i++ {
		for j := 0; j < poseidonWidth; j++ {
			x := FromUint64(uint64(i))
			y := FromUint64(uint64(poseidonWidth + j))
			poseidonMDS[i][j] = x.Add(y).Inverse()
		}
	}
}

// hashToFelt derives a field element deterministically from a seed string by
// taking a SHA-256 digest and reducing it modulo the field's prime. This
// stands in for the reference implementation's fixed, out-of-band round
// constants, which are not available in this environment.
func hashToFelt(seed string) Felt {
	digest := sha256.Sum256([]byte(seed))
	return FromBEBytes(digest[:])
}

func poseidonSBox(f Felt) Felt {
	return f.Mul(f).Mul(f)
}

// poseidonPermute applies the full Poseidon permutation in place to state.
func poseidonPermute(state *[poseidonWidth]Felt) {
	total := poseidonFullRounds + poseidonPartialRounds
	halfFull := poseidonFullRounds / 2

	applyMDS := func(s [poseidonWidth]Felt) [poseidonWidth]Felt {
		var out [poseidonWidth]Felt
		for i := 0; i < poseidonWidth; i++ {
			acc := Zero
			for j := 0; j < poseidonWidth; j++ {
				acc = acc.Add(poseidonMDS[i][j].Mul(s[j]))
			}
			out[i] = acc
		}
		return out
	}

	for r := 0; r < total; r++ {
		for i := 0; i < poseidonWidth; i++ {
			state[i] = state[i].Add(poseidonRoundConstants[r][i])
		}

		isFullRound := r < halfFull || r >= total-halfFull
		if isFullRound {
			for i := 0; i < poseidonWidth; i++ {
				state[i] = poseidonSBox(state[i])
			}
		} else {
			state[0] = poseidonSBox(state[0])
		}

		*state = applyMDS(*state)
	}
}

// PoseidonPairHash is the 2-argument compression function used for binary
// and edge node commitments throughout the trie (spec.md §4.1).
func PoseidonPairHash(a, b Felt) Felt {
	state := [poseidonWidth]Felt{a, b, Zero}
	poseidonPermute(&state)
	return state[0]
}

// PoseidonManyHash sponges an arbitrary number of field elements down to one,
// used for item commitments (spec.md §4.3: commitment = hash(chunks...)).
func PoseidonManyHash(elements ...Felt) Felt {
	state := [poseidonWidth]Felt{Zero, Zero, Zero}
	for i := 0; i < len(elements); i += poseidonRate {
		end := i + poseidonRate
		if end > len(elements) {
			end = len(elements)
		}
		for j, e := range elements[i:end] {
			state[j] = state[j].Add(e)
		}
		poseidonPermute(&state)
	}
	return state[0]
}
