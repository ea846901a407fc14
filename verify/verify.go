// Package verify implements the companion membership verifier (spec.md
// §4.6): given a root, a key, a claimed value, and an authentication path,
// it decides Member, NonMember, or None without touching storage. It exists
// for tests and external consumers exercising the same algorithm the real
// zero-knowledge verifier runs off-chain.
package verify

import "github.com/petscheit/sn-mpt/felt"

// Result is the verifier's verdict.
type Result int

const (
	// None means the proof was malformed or could not be checked against root.
	None Result = iota
	// Member means key maps to value under root.
	Member
	// NonMember means the proof demonstrates key is absent under root.
	NonMember
)

func (r Result) String() string {
	switch r {
	case Member:
		return "member"
	case NonMember:
		return "non-member"
	default:
		return "none"
	}
}

// ProofNode mirrors trie.ProofNode without importing the trie package,
// keeping this companion verifier usable independently of the engine.
type ProofNode struct {
	IsEdge    bool
	LeftHash  felt.Felt
	RightHash felt.Felt
	ChildHash felt.Felt
	Path      felt.BitPath
}

// Verify runs the descent algorithm of spec.md §4.6.
func Verify(hasher felt.Hasher, root felt.Felt, key felt.BitPath, value felt.Felt, proof []ProofNode) Result {
	if len(key) != felt.PathBits {
		return None
	}

	expected := root
	remaining := key

	for _, node := range proof {
		if node.IsEdge {
			h := hasher.PairHash(node.ChildHash, felt.FromBits(node.Path)).Add(felt.FromUint64(uint64(len(node.Path))))
			if !h.Equal(expected) {
				return None
			}
			if len(node.Path) > len(remaining) || !node.Path.Equal(remaining[:len(node.Path)]) {
				return NonMember
			}
			expected = node.ChildHash
			remaining = remaining[len(node.Path):]
			continue
		}

		h := hasher.PairHash(node.LeftHash, node.RightHash)
		if !h.Equal(expected) {
			return None
		}
		if len(remaining) == 0 {
			return None
		}
		if !remaining[0] {
			expected = node.LeftHash
		} else {
			expected = node.RightHash
		}
		remaining = remaining[1:]
	}

	if len(remaining) != 0 {
		return None
	}
	if expected.Equal(value) {
		return Member
	}
	return None
}
