package batch

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/petscheit/sn-mpt/felt"
	"github.com/petscheit/sn-mpt/trie"
)

// LeafUpdate is one item's pre/post commitment transition within a batch
// (spec.md §4.5).
type LeafUpdate struct {
	Key        string `json:"key"`
	PreValue   string `json:"pre_value"`
	PostValue  string `json:"post_value"`
}

// Proof is the BatchProof wire shape (spec.md §4.5, C8): pre/post roots,
// the union preimage map every proof node needs, and per-item leaf
// transitions. It must round-trip through an external proof consumer.
type Proof struct {
	ID          uint64              `json:"id"`
	PreRoot     string              `json:"pre_root"`
	PostRoot    string              `json:"post_root"`
	Preimage    map[string][]string `json:"preimage"`
	LeafUpdates []LeafUpdate        `json:"leaf_updates"`
}

// assembleProof builds the BatchProof wire shape from the collected
// pre/post authentication paths, following spec.md §4.5's preimage rule:
// Binary{left,right} -> [hex(left), hex(right)];
// Edge{child,path} -> [hex(path.len() as u64 BE), hex(felt(path)), hex(child)].
// Key collisions are benign (the same hash always maps to the same preimage).
func assembleProof(id uint64, preRoot, postRoot felt.Felt, updates []LeafUpdate, proofSets [][]trie.ProofNode, hasher felt.Hasher) Proof {
	preimage := make(map[string][]string)
	for _, proof := range proofSets {
		for _, node := range proof {
			switch node.Kind {
			case trie.KindBinary:
				hash := hasher.PairHash(node.LeftHash, node.RightHash)
				preimage[hash.Hex()] = []string{node.LeftHash.Hex(), node.RightHash.Hex()}
			case trie.KindEdge:
				pathValue := felt.FromBits(node.Path)
				hash := hasher.PairHash(node.ChildHash, pathValue).Add(felt.FromUint64(uint64(len(node.Path))))
				preimage[hash.Hex()] = []string{
					pathLenHex(len(node.Path)),
					pathValue.Hex(),
					node.ChildHash.Hex(),
				}
			}
		}
	}

	return Proof{
		ID:          id,
		PreRoot:     preRoot.Hex(),
		PostRoot:    postRoot.Hex(),
		Preimage:    preimage,
		LeafUpdates: updates,
	}
}

// pathLenHex encodes an edge path's bit length as an 8-byte big-endian u64,
// hex-encoded bare. This is a wire-size integer, not a field element: the
// original implementation's batch_proof.rs encodes it as u64 BE, distinct
// from the felt(path) preimage element beside it.
func pathLenHex(n int) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(n))
	return hex.EncodeToString(buf[:])
}
