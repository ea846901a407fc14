// Package cairoutil renders a BatchProof as a Cairo0 test-fixture literal,
// grounded on original_source/rust/src/utils.rs's CairoCompatible trait and
// its leaf_proof_to_cairo_string helper.
package cairoutil

import (
	"fmt"
	"strings"

	"github.com/petscheit/sn-mpt/batch"
	"github.com/petscheit/sn-mpt/felt"
	"github.com/petscheit/sn-mpt/trie"
)

// ProofNode is the minimal shape cairoutil needs from a trie proof entry,
// kept independent of the trie package's own ProofNode so callers can feed
// either representation in without an import-cycle concern.
type ProofNode struct {
	IsEdge    bool
	LeftHex   string
	RightHex  string
	ChildHex  string
	PathHex   string
	PathLen   int
}

// FromTrieProof converts a []trie.ProofNode into the cairoutil shape.
func FromTrieProof(proof []trie.ProofNode) []ProofNode {
	out := make([]ProofNode, len(proof))
	for i, n := range proof {
		switch n.Kind {
		case trie.KindBinary:
			out[i] = ProofNode{LeftHex: n.LeftHash.Hex(), RightHex: n.RightHash.Hex()}
		case trie.KindEdge:
			out[i] = ProofNode{
				IsEdge:   true,
				ChildHex: n.ChildHash.Hex(),
				PathHex:  felt.FromBits(n.Path).Hex(),
				PathLen:  len(n.Path),
			}
		}
	}
	return out
}

// ToCairoArray renders proof as a Cairo0 array![...] literal of TrieNode
// variants, mirroring leaf_proof_to_cairo_string's trailing-comma handling.
func ToCairoArray(proof []ProofNode, trailingComma bool) string {
	var b strings.Builder
	b.WriteString("array![\n")
	for i, n := range proof {
		sep := ","
		if i == len(proof)-1 {
			sep = ""
		}
		if n.IsEdge {
			fmt.Fprintf(&b, "        TrieNode::Edge(EdgeNodeImpl::new(0x%s, 0x%s, %d))%s\n",
				n.PathHex, n.ChildHex, n.PathLen, sep)
		} else {
			fmt.Fprintf(&b, "        TrieNode::Binary(BinaryNodeImpl::new(0x%s,0x%s))%s\n",
				n.LeftHex, n.RightHex, sep)
		}
	}
	if trailingComma {
		b.WriteString("    ],\n")
	} else {
		b.WriteString("    ];\n")
	}
	return b.String()
}

// ToCairoStr renders a full BatchProof as a named Cairo0 struct literal
// (BatchUpdate { pre_root, post_root, leaf_updates: array![...] }), the
// textual dump format the original implementation used for Cairo test
// fixtures before it switched to the Cairo0-serde preimage/leaf_updates
// shape Proof itself already matches.
func ToCairoStr(p *batch.Proof, preProofs, postProofs [][]trie.ProofNode) string {
	var b strings.Builder
	b.WriteString("BatchUpdate {\n")
	fmt.Fprintf(&b, "    pre_root: 0x%s,\n", p.PreRoot)
	fmt.Fprintf(&b, "    post_root: 0x%s,\n", p.PostRoot)
	b.WriteString("    leaf_updates: array![\n")
	for i, u := range p.LeafUpdates {
		b.WriteString("    LeafUpdate {\n")
		fmt.Fprintf(&b, "        key: 0x%s,\n", u.Key)
		b.WriteString("        proof_pre: ")
		b.WriteString(ToCairoArray(FromTrieProof(preProofs[i]), true))
		b.WriteString("        proof_post: ")
		b.WriteString(ToCairoArray(FromTrieProof(postProofs[i]), true))
		b.WriteString("    },\n")
	}
	b.WriteString("    ]\n")
	b.WriteString("};\n")
	return b.String()
}
