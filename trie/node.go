// Package trie implements the height-251 sparse Merkle trie: its node model,
// edge-compressed commit algorithm, and authentication-path extraction.
package trie

import "github.com/petscheit/sn-mpt/felt"

// PathBits is the fixed trie height; re-exported for callers that only
// import trie.
const PathBits = felt.PathBits

// RefKind distinguishes the two NodeRef variants.
type RefKind uint8

const (
	// RefStorageIndex references an already-persisted node by its absolute trie_idx.
	RefStorageIndex RefKind = iota
	// RefRelativeIndex references a node by its position in the current
	// commit's added-nodes list, resolved to an absolute trie_idx at persist time.
	RefRelativeIndex
	// RefEmpty represents the absent/empty subtree (no node at all).
	RefEmpty
)

// NodeRef is a reference to a child node: either an absolute storage index,
// a relative index into the in-progress commit's added-nodes vector, or
// the empty-subtree sentinel.
type NodeRef struct {
	Kind    RefKind
	Storage uint64
	Index   uint32
}

// EmptyRef is the reference to an absent subtree.
var EmptyRef = NodeRef{Kind: RefEmpty}

// StorageRef builds a NodeRef pointing at an already-persisted node.
func StorageRef(idx uint64) NodeRef { return NodeRef{Kind: RefStorageIndex, Storage: idx} }

// RelativeRef builds a NodeRef pointing at a position within the current commit's added-nodes vector.
func RelativeRef(idx uint32) NodeRef { return NodeRef{Kind: RefRelativeIndex, Index: idx} }

// NodeKind distinguishes the four node variants.
type NodeKind uint8

const (
	KindBinary NodeKind = iota
	KindEdge
	KindLeafBinary
	KindLeafEdge
)

// Node is the in-memory node representation produced during a commit, before
// relative indices are resolved to absolute trie_idx values.
type Node struct {
	Kind  NodeKind
	Left  NodeRef     // Binary only
	Right NodeRef     // Binary only
	Child NodeRef     // Edge only
	Path  felt.BitPath // Edge, LeafEdge: the compressed path segment
}

// StoredNode is the persisted node representation: same variants, but every
// child reference is an absolute trie_idx rather than a NodeRef.
type StoredNode struct {
	Kind  NodeKind
	Left  uint64 // Binary only
	Right uint64 // Binary only
	Child uint64 // Edge only
	Path  felt.BitPath
}

// IsLeaf reports whether the node is one of the two leaf variants.
func (s StoredNode) IsLeaf() bool {
	return s.Kind == KindLeafBinary || s.Kind == KindLeafEdge
}
