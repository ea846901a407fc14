package trie

import "github.com/petscheit/sn-mpt/felt"

// EngineStorage is the read-only capability set the trie engine depends on
// (spec.md §4.2's first bullet list). Adapters live in the storage package;
// this interface is declared here so the engine has no dependency on any
// concrete backend.
type EngineStorage interface {
	// Get returns the stored node at index, or ok=false if absent.
	Get(index uint64) (node StoredNode, ok bool, err error)
	// Hash returns the cached hash of the node at index, or ok=false if absent.
	Hash(index uint64) (h felt.Felt, ok bool, err error)
	// Leaf returns the commitment stored at the given full 251-bit path, or ok=false if absent.
	Leaf(path felt.BitPath) (commitment felt.Felt, ok bool, err error)
}
