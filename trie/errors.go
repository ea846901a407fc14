package trie

import "errors"

// Sentinel errors forming the engine's side of the taxonomy in spec.md §7.
// The coordinator wraps and surfaces these; the engine itself never panics
// on data errors.
var (
	ErrNodeNotFound        = errors.New("trie: node not found")
	ErrNodeEncodingError   = errors.New("trie: node encoding error")
	ErrProofGenerationError = errors.New("trie: proof generation error")
)
