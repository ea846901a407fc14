package trie

import (
	"fmt"

	"github.com/petscheit/sn-mpt/felt"
)

// ProofNode is one authentication-path entry: either a Binary sibling-hash
// pair or an Edge child-hash plus its compressed path (spec.md §4.1).
// Proof entries carry hashes, not indices, so a proof is self-contained for
// an external verifier.
type ProofNode struct {
	Kind      NodeKind
	LeftHash  felt.Felt // Binary only
	RightHash felt.Felt // Binary only
	ChildHash felt.Felt // Edge only
	Path      felt.BitPath // Edge only
}

// GetProof walks from rootIdx down key, returning the authentication path
// to the first leaf variant encountered. It returns (nil, nil) if rootIdx
// resolves to no node (the empty-root sentinel or an absent index).
func GetProof(storage EngineStorage, rootIdx uint64, key felt.BitPath) ([]ProofNode, error) {
	if len(key) != felt.PathBits {
		return nil, fmt.Errorf("%w: key must be %d bits, got %d", ErrProofGenerationError, felt.PathBits, len(key))
	}
	if rootIdx == 0 {
		return nil, nil
	}

	var proof []ProofNode
	idx := rootIdx
	depth := 0

	for {
		stored, ok, err := storage.Get(idx)
		if err != nil {
			return nil, fmt.Errorf("trie: loading node %d: %w", idx, err)
		}
		if !ok {
			if idx == rootIdx {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: index %d", ErrNodeNotFound, idx)
		}

		switch stored.Kind {
		case KindBinary:
			leftHash, ok, err := storage.Hash(stored.Left)
			if err != nil || !ok {
				return nil, proofHashErr(err, stored.Left)
			}
			rightHash, ok, err := storage.Hash(stored.Right)
			if err != nil || !ok {
				return nil, proofHashErr(err, stored.Right)
			}
			proof = append(proof, ProofNode{Kind: KindBinary, LeftHash: leftHash, RightHash: rightHash})

			if depth >= len(key) {
				return nil, fmt.Errorf("%w: key exhausted at binary node", ErrProofGenerationError)
			}
			if !key[depth] {
				idx = stored.Left
			} else {
				idx = stored.Right
			}
			depth++

		case KindEdge:
			childHash, ok, err := storage.Hash(stored.Child)
			if err != nil || !ok {
				return nil, proofHashErr(err, stored.Child)
			}
			proof = append(proof, ProofNode{Kind: KindEdge, ChildHash: childHash, Path: stored.Path})

			idx = stored.Child
			depth += len(stored.Path)

		case KindLeafBinary, KindLeafEdge:
			return proof, nil

		default:
			return nil, fmt.Errorf("%w: unknown node kind %d", ErrNodeEncodingError, stored.Kind)
		}
	}
}

func proofHashErr(err error, idx uint64) error {
	if err != nil {
		return fmt.Errorf("trie: loading hash %d: %w", idx, err)
	}
	return fmt.Errorf("%w: hash for index %d", ErrNodeNotFound, idx)
}
