package felt

// Hasher is the algebraic hash family the trie commits with. PairHash backs
// binary/edge node commitments; ManyHash backs item commitment derivation.
// PoseidonHasher is the default and the only family exercised by the
// documented proof fixtures; PedersenHasher is the alternate mode named in
// spec.md §4.1.
type Hasher interface {
	PairHash(a, b Felt) Felt
	ManyHash(elements ...Felt) Felt
	Name() string
}

// PoseidonHasher is the default Hasher implementation.
type PoseidonHasher struct{}

func (PoseidonHasher) PairHash(a, b Felt) Felt        { return PoseidonPairHash(a, b) }
func (PoseidonHasher) ManyHash(elements ...Felt) Felt { return PoseidonManyHash(elements...) }
func (PoseidonHasher) Name() string                   { return "poseidon" }

// PedersenHasher is the alternate, elliptic-curve-based Hasher implementation.
type PedersenHasher struct{}

func (PedersenHasher) PairHash(a, b Felt) Felt        { return PedersenPairHash(a, b) }
func (PedersenHasher) ManyHash(elements ...Felt) Felt { return PedersenManyHash(elements...) }
func (PedersenHasher) Name() string                   { return "pedersen" }

// DefaultHasher is the Hasher used when none is configured.
var DefaultHasher Hasher = PoseidonHasher{}

// HasherByName resolves a configured hash mode name (spec.md §4.1, config
// package's hash-mode flag) to a Hasher, or reports ok=false for unknown names.
func HasherByName(name string) (Hasher, bool) {
	switch name {
	case "poseidon", "":
		return PoseidonHasher{}, true
	case "pedersen":
		return PedersenHasher{}, true
	default:
		return nil, false
	}
}
