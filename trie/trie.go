package trie

import (
	"fmt"
	"log/slog"

	"github.com/petscheit/sn-mpt/felt"
)

var logger = slog.Default().With("component", "trie")

// AddedNode is one entry of a commit's topologically-ordered added-nodes
// vector: (hash, in-memory node with unresolved relative/storage refs).
type AddedNode struct {
	Hash felt.Felt
	Node Node
}

// TrieUpdate is the result of a commit: the new root's commitment and the
// nodes added in children-before-parents order. Commit does not track the
// nodes it supersedes: NodesRemoved is always empty.
type TrieUpdate struct {
	RootCommitment felt.Felt
	NodesAdded     []AddedNode
	NodesRemoved   []uint64
}

// Trie is the height-251 sparse Merkle trie engine. It stages writes in
// memory between Set calls and only touches storage when Commit walks the
// affected root-to-leaf paths.
type Trie struct {
	hasher  felt.Hasher
	rootIdx uint64 // 0 == empty sentinel
	overlay map[string]felt.Felt
	order   []felt.BitPath
}

// New returns a Trie rooted at rootIdx (0 for the empty sentinel), hashing
// with hasher.
func New(hasher felt.Hasher, rootIdx uint64) *Trie {
	if hasher == nil {
		hasher = felt.DefaultHasher
	}
	return &Trie{
		hasher:  hasher,
		rootIdx: rootIdx,
		overlay: make(map[string]felt.Felt),
	}
}

// pathKey is the overlay map key for a full PathBits-length path. Every
// caller in this file only ever keys on full-length paths, so the byte
// encoding alone is already collision-free.
func pathKey(p felt.BitPath) string {
	return string(p.Bytes())
}

// Set stages path -> value in the in-memory overlay; it is not visible to
// storage reads until Commit. Repeated Set calls to the same path within a
// commit keep only the last value.
func (t *Trie) Set(path felt.BitPath, value felt.Felt) {
	if len(path) != felt.PathBits {
		panic(fmt.Sprintf("trie: Set requires a full %d-bit path, got %d", felt.PathBits, len(path)))
	}
	key := pathKey(path)
	if _, exists := t.overlay[key]; !exists {
		t.order = append(t.order, path)
	}
	t.overlay[key] = value
}

// build is an in-progress (not yet hashed) node; kind uses the NodeKind variants.
type build struct {
	kind  NodeKind
	left  ref
	right ref
	child ref
	path  felt.BitPath // Edge, LeafEdge

	leafPath felt.BitPath // full 251-bit path, LeafBinary/LeafEdge only
}

// ref is a reference to either an untouched storage subtree, the empty
// subtree, or a build node constructed earlier in this same commit.
type ref struct {
	empty   bool
	storage bool
	idx     uint64
	node    *build
}

func emptyRef() ref               { return ref{empty: true} }
func storageRefOf(idx uint64) ref { return ref{storage: true, idx: idx} }
func buildRefOf(b *build) ref     { return ref{node: b} }

// Commit walks every staged write, rebuilds only the affected root-to-leaf
// spines, and returns the resulting TrieUpdate. The staged overlay is
// cleared afterwards regardless of success, per spec.md §5's shared-
// resources note.
func (t *Trie) Commit(storage EngineStorage) (*TrieUpdate, error) {
	defer func() {
		t.overlay = make(map[string]felt.Felt)
		t.order = nil
	}()

	var root ref
	if t.rootIdx == 0 {
		root = emptyRef()
	} else {
		root = storageRefOf(t.rootIdx)
	}

	for _, path := range t.order {
		newRoot, err := t.insert(storage, root, 0, path)
		if err != nil {
			return nil, err
		}
		root = newRoot
	}

	var nodesAdded []AddedNode
	rootHash, _, err := t.serialize(storage, root, &nodesAdded)
	if err != nil {
		return nil, err
	}

	return &TrieUpdate{
		RootCommitment: rootHash,
		NodesAdded:     nodesAdded,
		NodesRemoved:   nil, // pruning is disabled; see spec.md §9 "No pruning"
	}, nil
}

// insert rebuilds the spine from cur (currently at depth bits consumed)
// down to path's leaf, leaving every untouched sibling subtree as-is.
func (t *Trie) insert(storage EngineStorage, cur ref, depth int, path felt.BitPath) (ref, error) {
	switch {
	case cur.empty:
		return buildRefOf(freshLeaf(path, depth)), nil

	case cur.storage:
		stored, ok, err := storage.Get(cur.idx)
		if err != nil {
			return ref{}, fmt.Errorf("trie: loading node %d: %w", cur.idx, err)
		}
		if !ok {
			return ref{}, fmt.Errorf("%w: index %d", ErrNodeNotFound, cur.idx)
		}
		return t.insertIntoStored(storage, stored, depth, path)

	case cur.node != nil:
		return t.insertIntoBuild(storage, cur.node, depth, path)

	default:
		return ref{}, fmt.Errorf("%w: malformed ref", ErrProofGenerationError)
	}
}

func freshLeaf(path felt.BitPath, depth int) *build {
	remaining := path[depth:]
	if len(remaining) == 0 {
		return &build{kind: KindLeafBinary, leafPath: path}
	}
	return &build{kind: KindLeafEdge, path: remaining, leafPath: path}
}

func (t *Trie) insertIntoStored(storage EngineStorage, stored StoredNode, depth int, path felt.BitPath) (ref, error) {
	switch stored.Kind {
	case KindBinary:
		bit := path[depth]
		leftRef, rightRef := storageRefOf(stored.Left), storageRefOf(stored.Right)
		var err error
		if !bit {
			leftRef, err = t.insert(storage, leftRef, depth+1, path)
		} else {
			rightRef, err = t.insert(storage, rightRef, depth+1, path)
		}
		if err != nil {
			return ref{}, err
		}
		return buildRefOf(&build{kind: KindBinary, left: leftRef, right: rightRef}), nil

	case KindEdge:
		segment := stored.Path
		target := path[depth : depth+len(segment)]
		if j := divergeAt(segment, target); j >= 0 {
			return t.splitAtEdge(path, depth, segment, storageRefOf(stored.Child), j)
		}
		childRef, err := t.insert(storage, storageRefOf(stored.Child), depth+len(segment), path)
		if err != nil {
			return ref{}, err
		}
		return buildRefOf(&build{kind: KindEdge, path: segment, child: childRef}), nil

	case KindLeafBinary, KindLeafEdge:
		segment := stored.Path // empty for LeafBinary
		oldFull := append(append(felt.BitPath{}, path[:depth]...), segment...)
		if oldFull.Equal(path) {
			// Same key: replace the commitment, keep the same structural shape.
			return buildRefOf(&build{kind: stored.Kind, path: segment, leafPath: path}), nil
		}
		target := path[depth : depth+len(segment)]
		j := divergeAt(segment, target)
		if j < 0 {
			// Segments agree over their shared length but full paths differ:
			// can only happen if a LeafBinary (empty segment) collides with
			// itself, already handled by oldFull.Equal above.
			return ref{}, fmt.Errorf("%w: leaf path mismatch at depth %d", ErrProofGenerationError, depth)
		}
		oldRemainder := segment[j+1:]
		oldLeafPath := append(append(felt.BitPath{}, path[:depth+j]...), segment[j:]...)
		oldLeaf := &build{kind: leafKindFor(oldRemainder), path: oldRemainder, leafPath: oldLeafPath}
		return t.splitAtLeaf(path, depth, segment, oldLeaf, j)
	}
	return ref{}, fmt.Errorf("%w: unknown stored kind %d", ErrNodeEncodingError, stored.Kind)
}

func (t *Trie) insertIntoBuild(storage EngineStorage, b *build, depth int, path felt.BitPath) (ref, error) {
	switch b.kind {
	case KindBinary:
		bit := path[depth]
		var err error
		if !bit {
			b.left, err = t.insert(storage, b.left, depth+1, path)
		} else {
			b.right, err = t.insert(storage, b.right, depth+1, path)
		}
		if err != nil {
			return ref{}, err
		}
		return buildRefOf(b), nil

	case KindEdge:
		segment := b.path
		target := path[depth : depth+len(segment)]
		if j := divergeAt(segment, target); j >= 0 {
			return t.splitAtEdge(path, depth, segment, b.child, j)
		}
		childRef, err := t.insert(storage, b.child, depth+len(segment), path)
		if err != nil {
			return ref{}, err
		}
		b.child = childRef
		return buildRefOf(b), nil

	case KindLeafBinary, KindLeafEdge:
		if b.leafPath.Equal(path) {
			return buildRefOf(&build{kind: b.kind, path: b.path, leafPath: path}), nil
		}
		segment := b.path
		target := path[depth : depth+len(segment)]
		j := divergeAt(segment, target)
		if j < 0 {
			return ref{}, fmt.Errorf("%w: leaf path mismatch at depth %d", ErrProofGenerationError, depth)
		}
		oldRemainder := segment[j+1:]
		oldLeaf := &build{kind: leafKindFor(oldRemainder), path: oldRemainder, leafPath: b.leafPath}
		return t.splitAtLeaf(path, depth, segment, oldLeaf, j)
	}
	return ref{}, fmt.Errorf("%w: unknown build kind %d", ErrNodeEncodingError, b.kind)
}

func leafKindFor(remainder felt.BitPath) NodeKind {
	if len(remainder) == 0 {
		return KindLeafBinary
	}
	return KindLeafEdge
}

// divergeAt returns the first bit position where segment and target differ,
// or -1 if they agree over their full shared length.
func divergeAt(segment, target felt.BitPath) int {
	n := len(segment)
	if len(target) < n {
		n = len(target)
	}
	for i := 0; i < n; i++ {
		if segment[i] != target[i] {
			return i
		}
	}
	return -1
}

// splitAtEdge handles divergence partway through an Edge's compressed
// segment: the shared prefix (if any) keeps an Edge wrapper, then a new
// Binary node forks into the old subtree's remainder and the freshly
// inserted path.
func (t *Trie) splitAtEdge(path felt.BitPath, depth int, segment felt.BitPath, oldChild ref, j int) (ref, error) {
	oldRemainder := segment[j+1:]
	var oldSide ref
	if len(oldRemainder) == 0 {
		oldSide = oldChild
	} else {
		oldSide = buildRefOf(&build{kind: KindEdge, path: oldRemainder, child: oldChild})
	}
	newSide := buildRefOf(freshLeaf(path, depth+j+1))

	binaryNode := binaryOf(segment[j], oldSide, newSide)
	if j == 0 {
		return buildRefOf(binaryNode), nil
	}
	return buildRefOf(&build{kind: KindEdge, path: segment[:j], child: buildRefOf(binaryNode)}), nil
}

// splitAtLeaf is splitAtEdge's counterpart when the divergence happens
// against an existing leaf's compressed path rather than an internal Edge.
func (t *Trie) splitAtLeaf(path felt.BitPath, depth int, segment felt.BitPath, oldLeaf *build, j int) (ref, error) {
	newSide := buildRefOf(freshLeaf(path, depth+j+1))
	binaryNode := binaryOf(segment[j], buildRefOf(oldLeaf), newSide)
	if j == 0 {
		return buildRefOf(binaryNode), nil
	}
	return buildRefOf(&build{kind: KindEdge, path: segment[:j], child: buildRefOf(binaryNode)}), nil
}

// binaryOf places oldSide/newSide on the correct side of a new Binary node
// given the bit the two paths diverge on (the new path always takes the
// opposite side from the old one, per oldBit).
func binaryOf(oldBit bool, oldSide, newSide ref) *build {
	if oldBit {
		return &build{kind: KindBinary, left: newSide, right: oldSide}
	}
	return &build{kind: KindBinary, left: oldSide, right: newSide}
}

// serialize walks ref post-order, computing hashes and appending freshly
// built nodes to *added in children-before-parents order. It returns the
// hash of ref and, if ref is itself a fresh build node, the NodeRef other
// parents should use to reach it (a RelativeRef into *added).
func (t *Trie) serialize(storage EngineStorage, r ref, added *[]AddedNode) (felt.Felt, NodeRef, error) {
	switch {
	case r.empty:
		return felt.Zero, EmptyRef, nil

	case r.storage:
		h, ok, err := storage.Hash(r.idx)
		if err != nil {
			return felt.Felt{}, NodeRef{}, fmt.Errorf("trie: loading hash %d: %w", r.idx, err)
		}
		if !ok {
			return felt.Felt{}, NodeRef{}, fmt.Errorf("%w: index %d", ErrNodeNotFound, r.idx)
		}
		return h, StorageRef(r.idx), nil

	case r.node != nil:
		return t.serializeBuild(storage, r.node, added)
	}
	return felt.Felt{}, NodeRef{}, fmt.Errorf("%w: malformed ref", ErrProofGenerationError)
}

func (t *Trie) serializeBuild(storage EngineStorage, b *build, added *[]AddedNode) (felt.Felt, NodeRef, error) {
	var hash felt.Felt
	node := Node{Kind: b.kind, Path: b.path}

	switch b.kind {
	case KindBinary:
		leftHash, leftRef, err := t.serialize(storage, b.left, added)
		if err != nil {
			return felt.Felt{}, NodeRef{}, err
		}
		rightHash, rightRef, err := t.serialize(storage, b.right, added)
		if err != nil {
			return felt.Felt{}, NodeRef{}, err
		}
		node.Left, node.Right = leftRef, rightRef
		hash = t.hasher.PairHash(leftHash, rightHash)

	case KindEdge:
		childHash, childRef, err := t.serialize(storage, b.child, added)
		if err != nil {
			return felt.Felt{}, NodeRef{}, err
		}
		node.Child = childRef
		hash = edgeHash(t.hasher, childHash, b.path)

	case KindLeafBinary, KindLeafEdge:
		v, ok := t.overlay[pathKey(b.leafPath)]
		if !ok {
			var err error
			v, ok, err = storage.Leaf(b.leafPath)
			if err != nil {
				return felt.Felt{}, NodeRef{}, fmt.Errorf("trie: loading leaf: %w", err)
			}
			if !ok {
				return felt.Felt{}, NodeRef{}, fmt.Errorf("%w: leaf at unknown path", ErrNodeNotFound)
			}
		}
		hash = v

	default:
		return felt.Felt{}, NodeRef{}, fmt.Errorf("%w: unknown build kind %d", ErrNodeEncodingError, b.kind)
	}

	idx := uint32(len(*added))
	*added = append(*added, AddedNode{Hash: hash, Node: node})
	logger.Debug("staged node", "kind", b.kind, "relative_index", idx)
	return hash, RelativeRef(idx), nil
}

// edgeHash implements spec.md §4.1's edge hash formula:
// H_pair(child, felt(path)) + felt(path.len()).
func edgeHash(hasher felt.Hasher, childHash felt.Felt, path felt.BitPath) felt.Felt {
	pathValue := felt.FromBits(path)
	return hasher.PairHash(childHash, pathValue).Add(felt.FromUint64(uint64(len(path))))
}

// ResolveIndices rewrites a commit's relative added-nodes vector into
// absolute StoredNode rows, given the smallest unused trie_idx at persist
// time (spec.md §4.1's persistence step).
func ResolveIndices(nextIndex uint64, added []AddedNode) []StoredNode {
	resolved := make([]StoredNode, len(added))
	resolve := func(r NodeRef) uint64 {
		switch r.Kind {
		case RefStorageIndex:
			return r.Storage
		case RefRelativeIndex:
			return nextIndex + uint64(r.Index)
		default:
			return 0
		}
	}
	for i, a := range added {
		s := StoredNode{Kind: a.Node.Kind, Path: a.Node.Path}
		switch a.Node.Kind {
		case KindBinary:
			s.Left = resolve(a.Node.Left)
			s.Right = resolve(a.Node.Right)
		case KindEdge:
			s.Child = resolve(a.Node.Child)
		}
		resolved[i] = s
	}
	return resolved
}
