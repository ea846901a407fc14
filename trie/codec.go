package trie

import (
	"encoding/binary"
	"fmt"

	"github.com/petscheit/sn-mpt/felt"
)

// MaxEncodedLen is the fixed upper bound on an encoded StoredNode, matching
// the trie_nodes.data column's BLOB(<=256) shape.
const MaxEncodedLen = 256

// pathByteLen is the number of bytes needed to hold PathBits bits.
const pathByteLen = (felt.PathBits + 7) / 8

// Encode renders s into its fixed, self-describing byte form:
//
//	Binary:    tag(1) | left(8) | right(8)
//	Edge:      tag(1) | child(8) | pathLen(1) | path(32)
//	LeafBinary: tag(1)
//	LeafEdge:  tag(1) | pathLen(1) | path(32)
func (s StoredNode) Encode() ([]byte, error) {
	switch s.Kind {
	case KindBinary:
		buf := make([]byte, 17)
		buf[0] = byte(KindBinary)
		binary.BigEndian.PutUint64(buf[1:9], s.Left)
		binary.BigEndian.PutUint64(buf[9:17], s.Right)
		return buf, nil
	case KindEdge:
		if len(s.Path) == 0 || len(s.Path) > felt.PathBits {
			return nil, fmt.Errorf("%w: edge path length %d out of range", ErrNodeEncodingError, len(s.Path))
		}
		buf := make([]byte, 10+pathByteLen)
		buf[0] = byte(KindEdge)
		binary.BigEndian.PutUint64(buf[1:9], s.Child)
		buf[9] = byte(len(s.Path))
		copy(buf[10:], s.Path.Bytes())
		return buf, nil
	case KindLeafBinary:
		return []byte{byte(KindLeafBinary)}, nil
	case KindLeafEdge:
		if len(s.Path) == 0 || len(s.Path) > felt.PathBits {
			return nil, fmt.Errorf("%w: leaf edge path length %d out of range", ErrNodeEncodingError, len(s.Path))
		}
		buf := make([]byte, 2+pathByteLen)
		buf[0] = byte(KindLeafEdge)
		buf[1] = byte(len(s.Path))
		copy(buf[2:], s.Path.Bytes())
		return buf, nil
	default:
		return nil, fmt.Errorf("%w: unknown node kind %d", ErrNodeEncodingError, s.Kind)
	}
}

// DecodeStoredNode is the inverse of Encode.
func DecodeStoredNode(buf []byte) (StoredNode, error) {
	if len(buf) == 0 {
		return StoredNode{}, fmt.Errorf("%w: empty buffer", ErrNodeEncodingError)
	}
	kind := NodeKind(buf[0])
	switch kind {
	case KindBinary:
		if len(buf) < 17 {
			return StoredNode{}, fmt.Errorf("%w: binary node too short", ErrNodeEncodingError)
		}
		return StoredNode{
			Kind:  KindBinary,
			Left:  binary.BigEndian.Uint64(buf[1:9]),
			Right: binary.BigEndian.Uint64(buf[9:17]),
		}, nil
	case KindEdge:
		if len(buf) < 10 {
			return StoredNode{}, fmt.Errorf("%w: edge node too short", ErrNodeEncodingError)
		}
		child := binary.BigEndian.Uint64(buf[1:9])
		pathLen := int(buf[9])
		if pathLen == 0 || pathLen > felt.PathBits || len(buf) < 10+pathByteLen {
			return StoredNode{}, fmt.Errorf("%w: edge node malformed path length %d", ErrNodeEncodingError, pathLen)
		}
		path := felt.BitPathFromBytes(buf[10:10+pathByteLen], pathLen)
		return StoredNode{Kind: KindEdge, Child: child, Path: path}, nil
	case KindLeafBinary:
		return StoredNode{Kind: KindLeafBinary}, nil
	case KindLeafEdge:
		if len(buf) < 2 {
			return StoredNode{}, fmt.Errorf("%w: leaf edge node too short", ErrNodeEncodingError)
		}
		pathLen := int(buf[1])
		if pathLen == 0 || pathLen > felt.PathBits || len(buf) < 2+pathByteLen {
			return StoredNode{}, fmt.Errorf("%w: leaf edge node malformed path length %d", ErrNodeEncodingError, pathLen)
		}
		path := felt.BitPathFromBytes(buf[2:2+pathByteLen], pathLen)
		return StoredNode{Kind: KindLeafEdge, Path: path}, nil
	default:
		return StoredNode{}, fmt.Errorf("%w: unknown tag %d", ErrNodeEncodingError, buf[0])
	}
}
