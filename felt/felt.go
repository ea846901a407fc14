package felt

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// modulus is the Stark-friendly prime the field is defined over:
// 2^251 + 17*2^192 + 1.
var modulus = uint256.MustFromDecimal("3618502788666131213697322783095070105623107215331596699973092056135872020481")

// Felt is an element of the 252-bit Stark-friendly prime field. The zero
// value is the field's zero element.
type Felt struct {
	v uint256.Int
}

// Zero is the distinguished zero element.
var Zero = Felt{}

// One is the multiplicative identity.
var One = FromUint64(1)

// FromUint64 lifts a small integer into the field.
func FromUint64(n uint64) Felt {
	var v uint256.Int
	v.SetUint64(n)
	return Felt{v}
}

// FromBEBytes interprets b as a big-endian integer and reduces it modulo the
// field's prime. b may be any length; it is not required to be exactly 32
// bytes, matching pathfinder-style "load a chunk, reduce" semantics.
func FromBEBytes(b []byte) Felt {
	var v uint256.Int
	v.SetBytes(b)
	v.Mod(&v, modulus)
	return Felt{v}
}

// ToBEBytes renders the canonical representative as 32 big-endian bytes.
func (f Felt) ToBEBytes() [32]byte {
	return f.v.Bytes32()
}

// Hex renders the canonical representative as a bare (unprefixed) lowercase
// hex string, matching the wire encoding used throughout BatchProof (spec.md
// §4.5) and the ground-truth hex::encode fixtures it must round-trip with.
func (f Felt) Hex() string {
	b := f.ToBEBytes()
	return hex.EncodeToString(b[:])
}

// String implements fmt.Stringer.
func (f Felt) String() string {
	return f.Hex()
}

// IsZero reports whether f is the field's zero element.
func (f Felt) IsZero() bool {
	return f.v.IsZero()
}

// Equal reports whether f and o represent the same field element.
func (f Felt) Equal(o Felt) bool {
	return f.v.Eq(&o.v)
}

// Add returns f + o mod P.
func (f Felt) Add(o Felt) Felt {
	var r uint256.Int
	r.AddMod(&f.v, &o.v, modulus)
	return Felt{r}
}

// Sub returns f - o mod P.
func (f Felt) Sub(o Felt) Felt {
	if f.v.Cmp(&o.v) >= 0 {
		var r uint256.Int
		r.Sub(&f.v, &o.v)
		return Felt{r}
	}
	var diff, r uint256.Int
	diff.Sub(&o.v, &f.v)
	r.Sub(modulus, &diff)
	return Felt{r}
}

// Mul returns f * o mod P.
func (f Felt) Mul(o Felt) Felt {
	var r uint256.Int
	r.MulMod(&f.v, &o.v, modulus)
	return Felt{r}
}

// Exp returns f raised to the exponent e, reduced mod P, via square-and-multiply.
func (f Felt) Exp(e *uint256.Int) Felt {
	result := One
	base := f
	exp := new(uint256.Int).Set(e)
	zero := new(uint256.Int)
	for exp.Cmp(zero) > 0 {
		if exp.IsOdd() {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		exp.Rsh(exp, 1)
	}
	return result
}

// Inverse returns f's multiplicative inverse mod P via Fermat's little
// theorem (f^(P-2) mod P). Panics if f is zero, mirroring division by zero.
func (f Felt) Inverse() Felt {
	if f.IsZero() {
		panic("felt: inverse of zero")
	}
	exp := new(uint256.Int).Sub(modulus, uint256.NewInt(2))
	return f.Exp(exp)
}

// FromBits interprets path as the binary representation of an integer
// (MSB-first, unpadded) and reduces it modulo the field's prime. Unlike
// Bytes, which left-aligns a path within its packed buffer for fixed-size
// edge-path serialization, FromBits right-aligns path's bits as the
// integer's low bits: prefix zero-padding to a byte boundary rather than
// suffix padding. This is what makes FromBits the inverse of ViewBits (the
// `felt(path)` function referenced throughout spec.md §4.1's edge hashing).
func FromBits(path BitPath) Felt {
	if len(path) == 0 {
		return Zero
	}
	pad := (8 - len(path)%8) % 8
	padded := make(BitPath, pad+len(path))
	copy(padded[pad:], path)
	b := bitsToBytes(padded)
	return FromBEBytes(b)
}

// ViewBits returns the MSB-first PathBits-bit view of f used to index into
// the trie: the low PathBits bits of its 256-bit canonical big-endian
// representation.
func (f Felt) ViewBits() BitPath {
	b := f.ToBEBytes()
	full := bytesToBits(b[:])
	return full[len(full)-PathBits:]
}

// MustFromHex parses a "0x"-prefixed or bare hex string into a Felt. It
// panics on malformed input; callers handling untrusted input should decode
// with encoding/hex themselves and call FromBEBytes.
func MustFromHex(s string) Felt {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("felt: invalid hex %q: %v", s, err))
	}
	return FromBEBytes(b)
}
