package felt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeltArithmeticRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(0))

	for i := 0; i < 64; i++ {
		var raw [32]byte
		r.Read(raw[:])
		f := FromBEBytes(raw[:])

		back := f.ToBEBytes()
		roundTripped := FromBEBytes(back[:])
		assert.True(t, f.Equal(roundTripped), "round-trip through bytes must be stable")
	}
}

func TestFeltAddSubInverse(t *testing.T) {
	a := FromUint64(17)
	b := FromUint64(9)

	sum := a.Add(b)
	assert.True(t, sum.Sub(b).Equal(a), "(a+b)-b must equal a")
	assert.True(t, sum.Sub(a).Equal(b), "(a+b)-a must equal b")
}

func TestFeltSubWraps(t *testing.T) {
	a := FromUint64(3)
	b := FromUint64(5)

	diff := a.Sub(b)
	assert.False(t, diff.IsZero(), "3-5 mod P must not be zero")
	assert.True(t, diff.Add(b).Equal(a), "wrapped subtraction must still satisfy (a-b)+b == a")
}

func TestFeltMulIdentity(t *testing.T) {
	a := FromUint64(424242)
	assert.True(t, a.Mul(One).Equal(a), "a*1 must equal a")
	assert.True(t, a.Mul(Zero).IsZero(), "a*0 must be zero")
}

func TestFeltInverse(t *testing.T) {
	a := FromUint64(7)
	inv := a.Inverse()
	assert.True(t, a.Mul(inv).Equal(One), "a * a^-1 must equal 1")
}

func TestFeltInverseOfZeroPanics(t *testing.T) {
	assert.Panics(t, func() {
		Zero.Inverse()
	})
}

func TestFeltHexRoundTrip(t *testing.T) {
	a := FromUint64(0xdeadbeef)
	parsed := MustFromHex(a.Hex())
	assert.True(t, a.Equal(parsed))
}

func TestFeltViewBitsRoundTrip(t *testing.T) {
	a := FromUint64(0b1011)
	bits := a.ViewBits()
	require.Len(t, bits, PathBits)

	back := FromBits(bits)
	assert.True(t, a.Equal(back), "ViewBits/FromBits must round-trip")
}

func TestFeltFromBitsEmpty(t *testing.T) {
	assert.True(t, FromBits(nil).IsZero())
}
