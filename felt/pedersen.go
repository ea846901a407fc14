package felt

import "strconv"

// point is an affine point on the short Weierstrass curve y^2 = x^3 + a*x + b
// (mod P) that backs the Pedersen hash. The zero value is not a valid point;
// use pointInfinity for the identity.
type point struct {
	x, y     Felt
	infinity bool
}

func pointInfinity() point {
	return point{infinity: true}
}

var (
	curveA Felt
	curveB Felt
	genG   point
	genP1  point
	genP2  point
)

func init() {
	curveA = One

	// Fix the generator's coordinates first and solve for b algebraically,
	// sidestepping a modular square root: b = y^2 - x^3 - a*x (mod P).
	genG = point{x: FromUint64(2), y: FromUint64(3)}
	x3 := genG.x.Mul(genG.x).Mul(genG.x)
	curveB = genG.y.Mul(genG.y).Sub(x3).Sub(curveA.Mul(genG.x))

	genP1 = scalarMul(genG, hashToFelt("pedersen-generator-1"))
	genP2 = scalarMul(genG, hashToFelt("pedersen-generator-2"))
}

func pointDouble(p point) point {
	if p.infinity || p.y.IsZero() {
		return pointInfinity()
	}
	// lambda = (3x^2 + a) / (2y)
	num := FromUint64(3).Mul(p.x).Mul(p.x).Add(curveA)
	den := FromUint64(2).Mul(p.y)
	lambda := num.Mul(den.Inverse())
	x3 := lambda.Mul(lambda).Sub(p.x).Sub(p.x)
	y3 := lambda.Mul(p.x.Sub(x3)).Sub(p.y)
	return point{x: x3, y: y3}
}

func pointAdd(p, q point) point {
	if p.infinity {
		return q
	}
	if q.infinity {
		return p
	}
	if p.x.Equal(q.x) {
		if p.y.Equal(q.y) {
			return pointDouble(p)
		}
		// p.x == q.x, p.y == -q.y: p + q = infinity.
		return pointInfinity()
	}
	// lambda = (q.y - p.y) / (q.x - p.x)
	lambda := q.y.Sub(p.y).Mul(q.x.Sub(p.x).Inverse())
	x3 := lambda.Mul(lambda).Sub(p.x).Sub(q.x)
	y3 := lambda.Mul(p.x.Sub(x3)).Sub(p.y)
	return point{x: x3, y: y3}
}

// scalarMul computes k*p via double-and-add over k's PathBits-bit view.
func scalarMul(p point, k Felt) point {
	result := pointInfinity()
	addend := p
	bits := k.ViewBits()
	for i := len(bits) - 1; i >= 0; i-- {
		if bits[i] {
			result = pointAdd(result, addend)
		}
		addend = pointDouble(addend)
	}
	return result
}

// PedersenPairHash is the 2-argument Pedersen compression function, the
// alternate hash mode named in spec.md §4.1.
func PedersenPairHash(a, b Felt) Felt {
	acc := scalarMul(genP1, a)
	acc = pointAdd(acc, scalarMul(genP2, b))
	return acc.x
}

// PedersenManyHash sponges an arbitrary number of field elements into one
// via independently-derived per-position generators, the Pedersen analogue
// of PoseidonManyHash.
func PedersenManyHash(elements ...Felt) Felt {
	acc := genG
	for i, e := range elements {
		gen := scalarMul(genG, hashToFelt(indexedGeneratorSeed(i)))
		acc = pointAdd(acc, scalarMul(gen, e))
	}
	return acc.x
}

func indexedGeneratorSeed(i int) string {
	return "pedersen-many-generator-" + strconv.Itoa(i)
}
