// Package limbs splits big-endian integers into fixed-width limbs, least
// significant limb first, the layout circom circuits use for values wider than
// the BN254 scalar field.
package limbs

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrOverflow     = errors.New("value does not fit in limb vector")
	ErrInvalidShape = errors.New("invalid limb vector shape")
)

// Vector is a little-limb-endian sequence of limbs.
type Vector []*big.Int

// Encode splits value into exactly count limbs of width bits each.
func Encode(value []byte, width, count int) (Vector, error) {
	if width <= 0 || count <= 0 {
		return nil, fmt.Errorf("%w: width %d, count %d", ErrInvalidShape, width, count)
	}

	rest := new(big.Int).SetBytes(value)
	if rest.BitLen() > width*count {
		return nil, fmt.Errorf("%w: %d bits into %dx%d", ErrOverflow, rest.BitLen(), count, width)
	}

	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	out := make(Vector, count)
	for i := range out {
		out[i] = new(big.Int).And(rest, mask)
		rest.Rsh(rest, uint(width))
	}

	return out, nil
}

// Decode reassembles the integer encoded by v.
func Decode(v Vector, width int) (*big.Int, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: width %d", ErrInvalidShape, width)
	}

	acc := new(big.Int)
	for i := len(v) - 1; i >= 0; i-- {
		limb := v[i]
		if limb == nil || limb.Sign() < 0 || limb.BitLen() > width {
			return nil, fmt.Errorf("%w: limb %d out of range", ErrInvalidShape, i)
		}
		acc.Lsh(acc, uint(width))
		acc.Or(acc, limb)
	}

	return acc, nil
}

// Strings renders every limb in decimal.
func (v Vector) Strings() []string {
	out := make([]string, len(v))
	for i, limb := range v {
		out[i] = limb.String()
	}
	return out
}
