package verifier

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// parseDecimal accepts plain unsigned decimal digits only.
func parseDecimal(s string) (*big.Int, bool) {
	if s == "" || len(s) > 100 {
		return nil, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, false
		}
	}
	return new(big.Int).SetString(s, 10)
}

func parseFp(s string) (fp.Element, error) {
	var e fp.Element

	v, ok := parseDecimal(s)
	if !ok {
		return e, invalidf("coordinate %q is not a decimal integer", s)
	}
	if v.Cmp(fp.Modulus()) >= 0 {
		return e, invalidf("coordinate %q is not a canonical base field element", s)
	}

	e.SetBigInt(v)
	return e, nil
}

func parseScalar(s string) (*big.Int, error) {
	v, ok := parseDecimal(s)
	if !ok {
		return nil, invalidf("public input %q is not a decimal integer", s)
	}
	if v.Cmp(fr.Modulus()) >= 0 {
		return nil, invalidf("public input %q is not a canonical scalar", s)
	}
	return v, nil
}

// ParsePublicInputs decodes decimal scalars in [0, r). No modular reduction is applied.
func ParsePublicInputs(inputs []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(inputs))
	for i, s := range inputs {
		v, err := parseScalar(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseG1 reads [x, y] or [x, y, "1"]; the point at infinity is refused.
func parseG1(coords []string) (bn254.G1Affine, error) {
	var p bn254.G1Affine

	if len(coords) != 2 && len(coords) != 3 {
		return p, invalidf("g1 point needs 2 or 3 coordinates, got %d", len(coords))
	}
	if len(coords) == 3 && !isOne(coords[2]) {
		return p, invalidf("g1 point is not affine-normalized")
	}

	var err error
	if p.X, err = parseFp(coords[0]); err != nil {
		return p, err
	}
	if p.Y, err = parseFp(coords[1]); err != nil {
		return p, err
	}

	if p.IsInfinity() {
		return p, invalidf("g1 point at infinity")
	}
	if !p.IsOnCurve() {
		return p, invalidf("g1 point not on curve")
	}
	return p, nil
}

// parseG2 reads [[x.c0, x.c1], [y.c0, y.c1]] with an optional ["1", "0"] z.
func parseG2(coords [][]string) (bn254.G2Affine, error) {
	var p bn254.G2Affine

	if len(coords) != 2 && len(coords) != 3 {
		return p, invalidf("g2 point needs 2 or 3 coordinates, got %d", len(coords))
	}
	for _, c := range coords {
		if len(c) != 2 {
			return p, invalidf("g2 coordinate needs 2 components, got %d", len(c))
		}
	}
	if len(coords) == 3 && !(isOne(coords[2][0]) && isZero(coords[2][1])) {
		return p, invalidf("g2 point is not affine-normalized")
	}

	var err error
	if p.X.A0, err = parseFp(coords[0][0]); err != nil {
		return p, err
	}
	if p.X.A1, err = parseFp(coords[0][1]); err != nil {
		return p, err
	}
	if p.Y.A0, err = parseFp(coords[1][0]); err != nil {
		return p, err
	}
	if p.Y.A1, err = parseFp(coords[1][1]); err != nil {
		return p, err
	}

	if p.IsInfinity() {
		return p, invalidf("g2 point at infinity")
	}
	if !p.IsOnCurve() {
		return p, invalidf("g2 point not on curve")
	}
	if !p.IsInSubGroup() {
		return p, invalidf("g2 point not in prime order subgroup")
	}
	return p, nil
}

func isOne(s string) bool {
	v, ok := parseDecimal(s)
	return ok && v.Cmp(big.NewInt(1)) == 0
}

func isZero(s string) bool {
	v, ok := parseDecimal(s)
	return ok && v.Sign() == 0
}

func fpString(e *fp.Element) string {
	return e.BigInt(new(big.Int)).String()
}

func g1Strings(p *bn254.G1Affine) []string {
	return []string{fpString(&p.X), fpString(&p.Y), "1"}
}

func g2Strings(p *bn254.G2Affine) [][]string {
	return [][]string{
		{fpString(&p.X.A0), fpString(&p.X.A1)},
		{fpString(&p.Y.A0), fpString(&p.Y.A1)},
		{"1", "0"},
	}
}
