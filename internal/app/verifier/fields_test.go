package verifier

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	for _, s := range []string{"", "+1", "-1", " 1", "1 ", "0x10", "1e3", "１"} {
		_, ok := parseDecimal(s)
		assert.False(t, ok, "%q", s)
	}

	v, ok := parseDecimal("00042")
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Int64())
}

func TestParseScalarCanonical(t *testing.T) {
	r := fr.Modulus()

	_, err := parseScalar(r.String())
	assert.ErrorIs(t, err, ErrInvalidProofFormat)

	_, err = parseScalar(new(big.Int).Add(r, big.NewInt(5)).String())
	assert.ErrorIs(t, err, ErrInvalidProofFormat)

	v, err := parseScalar(new(big.Int).Sub(r, big.NewInt(1)).String())
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(new(big.Int).Sub(r, big.NewInt(1))))
}

func TestParseFpCanonical(t *testing.T) {
	_, err := parseFp(fp.Modulus().String())
	assert.ErrorIs(t, err, ErrInvalidProofFormat)
}

func TestParseG1(t *testing.T) {
	_, _, g1, _ := bn254.Generators()
	coords := g1Strings(&g1)

	p, err := parseG1(coords)
	require.NoError(t, err)
	assert.True(t, p.Equal(&g1))

	p, err = parseG1(coords[:2])
	require.NoError(t, err)
	assert.True(t, p.Equal(&g1))

	tests := []struct {
		name   string
		coords []string
	}{
		{name: "projective z=0", coords: []string{coords[0], coords[1], "0"}},
		{name: "projective z=2", coords: []string{coords[0], coords[1], "2"}},
		{name: "infinity", coords: []string{"0", "0", "1"}},
		{name: "snarkjs infinity", coords: []string{"0", "1", "0"}},
		{name: "off curve", coords: []string{coords[0], "3", "1"}},
		{name: "short", coords: []string{coords[0]}},
		{name: "not decimal", coords: []string{"x", coords[1]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseG1(tt.coords)
			assert.ErrorIs(t, err, ErrInvalidProofFormat)
		})
	}
}

func TestParseG2(t *testing.T) {
	_, _, _, g2 := bn254.Generators()
	coords := g2Strings(&g2)

	p, err := parseG2(coords)
	require.NoError(t, err)
	assert.True(t, p.Equal(&g2))

	swapped := [][]string{{coords[0][1], coords[0][0]}, coords[1], coords[2]}
	_, err = parseG2(swapped)
	assert.ErrorIs(t, err, ErrInvalidProofFormat)

	_, err = parseG2([][]string{coords[0], coords[1], {"0", "0"}})
	assert.ErrorIs(t, err, ErrInvalidProofFormat)

	_, err = parseG2([][]string{coords[0], {coords[1][0]}})
	assert.ErrorIs(t, err, ErrInvalidProofFormat)
}

func TestVerifyGroth16CountCheckedBeforePairing(t *testing.T) {
	_, _, g1, g2 := bn254.Generators()
	vk := &VerifyingKey{Alpha: g1, Beta: g2, Gamma: g2, Delta: g2, IC: []bn254.G1Affine{g1, g1}}
	proof := &Proof{A: g1, B: g2, C: g1}

	_, err := VerifyGroth16(vk, proof, nil)
	assert.ErrorIs(t, err, ErrInvalidProofFormat)

	_, err = VerifyGroth16(vk, proof, []*big.Int{big.NewInt(1), big.NewInt(2)})
	assert.ErrorIs(t, err, ErrInvalidProofFormat)
}

func TestGuardRecoversPanics(t *testing.T) {
	run := func() (ok bool, err error) {
		defer guard(&ok, &err)
		var vk *VerifyingKey
		_ = vk.IC[0]
		return true, nil
	}

	ok, err := run()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidProofFormat)
}
