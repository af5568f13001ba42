package verifier

import (
	"context"
	"math/big"

	"group-mail/pkg/logger"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// VerifyGroth16 checks e(-A, B) · e(alpha, beta) · e(vk_x, gamma) · e(C, delta) == 1
// where vk_x = IC[0] + Σ inputs[i]·IC[i+1]. Points are expected validated.
func VerifyGroth16(vk *VerifyingKey, proof *Proof, inputs []*big.Int) (bool, error) {
	if len(inputs)+1 != len(vk.IC) {
		return false, invalidf("%d public inputs for a key expecting %d", len(inputs), vk.NbPublic())
	}

	var acc bn254.G1Jac
	acc.FromAffine(&vk.IC[0])
	for i, x := range inputs {
		var term bn254.G1Jac
		term.FromAffine(&vk.IC[i+1])
		term.ScalarMultiplication(&term, x)
		acc.AddAssign(&term)
	}

	var vkX, negA bn254.G1Affine
	vkX.FromJacobian(&acc)
	negA.Neg(&proof.A)

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{negA, vk.Alpha, vkX, proof.C},
		[]bn254.G2Affine{proof.B, vk.Beta, vk.Gamma, vk.Delta},
	)
	if err != nil {
		return false, invalidf("pairing: %v", err)
	}
	return ok, nil
}

// Groth16Verifier checks snarkjs proofs against a server-held snarkjs verification key.
type Groth16Verifier struct {
	keys   *KeyCache[*VerifyingKey]
	logger *logger.Logger
}

func NewGroth16Verifier(source KeySource, l *logger.Logger) *Groth16Verifier {
	return &Groth16Verifier{
		keys:   NewKeyCache(source, ParseVerifyingKey),
		logger: l,
	}
}

func (v *Groth16Verifier) Verify(ctx context.Context, proof []byte, publicInputs []string) (ok bool, err error) {
	defer guard(&ok, &err)

	vk, err := v.keys.Get()
	if err != nil {
		return false, err
	}

	inputs, err := ParsePublicInputs(publicInputs)
	if err != nil {
		return false, err
	}
	if len(inputs)+1 != len(vk.IC) {
		return false, invalidf("%d public inputs for a key expecting %d", len(inputs), vk.NbPublic())
	}

	p, err := ParseProof(proof)
	if err != nil {
		return false, err
	}

	ok, err = VerifyGroth16(vk, p, inputs)
	if err == nil && !ok {
		v.logger.WithContext(ctx).Debug("Groth16 pairing check failed")
	}
	return ok, err
}
