package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"group-mail/internal/app/verifier"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// Groth16Fixture is a compiled MembershipCircuit with its keys.
type Groth16Fixture struct {
	ccs       constraint.ConstraintSystem
	pk        groth16.ProvingKey
	vk        groth16.VerifyingKey
	hashLimbs int
	keyLimbs  int
	slots     int
}

func NewGroth16Fixture(hashLimbs, keyLimbs, slots int) (*Groth16Fixture, error) {
	circuit := NewMembershipCircuit(hashLimbs, keyLimbs, slots)

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, err
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, err
	}

	return &Groth16Fixture{
		ccs:       ccs,
		pk:        pk,
		vk:        vk,
		hashLimbs: hashLimbs,
		keyLimbs:  keyLimbs,
		slots:     slots,
	}, nil
}

func (f *Groth16Fixture) NbPublic() int {
	return f.hashLimbs + f.keyLimbs*f.slots
}

// Prove proves membership of the key in the given slot of signals.
func (f *Groth16Fixture) Prove(signals []string, slot int) (groth16.Proof, witness.Witness, error) {
	if len(signals) != f.NbPublic() {
		return nil, nil, fmt.Errorf("fixture expects %d signals, got %d", f.NbPublic(), len(signals))
	}
	if slot < 0 || slot >= f.slots {
		return nil, nil, fmt.Errorf("slot %d out of range", slot)
	}

	values := make([]*big.Int, len(signals))
	for i, s := range signals {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, nil, fmt.Errorf("signal %d is not decimal", i)
		}
		values[i] = v
	}

	assignment := NewMembershipCircuit(f.hashLimbs, f.keyLimbs, f.slots)
	for i, v := range values {
		assignment.Signals[i] = v
	}
	for i := 0; i < f.hashLimbs; i++ {
		assignment.Message[i] = values[i]
	}
	for j := 0; j < f.keyLimbs; j++ {
		assignment.Key[j] = values[f.hashLimbs+slot*f.keyLimbs+j]
	}

	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, err
	}

	proof, err := groth16.Prove(f.ccs, f.pk, fullWitness)
	if err != nil {
		return nil, nil, err
	}

	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, nil, err
	}

	return proof, publicWitness, nil
}

// SnarkJSProof proves and renders the proof the way snarkjs writes proof.json.
func (f *Groth16Fixture) SnarkJSProof(signals []string, slot int) ([]byte, error) {
	proof, _, err := f.Prove(signals, slot)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ToVerifierProof(proof).SnarkJS())
}

// SnarkJSBundle renders {"proof", "publicSignals"} with the proved signals.
func (f *Groth16Fixture) SnarkJSBundle(signals []string, slot int) ([]byte, error) {
	proof, _, err := f.Prove(signals, slot)
	if err != nil {
		return nil, err
	}
	return json.Marshal(verifier.SnarkJSBundle{
		Proof:         ToVerifierProof(proof).SnarkJS(),
		PublicSignals: signals,
	})
}

// GnarkBlob renders the base64 borsh proof blob.
func (f *Groth16Fixture) GnarkBlob(signals []string, slot int) (string, error) {
	proof, publicWitness, err := f.Prove(signals, slot)
	if err != nil {
		return "", err
	}
	blob := verifier.ProofBlob{Proof: proof, PublicWitness: publicWitness}
	return blob.EncodeBase64()
}

func (f *Groth16Fixture) SnarkJSVerifyingKey() ([]byte, error) {
	return json.Marshal(f.VerifyingKey().SnarkJS())
}

func (f *Groth16Fixture) VerifyingKey() *verifier.VerifyingKey {
	vk := f.vk.(*groth16bn254.VerifyingKey)
	return &verifier.VerifyingKey{
		Alpha: vk.G1.Alpha,
		Beta:  vk.G2.Beta,
		Gamma: vk.G2.Gamma,
		Delta: vk.G2.Delta,
		IC:    append(vk.G1.K[:0:0], vk.G1.K...),
	}
}

func (f *Groth16Fixture) GnarkVerifyingKey() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.vk.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ToVerifierProof(proof groth16.Proof) *verifier.Proof {
	p := proof.(*groth16bn254.Proof)
	return &verifier.Proof{A: p.Ar, B: p.Bs, C: p.Krs}
}
