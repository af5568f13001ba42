package verifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// SnarkJSProof is the proof.json layout written by snarkjs.
type SnarkJSProof struct {
	PiA      []string   `json:"pi_a"`
	PiB      [][]string `json:"pi_b"`
	PiC      []string   `json:"pi_c"`
	Protocol string     `json:"protocol,omitempty"`
	Curve    string     `json:"curve,omitempty"`
}

// SnarkJSVerificationKey is the verification_key.json layout written by snarkjs.
type SnarkJSVerificationKey struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	VkAlpha1 []string   `json:"vk_alpha_1"`
	VkBeta2  [][]string `json:"vk_beta_2"`
	VkGamma2 [][]string `json:"vk_gamma_2"`
	VkDelta2 [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

// SnarkJSBundle carries a proof together with the public signals it claims.
type SnarkJSBundle struct {
	Proof         SnarkJSProof `json:"proof"`
	PublicSignals []string     `json:"publicSignals"`
}

type Proof struct {
	A bn254.G1Affine
	B bn254.G2Affine
	C bn254.G1Affine
}

type VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta  bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	IC    []bn254.G1Affine
}

// NbPublic is the number of public inputs the key accepts.
func (vk *VerifyingKey) NbPublic() int {
	return len(vk.IC) - 1
}

func ParseProof(data []byte) (*Proof, error) {
	var raw SnarkJSProof
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJSONParse, err)
	}
	return raw.Decode()
}

// Decode validates every point of the proof.
func (sp SnarkJSProof) Decode() (*Proof, error) {
	if sp.Protocol != "" && sp.Protocol != "groth16" {
		return nil, invalidf("unsupported protocol %q", sp.Protocol)
	}

	a, err := parseG1(sp.PiA)
	if err != nil {
		return nil, fmt.Errorf("pi_a: %w", err)
	}
	b, err := parseG2(sp.PiB)
	if err != nil {
		return nil, fmt.Errorf("pi_b: %w", err)
	}
	c, err := parseG1(sp.PiC)
	if err != nil {
		return nil, fmt.Errorf("pi_c: %w", err)
	}

	return &Proof{A: a, B: b, C: c}, nil
}

func (p *Proof) SnarkJS() SnarkJSProof {
	return SnarkJSProof{
		PiA:      g1Strings(&p.A),
		PiB:      g2Strings(&p.B),
		PiC:      g1Strings(&p.C),
		Protocol: "groth16",
		Curve:    "bn128",
	}
}

// ParseVerifyingKey decodes a snarkjs verification key. A bad key is a server
// problem, so its errors never carry ErrInvalidProofFormat; KeyCache adds
// ErrKeySource.
func ParseVerifyingKey(data []byte) (*VerifyingKey, error) {
	var raw SnarkJSVerificationKey
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	vk, err := raw.Decode()
	if err != nil {
		return nil, errors.New(err.Error())
	}
	return vk, nil
}

func (sk SnarkJSVerificationKey) Decode() (*VerifyingKey, error) {
	if sk.Protocol != "" && sk.Protocol != "groth16" {
		return nil, fmt.Errorf("unsupported protocol %q", sk.Protocol)
	}
	if curve := strings.ToLower(sk.Curve); curve != "" && curve != "bn128" && curve != "bn254" {
		return nil, fmt.Errorf("unsupported curve %q", sk.Curve)
	}
	if len(sk.IC) == 0 {
		return nil, fmt.Errorf("empty IC")
	}
	if sk.NPublic != 0 && sk.NPublic != len(sk.IC)-1 {
		return nil, fmt.Errorf("nPublic %d does not match %d IC points", sk.NPublic, len(sk.IC))
	}

	var (
		vk  VerifyingKey
		err error
	)
	if vk.Alpha, err = parseG1(sk.VkAlpha1); err != nil {
		return nil, fmt.Errorf("vk_alpha_1: %w", err)
	}
	if vk.Beta, err = parseG2(sk.VkBeta2); err != nil {
		return nil, fmt.Errorf("vk_beta_2: %w", err)
	}
	if vk.Gamma, err = parseG2(sk.VkGamma2); err != nil {
		return nil, fmt.Errorf("vk_gamma_2: %w", err)
	}
	if vk.Delta, err = parseG2(sk.VkDelta2); err != nil {
		return nil, fmt.Errorf("vk_delta_2: %w", err)
	}

	vk.IC = make([]bn254.G1Affine, len(sk.IC))
	for i, point := range sk.IC {
		if vk.IC[i], err = parseG1(point); err != nil {
			return nil, fmt.Errorf("IC[%d]: %w", i, err)
		}
	}

	return &vk, nil
}

func (vk *VerifyingKey) SnarkJS() SnarkJSVerificationKey {
	ic := make([][]string, len(vk.IC))
	for i := range vk.IC {
		ic[i] = g1Strings(&vk.IC[i])
	}

	return SnarkJSVerificationKey{
		Protocol: "groth16",
		Curve:    "bn128",
		NPublic:  vk.NbPublic(),
		VkAlpha1: g1Strings(&vk.Alpha),
		VkBeta2:  g2Strings(&vk.Beta),
		VkGamma2: g2Strings(&vk.Gamma),
		VkDelta2: g2Strings(&vk.Delta),
		IC:       ic,
	}
}
