package verifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"math/big"
	"strings"

	"group-mail/pkg/logger"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/near/borsh-go"
)

const CurveID = ecc.BN254

// ProofBlob is a gnark Groth16 proof shipped with its public witness.
type ProofBlob struct {
	Proof         groth16.Proof
	PublicWitness witness.Witness
}

type proofBlobWire struct {
	Proof         []byte `borsh:"proof"`
	PublicWitness []byte `borsh:"public_witness"`
}

func (pb *ProofBlob) SerializeBorsh() ([]byte, error) {
	var proofBuf bytes.Buffer
	if _, err := pb.Proof.WriteTo(&proofBuf); err != nil {
		return nil, err
	}

	var witnessBuf bytes.Buffer
	if _, err := pb.PublicWitness.WriteTo(&witnessBuf); err != nil {
		return nil, err
	}

	return borsh.Serialize(proofBlobWire{
		Proof:         proofBuf.Bytes(),
		PublicWitness: witnessBuf.Bytes(),
	})
}

// EncodeBase64 is the text form submitted over HTTP.
func (pb *ProofBlob) EncodeBase64() (string, error) {
	raw, err := pb.SerializeBorsh()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeProofBlob decodes a blob whose public witness must hold exactly
// nbPublic elements. Length prefixes are checked against the bytes actually
// present before gnark sizes any slice from them.
func DecodeProofBlob(serialized []byte, nbPublic int) (*ProofBlob, error) {
	var wire proofBlobWire
	if err := borsh.Deserialize(&wire, serialized); err != nil {
		return nil, invalidf("blob: %v", err)
	}

	if err := checkProofLayout(wire.Proof); err != nil {
		return nil, err
	}
	if err := checkWitnessLayout(wire.PublicWitness, nbPublic); err != nil {
		return nil, err
	}

	proof := groth16.NewProof(CurveID)
	if _, err := proof.ReadFrom(bytes.NewReader(wire.Proof)); err != nil {
		return nil, invalidf("proof: %v", err)
	}

	publicWitness, err := witness.New(CurveID.ScalarField())
	if err != nil {
		return nil, invalidf("witness: %v", err)
	}
	if _, err := publicWitness.ReadFrom(bytes.NewReader(wire.PublicWitness)); err != nil {
		return nil, invalidf("witness: %v", err)
	}

	return &ProofBlob{Proof: proof, PublicWitness: publicWitness}, nil
}

// witness encoding: nbPublic | nbSecret | vector length | 32-byte elements
const witnessHeaderSize = 12

func checkWitnessLayout(b []byte, nbPublic int) error {
	if len(b) < witnessHeaderSize {
		return invalidf("witness: %d bytes is shorter than its header", len(b))
	}
	public := binary.BigEndian.Uint32(b[0:4])
	secret := binary.BigEndian.Uint32(b[4:8])
	n := binary.BigEndian.Uint32(b[8:12])

	if secret != 0 || public != n {
		return invalidf("witness: not a public witness (%d public, %d secret, %d elements)", public, secret, n)
	}
	if uint64(n) != uint64(nbPublic) {
		return invalidf("%d embedded signals for a key expecting %d", n, nbPublic)
	}
	if uint64(len(b)) != witnessHeaderSize+uint64(n)*fr.Bytes {
		return invalidf("witness: %d bytes for %d elements", len(b), n)
	}
	return nil
}

// checkProofLayout walks Ar, Bs and Krs using each point's own compression
// flag, then bounds the commitment count by the bytes left.
func checkProofLayout(b []byte) error {
	offset := 0
	point := func(compressed, uncompressed int) bool {
		if offset >= len(b) {
			return false
		}
		size := uncompressed
		if b[offset]&0b11000000 != 0 {
			size = compressed
		}
		offset += size
		return offset <= len(b)
	}

	if !point(bn254.SizeOfG1AffineCompressed, bn254.SizeOfG1AffineUncompressed) ||
		!point(bn254.SizeOfG2AffineCompressed, bn254.SizeOfG2AffineUncompressed) ||
		!point(bn254.SizeOfG1AffineCompressed, bn254.SizeOfG1AffineUncompressed) {
		return invalidf("proof: truncated")
	}
	if len(b)-offset < 4 {
		return invalidf("proof: truncated")
	}

	commitments := uint64(binary.BigEndian.Uint32(b[offset : offset+4]))
	remaining := uint64(len(b) - offset - 4)
	// each commitment plus the trailing proof of knowledge
	if (commitments+1)*bn254.SizeOfG1AffineCompressed > remaining {
		return invalidf("proof: %d commitments do not fit in %d bytes", commitments, remaining)
	}
	return nil
}

// ParseGnarkVerifyingKey reads a key written by groth16.VerifyingKey.WriteTo.
func ParseGnarkVerifyingKey(data []byte) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(CurveID)
	if _, err := vk.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return vk, nil
}

// GnarkBlobVerifier accepts a base64 borsh ProofBlob. The claimed signals are
// its public witness; the verifying key always comes from the server.
type GnarkBlobVerifier struct {
	keys         *KeyCache[groth16.VerifyingKey]
	messageLimbs int
	logger       *logger.Logger
}

func NewGnarkBlobVerifier(source KeySource, messageLimbs int, l *logger.Logger) *GnarkBlobVerifier {
	return &GnarkBlobVerifier{
		keys:         NewKeyCache(source, ParseGnarkVerifyingKey),
		messageLimbs: messageLimbs,
		logger:       l,
	}
}

func (v *GnarkBlobVerifier) Verify(ctx context.Context, proof []byte, publicInputs []string) (ok bool, err error) {
	defer guard(&ok, &err)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(proof)))
	if err != nil {
		return false, invalidf("base64: %v", err)
	}

	vk, err := v.keys.Get()
	if err != nil {
		return false, err
	}

	blob, err := DecodeProofBlob(raw, vk.NbPublicWitness())
	if err != nil {
		return false, err
	}

	vector, isBn254 := blob.PublicWitness.Vector().(fr.Vector)
	if !isBn254 || len(vector) != vk.NbPublicWitness() {
		return false, invalidf("public witness does not match the verifying key")
	}

	embedded := make([]*big.Int, len(vector))
	for i := range vector {
		embedded[i] = vector[i].BigInt(new(big.Int))
	}

	mismatch, err := claimMismatch(embedded, publicInputs, v.messageLimbs)
	if err != nil {
		return false, err
	}
	if mismatch != "" {
		v.logger.WithContext(ctx).Infof("Proof statement rejected: %s", mismatch)
		return false, nil
	}

	if err := groth16.Verify(blob.Proof, vk, blob.PublicWitness); err != nil {
		v.logger.WithContext(ctx).Debugf("gnark verification failed: %v", err)
		return false, nil
	}
	return true, nil
}

