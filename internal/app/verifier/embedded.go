package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"group-mail/pkg/logger"
)

// claimMismatch compares the statement embedded in a proof with the expected
// one, message section first. It returns "" when both sections match.
func claimMismatch(embedded []*big.Int, expected []string, messageLimbs int) (string, error) {
	want, err := ParsePublicInputs(expected)
	if err != nil {
		return "", fmt.Errorf("expected signals: %w", err)
	}
	if len(embedded) != len(want) {
		return fmt.Sprintf("embedded %d signals, expected %d", len(embedded), len(want)), nil
	}

	split := min(messageLimbs, len(want))
	if !equalScalars(embedded[:split], want[:split]) {
		return "embedded message differs", nil
	}
	if !equalScalars(embedded[split:], want[split:]) {
		return "embedded key list differs", nil
	}
	return "", nil
}

func equalScalars(a, b []*big.Int) bool {
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			return false
		}
	}
	return true
}

// SnarkJSBundleVerifier accepts {"proof": ..., "publicSignals": [...]}: the
// embedded signals must equal the expected ones and the proof must verify
// over them.
type SnarkJSBundleVerifier struct {
	keys         *KeyCache[*VerifyingKey]
	messageLimbs int
	logger       *logger.Logger
}

func NewSnarkJSBundleVerifier(source KeySource, messageLimbs int, l *logger.Logger) *SnarkJSBundleVerifier {
	return &SnarkJSBundleVerifier{
		keys:         NewKeyCache(source, ParseVerifyingKey),
		messageLimbs: messageLimbs,
		logger:       l,
	}
}

func (v *SnarkJSBundleVerifier) Verify(ctx context.Context, proof []byte, publicInputs []string) (ok bool, err error) {
	defer guard(&ok, &err)

	var bundle SnarkJSBundle
	if err := json.Unmarshal(proof, &bundle); err != nil {
		return false, fmt.Errorf("%w: %v", ErrJSONParse, err)
	}

	embedded, err := ParsePublicInputs(bundle.PublicSignals)
	if err != nil {
		return false, err
	}

	vk, err := v.keys.Get()
	if err != nil {
		return false, err
	}
	if len(embedded)+1 != len(vk.IC) {
		return false, invalidf("%d embedded signals for a key expecting %d", len(embedded), vk.NbPublic())
	}

	mismatch, err := claimMismatch(embedded, publicInputs, v.messageLimbs)
	if err != nil {
		return false, err
	}
	if mismatch != "" {
		v.logger.WithContext(ctx).Infof("Proof statement rejected: %s", mismatch)
		return false, nil
	}

	p, err := bundle.Proof.Decode()
	if err != nil {
		return false, err
	}

	return VerifyGroth16(vk, p, embedded)
}
