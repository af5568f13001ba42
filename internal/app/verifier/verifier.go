// Package verifier decides whether a group membership proof holds for a
// public-signal vector. Malformed input is an error; a well-formed proof that
// does not verify is (false, nil).
package verifier

import (
	"context"
	"fmt"

	"group-mail/pkg/logger"
)

type Verifier interface {
	Verify(ctx context.Context, proof []byte, publicInputs []string) (bool, error)
}

type Strategy string

const (
	// StrategyGroth16 checks a bare snarkjs proof against the server-built signals.
	StrategyGroth16 Strategy = "groth16"
	// StrategyEmbeddedSnarkJS expects {"proof", "publicSignals"} and compares the embedded statement.
	StrategyEmbeddedSnarkJS Strategy = "embedded_snarkjs"
	// StrategyEmbeddedGnark expects a base64 borsh gnark proof blob.
	StrategyEmbeddedGnark Strategy = "embedded_gnark"
)

type Config struct {
	Strategy     Strategy
	KeyPath      string
	Workers      int
	MessageLimbs int
}

// New builds the verifier selected by config, wrapped in a bounded Pool.
func New(config Config, l *logger.Logger) (*Pool, error) {
	if config.KeyPath == "" {
		return nil, fmt.Errorf("%w: no verification key path configured", ErrKeySource)
	}
	source := NewFileKeySource(config.KeyPath)

	var v Verifier
	switch config.Strategy {
	case StrategyGroth16, "":
		v = NewGroth16Verifier(source, l)
	case StrategyEmbeddedSnarkJS:
		v = NewSnarkJSBundleVerifier(source, config.MessageLimbs, l)
	case StrategyEmbeddedGnark:
		v = NewGnarkBlobVerifier(source, config.MessageLimbs, l)
	default:
		return nil, fmt.Errorf("unknown verifier strategy %q", config.Strategy)
	}

	l.Infof("Verifier strategy %q with key %s", config.Strategy, config.KeyPath)
	return NewPool(v, config.Workers), nil
}
