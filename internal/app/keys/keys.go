// Package keys resolves user ids to their published RSA public keys.
package keys

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/cryptobyte"
)

const rsaAlgorithm = "ssh-rsa"

var (
	// ErrNetwork is the only retryable failure.
	ErrNetwork            = errors.New("key host unreachable")
	ErrNonSuccessResponse = errors.New("key host returned non-success status")
	ErrMalformedKeyList   = errors.New("malformed key listing")
	ErrMalformedKeyData   = errors.New("malformed key data")
	ErrUnsupportedKeyType = errors.New("unsupported key type")
)

// RSAPublicKey holds big-endian exponent and modulus bytes, modulus without sign padding.
type RSAPublicKey struct {
	Exponent []byte
	Modulus  []byte
}

// ParseKeyList extracts the RSA keys of an authorized_keys style listing in the
// order they appear. Entries of other algorithms are skipped.
func ParseKeyList(listing string) ([]RSAPublicKey, error) {
	var out []RSAPublicKey

	scanner := bufio.NewScanner(strings.NewReader(listing))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; scanner.Scan(); line++ {
		entry := strings.TrimSpace(scanner.Text())
		if entry == "" {
			continue
		}

		fields := strings.Fields(entry)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d has no key body", ErrMalformedKeyList, line)
		}
		if fields[0] != rsaAlgorithm {
			continue
		}

		blob, err := base64.StdEncoding.DecodeString(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedKeyData, line, err)
		}

		key, err := ParseWireKey(blob)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, key)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKeyList, err)
	}

	return out, nil
}

// ParseWireKey decodes an ssh-rsa public key blob: three uint32 length-prefixed
// fields (algorithm name, exponent, modulus) and nothing after them.
func ParseWireKey(blob []byte) (RSAPublicKey, error) {
	s := cryptobyte.String(blob)

	var algorithm, exponent, modulus cryptobyte.String
	if !readField(&s, &algorithm) {
		return RSAPublicKey{}, fmt.Errorf("%w: bad algorithm field", ErrMalformedKeyData)
	}
	if string(algorithm) != rsaAlgorithm {
		return RSAPublicKey{}, fmt.Errorf("%w: %q", ErrUnsupportedKeyType, string(algorithm))
	}
	if !readField(&s, &exponent) {
		return RSAPublicKey{}, fmt.Errorf("%w: bad exponent field", ErrMalformedKeyData)
	}
	if !readField(&s, &modulus) {
		return RSAPublicKey{}, fmt.Errorf("%w: bad modulus field", ErrMalformedKeyData)
	}
	if !s.Empty() {
		return RSAPublicKey{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformedKeyData, len(s))
	}

	// mpint sign padding, at most one byte
	if modulus[0] == 0x00 {
		modulus = modulus[1:]
	}
	if len(modulus) == 0 {
		return RSAPublicKey{}, fmt.Errorf("%w: empty modulus", ErrMalformedKeyData)
	}

	return RSAPublicKey{
		Exponent: append([]byte(nil), exponent...),
		Modulus:  append([]byte(nil), modulus...),
	}, nil
}

func readField(s *cryptobyte.String, out *cryptobyte.String) bool {
	var n uint32
	return s.ReadUint32(&n) && n > 0 && s.ReadBytes((*[]byte)(out), int(n))
}
