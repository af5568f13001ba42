package verifier

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidProofFormat marks structurally invalid input: malformed
	// encodings, wrong input counts, points off the curve, non-canonical field
	// elements. A well-formed proof that does not verify is not an error.
	ErrInvalidProofFormat = errors.New("invalid proof format")
	ErrJSONParse          = fmt.Errorf("%w: json parse error", ErrInvalidProofFormat)
	ErrKeySource          = errors.New("verification key unavailable")
)

func invalidf(format string, v ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProofFormat, fmt.Sprintf(format, v...))
}

// guard turns a panic inside a verification into ErrInvalidProofFormat.
func guard(ok *bool, err *error) {
	if r := recover(); r != nil {
		*ok = false
		*err = invalidf("internal fault: %v", r)
	}
}
