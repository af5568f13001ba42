package gate

import (
	"errors"

	"group-mail/internal/app/keys"
	"group-mail/internal/app/limbs"
	"group-mail/internal/app/signal"
	"group-mail/internal/app/verifier"
	"group-mail/pkg/reasoncodes"
)

var ErrInvalidSubmission = errors.New("invalid submission")

// ReasonFor labels err with the reason code reported to clients and audit rows.
func ReasonFor(err error) reasoncodes.ReasonCode {
	switch {
	case err == nil:
		return reasoncodes.Accepted
	case errors.Is(err, ErrInvalidSubmission):
		return reasoncodes.ErrInvalidRequest
	case errors.Is(err, signal.ErrEmptyGroup):
		return reasoncodes.ErrEmptyGroup
	case errors.Is(err, signal.ErrGroupTooLarge):
		return reasoncodes.ErrGroupTooLarge
	case errors.Is(err, limbs.ErrOverflow):
		return reasoncodes.ErrLimbOverflow
	case errors.Is(err, keys.ErrNetwork), errors.Is(err, keys.ErrNonSuccessResponse):
		return reasoncodes.ErrKeyFetch
	case errors.Is(err, keys.ErrMalformedKeyList),
		errors.Is(err, keys.ErrMalformedKeyData),
		errors.Is(err, keys.ErrUnsupportedKeyType):
		return reasoncodes.ErrKeyData
	case errors.Is(err, verifier.ErrKeySource):
		return reasoncodes.ErrVerifierResolution
	case errors.Is(err, verifier.ErrInvalidProofFormat):
		return reasoncodes.ErrInvalidProofFormat
	default:
		return reasoncodes.ErrInternal
	}
}
