package reasoncodes

type ReasonCode string

const (
	Accepted ReasonCode = "Accepted"

	ErrUnmarshal          ReasonCode = "UnmarshalError"
	ErrInvalidRequest     ReasonCode = "InvalidRequest"
	ErrRequestTooLarge    ReasonCode = "RequestTooLarge"
	ErrProofRejected      ReasonCode = "ProofRejected"
	ErrInvalidProofFormat ReasonCode = "InvalidProofFormat"
	ErrVerifierResolution ReasonCode = "VerifierResolutionError"
	ErrKeyFetch           ReasonCode = "KeyFetchError"
	ErrKeyData            ReasonCode = "KeyDataError"
	ErrGroupTooLarge      ReasonCode = "GroupTooLarge"
	ErrEmptyGroup         ReasonCode = "EmptyGroup"
	ErrLimbOverflow       ReasonCode = "LimbOverflow"
	ErrStorage            ReasonCode = "StorageError"
	ErrDelivery           ReasonCode = "DeliveryError"
	ErrInternal           ReasonCode = "InternalError"
)
