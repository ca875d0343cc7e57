package notary

import "errors"

var (
	// ErrMalformedChallenge is returned when a challenge string does not have
	// exactly three colon-separated fields with an integer timestamp.
	ErrMalformedChallenge = errors.New("malformed challenge")

	// ErrChallengeExpired is returned when the validity window has elapsed.
	ErrChallengeExpired = errors.New("challenge expired")

	// ErrBadSignature is returned when the signature does not recover the
	// claimed address.
	ErrBadSignature = errors.New("invalid signature")
)
