package notary

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// challengeTag is the fixed third field of every challenge string.
const challengeTag = "starRegistry"

// ChallengeWindow is the validity window of a challenge. A submission whose
// elapsed time reaches the window is rejected: 299 seconds passes, 300 fails.
const ChallengeWindow = 300 * time.Second

// IssueChallenge builds the challenge string for an address at the given
// time. The issuance time is embedded in the string, truncated to whole
// seconds, so no server-side challenge state is needed: anyone can mint a
// challenge for any address, but only the key holder can sign it.
func IssueChallenge(address string, now time.Time) string {
	return fmt.Sprintf("%s:%d:%s", address, now.Unix(), challengeTag)
}

// challenge is the parsed form of a challenge string.
type challenge struct {
	Address  string
	IssuedAt int64
}

// parseChallenge splits a challenge string into its three fields. The shape
// must match exactly; addresses never contain colons.
func parseChallenge(s string) (challenge, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return challenge{}, ErrMalformedChallenge
	}
	issuedAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return challenge{}, ErrMalformedChallenge
	}
	return challenge{Address: parts[0], IssuedAt: issuedAt}, nil
}

// VerifySubmission checks a signed challenge for the claimed address at the
// given time. It is a pure predicate: parse, time-window check, then
// signature verification, each failure reported with its own sentinel.
// Verifier transport failures propagate wrapped, never retried — a retry
// under a fresh now could let an expired challenge through.
func VerifySubmission(verifier SignatureVerifier, address, challengeStr, signature string, now time.Time) error {
	ch, err := parseChallenge(challengeStr)
	if err != nil {
		return err
	}

	if now.Unix()-ch.IssuedAt >= int64(ChallengeWindow/time.Second) {
		return ErrChallengeExpired
	}

	ok, err := verifier.Verify(address, challengeStr, signature)
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}
