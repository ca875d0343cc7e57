package notary

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubVerifier lets tests force a verification outcome.
type stubVerifier struct {
	ok  bool
	err error
}

func (s stubVerifier) Verify(_, _, _ string) (bool, error) { return s.ok, s.err }

func TestIssueChallenge_format(t *testing.T) {
	ch := IssueChallenge("addr1", time.Unix(1000, 0))
	assert.Equal(t, "addr1:1000:starRegistry", ch)
}

func TestIssueChallenge_truncatesToWholeSeconds(t *testing.T) {
	ch := IssueChallenge("addr1", time.Unix(1000, 999_999_999))
	assert.Equal(t, "addr1:1000:starRegistry", ch)
}

func TestVerifySubmission_malformed(t *testing.T) {
	now := time.Unix(2000, 0)
	ok := stubVerifier{ok: true}

	for _, challenge := range []string{
		"",
		"addr1",
		"addr1:1000",
		"addr1:1000:starRegistry:extra",
		"addr1:not-a-number:starRegistry",
	} {
		err := VerifySubmission(ok, "addr1", challenge, "sig", now)
		assert.ErrorIs(t, err, ErrMalformedChallenge, "challenge %q", challenge)
	}
}

func TestVerifySubmission_windowBoundary(t *testing.T) {
	ok := stubVerifier{ok: true}
	challenge := IssueChallenge("addr1", time.Unix(1000, 0))

	// elapsed 299s: inside the window.
	err := VerifySubmission(ok, "addr1", challenge, "sig", time.Unix(1299, 0))
	assert.NoError(t, err)

	// elapsed 300s: the boundary is inclusive on the failure side.
	err = VerifySubmission(ok, "addr1", challenge, "sig", time.Unix(1300, 0))
	assert.ErrorIs(t, err, ErrChallengeExpired)
}

func TestVerifySubmission_badSignature(t *testing.T) {
	challenge := IssueChallenge("addr1", time.Unix(1000, 0))
	err := VerifySubmission(stubVerifier{ok: false}, "addr1", challenge, "sig", time.Unix(1001, 0))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifySubmission_verifierFaultPropagatesDistinctly(t *testing.T) {
	fault := errors.New("verifier timeout")
	challenge := IssueChallenge("addr1", time.Unix(1000, 0))

	err := VerifySubmission(stubVerifier{err: fault}, "addr1", challenge, "sig", time.Unix(1001, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, fault)
	assert.NotErrorIs(t, err, ErrBadSignature)
}

func TestParseChallenge_fields(t *testing.T) {
	ch, err := parseChallenge("addr1:1000:starRegistry")
	require.NoError(t, err)
	assert.Equal(t, "addr1", ch.Address)
	assert.Equal(t, int64(1000), ch.IssuedAt)
}
