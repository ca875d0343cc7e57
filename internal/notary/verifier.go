package notary

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureVerifier checks that a signature over message was produced by the
// key controlling address. It returns false for a failed verification and a
// non-nil error only for transport-level faults, which callers surface
// distinctly from a bad signature.
type SignatureVerifier interface {
	Verify(address, message, signature string) (bool, error)
}

// EthereumVerifier verifies personal-sign signatures by recovering the signer
// address from the signature.
type EthereumVerifier struct{}

// Verify implements SignatureVerifier. The signature is the 65-byte
// personal-sign form, hex-encoded with a 0x prefix. Undecodable or
// wrong-length signatures verify as false rather than erroring.
func (EthereumVerifier) Verify(address, message, signature string) (bool, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return false, nil
	}

	// Accept both the raw recovery id and the legacy 27/28 form.
	v := make([]byte, len(sig))
	copy(v, sig)
	if v[crypto.RecoveryIDOffset] >= 27 {
		v[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), v)
	if err != nil {
		return false, nil
	}

	recovered := crypto.PubkeyToAddress(*pub)
	return recovered == common.HexToAddress(address), nil
}

// SignChallenge produces the personal-sign signature an EthereumVerifier
// accepts. It is used by the CLI and by tests; the notary server never signs.
func SignChallenge(key *ecdsa.PrivateKey, message string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		return "", fmt.Errorf("sign challenge: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}
