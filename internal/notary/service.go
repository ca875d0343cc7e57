// Package notary implements the ownership-proof protocol and the submit
// workflow that gates appends to the star ledger.
//
// A client requests a challenge for its address, signs it with the key
// controlling that address, and submits address, challenge, signature and a
// star record. The service verifies the time window and the signature, seals
// the record into the ledger, and serves decoded queries over the chain.
package notary

import (
	"context"
	"fmt"
	"time"

	"github.com/peterokwara/private-blockchain/internal/ledger"
	"go.uber.org/zap"
)

// Service owns the submit workflow and the query layer over a Ledger.
type Service struct {
	ledger   ledger.Ledger
	verifier SignatureVerifier
	logger   *zap.Logger

	now func() time.Time
}

// NewService creates a notary Service. Pass nil for verifier to use the
// EthereumVerifier.
func NewService(l ledger.Ledger, verifier SignatureVerifier, logger *zap.Logger) *Service {
	if verifier == nil {
		verifier = EthereumVerifier{}
	}
	return &Service{
		ledger:   l,
		verifier: verifier,
		logger:   logger,
		now:      time.Now,
	}
}

// RequestChallenge issues a challenge string for the given address.
func (s *Service) RequestChallenge(address string) string {
	ch := IssueChallenge(address, s.now())
	s.logger.Debug("challenge issued", zap.String("address", address))
	return ch
}

// SubmitStar verifies the signed challenge and, on success, seals the star
// into the ledger. now is captured once so the window check and the signature
// check cannot race against each other. Failures propagate with their exact
// kind; nothing is retried or collapsed into a generic error.
func (s *Service) SubmitStar(ctx context.Context, address, challengeStr, signature string, star ledger.Star) (*ledger.Entry, error) {
	now := s.now()

	if err := VerifySubmission(s.verifier, address, challengeStr, signature, now); err != nil {
		s.logger.Info("star submission rejected",
			zap.String("address", address),
			zap.Error(err),
		)
		return nil, err
	}

	ch, err := parseChallenge(challengeStr)
	if err != nil {
		return nil, err
	}

	body, err := ledger.EncodePayload(ledger.StarPayload{
		Owner:   address,
		Message: ch.Address,
		Star:    star,
	})
	if err != nil {
		return nil, err
	}

	entry, err := s.ledger.Append(ctx, body)
	if err != nil {
		return nil, err
	}

	s.logger.Info("star sealed",
		zap.String("owner", address),
		zap.Int("position", entry.Position),
		zap.String("hash", entry.Hash),
	)
	return entry, nil
}

// StarsByOwner returns the decoded payloads of every entry owned by address,
// in ascending position order. Genesis has no owner and is always excluded.
// An owner with no stars gets an empty slice, not an error.
func (s *Service) StarsByOwner(ctx context.Context, address string) ([]*ledger.StarPayload, error) {
	entries, err := s.ledger.Entries(ctx)
	if err != nil {
		return nil, err
	}

	stars := []*ledger.StarPayload{}
	for _, e := range entries {
		if e.Position == 0 {
			continue
		}
		p, err := ledger.DecodePayload(e.Body)
		if err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", e.Position, err)
		}
		if p.Owner == address {
			stars = append(stars, p)
		}
	}
	return stars, nil
}

// EntryByHash returns the sealed entry with the given hash.
func (s *Service) EntryByHash(ctx context.Context, h string) (*ledger.Entry, error) {
	return s.ledger.ByHash(ctx, h)
}

// EntryByPosition returns the sealed entry at the given position.
func (s *Service) EntryByPosition(ctx context.Context, position int) (*ledger.Entry, error) {
	return s.ledger.ByPosition(ctx, position)
}

// Height returns the chain height.
func (s *Service) Height(ctx context.Context) (int, error) {
	return s.ledger.Height(ctx)
}

// ValidateChain walks the whole chain and reports every inconsistency.
func (s *Service) ValidateChain(ctx context.Context) ([]ledger.ValidationError, error) {
	return s.ledger.Validate(ctx)
}
