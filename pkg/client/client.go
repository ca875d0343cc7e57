// Package client provides the Go SDK for the star notary HTTP API: requesting
// ownership challenges, submitting signed star records, and querying the
// sealed chain.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotFound is returned by lookups whose target entry does not exist.
var ErrNotFound = errors.New("entry not found")

// Entry mirrors a sealed ledger entry as served by the notary.
type Entry struct {
	Position int    `json:"position"`
	SealedAt int64  `json:"sealed_at"`
	PrevHash string `json:"prev_hash,omitempty"`
	Body     string `json:"body"`
	Hash     string `json:"hash"`
}

// Star is the astronomical record carried by a submission.
type Star struct {
	Declination    string `json:"declination"`
	RightAscension string `json:"right_ascension"`
	Story          string `json:"story"`
}

// StarRecord is a decoded, owner-attributed star as returned by StarsByOwner.
type StarRecord struct {
	Owner   string `json:"owner"`
	Message string `json:"message"`
	Star    Star   `json:"star"`
}

// Overview holds the chain height and tip hash.
type Overview struct {
	Height int    `json:"height"`
	Tip    string `json:"tip"`
}

// ValidationError is one chain inconsistency reported by Validate.
type ValidationError struct {
	Position int    `json:"position"`
	Kind     string `json:"kind"`
}

// ValidationReport is the result of a full chain validation walk.
type ValidationReport struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

// Client is the notary SDK entry point.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client connected to baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RequestChallenge fetches a challenge string for the given address.
func (c *Client) RequestChallenge(ctx context.Context, address string) (string, error) {
	var resp struct {
		Challenge string `json:"challenge"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/challenge",
		map[string]string{"address": address}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Challenge, nil
}

// SubmitRequest is the payload for SubmitStar.
type SubmitRequest struct {
	Address   string `json:"address"`
	Challenge string `json:"challenge"`
	Signature string `json:"signature"`
	Star      Star   `json:"star"`
}

// SubmitStar submits a signed challenge and star record; on success it
// returns the sealed entry.
func (c *Client) SubmitStar(ctx context.Context, req SubmitRequest) (*Entry, error) {
	entry := &Entry{}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/stars", req, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// StarsByOwner returns the decoded star records owned by address, oldest first.
func (c *Client) StarsByOwner(ctx context.Context, address string) ([]StarRecord, error) {
	var stars []StarRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/stars/"+address, nil, &stars); err != nil {
		return nil, err
	}
	return stars, nil
}

// EntryByPosition fetches the sealed entry at the given position.
func (c *Client) EntryByPosition(ctx context.Context, position int) (*Entry, error) {
	entry := &Entry{}
	path := fmt.Sprintf("/api/v1/entries/%d", position)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// EntryByHash fetches the sealed entry with the given hash.
func (c *Client) EntryByHash(ctx context.Context, hash string) (*Entry, error) {
	entry := &Entry{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/entries/hash/"+hash, nil, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Ledger fetches the chain height and tip hash.
func (c *Client) Ledger(ctx context.Context) (*Overview, error) {
	o := &Overview{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/ledger", nil, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate asks the notary for a full chain validation report.
func (c *Client) Validate(ctx context.Context) (*ValidationReport, error) {
	r := &ValidationReport{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/ledger/validate", nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

// doJSON performs one JSON round trip against the notary API. Server error
// payloads surface as wrapped errors carrying the server's stable message;
// a 404 maps to ErrNotFound.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			return fmt.Errorf("notary error %d: %s", resp.StatusCode, payload.Error)
		}
		return fmt.Errorf("notary error %d", resp.StatusCode)
	}

	if respBody != nil {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
