package ledger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// genesisMarker is the fixed payload of the genesis entry, stored in the same
// encoded form as every other body.
const genesisMarker = "First entry in the chain - Genesis entry"

// Star is the astronomical record a client registers.
type Star struct {
	Declination    string `json:"declination"`
	RightAscension string `json:"right_ascension"`
	Story          string `json:"story"`
}

// StarPayload is the decoded body of a non-genesis entry. Message preserves
// the exact address substring the client used when requesting its challenge.
type StarPayload struct {
	Owner   string `json:"owner"`
	Message string `json:"message"`
	Star    Star   `json:"star"`
}

// EncodePayload serializes a payload into the hex form stored on an entry.
func EncodePayload(p StarPayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// DecodePayload is the exact inverse of EncodePayload.
func DecodePayload(body string) (*StarPayload, error) {
	raw, err := hex.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("decode payload hex: %w", err)
	}
	p := &StarPayload{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}

func encodeGenesisBody() string {
	return hex.EncodeToString([]byte(genesisMarker))
}
