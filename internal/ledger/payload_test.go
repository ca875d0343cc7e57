package ledger_test

import (
	"testing"

	"github.com/peterokwara/private-blockchain/internal/ledger"
)

func TestPayload_roundTrip(t *testing.T) {
	want := ledger.StarPayload{
		Owner:   "0x96216849c49358B10257cb55b28eA603c874b05E",
		Message: "0x96216849c49358B10257cb55b28eA603c874b05E",
		Star: ledger.Star{
			Declination:    "68° 52' 56.9",
			RightAscension: "16h 29m 1.0s",
			Story:          "Found it while testing",
		},
	}

	body, err := ledger.EncodePayload(want)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ledger.DecodePayload(body)
	if err != nil {
		t.Fatal(err)
	}
	if *got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *got, want)
	}
}

func TestDecodePayload_rejectsBadInput(t *testing.T) {
	if _, err := ledger.DecodePayload("not hex at all"); err == nil {
		t.Error("expected error for non-hex body")
	}
	// Valid hex, but not a JSON payload.
	if _, err := ledger.DecodePayload("deadbeef"); err == nil {
		t.Error("expected error for non-JSON body")
	}
}
