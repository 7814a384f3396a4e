package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewIDIsLowercaseBase32(t *testing.T) {
	runID, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(runID) != 26 {
		t.Fatalf("expected 26-character id, got %d (%q)", len(runID), runID)
	}
	for _, r := range runID {
		if (r < 'a' || r > 'z') && (r < '2' || r > '7') {
			t.Fatalf("unexpected character %q in id %q", r, runID)
		}
	}
}

func TestNewIDDecodesToRandomUUID(t *testing.T) {
	runID, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	raw, err := encoding.DecodeString(strings.ToUpper(runID))
	if err != nil {
		t.Fatalf("decode id: %v", err)
	}
	value, err := uuid.FromBytes(raw)
	if err != nil {
		t.Fatalf("uuid from bytes: %v", err)
	}
	if value.Version() != 4 || value.Variant() != uuid.RFC4122 {
		t.Fatalf("expected RFC 4122 v4 uuid, got version %d variant %s", value.Version(), value.Variant())
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		runID, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if seen[runID] {
			t.Fatalf("duplicate id %q", runID)
		}
		seen[runID] = true
	}
}
