package auth

import (
	"encoding/hex"
	"testing"
)

func TestGenerateToken(t *testing.T) {
	a, b := GenerateToken(), GenerateToken()

	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if _, err := hex.DecodeString(a); err != nil {
		t.Errorf("token is not hex: %v", err)
	}
	if a == b {
		t.Error("expected distinct tokens")
	}
}
