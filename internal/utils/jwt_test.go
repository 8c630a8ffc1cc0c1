package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenPairRoundTrip(t *testing.T) {
	userID := uuid.New()

	pair, err := GenerateTokenPair("secret", userID, "vendor", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate pair: %v", err)
	}

	access, err := ParseToken("secret", pair.Access, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Failed to parse access token: %v", err)
	}
	if access.UserID != userID.String() {
		t.Errorf("Expected user_id %s, got %s", userID, access.UserID)
	}
	if access.Role != "vendor" {
		t.Errorf("Expected role vendor, got %s", access.Role)
	}
	if access.ID == "" {
		t.Error("Expected a jti on the access token")
	}

	refresh, err := ParseToken("secret", pair.Refresh, TokenTypeRefresh)
	if err != nil {
		t.Fatalf("Failed to parse refresh token: %v", err)
	}
	if refresh.ID == access.ID {
		t.Error("Access and refresh tokens must not share a jti")
	}
}

func TestParseTokenRejectsWrongType(t *testing.T) {
	pair, err := GenerateTokenPair("secret", uuid.New(), "traveler", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate pair: %v", err)
	}

	if _, err := ParseToken("secret", pair.Access, TokenTypeRefresh); err == nil {
		t.Error("Expected access token to fail refresh-type validation")
	}
	if _, err := ParseToken("secret", pair.Refresh, TokenTypeAccess); err == nil {
		t.Error("Expected refresh token to fail access-type validation")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "traveler", TokenTypeAccess, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := ParseToken("other-secret", token, TokenTypeAccess); err == nil {
		t.Error("Expected token signed with a different secret to be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", uuid.New(), "traveler", TokenTypeAccess, -time.Minute)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := ParseToken("secret", token, TokenTypeAccess); err == nil {
		t.Error("Expected expired token to be rejected")
	}
}
