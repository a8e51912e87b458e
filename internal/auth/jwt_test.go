package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)

	tok, err := tokens.Generate(42)
	if err != nil {
		t.Fatal(err)
	}
	id, err := tokens.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Errorf("user id = %d, want 42", id)
	}
}

func TestTokensExpired(t *testing.T) {
	tokens := NewTokens("s3cret", time.Minute)
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	tok, err := tokens.Generate(1)
	if err != nil {
		t.Fatal(err)
	}

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := tokens.Parse(tok); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestTokensWrongSecret(t *testing.T) {
	tok, _ := NewTokens("one", 0).Generate(1)
	if _, err := NewTokens("two", 0).Parse(tok); !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		t.Errorf("err = %v, want ErrTokenSignatureInvalid", err)
	}
}

func TestTokensRejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokens("s3cret", 0).Parse(tok); err == nil {
		t.Error("HS512 token accepted")
	}
}

func TestTokensDisabled(t *testing.T) {
	tokens := NewTokens("", 0)
	if tokens.Enabled() {
		t.Fatal("enabled without secret")
	}
	if _, err := tokens.Generate(1); !errors.Is(err, ErrNoSecret) {
		t.Errorf("Generate err = %v", err)
	}
	if _, err := tokens.Parse("x"); !errors.Is(err, ErrNoSecret) {
		t.Errorf("Parse err = %v", err)
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc", "abc"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"Bearer a b", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := ExtractToken(r); got != tt.want {
			t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
