package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals the plain password")
	}

	if !Verify("correct horse battery staple", hash) {
		t.Error("Verify rejected the original password")
	}
	if Verify("wrong password", hash) {
		t.Error("Verify accepted a different password")
	}
}

func TestHashToken(t *testing.T) {
	first := HashToken("refresh-token")
	second := HashToken("refresh-token")
	other := HashToken("another-token")

	if first != second {
		t.Error("hashing the same token twice gave different results")
	}
	if first == other {
		t.Error("different tokens hashed to the same value")
	}
	if len(first) != 64 {
		t.Errorf("token hash length = %d, want 64 hex characters", len(first))
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "empty", password: "", want: false},
		{name: "below minimum", password: "1234567", want: false},
		{name: "at minimum", password: "12345678", want: true},
		{name: "long", password: strings.Repeat("a", 60), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePassword(tt.password); got != tt.want {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}
