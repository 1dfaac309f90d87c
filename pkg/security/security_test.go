package security

import (
	"strings"
	"testing"
)

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		p, err := GeneratePassword(8)
		if err != nil {
			t.Fatalf("GeneratePassword: %v", err)
		}
		if len(p) != 8 {
			t.Fatalf("len(%q) = %d, want 8", p, len(p))
		}
		for _, r := range p {
			if !strings.ContainsRune(passwordAlphabet, r) {
				t.Fatalf("password %q contains %q outside the alphabet", p, r)
			}
		}
		seen[p] = true
	}
	if len(seen) < 2 {
		t.Fatalf("20 generated passwords produced %d distinct values", len(seen))
	}

	// Anything shorter than 8 is bumped up, not honored.
	p, err := GeneratePassword(3)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if len(p) != 8 {
		t.Fatalf("len(%q) = %d, want 8", p, len(p))
	}

	p, err = GeneratePassword(12)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if len(p) != 12 {
		t.Fatalf("len(%q) = %d, want 12", p, len(p))
	}
}

func TestGenerateLogin(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ali Valiyev", "ali_valiyev"},
		{"  Zulayho  ", "zulayho"},
		{"O'ktam", "o_ktam"},
		{"Ali--Vali", "ali_vali"},
		{"Ali  2", "ali_2"},
		{"***", "user"},
		{"", "user"},
	}

	for _, tt := range tests {
		if got := GenerateLogin(tt.name); got != tt.want {
			t.Errorf("GenerateLogin(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  salom  ", "salom"},
		{"a\tb", "ab"},
		{"line1\nline2", "line1line2"},
		{"toza matn", "toza matn"},
		{"\x00\x1b", ""},
	}

	for _, tt := range tests {
		if got := SanitizeText(tt.in); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
