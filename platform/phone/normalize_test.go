package phone

import "testing"

func TestNormalizeE164BrazilianMobile(t *testing.T) {
	got := NormalizeE164("(11) 98765-4321", "BR")
	if got != "+5511987654321" {
		t.Fatalf("expected +5511987654321, got %q", got)
	}
}

func TestNormalizeE164KeepsInternationalPrefix(t *testing.T) {
	got := NormalizeE164(" +55 11 98765-4321 ", "")
	if got != "+5511987654321" {
		t.Fatalf("expected +5511987654321, got %q", got)
	}
}

func TestNormalizeE164ReturnsTrimmedInputWhenUnparsable(t *testing.T) {
	got := NormalizeE164("  ramal 12  ", "BR")
	if got != "ramal 12" {
		t.Fatalf("expected trimmed input, got %q", got)
	}
}

func TestNormalizeE164Empty(t *testing.T) {
	if got := NormalizeE164("   ", "BR"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
