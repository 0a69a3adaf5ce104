package notify

import (
	"strings"
	"testing"

	"fotomagic/internal/domain"
)

func TestRateForm(t *testing.T) {
	cases := []struct {
		amount int
		kind   domain.RateKind
		want   string
	}{
		{1, domain.RateRestore, "реставрация"},
		{2, domain.RateRestore, "реставрации"},
		{5, domain.RateRestore, "реставраций"},
		{11, domain.RateRestore, "реставраций"},
		{21, domain.RateRestore, "реставрация"},
		{22, domain.RateRestore, "реставрации"},
		{112, domain.RateRestore, "реставраций"},
		{1, domain.RateAnimate, "оживление"},
		{3, domain.RateAnimate, "оживления"},
		{10, domain.RateAnimate, "оживлений"},
	}
	for _, tc := range cases {
		if got := RateForm(tc.amount, tc.kind); got != tc.want {
			t.Errorf("RateForm(%d, %s) = %q, want %q", tc.amount, tc.kind, got, tc.want)
		}
	}
}

func TestPurchaseMessage(t *testing.T) {
	msg := PurchaseMessage(10, domain.RateRestore)
	if !strings.Contains(msg, "10 реставраций") {
		t.Fatalf("message = %q", msg)
	}
	if !strings.Contains(msg, "/start") {
		t.Fatalf("message misses restart hint: %q", msg)
	}
}

func TestPurchaseDescriptionTitlesForm(t *testing.T) {
	desc := PurchaseDescription(10, domain.RateRestore, 42)
	if desc != "Покупка 10 Реставраций, ID: 42" {
		t.Fatalf("description = %q", desc)
	}
}

func TestGenerationFailureMessage(t *testing.T) {
	msg := GenerationFailureMessage(domain.CapabilityAnimate, "invalid_aspect_ratio", "unsupported image")
	if !strings.Contains(msg, "оживления") {
		t.Fatalf("message = %q", msg)
	}
	if !strings.Contains(msg, "<code>invalid_aspect_ratio: unsupported image</code>") {
		t.Fatalf("message misses error detail: %q", msg)
	}
}
