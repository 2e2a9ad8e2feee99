package normalize

import (
	"math"
	"testing"
)

func TestDecodeAmount(t *testing.T) {
	got := DecodeAmount(map[string]any{"units": "1500000", "nanos": float64(500000000)})
	if got != 1500000.5 {
		t.Fatalf("unexpected amount %v", got)
	}
}

func TestDecodeAmountPartial(t *testing.T) {
	if got := DecodeAmount(map[string]any{"units": "250"}); got != 250 {
		t.Fatalf("unexpected amount %v", got)
	}
	if got := DecodeAmount(map[string]any{"nanos": float64(250000000)}); got != 0.25 {
		t.Fatalf("unexpected amount %v", got)
	}
	if got := DecodeAmount(nil); got != 0 {
		t.Fatalf("expected 0 for nil, got %v", got)
	}
	if got := DecodeAmount("1500000"); got != 0 {
		t.Fatalf("expected 0 for non-map, got %v", got)
	}
}

func TestFormatAmountDefaultCurrency(t *testing.T) {
	got := FormatAmount(100, "")
	want := FormatAmount(100, DefaultCurrency)
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPercentageChange(t *testing.T) {
	if got := PercentageChange(150, 100); got != 50 {
		t.Fatalf("unexpected change %v", got)
	}
	if got := PercentageChange(50, 100); got != -50 {
		t.Fatalf("unexpected change %v", got)
	}
}

func TestPercentageChangeZeroPrevious(t *testing.T) {
	got := PercentageChange(math.Pi, 0)
	if got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
