package theme

import (
	"os"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct{ v, lo, hi, want int }{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestInitSymbolsASCII(t *testing.T) {
	t.Setenv("SITESEARCH_ASCII_SYMBOLS", "1")
	InitSymbols()
	defer func() {
		os.Unsetenv("SITESEARCH_ASCII_SYMBOLS")
		InitSymbols()
	}()
	if SymbolSuccess != "[OK]" || SymbolCursor != ">" {
		t.Errorf("ascii symbols not applied: %q %q", SymbolSuccess, SymbolCursor)
	}
}

func TestInitSymbolsUnicode(t *testing.T) {
	t.Setenv("SITESEARCH_ASCII_SYMBOLS", "")
	t.Setenv("LANG", "en_US.UTF-8")
	InitSymbols()
	if SymbolSuccess != "✓" {
		t.Errorf("SymbolSuccess = %q, want check mark", SymbolSuccess)
	}
}
