package layout

import "testing"

func TestTierForWidth(t *testing.T) {
	tests := []struct {
		width int
		want  Tier
	}{
		{0, TierNarrow},
		{119, TierNarrow},
		{120, TierSplit},
		{199, TierSplit},
		{200, TierWide},
		{400, TierWide},
	}

	for _, tt := range tests {
		if got := TierForWidth(tt.width); got != tt.want {
			t.Errorf("TierForWidth(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hell…"},
		{"hello", 0, ""},
		{"日本語テキスト", 5, "日本…"},
		{"abc", 1, "…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncateCellsDropsOversizedSuffix(t *testing.T) {
	if got := TruncateCells("abcdef", 2, "..."); got != "ab" {
		t.Errorf("TruncateCells = %q, want %q", got, "ab")
	}
}

func TestCenter(t *testing.T) {
	if got := Center(80, 20); got != 30 {
		t.Errorf("Center(80, 20) = %d, want 30", got)
	}
	if got := Center(10, 20); got != 0 {
		t.Errorf("Center(10, 20) = %d, want 0", got)
	}
}
