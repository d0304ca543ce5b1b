package theme

import (
	"os"
	"testing"
)

func withDetector(t *testing.T, detector func() bool) {
	original := detectDarkBackground
	detectDarkBackground = detector
	resetAutoTheme()
	t.Cleanup(func() {
		detectDarkBackground = original
		resetAutoTheme()
	})
}

// clearNoColor unsets the color kill switches for the duration of the test.
func clearNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("PANEWATCH_NO_COLOR", "")
	os.Unsetenv("NO_COLOR")
	os.Unsetenv("PANEWATCH_NO_COLOR")
}

func TestCurrentAutoDetection(t *testing.T) {
	clearNoColor(t)
	t.Setenv("PANEWATCH_THEME", "")

	withDetector(t, func() bool { return false })
	if got := Current(); got.Name != CatppuccinLatte.Name {
		t.Fatalf("light background: got %s, want latte", got.Name)
	}

	withDetector(t, func() bool { return true })
	if got := Current(); got.Name != CatppuccinMocha.Name {
		t.Fatalf("dark background: got %s, want mocha", got.Name)
	}
}

func TestAutoThemePanicFallsBackToDark(t *testing.T) {
	clearNoColor(t)
	t.Setenv("PANEWATCH_THEME", "auto")
	withDetector(t, func() bool { panic("no terminal") })

	if got := Current(); got.Name != CatppuccinMocha.Name {
		t.Fatalf("got %s, want mocha", got.Name)
	}
}

func TestFromName(t *testing.T) {
	clearNoColor(t)
	withDetector(t, func() bool { return true })

	tests := []struct {
		name string
		want string
	}{
		{"latte", "latte"},
		{"light", "latte"},
		{"Mocha", "mocha"},
		{"nord", "nord"},
		{"none", "plain"},
		{"unknown-theme", "mocha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromName(tt.name); got.Name != tt.want {
				t.Errorf("FromName(%q) = %s, want %s", tt.name, got.Name, tt.want)
			}
		})
	}
}

func TestNoColorEnabled(t *testing.T) {
	tests := []struct {
		name     string
		noColor  *string
		override string
		want     bool
	}{
		{name: "nothing set", want: false},
		{name: "NO_COLOR present", noColor: ptr(""), want: true},
		{name: "override forces color", noColor: ptr("1"), override: "0", want: false},
		{name: "override disables color", override: "yes", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearNoColor(t)
			if tt.noColor != nil {
				t.Setenv("NO_COLOR", *tt.noColor)
			}
			if tt.override != "" {
				t.Setenv("PANEWATCH_NO_COLOR", tt.override)
			}
			if got := NoColorEnabled(); got != tt.want {
				t.Errorf("NoColorEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromNameHonorsNoColor(t *testing.T) {
	clearNoColor(t)
	t.Setenv("NO_COLOR", "1")
	if got := FromName("nord"); got.Name != Plain.Name {
		t.Fatalf("got %s, want plain", got.Name)
	}
}

func TestThemeColors(t *testing.T) {
	for _, th := range []Theme{CatppuccinMocha, CatppuccinLatte, Nord} {
		t.Run(th.Name, func(t *testing.T) {
			if th.Base == "" || th.Text == "" || th.Green == "" || th.Red == "" {
				t.Error("palette has empty required colors")
			}
		})
	}
}

func TestGlamourStyle(t *testing.T) {
	tests := map[string]Theme{"dark": CatppuccinMocha, "light": CatppuccinLatte, "notty": Plain}
	for want, th := range tests {
		if got := th.GlamourStyle(); got != want {
			t.Errorf("%s.GlamourStyle() = %s, want %s", th.Name, got, want)
		}
	}
}

func TestNewStyles(t *testing.T) {
	for _, th := range []Theme{CatppuccinMocha, Plain} {
		s := NewStyles(th)
		if s.Title.Render("test") == "" {
			t.Errorf("%s: Title style should render", th.Name)
		}
		if s.Display.Added.Render("x") == "" {
			t.Errorf("%s: display styles not set", th.Name)
		}
	}
}

func ptr(s string) *string { return &s }
