package theme

import (
	"testing"

	"github.com/muesli/termenv"

	"github.com/odvcencio/lattice/pkg/ui/backend"
)

func TestForProfile(t *testing.T) {
	tests := []struct {
		profile termenv.Profile
		want    string
	}{
		{termenv.TrueColor, "dark"},
		{termenv.ANSI256, "dark"},
		{termenv.ANSI, "ansi"},
		{termenv.Ascii, "mono"},
	}
	for _, tt := range tests {
		if got := ForProfile(tt.profile).Name; got != tt.want {
			t.Errorf("ForProfile(%v) = %q, want %q", tt.profile, got, tt.want)
		}
	}
}

func TestNamed(t *testing.T) {
	if Named("mono").Name != "mono" {
		t.Error("Named(mono) should return the mono theme")
	}
	if Named("dark").Name != "dark" {
		t.Error("Named(dark) should return the dark theme")
	}
}

func TestNoColorDetectsMono(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if got := Detect().Name; got != "mono" {
		t.Errorf("Detect() with NO_COLOR = %q, want mono", got)
	}
}

func TestMonoUsesNoColors(t *testing.T) {
	th := Mono()
	for r := RoleNormal; r <= RoleScrollbar; r++ {
		s := th.Style(r)
		if s.FG() != backend.ColorDefault || s.BG() != backend.ColorDefault {
			t.Errorf("mono role %d carries a color: fg=%d bg=%d", r, s.FG(), s.BG())
		}
	}
}

func TestSelectionDistinctFromNormal(t *testing.T) {
	for _, th := range []*Theme{Dark(), ANSI(), Mono()} {
		if th.Style(RoleSelection) == th.Style(RoleNormal) {
			t.Errorf("%s: selection must differ from normal text", th.Name)
		}
		if th.Style(RoleFocus) == th.Style(RoleNormal) {
			t.Errorf("%s: focus must differ from normal text", th.Name)
		}
	}
}
