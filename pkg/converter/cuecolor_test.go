package converter

import (
	"testing"
)

func TestResolveCueColor(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		nmlType  string
		cueName  string
		expected RGB
		rule     CueColorRule
	}{
		{"explicit wins", "#010203", "1", "Intro", RGB{1, 2, 3}, ColorExplicit},
		{"bad explicit falls through", "#zz", "1", "", RGB{230, 40, 40}, ColorByType},
		{"fade in", "", "1", "Intro", RGB{230, 40, 40}, ColorByType},
		{"loop", "", "5", "", RGB{224, 100, 27}, ColorByType},
		{"generic type uses name", "", "0", "Intro", RGB{195, 175, 4}, ColorByName},
		{"normalized name", "", "0", "Build-Up", RGB{16, 177, 118}, ColorByName},
		{"spaced name", "", "0", "CUE 2", RGB{255, 18, 123}, ColorByName},
		{"unnamed", "", "0", UnnamedCue, DefaultCueColor, ColorDefault},
		{"unknown name", "", "0", "my cue", DefaultCueColor, ColorDefault},
		{"nothing", "", "", "", DefaultCueColor, ColorDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := ResolveCueColor(tt.explicit, tt.nmlType, tt.cueName)
			if got != tt.expected || rule != tt.rule {
				t.Errorf("ResolveCueColor() = %v (%v), want %v (%v)", got, rule, tt.expected, tt.rule)
			}
		})
	}
}

func TestCueColorRules(t *testing.T) {
	if _, ok := CueColorByExplicit(""); ok {
		t.Error("empty explicit color should not match")
	}
	if _, ok := CueColorByType("0"); ok {
		t.Error("generic cue type should not match")
	}
	if c, ok := CueColorByName("Drop"); !ok || c != (RGB{222, 68, 207}) {
		t.Errorf("CueColorByName(Drop) = %v, %v", c, ok)
	}
	if c, ok := CueColorByName("Chorus"); !ok || c != (RGB{255, 0, 127}) {
		t.Errorf("CueColorByName(Chorus) = %v, %v", c, ok)
	}
	if got := NormalizeCueName("Build Up-2"); got != "buildup2" {
		t.Errorf("NormalizeCueName() = %q", got)
	}
	if DefaultCueColor != (RGB{48, 90, 255}) {
		t.Errorf("DefaultCueColor = %v", DefaultCueColor)
	}
	if ColorByName.String() != "by-name" {
		t.Errorf("String() = %q", ColorByName.String())
	}
}

func TestNearestCueType(t *testing.T) {
	tests := []struct {
		name     string
		color    RGB
		expected string
	}{
		{"exact red", RGB{230, 40, 40}, "1"},
		{"near red", RGB{240, 30, 30}, "1"},
		{"exact magenta", RGB{255, 18, 123}, "2"},
		{"exact cyan", RGB{0, 224, 255}, "3"},
		{"exact orange", RGB{224, 100, 27}, "5"},
		{"exact blue", RGB{48, 90, 255}, "0"},
		{"near kaki", RGB{182, 192, 0}, "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearestCueType(tt.color); got != tt.expected {
				t.Errorf("NearestCueType(%v) = %q, want %q", tt.color, got, tt.expected)
			}
		})
	}
}
