package converter

import (
	"strings"
)

// Named cue colors
var cuePalette = map[string]RGB{
	"pink":      {222, 68, 207},
	"orchidea":  {180, 50, 255},
	"violet":    {170, 114, 255},
	"mauve":     {100, 115, 255},
	"blue":      {48, 90, 255},
	"sky":       {80, 180, 255},
	"cyan":      {0, 224, 255},
	"turquoise": {31, 163, 146},
	"celadon":   {16, 177, 118},
	"green":     {40, 226, 20},
	"lime":      {165, 225, 22},
	"kaki":      {180, 190, 4},
	"yellow":    {195, 175, 4},
	"orange":    {224, 100, 27},
	"red":       {230, 40, 40},
	"magenta":   {255, 18, 123},
	"rose":      {255, 0, 127},
}

// NML cue type code -> color name
var cueTypeColors = map[string]string{
	"1": "red",    // fade in
	"2": "green",  // fade out
	"3": "cyan",   // load
	"4": "lime",   // grid
	"5": "orange", // loop
}

// Normalized cue name -> color name
var cueNameColors = map[string]string{
	"start":    "yellow",
	"intro":    "yellow",
	"break":    "turquoise",
	"bridge":   "turquoise",
	"chorus":   "rose",
	"verse":    "mauve",
	"up":       "celadon",
	"buildup":  "celadon",
	"drop":     "pink",
	"down":     "sky",
	"outro":    "violet",
	"cue1":     "rose",
	"cue2":     "magenta",
	"cue3":     "mauve",
	"cue4":     "sky",
	"autogrid": "kaki",
}

// Palette color -> NML cue type, used when classifying Rekordbox colors
var colorCueTypes = map[string]string{
	"pink": "0", "orchidea": "0", "violet": "0", "mauve": "0",
	"blue": "0", "sky": "0", "cyan": "3", "turquoise": "3",
	"celadon": "4", "green": "5", "lime": "4", "kaki": "4",
	"yellow": "0", "orange": "5", "red": "1", "magenta": "2",
}

// DefaultCueColor is used when no rule matches
var DefaultCueColor = cuePalette["blue"]

// UnnamedCue is the name given to cues without one
const UnnamedCue = "n.n."

// CueColorRule identifies which rule produced a cue color
type CueColorRule int

const (
	ColorExplicit CueColorRule = iota
	ColorByType
	ColorByName
	ColorDefault
)

func (r CueColorRule) String() string {
	switch r {
	case ColorExplicit:
		return "explicit"
	case ColorByType:
		return "by-type"
	case ColorByName:
		return "by-name"
	default:
		return "default"
	}
}

// PaletteColor looks up a named cue color
func PaletteColor(name string) (RGB, bool) {
	c, ok := cuePalette[name]
	return c, ok
}

// NormalizeCueName lower-cases a name and strips spaces and hyphens
func NormalizeCueName(name string) string {
	name = strings.ToLower(name)
	return strings.NewReplacer(" ", "", "-", "").Replace(name)
}

// CueColorByExplicit parses an NML COLOR attribute
func CueColorByExplicit(color string) (RGB, bool) {
	if color == "" {
		return RGB{}, false
	}
	return ParseHexColor(color)
}

// CueColorByType maps a non-generic NML cue type to its color
func CueColorByType(nmlType string) (RGB, bool) {
	name, ok := cueTypeColors[nmlType]
	if !ok {
		return RGB{}, false
	}
	return PaletteColor(name)
}

// CueColorByName maps a conventional cue name ("Intro", "Build-Up") to its color
func CueColorByName(name string) (RGB, bool) {
	if name == "" || name == UnnamedCue {
		return RGB{}, false
	}
	color, ok := cueNameColors[NormalizeCueName(name)]
	if !ok {
		return RGB{}, false
	}
	return PaletteColor(color)
}

// ResolveCueColor walks explicit -> type -> name -> default
func ResolveCueColor(explicit, nmlType, name string) (RGB, CueColorRule) {
	if c, ok := CueColorByExplicit(explicit); ok {
		return c, ColorExplicit
	}
	if c, ok := CueColorByType(nmlType); ok {
		return c, ColorByType
	}
	if c, ok := CueColorByName(name); ok {
		return c, ColorByName
	}
	return DefaultCueColor, ColorDefault
}

// NearestCueType classifies a color by the closest palette entry
func NearestCueType(c RGB) string {
	best, bestType := -1, CueTypeDefault
	for name, ctype := range colorCueTypes {
		p := cuePalette[name]
		dr := int(c.R) - int(p.R)
		dg := int(c.G) - int(p.G)
		db := int(c.B) - int(p.B)
		dist := dr*dr + dg*dg + db*db
		if best < 0 || dist < best || (dist == best && ctype < bestType) {
			best, bestType = dist, ctype
		}
	}
	return bestType
}
