package converter

import (
	"strconv"
	"strings"
)

// Date separators
const (
	NMLDateSeparator       = "/"
	RekordboxDateSeparator = "-"
)

// trackColors maps Rekordbox Colour literals to NML palette indices
var trackColors = []struct {
	hex   string
	index string
}{
	{"0xFF0000", "1"}, // red
	{"0xFFA500", "2"}, // orange
	{"0xFFFF00", "3"}, // yellow
	{"0x00FF00", "4"}, // green
	{"0x0000FF", "5"}, // blue
	{"0xFF007F", "6"}, // rose
	{"0x660099", "7"}, // violet
}

// TrackColorToNML converts a Rekordbox Colour literal to an NML palette index
func TrackColorToNML(hex string) string {
	for _, c := range trackColors {
		if strings.EqualFold(c.hex, hex) {
			return c.index
		}
	}
	return ""
}

// TrackColorToRekordbox converts an NML palette index to a Rekordbox Colour literal
func TrackColorToRekordbox(index string) string {
	for _, c := range trackColors {
		if c.index == index {
			return c.hex
		}
	}
	return ""
}

// TrackColor translates a track color into the direction's target vocabulary
func TrackColor(value string, d Direction) string {
	switch d.Target {
	case FormatNML:
		return TrackColorToNML(value)
	case FormatRekordbox:
		return TrackColorToRekordbox(value)
	}
	return ""
}

// DefaultKeyIndex marks a track without a known key
const DefaultKeyIndex = -1

var tonalities = [24]string{
	"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B",
	"Cm", "Dbm", "Dm", "Ebm", "Em", "Fm", "Gbm", "Gm", "Abm", "Am", "Bbm", "Bm",
}

// Open key codes used by NML INFO/@KEY, same order as tonalities
var keyCodes = [24]string{
	"10d", "11d", "12d", "1d", "2d", "3d", "4d", "5d", "6d", "7d", "8d", "9d",
	"10m", "11m", "12m", "1m", "2m", "3m", "4m", "5m", "6m", "7m", "8m", "9m",
}

// TonalityName returns the Rekordbox tonality for a key index
func TonalityName(index int) string {
	if index < 0 || index >= len(tonalities) {
		return ""
	}
	return tonalities[index]
}

// TonalityIndex returns the key index of a Rekordbox tonality
func TonalityIndex(name string) int {
	for i, t := range tonalities {
		if t == name {
			return i
		}
	}
	return DefaultKeyIndex
}

// EncodeKey returns the NML open key code for a key index
func EncodeKey(index int) string {
	if index < 0 || index >= len(keyCodes) {
		return ""
	}
	return keyCodes[index]
}

// DecodeKey returns the key index for an NML open key code,
// DefaultKeyIndex when the code is unknown
func DecodeKey(code string) int {
	code = strings.ToLower(strings.TrimSpace(code))
	for i, c := range keyCodes {
		if c == code {
			return i
		}
	}
	return DefaultKeyIndex
}

// ParseKeyIndex parses an NML MUSICAL_KEY value
func ParseKeyIndex(value string) int {
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || i < 0 || i >= len(tonalities) {
		return DefaultKeyIndex
	}
	return i
}

// Cue type codes
const (
	CueTypeDefault       = "0"
	NMLCueTypeLoop       = "5"
	RekordboxCueTypeLoop = "4"
)

// CueType translates a cue type code. Only loops survive; every other
// type collapses to the generic cue.
func CueType(code string, d Direction) string {
	switch d.Target {
	case FormatRekordbox:
		if code == NMLCueTypeLoop {
			return RekordboxCueTypeLoop
		}
	case FormatNML:
		if code == RekordboxCueTypeLoop {
			return NMLCueTypeLoop
		}
	}
	return CueTypeDefault
}

// FormatDate rewrites a date between the NML and Rekordbox layouts.
// Input that does not split into three parts is returned unchanged.
func FormatDate(date string, d Direction) string {
	parts := strings.FieldsFunc(date, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return date
	}
	switch d.Target {
	case FormatRekordbox:
		return strings.Join([]string{parts[0], pad2(parts[1]), pad2(parts[2])}, RekordboxDateSeparator)
	case FormatNML:
		return strings.Join(parts, NMLDateSeparator)
	}
	return date
}

func pad2(s string) string {
	if len(s) != 1 {
		return s
	}
	if _, err := strconv.Atoi(s); err != nil {
		return s
	}
	return "0" + s
}

// DateLayout returns the Go time layout of a format's dates
func DateLayout(f Format) string {
	if f == FormatNML {
		return "2006/1/2"
	}
	return "2006-01-02"
}

// ParseHexColor parses "#RRGGBB" or "0xRRGGBB"
func ParseHexColor(s string) (RGB, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	}
	if len(s) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// ParseRGB parses decimal color components as found in POSITION_MARK
func ParseRGB(r, g, b string) (RGB, bool) {
	if r == "" || g == "" || b == "" {
		return RGB{}, false
	}
	var c [3]uint8
	for i, s := range []string{r, g, b} {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
		if err != nil {
			return RGB{}, false
		}
		c[i] = uint8(v)
	}
	return RGB{R: c[0], G: c[1], B: c[2]}, true
}
