package converter

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents a library file format
type Format string

const (
	FormatNML       Format = "nml"
	FormatRekordbox Format = "rekordbox"
	FormatUnknown   Format = "unknown"
)

// Direction is the conversion context: every mapping and transcoder call
// takes one instead of consulting shared state.
type Direction struct {
	Source Format
	Target Format
}

var (
	NMLToRekordbox = Direction{Source: FormatNML, Target: FormatRekordbox}
	RekordboxToNML = Direction{Source: FormatRekordbox, Target: FormatNML}
)

// Valid reports whether the direction is one of the two supported ones
func (d Direction) Valid() bool {
	return d == NMLToRekordbox || d == RekordboxToNML
}

func (d Direction) String() string {
	return string(d.Source) + " -> " + string(d.Target)
}

// Extension returns the conventional file extension of a format
func (f Format) Extension() string {
	switch f {
	case FormatNML:
		return ".nml"
	case FormatRekordbox:
		return ".xml"
	default:
		return ""
	}
}

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".nml":
		return FormatNML
	case ".xml":
		return FormatRekordbox
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects the format from the document's root element
func DetectFormatFromContent(data []byte) Format {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	switch {
	case bytes.Contains(head, []byte("<NML")):
		return FormatNML
	case bytes.Contains(head, []byte("<DJ_PLAYLISTS")):
		return FormatRekordbox
	default:
		return FormatUnknown
	}
}
