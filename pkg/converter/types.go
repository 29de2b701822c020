// Package converter provides conversion between Traktor NML and Rekordbox XML libraries
package converter

import (
	"fmt"
	"log/slog"
	"time"
)

// RGB is a cue or track color triplet
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as #RRGGBB
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Location is a file path decomposed the way NML stores it
type Location struct {
	Volume string // volume name, e.g. "Macintosh HD"
	Dir    string // directory using the "/:" delimiter, e.g. "/:Users/:me/:"
	File   string // file name
}

// Key returns the playlist reference key used by NML PRIMARYKEY elements
func (l Location) Key() string {
	return l.Volume + l.Dir + l.File
}

// TempoMarker anchors a fixed-tempo grid at a position
type TempoMarker struct {
	Start float64 // seconds
	BPM   float64
}

// CuePoint represents a cue or loop on a track
type CuePoint struct {
	Name   string
	Type   string  // cue type code in the target format's vocabulary
	Start  float64 // seconds
	Length float64 // seconds, > 0 marks a loop
	Hotcue int     // pad slot, -1 when unassigned
	Color  *RGB
	Grid   *TempoMarker // set on NML beatgrid cues
}

// IsLoop reports whether the cue spans a region
func (c CuePoint) IsLoop() bool {
	return c.Length > 0
}

// End returns the loop end in seconds
func (c CuePoint) End() float64 {
	return c.Start + c.Length
}

// Track is the intermediate shape both converters read from and write to.
// Vocabulary fields (Color, Tonality, dates) hold target-format values.
type Track struct {
	ID           string
	Title        string
	Artist       string
	Album        string
	Genre        string
	Comment      string
	BPM          float64
	PlayTime     float64 // seconds
	BitRate      int     // kbps
	PlayCount    int
	Rating       int
	LastPlayed   string
	DateAdded    string
	DateModified string
	Color        string
	Tonality     string
	KeyIndex     int // 0-23, DefaultKeyIndex when unknown
	Location     Location
	Cues         []CuePoint
	Tempos       []TempoMarker
}

// NodeType distinguishes folders from playlists
type NodeType int

const (
	NodeFolder NodeType = iota
	NodePlaylist
)

// PlaylistNode is one node of a playlist tree
type PlaylistNode struct {
	Type     NodeType
	Name     string
	Children []*PlaylistNode // folders only
	Entries  []string        // playlists only, location keys
}

// Options tunes document generation
type Options struct {
	PlaylistName          string
	Program               string
	Now                   func() time.Time
	InferCueTypeFromColor bool
	Logger                *slog.Logger
}

// Converter handles format conversions
type Converter struct {
	opts Options
}

// New creates a new Converter, filling unset options with defaults
func New(opts Options) *Converter {
	if opts.PlaylistName == "" {
		opts.PlaylistName = DefaultPlaylistName
	}
	if opts.Program == "" {
		opts.Program = DefaultProgram
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Converter{opts: opts}
}

// Options returns the effective options
func (c *Converter) Options() Options {
	return c.opts
}
