package converter

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
)

// Rekordbox constants
const (
	RekordboxVersion      = "1.0.0"
	ProductName           = "traktor2rekordbox"
	ProductVersion        = "1.0.0"
	ProductCompany        = "james-see"
	RekordboxRootNode     = "ROOT"
	RekordboxNodeFolder   = "0"
	RekordboxNodeList     = "1"
	RekordboxKeyTypeID    = "0"
	RekordboxHiddenCue    = "-1"
	RekordboxDefaultMetro = "4/4"
)

// RekordboxDocument is the root of a Rekordbox library export
type RekordboxDocument struct {
	XMLName    xml.Name            `xml:"DJ_PLAYLISTS"`
	Version    string              `xml:"Version,attr"`
	Product    RekordboxProduct    `xml:"PRODUCT"`
	Collection RekordboxCollection `xml:"COLLECTION"`
	Playlists  RekordboxPlaylists  `xml:"PLAYLISTS"`
}

type RekordboxProduct struct {
	Name    string `xml:"Name,attr"`
	Version string `xml:"Version,attr"`
	Company string `xml:"Company,attr"`
}

type RekordboxCollection struct {
	Entries string           `xml:"Entries,attr"`
	Tracks  []RekordboxTrack `xml:"TRACK"`
}

type RekordboxTrack struct {
	TrackID       string                  `xml:"TrackID,attr"`
	Name          string                  `xml:"Name,attr"`
	Artist        string                  `xml:"Artist,attr"`
	Album         string                  `xml:"Album,attr"`
	Genre         string                  `xml:"Genre,attr"`
	Kind          string                  `xml:"Kind,attr"`
	Size          string                  `xml:"Size,attr"`
	TotalTime     string                  `xml:"TotalTime,attr"`
	DiscNumber    string                  `xml:"DiscNumber,attr"`
	TrackNumber   string                  `xml:"TrackNumber,attr"`
	Year          string                  `xml:"Year,attr"`
	AverageBpm    string                  `xml:"AverageBpm,attr"`
	DateModified  string                  `xml:"DateModified,attr,omitempty"`
	DateAdded     string                  `xml:"DateAdded,attr"`
	BitRate       string                  `xml:"BitRate,attr"`
	SampleRate    string                  `xml:"SampleRate,attr"`
	Comments      string                  `xml:"Comments,attr"`
	PlayCount     string                  `xml:"PlayCount,attr"`
	LastPlayed    string                  `xml:"LastPlayed,attr,omitempty"`
	Rating        string                  `xml:"Rating,attr"`
	Location      string                  `xml:"Location,attr"`
	Tonality      string                  `xml:"Tonality,attr"`
	Colour        string                  `xml:"Colour,attr,omitempty"`
	Tempos        []RekordboxTempo        `xml:"TEMPO"`
	PositionMarks []RekordboxPositionMark `xml:"POSITION_MARK"`
}

// RekordboxTempo anchors a beatgrid; Inizio is in seconds
type RekordboxTempo struct {
	Inizio  string `xml:"Inizio,attr"`
	Bpm     string `xml:"Bpm,attr"`
	Metro   string `xml:"Metro,attr,omitempty"`
	Battito string `xml:"Battito,attr"`
}

// RekordboxPositionMark is a cue or loop; times are in seconds
type RekordboxPositionMark struct {
	Name  string `xml:"Name,attr"`
	Type  string `xml:"Type,attr"`
	Start string `xml:"Start,attr"`
	End   string `xml:"End,attr,omitempty"`
	Num   string `xml:"Num,attr"`
	Red   string `xml:"Red,attr,omitempty"`
	Green string `xml:"Green,attr,omitempty"`
	Blue  string `xml:"Blue,attr,omitempty"`
}

type RekordboxPlaylists struct {
	Node RekordboxNode `xml:"NODE"`
}

// RekordboxNode is a folder (Type 0) or a playlist (Type 1)
type RekordboxNode struct {
	Type    string                   `xml:"Type,attr"`
	Name    string                   `xml:"Name,attr"`
	Count   string                   `xml:"Count,attr,omitempty"`
	KeyType string                   `xml:"KeyType,attr,omitempty"`
	Entries string                   `xml:"Entries,attr,omitempty"`
	Nodes   []RekordboxNode          `xml:"NODE"`
	Tracks  []RekordboxPlaylistTrack `xml:"TRACK"`
}

type RekordboxPlaylistTrack struct {
	Key string `xml:"Key,attr"`
}

// ParseRekordboxFile reads a Rekordbox XML file
func ParseRekordboxFile(filename string) (*RekordboxDocument, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rekordbox file: %w", err)
	}
	return ParseRekordbox(data)
}

// ParseRekordbox parses Rekordbox XML data
func ParseRekordbox(data []byte) (*RekordboxDocument, error) {
	if err := ValidateRekordbox(data); err != nil {
		return nil, err
	}
	var doc RekordboxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &doc, nil
}

// GenerateRekordbox serializes a document with an XML declaration
func GenerateRekordbox(doc *RekordboxDocument) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("nil rekordbox document")
	}
	return marshalDocument(doc)
}

// ValidateRekordbox checks that data is a well-formed document rooted at DJ_PLAYLISTS
func ValidateRekordbox(data []byte) error {
	return validateRoot(data, "DJ_PLAYLISTS")
}
