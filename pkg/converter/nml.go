package converter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// NML constants
const (
	NMLVersion         = "20"
	NMLCompany         = "www.native-instruments.com"
	DefaultProgram     = "Traktor Pro 4"
	NMLRootFolder      = "$ROOT"
	NMLNodeFolder      = "FOLDER"
	NMLNodePlaylist    = "PLAYLIST"
	NMLPrimaryKeyTrack = "TRACK"

	// Cue names with special meaning to Traktor
	AutoGridName   = "AutoGrid"
	BeatMarkerName = "Beat Marker"
)

// NMLDocument is the root of a Traktor collection file
type NMLDocument struct {
	XMLName    xml.Name      `xml:"NML"`
	Version    string        `xml:"VERSION,attr"`
	Head       NMLHead       `xml:"HEAD"`
	Collection NMLCollection `xml:"COLLECTION"`
	Sets       NMLSets       `xml:"SETS"`
	Playlists  NMLPlaylists  `xml:"PLAYLISTS"`
	Indexing   NMLIndexing   `xml:"INDEXING"`
}

type NMLHead struct {
	Company string `xml:"COMPANY,attr"`
	Program string `xml:"PROGRAM,attr"`
}

type NMLCollection struct {
	Entries string     `xml:"ENTRIES,attr"`
	Entry   []NMLEntry `xml:"ENTRY"`
}

// NMLEntry is a track in the collection, or a playlist reference marker
// when PrimaryKey is set
type NMLEntry struct {
	ModifiedDate     string               `xml:"MODIFIED_DATE,attr,omitempty"`
	ModifiedTime     string               `xml:"MODIFIED_TIME,attr,omitempty"`
	AudioID          string               `xml:"AUDIO_ID,attr,omitempty"`
	Title            string               `xml:"TITLE,attr"`
	Artist           string               `xml:"ARTIST,attr"`
	Location         *NMLLocation         `xml:"LOCATION"`
	Album            *NMLAlbum            `xml:"ALBUM"`
	ModificationInfo *NMLModificationInfo `xml:"MODIFICATION_INFO"`
	Info             *NMLInfo             `xml:"INFO"`
	Tempo            *NMLTempo            `xml:"TEMPO"`
	Loudness         *NMLLoudness         `xml:"LOUDNESS"`
	MusicalKey       *NMLMusicalKey       `xml:"MUSICAL_KEY"`
	Cues             []NMLCue             `xml:"CUE_V2"`
	PrimaryKey       *NMLPrimaryKey       `xml:"PRIMARYKEY"`
}

type NMLLocation struct {
	Dir      string `xml:"DIR,attr"`
	File     string `xml:"FILE,attr"`
	Volume   string `xml:"VOLUME,attr"`
	VolumeID string `xml:"VOLUMEID,attr,omitempty"`
}

type NMLAlbum struct {
	Track string `xml:"TRACK,attr,omitempty"`
	Title string `xml:"TITLE,attr"`
}

type NMLModificationInfo struct {
	AuthorType string `xml:"AUTHOR_TYPE,attr"`
}

type NMLInfo struct {
	Bitrate       string `xml:"BITRATE,attr,omitempty"`
	Genre         string `xml:"GENRE,attr"`
	Key           string `xml:"KEY,attr,omitempty"`
	Comment       string `xml:"COMMENT,attr,omitempty"`
	PlayCount     string `xml:"PLAYCOUNT,attr,omitempty"`
	PlayTime      string `xml:"PLAYTIME,attr,omitempty"`
	PlayTimeFloat string `xml:"PLAYTIME_FLOAT,attr,omitempty"`
	Ranking       string `xml:"RANKING,attr,omitempty"`
	ImportDate    string `xml:"IMPORT_DATE,attr,omitempty"`
	LastPlayed    string `xml:"LAST_PLAYED,attr,omitempty"`
	Flags         string `xml:"FLAGS,attr,omitempty"`
	Color         string `xml:"COLOR,attr,omitempty"`
}

type NMLTempo struct {
	BPM        string `xml:"BPM,attr"`
	BPMQuality string `xml:"BPM_QUALITY,attr,omitempty"`
}

type NMLLoudness struct {
	PeakDB      string `xml:"PEAK_DB,attr"`
	PerceivedDB string `xml:"PERCEIVED_DB,attr"`
	AnalyzedDB  string `xml:"ANALYZED_DB,attr"`
}

type NMLMusicalKey struct {
	Value string `xml:"VALUE,attr"`
}

// NMLCue is a CUE_V2 element. START and LEN are milliseconds.
type NMLCue struct {
	Name       string   `xml:"NAME,attr"`
	DisplOrder string   `xml:"DISPL_ORDER,attr"`
	Type       string   `xml:"TYPE,attr"`
	Start      string   `xml:"START,attr"`
	Len        string   `xml:"LEN,attr"`
	Repeats    string   `xml:"REPEATS,attr"`
	Hotcue     string   `xml:"HOTCUE,attr"`
	Color      string   `xml:"COLOR,attr,omitempty"`
	Grid       *NMLGrid `xml:"GRID"`
}

type NMLGrid struct {
	BPM string `xml:"BPM,attr"`
}

type NMLPrimaryKey struct {
	Type string `xml:"TYPE,attr"`
	Key  string `xml:"KEY,attr"`
}

type NMLSets struct {
	Entries string `xml:"ENTRIES,attr"`
}

type NMLPlaylists struct {
	Node *NMLNode `xml:"NODE"`
}

type NMLNode struct {
	Type     string       `xml:"TYPE,attr"`
	Name     string       `xml:"NAME,attr"`
	Subnodes *NMLSubnodes `xml:"SUBNODES"`
	Playlist *NMLPlaylist `xml:"PLAYLIST"`
}

type NMLSubnodes struct {
	Count string    `xml:"COUNT,attr"`
	Nodes []NMLNode `xml:"NODE"`
}

type NMLPlaylist struct {
	Entries string             `xml:"ENTRIES,attr"`
	Type    string             `xml:"TYPE,attr"`
	UUID    string             `xml:"UUID,attr"`
	Entry   []NMLPlaylistEntry `xml:"ENTRY"`
}

type NMLPlaylistEntry struct {
	PrimaryKey *NMLPrimaryKey `xml:"PRIMARYKEY"`
}

type NMLIndexing struct{}

// IsPlaylistMarker reports whether the entry references a track instead of describing one
func (e *NMLEntry) IsPlaylistMarker() bool {
	return e.PrimaryKey != nil
}

// IsBeatgrid reports whether the cue carries a grid anchor
func (c *NMLCue) IsBeatgrid() bool {
	return (c.Name == AutoGridName || c.Name == BeatMarkerName) && c.Grid != nil
}

// ParseNMLFile reads an NML file
func ParseNMLFile(filename string) (*NMLDocument, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read nml file: %w", err)
	}
	return ParseNML(data)
}

// ParseNML parses NML data
func ParseNML(data []byte) (*NMLDocument, error) {
	if err := ValidateNML(data); err != nil {
		return nil, err
	}
	var doc NMLDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &doc, nil
}

// GenerateNML serializes a document with an XML declaration
func GenerateNML(doc *NMLDocument) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("nil nml document")
	}
	return marshalDocument(doc)
}

// ValidateNML checks that data is a well-formed document rooted at NML
func ValidateNML(data []byte) error {
	return validateRoot(data, "NML")
}

func marshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// validateRoot tokenizes the whole document and checks the root element name
func validateRoot(data []byte, root string) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	found := ""
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
		if se, ok := tok.(xml.StartElement); ok && found == "" {
			found = se.Name.Local
		}
	}
	if found == "" {
		return fmt.Errorf("%w: empty document", ErrMalformedDocument)
	}
	if found != root {
		return fmt.Errorf("%w: expected root <%s>, got <%s>", ErrMalformedDocument, root, found)
	}
	return nil
}
