// Package analysis summarizes the cues of every track in an NML or
// Rekordbox document without converting it.
package analysis

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	"github.com/antchfx/xmlquery"
	"github.com/james-see/traktor2rekordbox/pkg/converter"
)

// UnknownValue replaces a missing title or artist
const UnknownValue = "Unknown"

// DefaultColor is the CSS color of cues that carry none
const DefaultColor = "#4a9eff"

// Cue is one hotcue or loop, in seconds
type Cue struct {
	Start  float64 `json:"start"`
	Length float64 `json:"length"`
	Color  string  `json:"color"`
	IsLoop bool    `json:"is_loop"`
}

type Track struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Duration   float64 `json:"duration"`
	Cues       []Cue   `json:"cues"`
	HasHotcues bool    `json:"has_hotcues"`
}

// Report lists tracks without cues first, keeping document order otherwise
type Report struct {
	Format      converter.Format `json:"format"`
	Tracks      []Track          `json:"tracks"`
	WithoutCues int              `json:"without_cues"`
}

// schema holds the element and attribute names of one format
type schema struct {
	tracks   string
	title    string
	artist   string
	cues     string
	cueName  string
	cueStart string
	scale    float64 // position units per second
}

var nmlSchema = schema{
	tracks:   "/NML/COLLECTION/ENTRY[not(PRIMARYKEY)]",
	title:    "TITLE",
	artist:   "ARTIST",
	cues:     "CUE_V2",
	cueName:  "NAME",
	cueStart: "START",
	scale:    1000,
}

var rekordboxSchema = schema{
	tracks:   "/DJ_PLAYLISTS/COLLECTION/TRACK",
	title:    "Name",
	artist:   "Artist",
	cues:     "POSITION_MARK",
	cueName:  "Name",
	cueStart: "Start",
	scale:    1,
}

// Analyze parses a document and reports its tracks' cues
func Analyze(data []byte) (*Report, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", converter.ErrMalformedDocument, err)
	}

	root := xmlquery.FindOne(doc, "/*")
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", converter.ErrMalformedDocument)
	}

	report := &Report{}
	var s schema
	switch root.Data {
	case "NML":
		report.Format, s = converter.FormatNML, nmlSchema
	case "DJ_PLAYLISTS":
		report.Format, s = converter.FormatRekordbox, rekordboxSchema
	default:
		return nil, fmt.Errorf("%w: root <%s>", converter.ErrUnknownFormat, root.Data)
	}

	nodes, err := xmlquery.QueryAll(doc, s.tracks)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	for _, n := range nodes {
		t := analyzeTrack(n, report.Format, s)
		if !t.HasHotcues {
			report.WithoutCues++
		}
		report.Tracks = append(report.Tracks, t)
	}

	slices.SortStableFunc(report.Tracks, func(a, b Track) int {
		switch {
		case a.HasHotcues == b.HasHotcues:
			return 0
		case a.HasHotcues:
			return 1
		default:
			return -1
		}
	})
	return report, nil
}

func analyzeTrack(n *xmlquery.Node, format converter.Format, s schema) Track {
	t := Track{
		Title:  attrOr(n, s.title, UnknownValue),
		Artist: attrOr(n, s.artist, UnknownValue),
		Cues:   []Cue{},
	}
	if format == converter.FormatNML {
		if info := n.SelectElement("INFO"); info != nil {
			t.Duration = parseFloat(info.SelectAttr("PLAYTIME"))
		}
	} else {
		t.Duration = parseFloat(n.SelectAttr("TotalTime"))
	}

	for _, c := range n.SelectElements(s.cues) {
		if c.SelectAttr(s.cueName) == converter.AutoGridName {
			continue
		}
		start := parseFloat(c.SelectAttr(s.cueStart))
		cue := Cue{Start: start / s.scale, Color: DefaultColor}

		if format == converter.FormatNML {
			cue.Length = parseFloat(c.SelectAttr("LEN")) / s.scale
			if color := c.SelectAttr("COLOR"); color != "" {
				cue.Color = color
			}
		} else {
			if end := c.SelectAttr("End"); end != "" {
				cue.Length = parseFloat(end) - start
			}
			r, g, b := c.SelectAttr("Red"), c.SelectAttr("Green"), c.SelectAttr("Blue")
			if r != "" && g != "" && b != "" {
				cue.Color = fmt.Sprintf("rgb(%s,%s,%s)", r, g, b)
			}
		}
		cue.IsLoop = cue.Length > 0
		t.Cues = append(t.Cues, cue)
	}
	t.HasHotcues = len(t.Cues) > 0
	return t
}

func attrOr(n *xmlquery.Node, name, def string) string {
	if v := n.SelectAttr(name); v != "" {
		return v
	}
	return def
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
