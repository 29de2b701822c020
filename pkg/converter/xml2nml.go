package converter

import (
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Defaults applied to Rekordbox tracks missing the attribute
const (
	DefaultBPM          = 120.0
	DefaultBitRate      = 320 // kbps
	DefaultPlaylistName = "collection"
)

// Traktor validates tracks against an analysis fingerprint we cannot
// compute, so every entry carries the same placeholder and Traktor
// re-analyzes on import.
const placeholderAudioID = "AWAWZmRENDMzMzf//////////////////////f/////////////////////s/////////////////////5b///7//////////+//////af/////////////////////+///////////f/////////1n/////////9Y///////////f/////////+r/7///////9XYzMzM0MyMzJUMzNDNDMzRDn//////////////////////f/////////////////////e/////////////////////3r+/+////////7u7u/v////vf//7////////v/+//////+FZneYYQAAAA=="

// rekordboxToNML walks Rekordbox tracks and builds an NML document.
// TEMPO elements become beat markers plus an AutoGrid anchor, and every
// track lands in one flat playlist.
type rekordboxToNML struct {
	dir          Direction
	logger       *slog.Logger
	now          func() time.Time
	inferType    bool
	playlistName string

	keys []string

	// per-track state
	cueIndex int
}

func newRekordboxToNML(opts Options) *rekordboxToNML {
	return &rekordboxToNML{
		dir:          RekordboxToNML,
		logger:       opts.Logger,
		now:          opts.Now,
		inferType:    opts.InferCueTypeFromColor,
		playlistName: opts.PlaylistName,
	}
}

func (w *rekordboxToNML) convert(doc *RekordboxDocument, program string) (*NMLDocument, *ConversionResult) {
	out := &NMLDocument{
		Version: NMLVersion,
		Head:    NMLHead{Company: NMLCompany, Program: program},
		Sets:    NMLSets{Entries: "0"},
	}

	for i := range doc.Collection.Tracks {
		out.Collection.Entry = append(out.Collection.Entry, w.convertTrack(&doc.Collection.Tracks[i]))
	}
	out.Collection.Entries = strconv.Itoa(len(out.Collection.Entry))

	playlist := &PlaylistNode{Type: NodePlaylist, Name: w.playlistName, Entries: w.keys}
	root := &PlaylistNode{Type: NodeFolder, Name: NMLRootFolder, Children: []*PlaylistNode{playlist}}
	node := nmlNode(root)
	out.Playlists.Node = &node

	return out, &ConversionResult{
		Direction: w.dir,
		Tracks:    len(out.Collection.Entry),
		Playlists: 1,
	}
}

func (w *rekordboxToNML) convertTrack(rt *RekordboxTrack) NMLEntry {
	w.cueIndex = 1

	t := readRekordboxTrack(rt, w.dir)
	entry := w.nmlEntry(t)

	entry.Cues = append(entry.Cues, w.gridCues(t)...)
	for _, cue := range t.Cues {
		if cue.Name == AutoGridName {
			continue
		}
		entry.Cues = append(entry.Cues, w.cue(cue))
	}

	w.keys = append(w.keys, t.Location.Key())
	return entry
}

// gridCues rebuilds Traktor beat markers from TEMPO elements. Without
// any TEMPO the grid starts at 0 with the track BPM; with several only
// the first becomes the AutoGrid anchor.
func (w *rekordboxToNML) gridCues(t Track) []NMLCue {
	tempos := t.Tempos
	if len(tempos) == 0 {
		tempos = []TempoMarker{{Start: 0, BPM: t.BPM}}
	}

	var cues []NMLCue
	for i, tm := range tempos {
		anchor := i == 0
		cues = append(cues, beatMarker(tm, anchor))
		if anchor {
			cues = append(cues, autoGrid(tm.Start))
		}
	}
	return cues
}

func beatMarker(tm TempoMarker, anchor bool) NMLCue {
	name := BeatMarkerName
	if anchor {
		name = AutoGridName
	}
	return NMLCue{
		Name:       name,
		DisplOrder: "0",
		Type:       "4",
		Start:      formatMillis(tm.Start),
		Len:        formatMillis(0),
		Repeats:    "-1",
		Hotcue:     "-1",
		Grid:       &NMLGrid{BPM: strconv.FormatFloat(tm.BPM, 'f', 6, 64)},
	}
}

func autoGrid(start float64) NMLCue {
	return NMLCue{
		Name:       AutoGridName,
		DisplOrder: "0",
		Type:       CueTypeDefault,
		Start:      formatMillis(start),
		Len:        formatMillis(0),
		Repeats:    "-1",
		Hotcue:     "0",
		Color:      "#FFFFFF",
	}
}

func (w *rekordboxToNML) cue(c CuePoint) NMLCue {
	hotcue := c.Hotcue
	if hotcue < 0 {
		hotcue = w.cueIndex
	}
	w.cueIndex++

	ctype := c.Type
	if w.inferType && c.Color != nil {
		ctype = NearestCueType(*c.Color)
	}

	nc := NMLCue{
		Name:       c.Name,
		DisplOrder: "0",
		Type:       ctype,
		Start:      formatMillis(c.Start),
		Len:        formatMillis(c.Length),
		Repeats:    "-1",
		Hotcue:     strconv.Itoa(hotcue),
	}
	if c.Color != nil {
		nc.Color = c.Color.Hex()
	}
	return nc
}

func (w *rekordboxToNML) nmlEntry(t Track) NMLEntry {
	modified := t.DateModified
	if modified == "" {
		modified = w.now().Format(DateLayout(FormatNML))
	}

	entry := NMLEntry{
		ModifiedDate: modified,
		ModifiedTime: "0",
		AudioID:      placeholderAudioID,
		Title:        t.Title,
		Artist:       t.Artist,
		Location: &NMLLocation{
			Dir:      t.Location.Dir,
			File:     t.Location.File,
			Volume:   t.Location.Volume,
			VolumeID: t.Location.Volume,
		},
		ModificationInfo: &NMLModificationInfo{AuthorType: "user"},
		Info: &NMLInfo{
			Bitrate:       strconv.Itoa(t.BitRate * 1000),
			Genre:         t.Genre,
			Key:           EncodeKey(t.KeyIndex),
			Comment:       t.Comment,
			PlayCount:     strconv.Itoa(t.PlayCount),
			PlayTime:      strconv.Itoa(int(math.Round(t.PlayTime))),
			PlayTimeFloat: strconv.FormatFloat(t.PlayTime, 'f', 6, 64),
			Ranking:       strconv.Itoa(t.Rating),
			ImportDate:    t.DateAdded,
			LastPlayed:    t.LastPlayed,
			Flags:         "12",
			Color:         t.Color,
		},
		Tempo:    &NMLTempo{BPM: strconv.FormatFloat(t.BPM, 'f', 6, 64), BPMQuality: "100.000000"},
		Loudness: &NMLLoudness{PeakDB: "-1.0", PerceivedDB: "-1.0", AnalyzedDB: "-1.0"},
	}
	if t.Album != "" {
		entry.Album = &NMLAlbum{Title: t.Album}
	}
	if t.KeyIndex != DefaultKeyIndex {
		entry.MusicalKey = &NMLMusicalKey{Value: strconv.Itoa(t.KeyIndex)}
	}
	return entry
}

// readRekordboxTrack extracts a track, translating vocabulary toward d.Target
func readRekordboxTrack(rt *RekordboxTrack, d Direction) Track {
	t := Track{
		ID:           rt.TrackID,
		Title:        rt.Name,
		Artist:       rt.Artist,
		Album:        rt.Album,
		Genre:        rt.Genre,
		Comment:      rt.Comments,
		BPM:          parseFloatOr(rt.AverageBpm, DefaultBPM),
		PlayTime:     parseFloat(rt.TotalTime),
		BitRate:      parseInt(rt.BitRate, DefaultBitRate),
		PlayCount:    parseInt(rt.PlayCount, 0),
		Rating:       parseInt(rt.Rating, 0),
		LastPlayed:   FormatDate(rt.LastPlayed, d),
		DateAdded:    FormatDate(rt.DateAdded, d),
		DateModified: FormatDate(rt.DateModified, d),
		Color:        TrackColor(rt.Colour, d),
		Tonality:     rt.Tonality,
		KeyIndex:     TonalityIndex(rt.Tonality),
		Location:     LocationFromURI(rt.Location),
	}

	for _, tm := range rt.Tempos {
		t.Tempos = append(t.Tempos, TempoMarker{
			Start: parseFloat(tm.Inizio),
			BPM:   parseFloatOr(tm.Bpm, t.BPM),
		})
	}
	for i := range rt.PositionMarks {
		t.Cues = append(t.Cues, readPositionMark(&rt.PositionMarks[i], d))
	}
	return t
}

func readPositionMark(pm *RekordboxPositionMark, d Direction) CuePoint {
	name := pm.Name
	if name == "" {
		name = UnnamedCue
	}
	cue := CuePoint{
		Name:   name,
		Type:   CueType(pm.Type, d),
		Start:  parseFloat(pm.Start),
		Hotcue: parseInt(pm.Num, -1),
	}
	if cue.Hotcue < 0 {
		cue.Hotcue = -1
	}
	if pm.End != "" {
		cue.Length = math.Max(parseFloat(pm.End)-cue.Start, 0)
	}
	if c, ok := ParseRGB(pm.Red, pm.Green, pm.Blue); ok {
		cue.Color = &c
	}
	return cue
}

func nmlNode(n *PlaylistNode) NMLNode {
	if n.Type == NodePlaylist {
		pl := &NMLPlaylist{
			Entries: strconv.Itoa(len(n.Entries)),
			Type:    "LIST",
			UUID:    uuid.NewString(),
		}
		for _, key := range n.Entries {
			pl.Entry = append(pl.Entry, NMLPlaylistEntry{
				PrimaryKey: &NMLPrimaryKey{Type: NMLPrimaryKeyTrack, Key: key},
			})
		}
		return NMLNode{Type: NMLNodePlaylist, Name: n.Name, Playlist: pl}
	}

	sub := &NMLSubnodes{Count: strconv.Itoa(len(n.Children))}
	for _, c := range n.Children {
		sub.Nodes = append(sub.Nodes, nmlNode(c))
	}
	return NMLNode{Type: NMLNodeFolder, Name: n.Name, Subnodes: sub}
}
