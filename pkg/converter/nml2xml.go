package converter

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
)

// nmlToRekordbox walks NML entries and builds a Rekordbox document.
// Beatgrid cues become TEMPO elements, every other cue a POSITION_MARK,
// and the NML playlist tree is rebuilt with TrackID references.
type nmlToRekordbox struct {
	dir    Direction
	logger *slog.Logger

	trackIDs map[string]string // location key -> TrackID
	nextID   int
	skipped  int

	// per-track state
	cueIndex   int
	tempoCount int
}

func newNMLToRekordbox(opts Options) *nmlToRekordbox {
	return &nmlToRekordbox{
		dir:      NMLToRekordbox,
		logger:   opts.Logger,
		trackIDs: make(map[string]string),
	}
}

func (w *nmlToRekordbox) convert(doc *NMLDocument) (*RekordboxDocument, *ConversionResult) {
	out := &RekordboxDocument{
		Version: RekordboxVersion,
		Product: RekordboxProduct{Name: ProductName, Version: ProductVersion, Company: ProductCompany},
	}

	for i := range doc.Collection.Entry {
		entry := &doc.Collection.Entry[i]
		if entry.IsPlaylistMarker() {
			w.logger.Debug("skipping playlist marker entry", "key", entry.PrimaryKey.Key)
			continue
		}
		out.Collection.Tracks = append(out.Collection.Tracks, w.convertEntry(entry))
	}
	out.Collection.Entries = strconv.Itoa(len(out.Collection.Tracks))

	root := readNMLPlaylists(doc.Playlists.Node)
	if root != nil && root.Type != NodeFolder {
		root = &PlaylistNode{Type: NodeFolder, Name: NMLRootFolder, Children: []*PlaylistNode{root}}
	}
	out.Playlists.Node = w.convertNode(root)

	return out, &ConversionResult{
		Direction:         w.dir,
		Tracks:            len(out.Collection.Tracks),
		Playlists:         countPlaylists(root),
		SkippedReferences: w.skipped,
	}
}

func (w *nmlToRekordbox) convertEntry(entry *NMLEntry) RekordboxTrack {
	w.cueIndex = 0
	w.tempoCount = 0

	t := readNMLEntry(entry, w.dir)
	t.ID = fmt.Sprintf("%09d", w.nextID)
	w.trackIDs[t.Location.Key()] = t.ID

	rt := rekordboxTrack(t, w.nextID)
	w.nextID++

	for _, cue := range t.Cues {
		switch {
		case cue.Grid != nil:
			if cue.Grid.BPM > 0 {
				rt.Tempos = append(rt.Tempos, w.tempo(cue.Start, cue.Grid.BPM, RekordboxDefaultMetro))
			}
		case cue.Name == AutoGridName:
			// grid-only marker, never a hotcue
		default:
			rt.PositionMarks = append(rt.PositionMarks, w.positionMark(cue))
		}
	}

	if w.tempoCount == 0 {
		if anchor, ok := autoGridAnchor(t.Cues); ok {
			rt.Tempos = append(rt.Tempos, w.tempo(anchor.Start, t.BPM, ""))
		}
	}
	return rt
}

func (w *nmlToRekordbox) tempo(start, bpm float64, metro string) RekordboxTempo {
	w.tempoCount++
	return RekordboxTempo{
		Inizio:  formatSeconds(start),
		Bpm:     formatBPM(bpm),
		Metro:   metro,
		Battito: "1",
	}
}

func (w *nmlToRekordbox) positionMark(cue CuePoint) RekordboxPositionMark {
	num := cue.Hotcue
	if num < 0 {
		num = w.cueIndex
	}
	w.cueIndex++

	pm := RekordboxPositionMark{
		Name:  cue.Name,
		Type:  cue.Type,
		Start: formatSeconds(cue.Start),
		Num:   strconv.Itoa(num),
	}
	if cue.IsLoop() {
		pm.End = formatSeconds(cue.End())
	}
	if cue.Color != nil {
		pm.Red = strconv.Itoa(int(cue.Color.R))
		pm.Green = strconv.Itoa(int(cue.Color.G))
		pm.Blue = strconv.Itoa(int(cue.Color.B))
	}
	return pm
}

// autoGridAnchor finds the first AutoGrid marker, grid or not
func autoGridAnchor(cues []CuePoint) (CuePoint, bool) {
	for _, c := range cues {
		if c.Name == AutoGridName {
			return c, true
		}
	}
	return CuePoint{}, false
}

func (w *nmlToRekordbox) convertNode(n *PlaylistNode) RekordboxNode {
	if n == nil {
		return RekordboxNode{Type: RekordboxNodeFolder, Name: RekordboxRootNode, Count: "0"}
	}
	if n.Type == NodePlaylist {
		node := RekordboxNode{Type: RekordboxNodeList, Name: n.Name, KeyType: RekordboxKeyTypeID}
		for _, key := range n.Entries {
			id, ok := w.trackIDs[key]
			if !ok {
				w.skipped++
				w.logger.Debug("dropping unresolved playlist entry", "playlist", n.Name, "key", key)
				continue
			}
			node.Tracks = append(node.Tracks, RekordboxPlaylistTrack{Key: id})
		}
		node.Entries = strconv.Itoa(len(node.Tracks))
		return node
	}

	name := n.Name
	if name == NMLRootFolder || name == "" {
		name = RekordboxRootNode
	}
	node := RekordboxNode{Type: RekordboxNodeFolder, Name: name}
	for _, child := range n.Children {
		node.Nodes = append(node.Nodes, w.convertNode(child))
	}
	node.Count = strconv.Itoa(len(node.Nodes))
	return node
}

// readNMLEntry extracts a track, translating vocabulary toward d.Target
func readNMLEntry(e *NMLEntry, d Direction) Track {
	info := e.Info
	if info == nil {
		info = &NMLInfo{}
	}

	t := Track{
		Title:        e.Title,
		Artist:       e.Artist,
		Genre:        info.Genre,
		Comment:      info.Comment,
		PlayCount:    parseInt(info.PlayCount, 0),
		Rating:       parseInt(info.Ranking, 0),
		LastPlayed:   FormatDate(info.LastPlayed, d),
		DateAdded:    FormatDate(info.ImportDate, d),
		DateModified: FormatDate(e.ModifiedDate, d),
		Color:        TrackColor(info.Color, d),
		PlayTime:     parseFloatOr(info.PlayTimeFloat, parseFloat(info.PlayTime)),
		BitRate:      parseInt(info.Bitrate, 0) / 1000,
		KeyIndex:     DefaultKeyIndex,
		Location:     EmptyLocation(),
	}
	if e.Album != nil {
		t.Album = e.Album.Title
	}
	if e.Tempo != nil {
		t.BPM = parseFloat(e.Tempo.BPM)
	}
	if e.MusicalKey != nil {
		t.KeyIndex = ParseKeyIndex(e.MusicalKey.Value)
	}
	if t.KeyIndex == DefaultKeyIndex {
		t.KeyIndex = DecodeKey(info.Key)
	}
	t.Tonality = TonalityName(t.KeyIndex)
	if e.Location != nil {
		t.Location = Location{Volume: e.Location.Volume, Dir: e.Location.Dir, File: e.Location.File}
	}

	for i := range e.Cues {
		t.Cues = append(t.Cues, readNMLCue(&e.Cues[i], d))
	}
	return t
}

func readNMLCue(c *NMLCue, d Direction) CuePoint {
	color, _ := ResolveCueColor(c.Color, c.Type, c.Name)
	cue := CuePoint{
		Name:   c.Name,
		Type:   CueType(c.Type, d),
		Start:  parseFloat(c.Start) / 1000,
		Length: math.Max(parseFloat(c.Len)/1000, 0),
		Hotcue: parseInt(c.Hotcue, -1),
		Color:  &color,
	}
	if cue.Hotcue < 0 {
		cue.Hotcue = -1
	}
	if c.IsBeatgrid() {
		cue.Grid = &TempoMarker{Start: cue.Start, BPM: parseFloat(c.Grid.BPM)}
	}
	return cue
}

// rekordboxTrack renders track metadata; cues and tempos are added by the caller
func rekordboxTrack(t Track, number int) RekordboxTrack {
	return RekordboxTrack{
		TrackID:      t.ID,
		Name:         t.Title,
		Artist:       t.Artist,
		Album:        t.Album,
		Genre:        t.Genre,
		Kind:         kindFromFile(t.Location.File),
		Size:         "0",
		TotalTime:    strconv.Itoa(int(math.Round(t.PlayTime))),
		DiscNumber:   "0",
		TrackNumber:  strconv.Itoa(number),
		Year:         "0",
		AverageBpm:   formatBPM(t.BPM),
		DateModified: t.DateModified,
		DateAdded:    t.DateAdded,
		BitRate:      strconv.Itoa(t.BitRate),
		SampleRate:   "0",
		Comments:     t.Comment,
		PlayCount:    strconv.Itoa(t.PlayCount),
		LastPlayed:   t.LastPlayed,
		Rating:       strconv.Itoa(t.Rating),
		Location:     t.Location.URI(),
		Tonality:     t.Tonality,
		Colour:       t.Color,
	}
}

// readNMLPlaylists converts the NML node tree into playlist nodes.
// Node types other than folders and playlists (smartlists) are dropped.
func readNMLPlaylists(n *NMLNode) *PlaylistNode {
	if n == nil {
		return nil
	}
	switch n.Type {
	case NMLNodeFolder:
		node := &PlaylistNode{Type: NodeFolder, Name: n.Name}
		if n.Subnodes != nil {
			for i := range n.Subnodes.Nodes {
				if child := readNMLPlaylists(&n.Subnodes.Nodes[i]); child != nil {
					node.Children = append(node.Children, child)
				}
			}
		}
		return node
	case NMLNodePlaylist:
		node := &PlaylistNode{Type: NodePlaylist, Name: n.Name}
		if n.Playlist != nil {
			for _, e := range n.Playlist.Entry {
				if e.PrimaryKey != nil && e.PrimaryKey.Key != "" {
					node.Entries = append(node.Entries, e.PrimaryKey.Key)
				}
			}
		}
		return node
	default:
		return nil
	}
}

func countPlaylists(n *PlaylistNode) int {
	if n == nil {
		return 0
	}
	if n.Type == NodePlaylist {
		return 1
	}
	total := 0
	for _, c := range n.Children {
		total += countPlaylists(c)
	}
	return total
}
