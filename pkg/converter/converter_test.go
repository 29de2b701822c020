package converter

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const singleTrackNML = `<?xml version="1.0" encoding="UTF-8"?>
<NML VERSION="19">
  <HEAD COMPANY="www.native-instruments.com" PROGRAM="Traktor"></HEAD>
  <COLLECTION ENTRIES="1">
    <ENTRY TITLE="Test" ARTIST="Artist">
      <LOCATION DIR="/:Music/:" FILE="test.mp3" VOLUME="Macintosh HD"></LOCATION>
      <TEMPO BPM="128.000000"></TEMPO>
      <CUE_V2 NAME="AutoGrid" DISPL_ORDER="0" TYPE="4" START="1000.000000" LEN="0.000000" REPEATS="-1" HOTCUE="-1">
        <GRID BPM="128.000000"></GRID>
      </CUE_V2>
      <CUE_V2 NAME="n.n." DISPL_ORDER="0" TYPE="0" START="1000.000000" REPEATS="-1" HOTCUE="0"></CUE_V2>
    </ENTRY>
  </COLLECTION>
  <PLAYLISTS>
    <NODE TYPE="FOLDER" NAME="$ROOT">
      <SUBNODES COUNT="1">
        <NODE TYPE="PLAYLIST" NAME="Set">
          <PLAYLIST ENTRIES="1" TYPE="LIST" UUID="x">
            <ENTRY><PRIMARYKEY TYPE="TRACK" KEY="Macintosh HD/:Music/:test.mp3"></PRIMARYKEY></ENTRY>
          </PLAYLIST>
        </NODE>
      </SUBNODES>
    </NODE>
  </PLAYLISTS>
</NML>
`

const singleTrackRekordbox = `<?xml version="1.0" encoding="UTF-8"?>
<DJ_PLAYLISTS Version="1.0.0">
  <PRODUCT Name="rekordbox" Version="6.0.0" Company="AlphaTheta"/>
  <COLLECTION Entries="1">
    <TRACK TrackID="1" Name="Test" Artist="Artist" AverageBpm="128.00" TotalTime="300" Location="file://localhost/Music/test.mp3">
      <TEMPO Inizio="1.000" Bpm="128.00" Metro="4/4" Battito="1"/>
      <POSITION_MARK Name="Drop" Type="0" Start="1.000" Num="0"/>
    </TRACK>
  </COLLECTION>
  <PLAYLISTS>
    <NODE Type="0" Name="ROOT" Count="0"/>
  </PLAYLISTS>
</DJ_PLAYLISTS>
`

func testConverter() *Converter {
	return New(Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC) },
	})
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"collection.nml", FormatNML},
		{"COLLECTION.NML", FormatNML},
		{"rekordbox.xml", FormatRekordbox},
		{"library.txt", FormatUnknown},
		{"library", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result := DetectFormat(tt.filename)
			if result != tt.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"NML document", []byte(singleTrackNML), FormatNML},
		{"Rekordbox document", []byte(singleTrackRekordbox), FormatRekordbox},
		{"Other XML", []byte(`<?xml version="1.0"?><plist/>`), FormatUnknown},
		{"Short data", []byte{0x00, 0x01}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectFormatFromContent(tt.data)
			if result != tt.expected {
				t.Errorf("DetectFormatFromContent() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDetectDirection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		expected Direction
		wantErr  bool
	}{
		{"nml extension", "a.nml", "", NMLToRekordbox, false},
		{"xml extension", "a.xml", "", RekordboxToNML, false},
		{"nml content", "upload", singleTrackNML, NMLToRekordbox, false},
		{"rekordbox content", "upload", singleTrackRekordbox, RekordboxToNML, false},
		{"unknown", "upload", "hello", Direction{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DetectDirection(tt.filename, []byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("DetectDirection() error = %v, want ErrUnknownFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectDirection() error = %v", err)
			}
			if d != tt.expected {
				t.Errorf("DetectDirection() = %v, want %v", d, tt.expected)
			}
		})
	}
}

func TestConverterNew(t *testing.T) {
	conv := New(Options{})
	if conv == nil {
		t.Fatal("New() returned nil")
	}

	opts := conv.Options()
	if opts.PlaylistName != DefaultPlaylistName {
		t.Errorf("PlaylistName = %q, want %q", opts.PlaylistName, DefaultPlaylistName)
	}
	if opts.Program != DefaultProgram {
		t.Errorf("Program = %q, want %q", opts.Program, DefaultProgram)
	}
	if opts.Now == nil || opts.Logger == nil {
		t.Error("Now and Logger should be defaulted")
	}
}

func TestDirection(t *testing.T) {
	if !NMLToRekordbox.Valid() || !RekordboxToNML.Valid() {
		t.Error("built-in directions should be valid")
	}
	if (Direction{Source: FormatNML, Target: FormatNML}).Valid() {
		t.Error("nml -> nml should not be valid")
	}
	if got := NMLToRekordbox.String(); got != "nml -> rekordbox" {
		t.Errorf("String() = %q", got)
	}
}

func TestConvertSingleTrackNML(t *testing.T) {
	out, err := testConverter().Convert([]byte(singleTrackNML), NMLToRekordbox)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.HasPrefix(string(out), "<?xml") {
		t.Error("output should start with an XML declaration")
	}

	doc, err := ParseRekordbox(out)
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	if doc.Version != RekordboxVersion {
		t.Errorf("Version = %q, want %q", doc.Version, RekordboxVersion)
	}
	if len(doc.Collection.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(doc.Collection.Tracks))
	}

	track := doc.Collection.Tracks[0]
	if track.Name != "Test" || track.Artist != "Artist" {
		t.Errorf("track = %q by %q", track.Name, track.Artist)
	}
	if track.TrackID != "000000000" {
		t.Errorf("TrackID = %q, want 000000000", track.TrackID)
	}
	if len(track.Tempos) != 1 {
		t.Fatalf("got %d tempos, want 1", len(track.Tempos))
	}
	if track.Tempos[0].Inizio != "1.000" || track.Tempos[0].Bpm != "128.00" {
		t.Errorf("tempo = %+v", track.Tempos[0])
	}
	if len(track.PositionMarks) != 1 {
		t.Fatalf("got %d position marks, want 1", len(track.PositionMarks))
	}
	pm := track.PositionMarks[0]
	if pm.Start != "1.000" || pm.End != "" || pm.Num != "0" {
		t.Errorf("position mark = %+v", pm)
	}

	root := doc.Playlists.Node
	if root.Name != RekordboxRootNode || len(root.Nodes) != 1 {
		t.Fatalf("playlist root = %+v", root)
	}
	list := root.Nodes[0]
	if list.Name != "Set" || list.Entries != "1" || list.Tracks[0].Key != track.TrackID {
		t.Errorf("playlist = %+v", list)
	}
}

func TestConvertSingleTrackRekordbox(t *testing.T) {
	result, err := testConverter().Run([]byte(singleTrackRekordbox), RekordboxToNML)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Tracks != 1 || result.Playlists != 1 {
		t.Errorf("result = %+v", result)
	}

	doc, err := ParseNML(result.Output)
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	if doc.Version != NMLVersion || doc.Head.Program != DefaultProgram {
		t.Errorf("header = %q / %q", doc.Version, doc.Head.Program)
	}
	if doc.Collection.Entries != "1" || doc.Sets.Entries != "0" {
		t.Errorf("collection entries = %q, sets = %q", doc.Collection.Entries, doc.Sets.Entries)
	}

	entry := doc.Collection.Entry[0]
	if entry.Title != "Test" || entry.Location.File != "test.mp3" || entry.Location.Dir != "/:Music/:" {
		t.Errorf("entry = %+v, location = %+v", entry, entry.Location)
	}
	// beat marker + autogrid + Drop
	if len(entry.Cues) != 3 {
		t.Fatalf("got %d cues, want 3", len(entry.Cues))
	}
	if entry.Cues[2].Name != "Drop" || entry.Cues[2].Start != "1000.000000" {
		t.Errorf("hotcue = %+v", entry.Cues[2])
	}
}

func TestConvertRoundTrip(t *testing.T) {
	conv := testConverter()
	xmlOut, err := conv.NMLToRekordbox([]byte(singleTrackNML))
	if err != nil {
		t.Fatalf("NMLToRekordbox() error = %v", err)
	}
	nmlOut, err := conv.RekordboxToNML(xmlOut)
	if err != nil {
		t.Fatalf("RekordboxToNML() error = %v", err)
	}

	doc, err := ParseNML(nmlOut)
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	entry := doc.Collection.Entry[0]
	if entry.Title != "Test" || entry.Artist != "Artist" {
		t.Errorf("entry = %q by %q", entry.Title, entry.Artist)
	}
	if entry.Location.Volume != DefaultVolume || entry.Location.Dir != "/:Music/:" || entry.Location.File != "test.mp3" {
		t.Errorf("location = %+v", entry.Location)
	}
	if entry.Tempo.BPM != "128.000000" {
		t.Errorf("BPM = %q", entry.Tempo.BPM)
	}
}

func TestConvertMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
		d    Direction
	}{
		{"empty nml", "", NMLToRekordbox},
		{"truncated nml", "<NML><COLLECTION>", NMLToRekordbox},
		{"rekordbox as nml", singleTrackRekordbox, NMLToRekordbox},
		{"nml as rekordbox", singleTrackNML, RekordboxToNML},
		{"not xml", "hello <<", RekordboxToNML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := testConverter().Convert([]byte(tt.data), tt.d)
			if !errors.Is(err, ErrMalformedDocument) {
				t.Errorf("Convert() error = %v, want ErrMalformedDocument", err)
			}
			if out != nil {
				t.Error("Convert() should not return partial output")
			}
		})
	}
}

func TestConvertUnsupportedDirection(t *testing.T) {
	_, err := testConverter().Convert([]byte(singleTrackNML), Direction{Source: FormatNML, Target: FormatNML})
	if !errors.Is(err, ErrUnsupportedConversion) {
		t.Errorf("Convert() error = %v, want ErrUnsupportedConversion", err)
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "collection.nml")
	if err := os.WriteFile(in, []byte(singleTrackNML), 0644); err != nil {
		t.Fatal(err)
	}

	conv := testConverter()
	out := filepath.Join(dir, "rekordbox.xml")
	result, err := conv.ConvertFile(in, out)
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}
	if result.Direction != NMLToRekordbox || result.Tracks != 1 {
		t.Errorf("result = %+v", result)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if DetectFormatFromContent(data) != FormatRekordbox {
		t.Error("written file is not a Rekordbox document")
	}

	if _, err := conv.ConvertFile(in, filepath.Join(dir, "again.nml")); !errors.Is(err, ErrUnsupportedConversion) {
		t.Errorf("nml -> nml error = %v, want ErrUnsupportedConversion", err)
	}
	if _, err := conv.ConvertFile(filepath.Join(dir, "missing.nml"), out); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestCheckOutput(t *testing.T) {
	tests := []struct {
		d       Direction
		path    string
		wantErr bool
	}{
		{NMLToRekordbox, "out.xml", false},
		{NMLToRekordbox, "out.NML", true},
		{RekordboxToNML, "out.nml", false},
		{RekordboxToNML, "out.xml", true},
		{RekordboxToNML, "out.txt", false},
		{NMLToRekordbox, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.d.String()+" "+tt.path, func(t *testing.T) {
			err := CheckOutput(tt.d, tt.path)
			if tt.wantErr && !errors.Is(err, ErrUnsupportedConversion) {
				t.Errorf("CheckOutput() error = %v, want ErrUnsupportedConversion", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("CheckOutput() error = %v", err)
			}
		})
	}
}

func TestGetSupportedConversions(t *testing.T) {
	conversions := GetSupportedConversions()
	if len(conversions) != 2 {
		t.Fatalf("got %d conversions, want 2", len(conversions))
	}
	if conversions[0] != "nml -> rekordbox" || conversions[1] != "rekordbox -> nml" {
		t.Errorf("conversions = %v", conversions)
	}
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	nmlPath := filepath.Join(dir, "collection.nml")
	xmlPath := filepath.Join(dir, "rekordbox.xml")
	if err := os.WriteFile(nmlPath, []byte(singleTrackNML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xmlPath, []byte(singleTrackRekordbox), 0644); err != nil {
		t.Fatal(err)
	}

	nml, err := ParseNMLFile(nmlPath)
	if err != nil {
		t.Fatalf("ParseNMLFile() error = %v", err)
	}
	if len(nml.Collection.Entry) != 1 || nml.Collection.Entry[0].Title != "Test" {
		t.Errorf("unexpected collection: %+v", nml.Collection)
	}

	rb, err := ParseRekordboxFile(xmlPath)
	if err != nil {
		t.Fatalf("ParseRekordboxFile() error = %v", err)
	}
	if len(rb.Collection.Tracks) != 1 || rb.Collection.Tracks[0].Name != "Test" {
		t.Errorf("unexpected collection: %+v", rb.Collection)
	}

	if _, err := ParseNMLFile(xmlPath); !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("ParseNMLFile(rekordbox) error = %v, want ErrMalformedDocument", err)
	}
	if _, err := ParseRekordboxFile(filepath.Join(dir, "missing.xml")); err == nil {
		t.Error("expected error for missing file")
	}
}
