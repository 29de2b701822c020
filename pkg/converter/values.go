package converter

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseFloatOr(s string, def float64) float64 {
	if strings.TrimSpace(s) == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	// values like "320.0"
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(math.Round(f))
	}
	return def
}

// NML positions are milliseconds with six decimals
func formatMillis(seconds float64) string {
	return strconv.FormatFloat(seconds*1000, 'f', 6, 64)
}

// Rekordbox positions are seconds with at least three decimals, at
// nanosecond resolution.
func formatSeconds(seconds float64) string {
	v := math.Round(seconds*1e9) / 1e9
	if v == 0 {
		v = 0 // no "-0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		s += "."
		dot = len(s) - 1
	}
	if pad := 3 - (len(s) - dot - 1); pad > 0 {
		s += strings.Repeat("0", pad)
	}
	return s
}

func formatBPM(bpm float64) string {
	return strconv.FormatFloat(bpm, 'f', 2, 64)
}

var kinds = map[string]string{
	".mp3":  "MP3 File",
	".m4a":  "M4A File",
	".aac":  "AAC File",
	".wav":  "WAV File",
	".aif":  "AIFF File",
	".aiff": "AIFF File",
	".flac": "FLAC File",
	".ogg":  "OGG File",
}

// kindFromFile derives the Rekordbox Kind label from a file extension
func kindFromFile(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if k, ok := kinds[ext]; ok {
		return k
	}
	return strings.ToUpper(strings.TrimPrefix(ext, ".")) + " File"
}
