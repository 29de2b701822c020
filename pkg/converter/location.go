package converter

import (
	"net/url"
	"regexp"
	"strings"
)

// Path transcoding constants
const (
	LocalFilePrefix = "file://localhost"
	DirDelimiter    = "/:"
	DefaultVolume   = "Macintosh HD"

	// volumes containing this marker are the system volume and are
	// left out of Rekordbox URIs
	defaultVolumeMarker = "Mac"
)

var drivePattern = regexp.MustCompile(`^/([A-Za-z]):(/.*)?$`)

// EmptyLocation is the placeholder for paths that cannot be decomposed
func EmptyLocation() Location {
	return Location{Volume: DefaultVolume, Dir: DirDelimiter}
}

// LocationFromURI decomposes a Rekordbox file://localhost URI into an NML
// location. The volume is always DefaultVolume; drive letters become the
// first directory segment.
func LocationFromURI(uri string) Location {
	if uri == "" || !strings.HasPrefix(uri, LocalFilePrefix) {
		return EmptyLocation()
	}

	path := strings.TrimPrefix(uri, LocalFilePrefix)
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	} else {
		path = strings.ReplaceAll(path, "%20", " ")
	}

	var segments []string
	if m := drivePattern.FindStringSubmatch(path); m != nil {
		segments = append(segments, strings.ToUpper(m[1])+":")
		path = m[2]
	}

	parts := splitSegments(path)
	if len(parts) == 0 {
		return Location{Volume: DefaultVolume, Dir: joinDir(segments)}
	}

	segments = append(segments, parts[:len(parts)-1]...)
	return Location{
		Volume: DefaultVolume,
		Dir:    joinDir(segments),
		File:   parts[len(parts)-1],
	}
}

// URI builds a Rekordbox location from an NML location. Only spaces are
// escaped. This is not the inverse of LocationFromURI for non-default
// volumes.
func (l Location) URI() string {
	dir := strings.ReplaceAll(l.Dir, DirDelimiter, "/")
	disk := ""
	if l.Volume != "" && !strings.Contains(l.Volume, defaultVolumeMarker) {
		disk = "/" + l.Volume
	}
	return strings.ReplaceAll(LocalFilePrefix+disk+dir+l.File, " ", "%20")
}

func splitSegments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func joinDir(segments []string) string {
	if len(segments) == 0 {
		return DirDelimiter
	}
	return DirDelimiter + strings.Join(segments, DirDelimiter) + DirDelimiter
}
