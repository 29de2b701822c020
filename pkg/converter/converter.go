package converter

import (
	"fmt"
	"os"
	"time"
)

// ConversionResult summarizes one conversion run
type ConversionResult struct {
	Direction         Direction
	Tracks            int
	Playlists         int
	SkippedReferences int // playlist entries whose track was never converted
	Output            []byte
}

// Run converts a complete source document in the given direction. Each
// call builds its own converter state, so a Converter may be shared
// between goroutines.
func (c *Converter) Run(source []byte, d Direction) (*ConversionResult, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConversion, d)
	}

	start := time.Now()
	var (
		result *ConversionResult
		err    error
	)
	switch d {
	case NMLToRekordbox:
		result, err = c.nmlToRekordbox(source)
	case RekordboxToNML:
		result, err = c.rekordboxToNML(source)
	}
	if err != nil {
		return nil, err
	}

	c.opts.Logger.Info("conversion complete",
		"direction", d.String(),
		"tracks", result.Tracks,
		"playlists", result.Playlists,
		"skipped_references", result.SkippedReferences,
		"duration", time.Since(start),
	)
	return result, nil
}

// Convert returns the converted document text
func (c *Converter) Convert(source []byte, d Direction) ([]byte, error) {
	result, err := c.Run(source, d)
	if err != nil {
		return nil, err
	}
	return result.Output, nil
}

// NMLToRekordbox converts a Traktor collection to Rekordbox XML
func (c *Converter) NMLToRekordbox(data []byte) ([]byte, error) {
	return c.Convert(data, NMLToRekordbox)
}

// RekordboxToNML converts a Rekordbox library to a Traktor collection
func (c *Converter) RekordboxToNML(data []byte) ([]byte, error) {
	return c.Convert(data, RekordboxToNML)
}

func (c *Converter) nmlToRekordbox(data []byte) (*ConversionResult, error) {
	doc, err := ParseNML(data)
	if err != nil {
		return nil, err
	}
	out, result := newNMLToRekordbox(c.opts).convert(doc)
	if result.Output, err = GenerateRekordbox(out); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Converter) rekordboxToNML(data []byte) (*ConversionResult, error) {
	doc, err := ParseRekordbox(data)
	if err != nil {
		return nil, err
	}
	out, result := newRekordboxToNML(c.opts).convert(doc, c.opts.Program)
	if result.Output, err = GenerateNML(out); err != nil {
		return nil, err
	}
	return result, nil
}

// DetectDirection picks the conversion direction for a source document,
// by file extension first and by root element otherwise.
func DetectDirection(filename string, data []byte) (Direction, error) {
	format := DetectFormat(filename)
	if format == FormatUnknown {
		format = DetectFormatFromContent(data)
	}
	switch format {
	case FormatNML:
		return NMLToRekordbox, nil
	case FormatRekordbox:
		return RekordboxToNML, nil
	default:
		return Direction{}, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
	}
}

// CheckOutput rejects an output path whose extension names a format other
// than d's target. Unknown extensions are accepted.
func CheckOutput(d Direction, outputPath string) error {
	if out := DetectFormat(outputPath); out != FormatUnknown && out != d.Target {
		return fmt.Errorf("%w: %s to %s", ErrUnsupportedConversion, d.Source, out)
	}
	return nil
}

// ConvertFile converts a file from one format to another
func (c *Converter) ConvertFile(inputPath, outputPath string) (*ConversionResult, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	d, err := DetectDirection(inputPath, data)
	if err != nil {
		return nil, err
	}
	if err := CheckOutput(d, outputPath); err != nil {
		return nil, err
	}

	result, err := c.Run(data, d)
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, result.Output, 0644); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}
	return result, nil
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		NMLToRekordbox.String(),
		RekordboxToNML.String(),
	}
}
