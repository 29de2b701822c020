package converter

import "errors"

var (
	// ErrMalformedDocument is returned when the source cannot be parsed
	// or is rooted at the wrong element
	ErrMalformedDocument = errors.New("malformed document")

	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrUnknownFormat         = errors.New("unknown format")
)
