package imprint

import (
	"github.com/tsawler/imprint/watermark"
	"github.com/tsawler/imprint/writer"
)

// Quality selects how page images are stored in the output document:
// losslessly as Deflate-compressed raw RGB, or re-encoded as JPEG at a
// level from 1 to 100.
type Quality = writer.Quality

// Lossless stores page images without loss. It is the default.
var Lossless = writer.Lossless

// JPEGQuality returns a Quality that re-encodes page images as JPEG at
// the given level.
func JPEGQuality(q int) Quality {
	return writer.JPEGQuality(q)
}

// ParseQuality interprets a quality string: the word "lossless" or an
// integer from 1 to 100. Anything else is ErrInvalidQuality.
//
// Example:
//
//	q, err := imprint.ParseQuality("85")
func ParseQuality(s string) (Quality, error) {
	return writer.ParseQuality(s)
}

// Position places the watermark on a page. The two-character codes pair
// a vertical band (t, m, b) with a horizontal one (l, c, r).
type Position = watermark.Position

// The nine placements.
const (
	TopLeft      = watermark.TopLeft
	TopCenter    = watermark.TopCenter
	TopRight     = watermark.TopRight
	MiddleLeft   = watermark.MiddleLeft
	MiddleCenter = watermark.MiddleCenter
	MiddleRight  = watermark.MiddleRight
	BottomLeft   = watermark.BottomLeft
	BottomCenter = watermark.BottomCenter
	BottomRight  = watermark.BottomRight
)

// ParsePosition interprets a two-character position code such as "br" or
// "tc". Unrecognized codes fall back to BottomRight.
func ParsePosition(code string) Position {
	return watermark.ParsePosition(code)
}
