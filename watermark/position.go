package watermark

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// Position identifies one of nine watermark placements on a page.
type Position int

// Placements follow reading order: vertical band first (top, middle,
// bottom), then horizontal (left, center, right).
const (
	TopLeft Position = iota
	TopCenter
	TopRight
	MiddleLeft
	MiddleCenter
	MiddleRight
	BottomLeft
	BottomCenter
	BottomRight
)

// ParsePosition decodes a two-character placement code such as "tl" or
// "bc". The first character selects the vertical band (t, m, or b), the
// second the horizontal band (l, c, or r). Codes are matched
// case-insensitively; unrecognized codes fall back to BottomRight.
func ParsePosition(code string) Position {
	switch strings.ToLower(code) {
	case "tl":
		return TopLeft
	case "tc":
		return TopCenter
	case "tr":
		return TopRight
	case "ml":
		return MiddleLeft
	case "mc":
		return MiddleCenter
	case "mr":
		return MiddleRight
	case "bl":
		return BottomLeft
	case "bc":
		return BottomCenter
	case "br":
		return BottomRight
	default:
		return BottomRight
	}
}

// String returns the two-character placement code.
func (p Position) String() string {
	switch p {
	case TopLeft:
		return "tl"
	case TopCenter:
		return "tc"
	case TopRight:
		return "tr"
	case MiddleLeft:
		return "ml"
	case MiddleCenter:
		return "mc"
	case MiddleRight:
		return "mr"
	case BottomLeft:
		return "bl"
	case BottomCenter:
		return "bc"
	default:
		return "br"
	}
}

// offset computes the top-left corner for a wmW x wmH watermark on a
// pageW x pageH page. Centered axes ignore the margin; the other axes
// inset by margin from the nearest page edge. Positions outside the
// defined range place bottom-right, matching ParsePosition's fallback.
func (p Position) offset(pageW, pageH, wmW, wmH, margin int) image.Point {
	var x, y int

	switch p {
	case TopLeft, MiddleLeft, BottomLeft:
		x = margin
	case TopCenter, MiddleCenter, BottomCenter:
		x = (pageW - wmW) / 2
	default:
		x = pageW - wmW - margin
	}

	switch p {
	case TopLeft, TopCenter, TopRight:
		y = margin
	case MiddleLeft, MiddleCenter, MiddleRight:
		y = (pageH - wmH) / 2
	default:
		y = pageH - wmH - margin
	}

	return image.Pt(x, y)
}

// Apply composites the prepared watermark onto page at pos and returns
// the blended result as a new image. The page is not modified.
// Watermark regions falling outside the page bounds are clipped, so a
// watermark larger than the page never panics.
func Apply(page *image.NRGBA, wm *Prepared, pos Position) *image.NRGBA {
	b := page.Bounds()
	at := pos.offset(b.Dx(), b.Dy(), wm.Width(), wm.Height(), wm.margin)
	return imaging.Overlay(page, wm.img, at, 1.0)
}
