package writer

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidQuality indicates a quality setting that is neither
// "lossless" nor a JPEG level between 1 and 100.
var ErrInvalidQuality = errors.New("invalid quality")

// Quality selects how page images are encoded in the output document.
// The zero value is Lossless.
type Quality struct {
	jpeg int // 0 selects Flate of raw RGB, 1..100 selects JPEG
}

// Lossless deflate-compresses raw RGB pixels. Output pages decode
// bit-exactly but are larger than JPEG.
var Lossless = Quality{}

// JPEGQuality returns a Quality that re-encodes pages as JPEG at level
// q, from 1 (smallest) to 100 (best). A q of zero means Lossless;
// out-of-range levels are rejected when the document is built.
func JPEGQuality(q int) Quality {
	return Quality{jpeg: q}
}

// IsLossless reports whether pages will be Flate-encoded.
func (q Quality) IsLossless() bool {
	return q.jpeg == 0
}

// JPEG returns the JPEG level and whether JPEG encoding is selected.
func (q Quality) JPEG() (int, bool) {
	return q.jpeg, q.jpeg != 0
}

// String returns "lossless" or the JPEG level as digits, the same forms
// ParseQuality accepts.
func (q Quality) String() string {
	if q.jpeg == 0 {
		return "lossless"
	}
	return strconv.Itoa(q.jpeg)
}

func (q Quality) validate() error {
	if q.jpeg < 0 || q.jpeg > 100 {
		return fmt.Errorf("%w: JPEG level %d is outside 1..100", ErrInvalidQuality, q.jpeg)
	}
	return nil
}

// ParseQuality interprets a quality flag value: the string "lossless"
// or an integer from 1 to 100. Anything else is ErrInvalidQuality.
func ParseQuality(s string) (Quality, error) {
	if s == "lossless" {
		return Lossless, nil
	}
	q, err := strconv.Atoi(s)
	if err != nil {
		return Quality{}, fmt.Errorf("%w: %q is not \"lossless\" or an integer", ErrInvalidQuality, s)
	}
	if q < 1 || q > 100 {
		return Quality{}, fmt.Errorf("%w: %d is outside 1..100", ErrInvalidQuality, q)
	}
	return Quality{jpeg: q}, nil
}
