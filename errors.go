package imprint

import (
	"errors"

	"github.com/tsawler/imprint/reader"
	"github.com/tsawler/imprint/watermark"
	"github.com/tsawler/imprint/writer"
)

// A stamping run fails with one of the error kinds below. Callers test
// with errors.Is; the failure site wraps the sentinel with the page
// number, filter name, or value involved.
var (
	// ErrMalformedDocument indicates PDF structure the reader cannot use:
	// a missing header, unusable cross-reference data, or broken object
	// syntax where an object was expected.
	ErrMalformedDocument = reader.ErrMalformedDocument

	// ErrMissingImage indicates a page with no DeviceRGB image XObject.
	ErrMissingImage = reader.ErrMissingImage

	// ErrUnsupportedFilter indicates a page image encoded with a filter
	// outside the supported set.
	ErrUnsupportedFilter = reader.ErrUnsupportedFilter

	// ErrSizeMismatch indicates decoded image data whose length does not
	// match the declared width, height, and component count.
	ErrSizeMismatch = reader.ErrSizeMismatch

	// ErrInvalidWatermark indicates logo bytes that no candidate decoder
	// accepts.
	ErrInvalidWatermark = watermark.ErrInvalidWatermark

	// ErrInvalidQuality indicates a quality setting that is neither
	// lossless nor a JPEG level from 1 to 100.
	ErrInvalidQuality = writer.ErrInvalidQuality

	// ErrEmptySelection indicates a page selection with nothing left
	// after out-of-range page numbers are dropped.
	ErrEmptySelection = errors.New("no pages selected")

	// ErrIOFailure indicates a failure reading the input document or
	// writing the stamped output.
	ErrIOFailure = errors.New("i/o failure")
)
