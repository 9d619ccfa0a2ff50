//go:build !ocr

// Package ocr recovers slide text from the page rasters a presentation
// PDF carries.
//
// This stub is compiled when the "ocr" build tag is not set; every
// operation returns ErrOCRNotEnabled. Rebuild with -tags ocr (Tesseract
// required) to enable recognition.
package ocr

import (
	"errors"

	"github.com/tsawler/imprint/reader"
)

// ErrOCRNotEnabled reports that the binary was built without the "ocr"
// tag.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client is the disabled recognition client.
type Client struct{}

// New fails: recognition is not compiled in.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe on a nil client.
func (c *Client) Close() error {
	return nil
}

// SetLanguage fails with ErrOCRNotEnabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// RecognizeRaster fails with ErrOCRNotEnabled.
func (c *Client) RecognizeRaster(raster reader.Raster) (string, error) {
	return "", ErrOCRNotEnabled
}

// RecognizeDeck fails with ErrOCRNotEnabled.
func (c *Client) RecognizeDeck(r *reader.Reader) ([]string, error) {
	return nil, ErrOCRNotEnabled
}
