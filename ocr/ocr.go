//go:build ocr

// Package ocr recovers slide text from the page rasters a presentation
// PDF carries.
//
// It wraps the Tesseract engine via gosseract and is compiled only with
// the "ocr" build tag. Tesseract must be installed on the system
// (brew install tesseract / apt-get install tesseract-ocr).
package ocr

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/imprint/reader"
)

// Client runs text recognition over page rasters. Close it when done to
// release the engine.
type Client struct {
	client *gosseract.Client
}

// New creates a recognition client with the default language (English).
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases the engine.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// SetLanguage selects the recognition language(s), "+"-separated for
// multiple, e.g. "eng+fra".
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// RecognizeRaster returns the text found on one decoded page raster, as
// produced by the reader's ExtractPageImages, with surrounding
// whitespace trimmed.
func (c *Client) RecognizeRaster(raster reader.Raster) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, raster.Image()); err != nil {
		return "", fmt.Errorf("failed to encode raster: %w", err)
	}
	if err := c.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// RecognizeDeck extracts every page raster from the document and returns
// the recognized text per page, in page order.
func (c *Client) RecognizeDeck(r *reader.Reader) ([]string, error) {
	rasters, err := r.ExtractPageImages()
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(rasters))
	for i, raster := range rasters {
		text, err := c.RecognizeRaster(raster)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		texts[i] = text
	}
	return texts, nil
}
