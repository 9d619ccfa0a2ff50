//go:build !ocr

package ocr

import (
	"errors"
	"testing"

	"github.com/tsawler/imprint/reader"
)

func TestNewReturnsError(t *testing.T) {
	client, err := New()
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("New() error = %v, want ErrOCRNotEnabled", err)
	}
	if client != nil {
		t.Error("New() returned a client without OCR compiled in")
	}
}

func TestCloseOnNilClient(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client: %v", err)
	}
}

func TestStubOperationsReturnError(t *testing.T) {
	client := &Client{}

	if _, err := client.RecognizeRaster(reader.Raster{}); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("RecognizeRaster error = %v, want ErrOCRNotEnabled", err)
	}
	if _, err := client.RecognizeDeck(nil); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("RecognizeDeck error = %v, want ErrOCRNotEnabled", err)
	}
	if err := client.SetLanguage("eng"); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("SetLanguage error = %v, want ErrOCRNotEnabled", err)
	}
}
