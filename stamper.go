package imprint

import (
	"errors"
	"fmt"
	"image"
	"io"
	"runtime"
	"sync"

	"github.com/tsawler/imprint/reader"
	"github.com/tsawler/imprint/watermark"
	"github.com/tsawler/imprint/writer"
)

// Raster is a decoded page image, re-exported from the reader package.
type Raster = reader.Raster

// Stamper provides a fluent interface for watermarking slide-deck PDFs.
// Each configuration method returns a new Stamper instance, making it
// safe for concurrent use and allowing method chaining.
type Stamper struct {
	// Source (exactly one is set)
	filename string
	data     []byte
	src      io.ReaderAt
	srcSize  int64

	// Lifecycle
	reader       *reader.Reader
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool // true if the reader has been opened

	// Configuration
	options StampOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Stamper with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (s *Stamper) clone() *Stamper {
	return &Stamper{
		filename:     s.filename,
		data:         s.data,
		src:          s.src,
		srcSize:      s.srcSize,
		reader:       s.reader,
		ownsReader:   s.ownsReader,
		readerOpened: s.readerOpened,
		options:      s.options.clone(),
		err:          s.err,
	}
}

// ensureReader opens the reader if not already open. The repair scan is
// enabled, so documents with damaged cross-reference tables still load.
func (s *Stamper) ensureReader() error {
	if s.readerOpened {
		return nil
	}

	var (
		r   *reader.Reader
		err error
	)
	switch {
	case s.filename != "":
		r, err = reader.Open(s.filename, reader.WithRepair(true))
	case s.data != nil:
		r, err = reader.FromBytes(s.data, reader.WithRepair(true))
	case s.src != nil:
		r, err = reader.NewReader(s.src, s.srcSize, reader.WithRepair(true))
	default:
		return fmt.Errorf("no input document specified")
	}
	if err != nil {
		if errors.Is(err, ErrMalformedDocument) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	s.reader = r
	s.ownsReader = true
	s.readerOpened = true
	return nil
}

// Close releases the underlying reader. It is safe to call Close multiple
// times.
func (s *Stamper) Close() error {
	if s.ownsReader && s.reader != nil {
		err := s.reader.Close()
		s.reader = nil
		s.ownsReader = false
		return err
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Stamper instance)
// ============================================================================

// Quality selects the output image encoding: Lossless (the default) or
// JPEG at a level from 1 to 100.
//
// Example:
//
//	out, err := imprint.Open("deck.pdf").Quality(imprint.JPEGQuality(85)).Process(logo)
func (s *Stamper) Quality(q Quality) *Stamper {
	newSt := s.clone()
	newSt.options.quality = q
	return newSt
}

// Position places the watermark on each page. The default is BottomRight.
//
// Example:
//
//	out, err := imprint.Open("deck.pdf").Position(imprint.TopCenter).Process(logo)
func (s *Stamper) Position(p Position) *Stamper {
	newSt := s.clone()
	newSt.options.position = p
	return newSt
}

// MinSize sets the minimum watermark dimensions in pixels. Values of zero
// or less keep the defaults (107x21).
func (s *Stamper) MinSize(w, h int) *Stamper {
	newSt := s.clone()
	newSt.options.minWidth = w
	newSt.options.minHeight = h
	return newSt
}

// MaxWidth sets the width the watermark is first scaled to, before the
// minimums apply. Values of zero or less keep the default (120).
func (s *Stamper) MaxWidth(w int) *Stamper {
	newSt := s.clone()
	newSt.options.maxWidth = w
	return newSt
}

// Margin sets the inset in pixels between the watermark and the page
// edges it is anchored to. The default is 0.
func (s *Stamper) Margin(px int) *Stamper {
	newSt := s.clone()
	newSt.options.margin = px
	return newSt
}

// Opacity scales the watermark's alpha channel. Values outside (0, 1]
// keep the watermark fully opaque.
func (s *Stamper) Opacity(f float64) *Stamper {
	newSt := s.clone()
	newSt.options.opacity = f
	return newSt
}

// PageSize sets the output page geometry in PDF points. The default is
// 1376x768, the fixed slide geometry exported decks use.
func (s *Stamper) PageSize(w, h float64) *Stamper {
	newSt := s.clone()
	newSt.options.pageWidth = w
	newSt.options.pageHeight = h
	return newSt
}

// Producer sets the Producer entry of the output document's Info
// dictionary. The default is "imprint".
func (s *Stamper) Producer(name string) *Stamper {
	newSt := s.clone()
	newSt.options.producer = name
	return newSt
}

// Pages selects which pages to stamp (1-indexed), in the given order.
// Multiple calls are cumulative. Page numbers outside the document are
// skipped; a selection that skips every page fails the run with
// ErrEmptySelection. No selection means all pages in source order.
//
// Example:
//
//	out, err := imprint.Open("deck.pdf").Pages(1, 3, 5).Process(logo)
func (s *Stamper) Pages(pages ...int) *Stamper {
	newSt := s.clone()
	newSt.options.pages = append(newSt.options.pages, pages...)
	return newSt
}

// Workers bounds the number of pages stamped concurrently. The default
// of 0 selects one worker per CPU; 1 forces sequential processing.
func (s *Stamper) Workers(n int) *Stamper {
	newSt := s.clone()
	newSt.options.workers = n
	return newSt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// PageCount returns the total number of pages in the document.
// Note: This does NOT close the reader, allowing further operations.
//
// Example:
//
//	st := imprint.Open("deck.pdf")
//	defer st.Close()
//	count, err := st.PageCount()
func (s *Stamper) PageCount() (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if err := s.ensureReader(); err != nil {
		return 0, err
	}
	return s.reader.PageCount()
}

// ExtractImages decodes and returns the page images of the selected pages
// without stamping them. This is a terminal operation that closes the
// underlying reader.
//
// Example:
//
//	rasters, err := imprint.Open("deck.pdf").Pages(1).ExtractImages()
//	if err == nil {
//	    png.Encode(out, rasters[0].Image())
//	}
func (s *Stamper) ExtractImages() ([]Raster, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := s.ensureReader(); err != nil {
		return nil, err
	}
	defer s.Close()

	pageIndices, err := s.resolvePages()
	if err != nil {
		return nil, err
	}

	rasters := make([]Raster, len(pageIndices))
	for i, pageNum := range pageIndices {
		raster, err := s.reader.PageImage(pageNum)
		if err != nil {
			return nil, err
		}
		rasters[i] = raster
	}
	return rasters, nil
}

// Process stamps the watermark onto every selected page and returns the
// rebuilt document. logo may be PNG, JPEG, or any format the registered
// decoders can sniff. This is a terminal operation that closes the
// underlying reader.
//
// Example:
//
//	logo, _ := os.ReadFile("logo.png")
//	out, err := imprint.Open("deck.pdf").Process(logo)
//	if err == nil {
//	    os.WriteFile("deck-stamped.pdf", out, 0644)
//	}
func (s *Stamper) Process(logo []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := s.ensureReader(); err != nil {
		return nil, err
	}
	defer s.Close()

	pageIndices, err := s.resolvePages()
	if err != nil {
		return nil, err
	}

	wm, err := watermark.Prepare(logo, watermark.Options{
		MaxWidth:  s.options.maxWidth,
		MinWidth:  s.options.minWidth,
		MinHeight: s.options.minHeight,
		Opacity:   s.options.opacity,
		Margin:    s.options.margin,
	})
	if err != nil {
		return nil, err
	}

	rasters, err := s.stampPages(pageIndices, wm)
	if err != nil {
		return nil, err
	}

	doc, err := writer.BuildDocument(rasters, writer.Config{
		Quality:    s.options.quality,
		PageWidth:  s.options.pageWidth,
		PageHeight: s.options.pageHeight,
		Producer:   s.options.producer,
	})
	if err != nil {
		return nil, err
	}
	return doc.Bytes()
}

// ProcessTo stamps the watermark onto every selected page and writes the
// rebuilt document to w. This is a terminal operation that closes the
// underlying reader.
func (s *Stamper) ProcessTo(w io.Writer, logo []byte) error {
	out, err := s.Process(logo)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// ============================================================================
// Internal helpers
// ============================================================================

// resolvePages converts the configured 1-indexed page numbers to 0-indexed
// reader indices, keeping selection order and dropping duplicates and
// numbers outside the document. An empty selection means every page.
func (s *Stamper) resolvePages() ([]int, error) {
	pageCount, err := s.reader.PageCount()
	if err != nil {
		return nil, err
	}

	if len(s.options.pages) == 0 {
		indices := make([]int, pageCount)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	seen := make(map[int]bool)
	var indices []int
	for _, p := range s.options.pages {
		if p < 1 || p > pageCount || seen[p] {
			continue
		}
		seen[p] = true
		indices = append(indices, p-1)
	}

	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: pages %v of a %d-page document", ErrEmptySelection, s.options.pages, pageCount)
	}
	return indices, nil
}

// stampPages extracts, composites, and returns the page rasters for the
// resolved indices, in selection order. Pages are handed to a bounded
// worker pool; each result lands in its selection slot, so output order
// never depends on completion order. The first error recorded fails the
// run once the pool drains.
func (s *Stamper) stampPages(pageIndices []int, wm *watermark.Prepared) ([]*image.NRGBA, error) {
	out := make([]*image.NRGBA, len(pageIndices))

	stamp := func(slot int) error {
		raster, err := s.reader.PageImage(pageIndices[slot])
		if err != nil {
			return err
		}
		out[slot] = watermark.Apply(raster.NRGBA(), wm, s.options.position)
		return nil
	}

	workers := s.options.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pageIndices) {
		workers = len(pageIndices)
	}

	if workers <= 1 {
		for slot := range pageIndices {
			if err := stamp(slot); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	slots := make(chan int)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for slot := range slots {
				if err := stamp(slot); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}

	for slot := range pageIndices {
		slots <- slot
	}
	close(slots)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
