package imprint

import (
	"io"
)

// Open prepares a Stamper for the PDF file at path. The file is not
// opened until a terminal operation runs; open and parse errors surface
// there.
//
// Example:
//
//	out, err := imprint.Open("deck.pdf").Process(logo)
func Open(path string) *Stamper {
	return &Stamper{
		filename: path,
		options:  defaultOptions(),
	}
}

// FromBytes prepares a Stamper for an in-memory PDF document.
//
// Example:
//
//	out, err := imprint.FromBytes(deck).Quality(imprint.JPEGQuality(85)).Process(logo)
func FromBytes(data []byte) *Stamper {
	return &Stamper{
		data:    data,
		options: defaultOptions(),
	}
}

// FromReader prepares a Stamper that reads the document through src.
// size is the total byte length of the document.
func FromReader(src io.ReaderAt, size int64) *Stamper {
	return &Stamper{
		src:     src,
		srcSize: size,
		options: defaultOptions(),
	}
}

// PageCount reports the number of pages in an in-memory PDF document.
func PageCount(pdfBytes []byte) (int, error) {
	s := FromBytes(pdfBytes)
	defer s.Close()
	return s.PageCount()
}

// ProcessDocument stamps logoBytes onto pdfBytes in a single call.
// quality is parsed by ParseQuality and position by ParsePosition;
// pageIndices is the 1-based page selection (nil means all pages); minW
// and minH set the watermark minimums, with values of zero or less
// keeping the defaults.
func ProcessDocument(pdfBytes, logoBytes []byte, quality string, pageIndices []int, position string, minW, minH int) ([]byte, error) {
	q, err := ParseQuality(quality)
	if err != nil {
		return nil, err
	}
	return FromBytes(pdfBytes).
		Quality(q).
		Pages(pageIndices...).
		Position(ParsePosition(position)).
		MinSize(minW, minH).
		Process(logoBytes)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := imprint.Must(imprint.Open("deck.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
