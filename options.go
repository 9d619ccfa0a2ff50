package imprint

import (
	"github.com/tsawler/imprint/watermark"
	"github.com/tsawler/imprint/writer"
)

// StampOptions holds configuration for a watermarking run.
type StampOptions struct {
	// Page selection (1-indexed in API, stored as-is)
	pages []int

	// Watermark sizing and placement
	maxWidth  int
	minWidth  int
	minHeight int
	margin    int
	opacity   float64
	position  Position

	// Output encoding
	quality    Quality
	pageWidth  float64
	pageHeight float64
	producer   string

	// Parallelism (0 selects one worker per CPU)
	workers int
}

// defaultOptions returns the default stamping options.
func defaultOptions() StampOptions {
	return StampOptions{
		pages:      nil, // nil means all pages
		maxWidth:   watermark.DefaultMaxWidth,
		minWidth:   watermark.DefaultMinWidth,
		minHeight:  watermark.DefaultMinHeight,
		margin:     0,
		opacity:    1.0,
		position:   BottomRight,
		quality:    Lossless,
		pageWidth:  writer.DefaultPageWidth,
		pageHeight: writer.DefaultPageHeight,
		producer:   writer.DefaultProducer,
		workers:    0,
	}
}

// clone creates a deep copy of StampOptions.
func (o StampOptions) clone() StampOptions {
	newOpts := o
	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	return newOpts
}
