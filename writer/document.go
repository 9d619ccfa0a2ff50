package writer

import (
	"image"

	"github.com/tsawler/imprint/contentstream"
	"github.com/tsawler/imprint/core"
)

// Default output page geometry. Pages are sized for slide exports;
// images are stretched to fill the media box.
const (
	DefaultPageWidth  = 1376.0
	DefaultPageHeight = 768.0
)

// DefaultProducer is recorded in the Info dictionary when Config leaves
// Producer empty.
const DefaultProducer = "imprint"

// Config controls document assembly.
type Config struct {
	// Quality selects Flate (lossless) or JPEG page encoding.
	Quality Quality

	// PageWidth and PageHeight set the MediaBox of every page.
	// Values <= 0 mean DefaultPageWidth and DefaultPageHeight.
	PageWidth  float64
	PageHeight float64

	// Producer is written to the Info dictionary. Empty means
	// DefaultProducer.
	Producer string
}

func (c Config) normalized() Config {
	if c.PageWidth <= 0 {
		c.PageWidth = DefaultPageWidth
	}
	if c.PageHeight <= 0 {
		c.PageHeight = DefaultPageHeight
	}
	if c.Producer == "" {
		c.Producer = DefaultProducer
	}
	return c
}

// Document is a PDF object graph under construction. Object numbers are
// allocated monotonically from 1; the zero object is the free-list head
// emitted during serialization. A Document grows until it is serialized
// with WriteTo or Bytes and is not safe for concurrent mutation.
type Document struct {
	objs []core.Object // objs[i] is object number i+1
	root core.IndirectRef
	info core.IndirectRef
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// AddObject appends obj to the document and returns its indirect
// reference.
func (d *Document) AddObject(obj core.Object) core.IndirectRef {
	d.objs = append(d.objs, obj)
	return core.IndirectRef{Number: len(d.objs)}
}

// AddStream appends a stream object holding data. The dictionary's
// Length entry is set from data; any existing value is overwritten.
func (d *Document) AddStream(dict core.Dict, data []byte) core.IndirectRef {
	dict.Set("Length", core.Int(len(data)))
	return d.AddObject(&core.Stream{Dict: dict, Data: data})
}

// reserve allocates an object number whose body is supplied later
// through set. Serialization fails on a reserved number never set.
func (d *Document) reserve() core.IndirectRef {
	d.objs = append(d.objs, nil)
	return core.IndirectRef{Number: len(d.objs)}
}

func (d *Document) set(ref core.IndirectRef, obj core.Object) {
	d.objs[ref.Number-1] = obj
}

// SetRoot records the catalog reference written to the trailer.
func (d *Document) SetRoot(ref core.IndirectRef) {
	d.root = ref
}

// SetInfo records the Info dictionary reference written to the trailer.
func (d *Document) SetInfo(ref core.IndirectRef) {
	d.info = ref
}

// NumObjects returns the number of allocated objects, excluding the
// free-list head.
func (d *Document) NumObjects() int {
	return len(d.objs)
}

// BuildDocument assembles a page-per-raster document. Every raster
// becomes one image XObject named /Im0, one content stream stretching
// it over the page, and one page object; pages share a single Pages
// node whose Kids order follows the raster order.
func BuildDocument(rasters []*image.NRGBA, cfg Config) (*Document, error) {
	c := cfg.normalized()
	if err := c.Quality.validate(); err != nil {
		return nil, err
	}

	doc := NewDocument()

	// The page tree is allocated first so page objects can point at
	// their parent before it is filled in.
	pagesRef := doc.reserve()

	kids := make(core.Array, 0, len(rasters))
	for _, raster := range rasters {
		imgRef, err := doc.addImage(raster, c.Quality)
		if err != nil {
			return nil, err
		}

		content := contentstream.NewBuilder().
			SaveState().
			Transform(c.PageWidth, 0, 0, c.PageHeight, 0, 0).
			DrawXObject("Im0").
			RestoreState().
			Bytes()
		contentRef := doc.AddStream(core.Dict{}, content)

		pageRef := doc.AddObject(core.Dict{
			"Type":     core.Name("Page"),
			"Parent":   pagesRef,
			"MediaBox": core.Array{core.Int(0), core.Int(0), core.Real(c.PageWidth), core.Real(c.PageHeight)},
			"Contents": contentRef,
			"Resources": core.Dict{
				"XObject": core.Dict{"Im0": imgRef},
			},
		})
		kids = append(kids, pageRef)
	}

	doc.set(pagesRef, core.Dict{
		"Type":  core.Name("Pages"),
		"Kids":  kids,
		"Count": core.Int(len(rasters)),
	})

	doc.SetRoot(doc.AddObject(core.Dict{
		"Type":  core.Name("Catalog"),
		"Pages": pagesRef,
	}))
	doc.SetInfo(doc.AddObject(core.Dict{
		"Producer": core.String(c.Producer),
	}))

	return doc, nil
}
