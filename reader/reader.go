package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/tsawler/imprint/core"
	"github.com/tsawler/imprint/pages"
	"github.com/tsawler/imprint/resolver"
)

var (
	// ErrMalformedDocument indicates PDF structure the reader cannot use:
	// a missing header, unusable cross-reference data, or broken object
	// syntax where an object was expected.
	ErrMalformedDocument = errors.New("malformed PDF document")

	// ErrMissingImage indicates a page with no DeviceRGB image XObject.
	ErrMissingImage = errors.New("no DeviceRGB image on page")

	// ErrUnsupportedFilter indicates an image stream encoded with a
	// filter outside the supported set.
	ErrUnsupportedFilter = errors.New("unsupported image filter")

	// ErrSizeMismatch indicates decoded image data whose length does not
	// match the declared width, height, and component count.
	ErrSizeMismatch = errors.New("image data size mismatch")
)

// PDFVersion represents a PDF version number from the file header.
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Option configures a Reader.
type Option func(*Reader)

// WithRepair enables the recovery scan: when the cross-reference data is
// damaged or an entry points at the wrong byte, the reader rebuilds the
// object table by scanning the file for "N G obj" headers. The scan runs
// at most once per document.
func WithRepair(enabled bool) Option {
	return func(r *Reader) {
		r.repair = enabled
	}
}

// Reader provides access to the objects and pages of a PDF document.
// Methods are safe for concurrent use once the Reader is constructed.
type Reader struct {
	src    io.ReaderAt
	size   int64
	closer io.Closer
	repair bool

	version PDFVersion
	xref    *core.XRefTable
	trailer core.Dict

	// mu guards the caches and the xref rewrite done by the repair scan.
	mu       sync.Mutex
	objCache map[int]core.Object
	stmCache map[int]*core.ObjectStream
	repaired bool

	res *resolver.Resolver

	pagesOnce sync.Once
	pagesErr  error
	entries   []pages.PageEntry
}

// Ensure Reader satisfies the resolver's object source interface.
var _ resolver.ObjectReader = (*Reader)(nil)

// Open opens the PDF file at path. The returned Reader owns the file
// handle; call Close when done.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat PDF file: %w", err)
	}

	r, err := NewReader(f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// FromBytes constructs a Reader over an in-memory document.
func FromBytes(data []byte, opts ...Option) (*Reader, error) {
	return NewReader(bytes.NewReader(data), int64(len(data)), opts...)
}

// NewReader constructs a Reader over the first size bytes of src. The
// header and cross-reference data are parsed eagerly, so a non-nil
// Reader is always usable.
func NewReader(src io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	r := &Reader{
		src:      src,
		size:     size,
		objCache: make(map[int]core.Object),
		stmCache: make(map[int]*core.ObjectStream),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.res = resolver.New(r)

	if err := r.parseHeader(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	if err := r.loadXRef(); err != nil {
		if !r.repair || !r.repairXRef() {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
	}
	return r, nil
}

// Close releases the underlying file handle, if the Reader owns one.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Version returns the PDF version from the file header.
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the document trailer dictionary.
func (r *Reader) Trailer() core.Dict {
	return r.trailer
}

// FileSize returns the document length in bytes.
func (r *Reader) FileSize() int64 {
	return r.size
}

// NumObjects returns the number of cross-reference entries.
func (r *Reader) NumObjects() int {
	return r.xref.Size()
}

// Resolver returns the reference resolver bound to this document.
func (r *Reader) Resolver() *resolver.Resolver {
	return r.res
}

// CacheSize returns the number of cached objects.
func (r *Reader) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objCache)
}

// ClearCache drops all cached objects and object streams. Useful between
// batches when processing very large documents.
func (r *Reader) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objCache = make(map[int]core.Object)
	r.stmCache = make(map[int]*core.ObjectStream)
}

var headerRegex = regexp.MustCompile(`^%PDF-(\d+)\.(\d+)`)

func (r *Reader) parseHeader() error {
	buf := make([]byte, 16)
	n, err := r.src.ReadAt(buf, 0)
	if n == 0 && err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	matches := headerRegex.FindSubmatch(buf[:n])
	if matches == nil {
		return errors.New("file does not start with a %PDF- header")
	}

	r.version.Major, _ = strconv.Atoi(string(matches[1]))
	r.version.Minor, _ = strconv.Atoi(string(matches[2]))
	return nil
}

// loadXRef parses every cross-reference section, newest first, and merges
// them so the newest entry for each object wins. Classic tables, PDF 1.5
// cross-reference streams, and hybrid files are all handled.
func (r *Reader) loadXRef() error {
	parser := core.NewXRefParser(io.NewSectionReader(r.src, 0, r.size))
	tables, err := parser.ParseAllXRefs()
	if err != nil {
		return fmt.Errorf("failed to parse cross-reference data: %w", err)
	}

	merged := core.MergeXRefTables(tables...)
	if merged.Trailer.Get("Root") == nil {
		return errors.New("cross-reference trailer has no /Root")
	}

	r.xref = merged
	r.trailer = merged.Trailer
	return nil
}

// GetObject loads the object identified by ref, reading it from the file
// or from its containing object stream on first access. Loaded objects
// are cached by object number.
func (r *Reader) GetObject(ref core.IndirectRef) (core.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getObject(ref.Number, make(map[int]bool))
}

// getObject is the locked core of GetObject. The loading set breaks
// cycles where an object's stream length or containing object stream
// refers back to the object being loaded.
func (r *Reader) getObject(objNum int, loading map[int]bool) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}
	if loading[objNum] {
		return nil, fmt.Errorf("object %d depends on itself", objNum)
	}
	loading[objNum] = true
	defer delete(loading, objNum)

	entry, ok := r.xref.Get(objNum)
	if !ok || !entry.InUse {
		if r.repair && r.repairXRef() {
			if entry, ok = r.xref.Get(objNum); ok && entry.InUse {
				return r.loadEntry(objNum, entry, loading)
			}
		}
		return nil, fmt.Errorf("object %d not found in cross-reference table", objNum)
	}

	obj, err := r.loadEntry(objNum, entry, loading)
	if err != nil && r.repair && r.repairXRef() {
		if entry, ok = r.xref.Get(objNum); ok && entry.InUse {
			return r.loadEntry(objNum, entry, loading)
		}
	}
	return obj, err
}

func (r *Reader) loadEntry(objNum int, entry *core.XRefEntry, loading map[int]bool) (core.Object, error) {
	var obj core.Object
	var err error

	switch entry.Type {
	case core.XRefEntryUncompressed:
		obj, err = r.parseObjectAt(entry.Offset, objNum, loading)
	case core.XRefEntryCompressed:
		obj, err = r.loadCompressed(objNum, entry.StreamNum, loading)
	default:
		err = fmt.Errorf("object %d has an unusable cross-reference entry", objNum)
	}
	if err != nil {
		return nil, err
	}

	r.objCache[objNum] = obj
	return obj, nil
}

// lockedResolver lets the object parser resolve indirect stream lengths
// while the reader mutex is already held.
type lockedResolver struct {
	r       *Reader
	loading map[int]bool
}

var _ core.ReferenceResolver = (*lockedResolver)(nil)

func (lr *lockedResolver) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return lr.r.getObject(ref.Number, lr.loading)
}

func (r *Reader) parseObjectAt(offset int64, objNum int, loading map[int]bool) (core.Object, error) {
	if offset < 0 || offset >= r.size {
		return nil, fmt.Errorf("object %d offset %d is outside the file", objNum, offset)
	}

	parser := core.NewParser(io.NewSectionReader(r.src, offset, r.size-offset))
	parser.SetReferenceResolver(&lockedResolver{r: r, loading: loading})

	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
	}
	if indObj.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, found %d", objNum, indObj.Ref.Number)
	}
	return indObj.Object, nil
}

// loadCompressed extracts an object from the object stream that contains
// it. Parsed object streams are cached so each one is decoded once.
func (r *Reader) loadCompressed(objNum, streamNum int, loading map[int]bool) (core.Object, error) {
	objStm, ok := r.stmCache[streamNum]
	if !ok {
		container, err := r.getObject(streamNum, loading)
		if err != nil {
			return nil, fmt.Errorf("failed to load object stream %d: %w", streamNum, err)
		}
		stream, isStream := container.(*core.Stream)
		if !isStream {
			return nil, fmt.Errorf("object %d is not an object stream", streamNum)
		}
		objStm, err = core.NewObjectStream(stream)
		if err != nil {
			return nil, fmt.Errorf("invalid object stream %d: %w", streamNum, err)
		}
		r.stmCache[streamNum] = objStm
	}

	obj, _, err := objStm.GetObjectByNumber(objNum)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %d from object stream %d: %w", objNum, streamNum, err)
	}
	return obj, nil
}

var objHeaderRegex = regexp.MustCompile(`(?m)^[ \t]*(\d+)[ \t]+(\d+)[ \t]+obj\b`)

// repairXRef rebuilds the cross-reference table by scanning the raw file
// for object headers. It returns true when a usable table with a trailer
// was recovered. Callers must hold mu or have exclusive access.
func (r *Reader) repairXRef() bool {
	if r.repaired {
		return false
	}
	r.repaired = true

	data := make([]byte, r.size)
	if _, err := r.src.ReadAt(data, 0); err != nil && err != io.EOF {
		return false
	}

	table := core.NewXRefTable()
	for _, m := range objHeaderRegex.FindAllSubmatchIndex(data, -1) {
		objNum, err := strconv.Atoi(string(data[m[2]:m[3]]))
		if err != nil {
			continue
		}
		gen, err := strconv.Atoi(string(data[m[4]:m[5]]))
		if err != nil {
			continue
		}
		// Later definitions shadow earlier ones, matching incremental
		// update order.
		table.Set(objNum, &core.XRefEntry{
			Type:       core.XRefEntryUncompressed,
			Offset:     int64(m[2]),
			Generation: gen,
			InUse:      true,
		})
	}
	if table.Size() == 0 {
		return false
	}

	r.xref = table
	r.objCache = make(map[int]core.Object)
	r.stmCache = make(map[int]*core.ObjectStream)

	trailer := r.trailer
	if trailer == nil || trailer.Get("Root") == nil {
		trailer = r.recoverTrailer(data)
	}
	if trailer == nil {
		return false
	}

	table.Trailer = trailer
	r.trailer = trailer
	return true
}

// recoverTrailer finds a trailer for a repaired document: first the last
// trailer dictionary in the file, then a probe of every recovered object
// for the document catalog.
func (r *Reader) recoverTrailer(data []byte) core.Dict {
	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		parser := core.NewParser(bytes.NewReader(data[idx+len("trailer"):]))
		if obj, err := parser.ParseObject(); err == nil {
			if dict, ok := obj.(core.Dict); ok && dict.Get("Root") != nil {
				return dict
			}
		}
	}

	nums := make([]int, 0, r.xref.Size())
	maxNum := 0
	for num := range r.xref.Entries {
		nums = append(nums, num)
		if num > maxNum {
			maxNum = num
		}
	}
	sort.Ints(nums)

	for _, num := range nums {
		obj, err := r.getObject(num, make(map[int]bool))
		if err != nil {
			continue
		}
		dict, ok := obj.(core.Dict)
		if !ok {
			continue
		}
		if typeName, ok := dict.GetName("Type"); ok && typeName == "Catalog" {
			return core.Dict{
				"Size": core.Int(maxNum + 1),
				"Root": core.IndirectRef{Number: num},
			}
		}
	}
	return nil
}

// Catalog returns the document catalog dictionary from the trailer Root.
func (r *Reader) Catalog() (core.Dict, error) {
	rootObj := r.trailer.Get("Root")
	if rootObj == nil {
		return nil, fmt.Errorf("%w: trailer has no /Root", ErrMalformedDocument)
	}

	catalog, err := r.res.ResolveToDict(rootObj)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resolve catalog: %w", ErrMalformedDocument, err)
	}
	return catalog, nil
}

// Info returns the document information dictionary, or nil when the
// document has none.
func (r *Reader) Info() (core.Dict, error) {
	infoObj := r.trailer.Get("Info")
	if infoObj == nil {
		return nil, nil
	}

	info, err := r.res.ResolveToDict(infoObj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve info dictionary: %w", err)
	}
	return info, nil
}

// InfoText returns the decoded text value of an information dictionary
// entry such as Title or Producer.
func (r *Reader) InfoText(key string) (string, bool) {
	info, err := r.Info()
	if err != nil || info == nil {
		return "", false
	}

	obj, err := r.res.Resolve(info.Get(key))
	if err != nil {
		return "", false
	}
	s, ok := obj.(core.String)
	if !ok {
		return "", false
	}
	return core.DecodeTextString(s), true
}

// ensurePages flattens the page tree once. The flattened entries carry
// their inherited attributes, so later page access involves no tree
// walking and is safe from multiple goroutines.
func (r *Reader) ensurePages() error {
	r.pagesOnce.Do(func() {
		catalog, err := r.Catalog()
		if err != nil {
			r.pagesErr = err
			return
		}

		pagesObj := catalog.Get("Pages")
		if pagesObj == nil {
			r.pagesErr = fmt.Errorf("%w: catalog has no /Pages", ErrMalformedDocument)
			return
		}
		root, err := r.res.ResolveToDict(pagesObj)
		if err != nil {
			r.pagesErr = fmt.Errorf("%w: failed to resolve page tree root: %w", ErrMalformedDocument, err)
			return
		}

		entries, err := pages.NewPageTree(root, r.res).Entries()
		if err != nil {
			r.pagesErr = fmt.Errorf("%w: %w", ErrMalformedDocument, err)
			return
		}
		r.entries = entries
	})
	return r.pagesErr
}

// PageCount returns the number of pages found by traversing the page
// tree.
func (r *Reader) PageCount() (int, error) {
	if err := r.ensurePages(); err != nil {
		return 0, err
	}
	return len(r.entries), nil
}

// PageEntries returns every page in document order.
func (r *Reader) PageEntries() ([]pages.PageEntry, error) {
	if err := r.ensurePages(); err != nil {
		return nil, err
	}
	return r.entries, nil
}

// GetPage returns the page at index (0-based) in document order.
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	if err := r.ensurePages(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(r.entries) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(r.entries))
	}
	return r.entries[index].Page, nil
}
