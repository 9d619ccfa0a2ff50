package pages

import (
	"fmt"

	"github.com/tsawler/imprint/core"
)

// inheritable lists the page attributes a Pages node passes down to its
// descendants. The nearest ancestor holding a value wins.
var inheritable = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// ObjectResolver resolves indirect references during the tree walk
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Catalog represents the PDF document catalog (root of document structure)
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog creates a new catalog from a dictionary
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{
		dict:     dict,
		resolver: resolver,
	}
}

// Type returns the catalog type (should be "Catalog")
func (c *Catalog) Type() string {
	if name, ok := c.dict.GetName("Type"); ok {
		return string(name)
	}
	return ""
}

// Pages returns the page tree root
func (c *Catalog) Pages() (core.Dict, error) {
	pagesRef := c.dict.Get("Pages")
	if pagesRef == nil {
		return nil, fmt.Errorf("catalog missing /Pages entry")
	}

	pagesObj, err := c.resolver.Resolve(pagesRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Pages: %w", err)
	}

	pagesDict, ok := pagesObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid /Pages type: %T", pagesObj)
	}

	return pagesDict, nil
}

// Metadata returns the metadata stream if present
func (c *Catalog) Metadata() (*core.Stream, error) {
	metadataRef := c.dict.Get("Metadata")
	if metadataRef == nil {
		return nil, nil // Optional
	}

	metadataObj, err := c.resolver.Resolve(metadataRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Metadata: %w", err)
	}

	stream, ok := metadataObj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("invalid /Metadata type: %T", metadataObj)
	}

	return stream, nil
}

// Version returns the version entry if present
func (c *Catalog) Version() string {
	if name, ok := c.dict.GetName("Version"); ok {
		return string(name)
	}
	return ""
}

// PageEntry pairs a page with its 1-based number and the reference the
// tree walk reached it through. Entries are ordered ascending by number,
// which is document order, independent of object-table order. Ref is the
// zero reference when the page dictionary was stored inline in /Kids.
type PageEntry struct {
	Number int
	Ref    core.IndirectRef
	Page   *Page
}

// PageTree represents the PDF page tree
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	entries  []PageEntry // Cached flattened page list
}

// NewPageTree creates a new page tree from the root pages dictionary
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{
		root:     root,
		resolver: resolver,
	}
}

// Count returns the total number of pages
func (t *PageTree) Count() (int, error) {
	countObj := t.root.Get("Count")
	if countObj == nil {
		return 0, fmt.Errorf("page tree missing /Count entry")
	}

	resolved, err := t.resolver.Resolve(countObj)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve /Count: %w", err)
	}

	count, ok := resolved.(core.Int)
	if !ok {
		return 0, fmt.Errorf("invalid /Count type: %T", resolved)
	}

	return int(count), nil
}

// Entries returns the flattened page list in document order
func (t *PageTree) Entries() ([]PageEntry, error) {
	if t.entries == nil {
		if err := t.loadPages(); err != nil {
			return nil, err
		}
	}

	return t.entries, nil
}

// Pages returns all pages as a slice
func (t *PageTree) Pages() ([]*Page, error) {
	entries, err := t.Entries()
	if err != nil {
		return nil, err
	}

	pages := make([]*Page, len(entries))
	for i, entry := range entries {
		pages[i] = entry.Page
	}
	return pages, nil
}

// GetPage returns the page at the given index (0-based)
func (t *PageTree) GetPage(index int) (*Page, error) {
	entries, err := t.Entries()
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(entries) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(entries))
	}

	return entries[index].Page, nil
}

// loadPages traverses the page tree and builds the flattened page list
func (t *PageTree) loadPages() error {
	t.entries = make([]PageEntry, 0)

	visited := make(map[int]bool)
	if err := t.traversePageNode(t.root, core.IndirectRef{}, nil, visited); err != nil {
		t.entries = nil
		return fmt.Errorf("failed to traverse page tree: %w", err)
	}

	for i := range t.entries {
		t.entries[i].Number = i + 1
	}

	return nil
}

// traversePageNode recursively traverses a page tree node. ref is the
// reference the node was reached through, inherited carries attribute
// values from ancestor Pages nodes, and visited holds object numbers
// already on the walk so malformed trees cannot recurse forever.
func (t *PageTree) traversePageNode(node core.Dict, ref core.IndirectRef, inherited core.Dict, visited map[int]bool) error {
	typeName, ok := node.GetName("Type")
	if !ok {
		return fmt.Errorf("page node missing /Type entry")
	}

	switch string(typeName) {
	case "Pages":
		// Intermediate node: overlay its inheritable attributes, then
		// traverse children.
		passed := mergeInheritable(inherited, node)

		kidsObj := node.Get("Kids")
		if kidsObj == nil {
			return fmt.Errorf("Pages node missing /Kids entry")
		}

		kidsResolved, err := t.resolver.Resolve(kidsObj)
		if err != nil {
			return fmt.Errorf("failed to resolve /Kids: %w", err)
		}

		kids, ok := kidsResolved.(core.Array)
		if !ok {
			return fmt.Errorf("invalid /Kids type: %T", kidsResolved)
		}

		for i, kidObj := range kids {
			kidRef, isRef := kidObj.(core.IndirectRef)
			if isRef {
				if visited[kidRef.Number] {
					return fmt.Errorf("page tree cycles at object %d", kidRef.Number)
				}
				visited[kidRef.Number] = true
			}

			kidResolved, err := t.resolver.Resolve(kidObj)
			if err != nil {
				return fmt.Errorf("failed to resolve kid %d: %w", i, err)
			}

			kidDict, ok := kidResolved.(core.Dict)
			if !ok {
				return fmt.Errorf("invalid kid type: %T", kidResolved)
			}

			if err := t.traversePageNode(kidDict, kidRef, passed, visited); err != nil {
				return err
			}
		}

	case "Page":
		t.entries = append(t.entries, PageEntry{
			Ref:  ref,
			Page: NewPage(node, inherited, t.resolver),
		})

	default:
		return fmt.Errorf("unexpected page node type: %s", typeName)
	}

	return nil
}

// mergeInheritable overlays node's inheritable attributes onto the values
// already inherited from its ancestors.
func mergeInheritable(inherited core.Dict, node core.Dict) core.Dict {
	merged := make(core.Dict, len(inheritable))
	for _, key := range inheritable {
		if v := node.Get(key); v != nil {
			merged[key] = v
			continue
		}
		if inherited != nil {
			if v := inherited.Get(key); v != nil {
				merged[key] = v
			}
		}
	}
	return merged
}

// Page represents a single PDF page
type Page struct {
	dict      core.Dict
	inherited core.Dict // attribute values inherited from ancestor Pages nodes
	resolver  ObjectResolver
}

// NewPage creates a new page from a dictionary. inherited holds attribute
// values collected from the page's ancestors and may be nil.
func NewPage(dict core.Dict, inherited core.Dict, resolver ObjectResolver) *Page {
	return &Page{
		dict:      dict,
		inherited: inherited,
		resolver:  resolver,
	}
}

// Type returns the page type (should be "Page")
func (p *Page) Type() string {
	if name, ok := p.dict.GetName("Type"); ok {
		return string(name)
	}
	return ""
}

// attr retrieves an attribute, falling back to inherited values.
func (p *Page) attr(name string) core.Object {
	if obj := p.dict.Get(name); obj != nil {
		return obj
	}
	if p.inherited != nil {
		return p.inherited.Get(name)
	}
	return nil
}

// MediaBox returns the page media box [x1 y1 x2 y2]
// This is inheritable, so checks ancestors if not present
func (p *Page) MediaBox() ([]float64, error) {
	return p.getBox("MediaBox")
}

// CropBox returns the page crop box [x1 y1 x2 y2]
// This is inheritable, defaults to MediaBox if not present
func (p *Page) CropBox() ([]float64, error) {
	box, err := p.getBox("CropBox")
	if err != nil {
		// CropBox defaults to MediaBox
		return p.MediaBox()
	}
	return box, nil
}

// getBox retrieves a box attribute (inheritable)
func (p *Page) getBox(name string) ([]float64, error) {
	boxObj := p.attr(name)
	if boxObj == nil {
		return nil, fmt.Errorf("%s not found", name)
	}

	boxResolved, err := p.resolver.Resolve(boxObj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", name, err)
	}

	boxArr, ok := boxResolved.(core.Array)
	if !ok {
		return nil, fmt.Errorf("invalid %s type: %T", name, boxResolved)
	}

	if len(boxArr) != 4 {
		return nil, fmt.Errorf("invalid %s length: %d (expected 4)", name, len(boxArr))
	}

	box := make([]float64, 4)
	for i := range boxArr {
		v, ok := boxArr.GetNumber(i)
		if !ok {
			return nil, fmt.Errorf("invalid %s element type: %T", name, boxArr[i])
		}
		box[i] = v
	}

	return box, nil
}

// Resources returns the page resources dictionary
// This is inheritable
func (p *Page) Resources() (core.Dict, error) {
	resourcesObj := p.attr("Resources")
	if resourcesObj == nil {
		return nil, fmt.Errorf("resources not found")
	}

	resourcesResolved, err := p.resolver.Resolve(resourcesObj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Resources: %w", err)
	}

	resourcesDict, ok := resourcesResolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("invalid Resources type: %T", resourcesResolved)
	}

	return resourcesDict, nil
}

// Contents returns the page content stream(s)
func (p *Page) Contents() ([]core.Object, error) {
	contentsObj := p.dict.Get("Contents")
	if contentsObj == nil {
		return nil, nil // Contents is optional
	}

	contentsResolved, err := p.resolver.Resolve(contentsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Contents: %w", err)
	}

	// Contents can be a single stream or array of streams
	switch v := contentsResolved.(type) {
	case *core.Stream:
		return []core.Object{v}, nil
	case core.Array:
		streams := make([]core.Object, len(v))
		for i, elem := range v {
			resolved, err := p.resolver.Resolve(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve contents[%d]: %w", i, err)
			}
			streams[i] = resolved
		}
		return streams, nil
	default:
		return nil, fmt.Errorf("invalid Contents type: %T", contentsResolved)
	}
}

// Rotate returns the page rotation (0, 90, 180, or 270)
// This is inheritable
func (p *Page) Rotate() int {
	rotateObj := p.attr("Rotate")
	if rotateObj == nil {
		return 0 // Default
	}

	if rotate, ok := rotateObj.(core.Int); ok {
		return int(rotate)
	}

	return 0
}

// Width returns the page width (from MediaBox)
func (p *Page) Width() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[2] - box[0], nil
}

// Height returns the page height (from MediaBox)
func (p *Page) Height() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[3] - box[1], nil
}
