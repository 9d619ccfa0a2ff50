// Package pages provides PDF page tree traversal and page access.
//
// This package handles the hierarchical page tree structure in PDFs,
// providing efficient access to individual pages and their resources.
//
// # Page Tree
//
// PDF documents organize pages in a tree structure. The [PageTree] type
// navigates this hierarchy:
//
//	tree := pages.NewPageTree(pagesDict, resolver)
//	count, _ := tree.Count()
//	page, _ := tree.GetPage(0)  // 0-indexed
//
// [PageTree.Entries] returns the flattened tree as [PageEntry] values,
// pairing each page with its 1-based number in document order. Document
// order is the traversal order of the tree, independent of where page
// objects sit in the file.
//
// # Page Access
//
// The [Page] type represents a single PDF page with:
//
//   - MediaBox - page dimensions
//   - CropBox - visible area (optional)
//   - Rotation - page rotation (0, 90, 180, 270)
//   - Resources - images and other named resources
//   - Contents - content streams
//
// # Inheritance
//
// Resources, MediaBox, CropBox, and Rotate can be inherited from ancestor
// Pages nodes. The tree walk collects these values on the way down, so a
// page two levels below the node that declares them still sees them, with
// the nearest ancestor winning.
//
// # Object Resolution
//
// The [ObjectResolver] interface abstracts object lookup:
//
//	type ObjectResolver interface {
//	    Resolve(obj core.Object) (core.Object, error)
//	}
//
// This allows the page tree to resolve indirect references without
// depending on the full reader implementation.
package pages
