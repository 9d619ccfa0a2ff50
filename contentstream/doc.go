// Package contentstream provides parsing and construction of PDF content
// streams.
//
// Content streams contain the instructions for rendering page content.
// For a page-per-image document each page's stream is a single image
// placement: save state, scale to the page, paint the XObject, restore.
//
// # Parsing
//
// PDF content streams consist of operators and their operands:
//
//	parser := contentstream.NewParser(streamData)
//	ops, err := parser.Parse()
//	for _, op := range ops {
//	    fmt.Printf("Operator: %s, Operands: %v\n", op.Operator, op.Operands)
//	}
//
// # Building
//
// Builder emits the operators the document writer needs:
//
//	content := contentstream.NewBuilder().
//	    SaveState().
//	    Transform(1376, 0, 0, 768, 0, 0).
//	    DrawXObject("Im0").
//	    RestoreState().
//	    Bytes()
//
// # Common Operators
//
// Graphics state operators:
//   - q, Q - Save/restore graphics state
//   - cm - Modify CTM (current transformation matrix)
//   - Do - Paint a named XObject
//
// # Operand Types
//
// The parser covers the painting subset:
//   - Numbers (core.Int, core.Real)
//   - Names (core.Name)
//   - Arrays of those (core.Array)
//
// String and dictionary operands belong to text and marked-content
// operators and are rejected.
package contentstream
