// Package imprint stamps a watermark onto every page of a
// presentation-style PDF.
//
// It targets slide decks exported as one full-page DeviceRGB image per
// page. Each page's image is extracted and decoded, the watermark is
// alpha-blended onto it, and a fresh single-image-per-page document is
// written out. Vector content, fonts, and encrypted documents are out of
// scope.
//
// Basic usage:
//
//	logo, err := os.ReadFile("logo.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := imprint.Open("deck.pdf").Process(logo)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("deck-stamped.pdf", out, 0644)
//
// With options:
//
//	out, err := imprint.Open("deck.pdf").
//	    Quality(imprint.JPEGQuality(85)).
//	    Position(imprint.TopRight).
//	    Margin(12).
//	    Pages(1, 2, 3).
//	    Process(logo)
//
// Configuration methods return a new Stamper, so a configured chain can
// be stored and reused; pages are stamped by parallel workers and the
// output always follows the selection order.
//
// For advanced use cases, the lower-level reader, watermark, and writer
// packages are also available.
package imprint
