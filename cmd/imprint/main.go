// Command imprint stamps a watermark image onto every page of a
// presentation-style PDF and writes the stamped document to a new file.
//
// Usage:
//
//	imprint [flags] <input.pdf>
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/tsawler/imprint"
)

type options struct {
	input    string
	logo     string
	quality  string
	output   string
	position string
	minW     int
	minH     int
	pages    []int
}

func main() {
	log.SetFlags(0)
	opts, err := parseFlags()
	if err != nil {
		flag.Usage()
		log.Fatalf("imprint: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("imprint: %v", err)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: imprint [flags] <input.pdf>\n")
		flag.PrintDefaults()
	}
	logo := flag.String("logo", "logo.png", "Watermark image (PNG or JPEG)")
	quality := flag.String("quality", "lossless", `Page encoding: "lossless" or a JPEG level 1-100`)
	output := flag.String("o", "output_watermarked.pdf", "Output PDF file")
	position := flag.String("position", "br", "Watermark position: tl,tc,tr,ml,mc,mr,bl,bc,br")
	minW := flag.Int("min-w", 107, "Minimum watermark width in pixels")
	minH := flag.Int("min-h", 21, "Minimum watermark height in pixels")
	pages := flag.String("pages", "", "Pages to stamp, comma-separated 1-based (default all)")
	flag.Parse()

	if flag.NArg() != 1 {
		return options{}, fmt.Errorf("missing input PDF path")
	}
	opts.input = flag.Arg(0)
	opts.logo = *logo
	opts.quality = *quality
	opts.output = *output
	opts.position = *position
	opts.minW = *minW
	opts.minH = *minH
	if *pages != "" {
		list, err := parsePageList(*pages)
		if err != nil {
			return options{}, err
		}
		opts.pages = list
	}
	return opts, nil
}

func parsePageList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	list := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad page number %q", part)
		}
		list = append(list, n)
	}
	return list, nil
}

func run(opts options) error {
	quality, err := imprint.ParseQuality(opts.quality)
	if err != nil {
		return err
	}

	log.Printf("  Input:   %s", opts.input)
	log.Printf("  Logo:    %s", opts.logo)
	log.Printf("  Quality: %s", opts.quality)
	log.Printf("  Output:  %s", opts.output)
	log.Println()

	st := imprint.Open(opts.input).
		Quality(quality).
		Position(imprint.ParsePosition(opts.position)).
		MinSize(opts.minW, opts.minH).
		Pages(opts.pages...)
	defer st.Close()

	log.Printf("[1/4] Reading %s...", opts.input)
	count, err := st.PageCount()
	if err != nil {
		return err
	}
	log.Printf("  %d pages", count)

	log.Printf("[2/4] Loading watermark...")
	logo, err := os.ReadFile(opts.logo)
	if err != nil {
		return err
	}

	log.Printf("[3/4] Stamping pages...")
	out, err := st.Process(logo)
	if err != nil {
		return err
	}

	log.Printf("[4/4] Writing %s...", opts.output)
	if err := os.WriteFile(opts.output, out, 0644); err != nil {
		return err
	}

	log.Println("Done.")
	return nil
}
