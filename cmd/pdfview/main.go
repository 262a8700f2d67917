// Command pdfview drives the viewer controller from the command line:
// render a page to PNG, dump text, paragraphs, annotations or the
// outline, search, and export. Requires a binary built with the
// native engine (-tags pdfium); -sample works without it.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/wudi/pdfview/engine"
	"github.com/wudi/pdfview/viewer"
)

func main() {
	var (
		in       = flag.String("in", "", "input PDF file")
		mode     = flag.String("mode", "render", "render|text|paragraphs|annots|outline|meta|search|export")
		page     = flag.Int("page", 0, "page index (0-based)")
		scale    = flag.Float64("scale", 1.0, "render/search/annotation scale")
		ratio    = flag.Float64("pixel-ratio", 1.0, "device pixel ratio")
		rotate   = flag.Int("rotate", 0, "clockwise quarter turns for render")
		out      = flag.String("out", "", "output file (PNG for render, PDF for export)")
		query    = flag.String("query", "", "search query")
		validate = flag.Bool("validate", false, "validate exported PDF with pdfcpu")
		sample   = flag.String("sample", "", "write a generated sample PDF to this path and exit")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if err := run(*in, *mode, *page, *scale, *ratio, *rotate, *out, *query, *validate, *sample, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "pdfview: %v\n", err)
		os.Exit(1)
	}
}

func run(in, mode string, page int, scale, ratio float64, rotate int, out, query string, validate bool, sample string, verbose bool) error {
	if sample != "" {
		return writeSample(sample)
	}
	if in == "" {
		return fmt.Errorf("-in is required")
	}

	eng, err := engine.New()
	if err != nil {
		return err
	}
	c := viewer.New(eng, viewer.WithLogger(newLogger(verbose)))
	ctx := context.Background()
	if err := c.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	defer c.Destroy()

	f, err := os.Open(in)
	if err != nil {
		return err
	}
	if err := c.Load(ctx, f); err != nil {
		f.Close()
		return fmt.Errorf("load %s: %w", in, err)
	}
	f.Close()

	switch mode {
	case "render":
		return renderToPNG(ctx, c, page, scale, ratio, rotate, out)
	case "text":
		text, err := c.PlainText(page)
		if err != nil {
			return err
		}
		fmt.Println(text)
	case "paragraphs":
		text, err := c.ParagraphText(page)
		if err != nil {
			return err
		}
		fmt.Println(text)
	case "annots":
		return dumpAnnotations(c, page, scale)
	case "outline":
		items, err := c.Outline()
		if err != nil {
			return err
		}
		printOutline(items, 0)
	case "meta":
		return dumpMetadata(c)
	case "search":
		return runSearch(ctx, c, query, scale)
	case "export":
		return exportPDF(c, out, validate)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	return nil
}

func renderToPNG(ctx context.Context, c *viewer.Controller, page int, scale, ratio float64, rotate int, out string) error {
	if out == "" {
		return fmt.Errorf("-out is required for render")
	}
	target, err := c.RenderPage(ctx, page, scale, ratio, viewer.RenderRotated(rotate))
	if err != nil {
		return err
	}
	img := &image.RGBA{
		Pix:    target.Pix,
		Stride: target.Stride,
		Rect:   image.Rect(0, 0, target.Width, target.Height),
	}
	w, err := os.Create(out)
	if err != nil {
		return err
	}
	defer w.Close()
	return png.Encode(w, img)
}

func dumpAnnotations(c *viewer.Controller, page int, scale float64) error {
	annots, err := c.ListAnnotations(page, scale)
	if err != nil {
		return err
	}
	for _, a := range annots {
		fmt.Printf("%s %s rect=(%.1f,%.1f,%.1f,%.1f)", a.ID, a.Kind,
			a.Rect.Left, a.Rect.Top, a.Rect.Right, a.Rect.Bottom)
		switch a.Kind {
		case viewer.KindInk:
			fmt.Printf(" strokes=%d", len(a.Strokes))
		case viewer.KindHighlight:
			fmt.Printf(" quads=%d", len(a.Quads))
		case viewer.KindLink:
			fmt.Printf(" uri=%s dest=%d", a.URI, a.DestPage)
		}
		fmt.Println()
	}
	return nil
}

func printOutline(items []viewer.OutlineItem, depth int) {
	for _, it := range items {
		fmt.Printf("%s%s -> page %d\n", strings.Repeat("  ", depth), it.Title, it.Page)
		printOutline(it.Children, depth+1)
	}
}

func dumpMetadata(c *viewer.Controller) error {
	m, err := c.Metadata()
	if err != nil {
		return err
	}
	fmt.Printf("Title:    %s\n", m.Title)
	fmt.Printf("Author:   %s\n", m.Author)
	fmt.Printf("Subject:  %s\n", m.Subject)
	fmt.Printf("Keywords: %s\n", m.Keywords)
	fmt.Printf("Creator:  %s\n", m.Creator)
	fmt.Printf("Producer: %s\n", m.Producer)
	fmt.Printf("Created:  %s\n", m.CreationDate)
	fmt.Printf("Modified: %s\n", m.ModDate)
	return nil
}

func runSearch(ctx context.Context, c *viewer.Controller, query string, scale float64) error {
	if query == "" {
		return fmt.Errorf("-query is required for search")
	}
	hits, err := c.Search(ctx, query, scale)
	if err != nil {
		return err
	}
	for _, h := range hits {
		fmt.Printf("page %d %q chars %d+%d", h.Page, h.Text, h.CharIndex, h.CharCount)
		for _, r := range h.Rects {
			fmt.Printf(" [%.0f,%.0f,%.0f,%.0f]", r.Left, r.Top, r.Right, r.Bottom)
		}
		fmt.Println()
	}
	fmt.Printf("%d matches\n", len(hits))
	return nil
}

func exportPDF(c *viewer.Controller, out string, validate bool) error {
	if out == "" {
		return fmt.Errorf("-out is required for export")
	}
	data, err := c.ExportBytes(engine.SaveNoIncremental, 0)
	if err != nil {
		return err
	}
	if validate {
		conf := model.NewDefaultConfiguration()
		if err := api.Validate(bytes.NewReader(data), conf); err != nil {
			return fmt.Errorf("exported document failed validation: %w", err)
		}
	}
	return os.WriteFile(out, data, 0o644)
}

// writeSample generates a small local PDF so the pipeline can be
// exercised without hunting for test documents.
func writeSample(path string) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle("pdfview sample", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(72, 96, "pdfview sample document")
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(72, 130, "First paragraph line one, with a needle to search for.")
	pdf.Text(72, 144, "First paragraph line two.")
	pdf.Text(72, 176, "Second paragraph starts after a wider gap.")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(72, 96, "Second page with another needle.")
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
