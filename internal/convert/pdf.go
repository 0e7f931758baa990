package convert

import (
	"context"
	"fmt"
	"os"
	"strings"

	rpdf "rsc.io/pdf"

	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

// PageSource exposes the text layer of a document one page at a time.
// Pages are numbered from 1.
type PageSource interface {
	NumPage() int
	PageFragments(ctx context.Context, page int) ([]poster.TextFragment, error)
}

// PDFSource reads positioned text from a PDF file.
type PDFSource struct {
	f *os.File
	r *rpdf.Reader
}

// OpenPDF opens path and parses its cross-reference table. The caller must
// Close the source.
func OpenPDF(path string) (src *PDFSource, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	// rsc.io/pdf reports some malformed input by panicking.
	defer func() {
		if r := recover(); r != nil {
			f.Close()
			src, err = nil, fmt.Errorf("reading pdf %s: %v", path, r)
		}
	}()
	r, err := rpdf.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading pdf %s: %w", path, err)
	}
	return &PDFSource{f: f, r: r}, nil
}

// Close releases the underlying file.
func (s *PDFSource) Close() error {
	return s.f.Close()
}

func (s *PDFSource) NumPage() int {
	return s.r.NumPage()
}

// PageFragments returns every text run on the page with its baseline
// position. Pages without a content stream yield no fragments.
func (s *PDFSource) PageFragments(_ context.Context, page int) (frags []poster.TextFragment, err error) {
	if page < 1 || page > s.r.NumPage() {
		return nil, fmt.Errorf("page %d out of range 1..%d", page, s.r.NumPage())
	}
	defer func() {
		if r := recover(); r != nil {
			frags, err = nil, fmt.Errorf("page %d: %v", page, r)
		}
	}()
	p := s.r.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}
	return coalesceGlyphs(p.Content().Text), nil
}

// glyphGap is the largest horizontal gap, as a fraction of the font size,
// between two glyphs of the same run.
const glyphGap = 0.25

// coalesceGlyphs merges the per-glyph records rsc.io/pdf produces into text
// runs. A run ends at a space glyph or where the next glyph does not
// continue the previous one on the same baseline.
func coalesceGlyphs(glyphs []rpdf.Text) []poster.TextFragment {
	var out []poster.TextFragment
	var run strings.Builder
	var x, y, end float64
	flush := func() {
		if run.Len() > 0 {
			out = append(out, poster.TextFragment{Text: run.String(), X: x, Y: y})
			run.Reset()
		}
	}
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		slack := g.FontSize * glyphGap
		if run.Len() > 0 && abs(g.Y-y) < 0.5 && g.X >= end-slack && g.X <= end+slack {
			run.WriteString(g.S)
			end = g.X + g.W
			continue
		}
		flush()
		run.WriteString(g.S)
		x, y, end = g.X, g.Y, g.X+g.W
	}
	flush()
	return out
}
