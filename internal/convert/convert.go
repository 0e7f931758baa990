// Package convert turns a poster PDF into an editable poster document:
// text fragments are rebuilt into lines, header fields and content
// sections are recognized, and the results are assembled into one document.
package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/thywilljoshua/poster-to-web/internal/ai"
	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

const pdfMIME = "application/pdf"

// Run extracts a document from the file at path. Extraction problems never
// fail the run: unsupported files, PDFs without a usable text layer and
// faults while reading pages all produce the blank template, with the cause
// recorded in Result.Reason. Only an unreadable path is returned as an error.
func Run(ctx context.Context, path string, cfg Config) (Result, error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("file", path)

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}
	res := Result{MIME: mt.String()}

	if !mt.Is(pdfMIME) {
		log.WithField("mime", mt.String()).Info("not a PDF, starting from the blank template")
		return templateResult(res, fmt.Errorf("%w: %s", ErrUnsupportedInput, mt.String())), nil
	}

	if cfg.AIExclusive && cfg.Enhancer != nil {
		p, err := cfg.Enhancer.ExtractPoster(ctx, path)
		switch {
		case err != nil:
			log.WithError(err).Warn("AI extraction failed, using heuristics")
		case p.Title == "" && len(p.Sections) == 0:
			log.Warn("AI extraction returned nothing, using heuristics")
		default:
			res.Document = fromAI(p)
			res.Status = StatusAI
			res.Stats = res.Document.Stats()
			return res, nil
		}
	}

	src, err := OpenPDF(path)
	if err != nil {
		log.WithError(err).Warn("cannot open PDF text layer, starting from the blank template")
		return templateResult(res, fmt.Errorf("%w: %v", ErrNoTextLayer, err)), nil
	}
	defer src.Close()

	res.Pages = src.NumPage()
	if res.Pages == 0 {
		log.Warn("PDF has no pages, starting from the blank template")
		return templateResult(res, fmt.Errorf("%w: no pages", ErrNoTextLayer)), nil
	}

	lines, err := ReadLines(ctx, src)
	if err != nil {
		log.WithError(err).Warn("extraction failed, starting from the blank template")
		return templateResult(res, err), nil
	}

	res.Lines = len(lines)
	res.Document = Structure(lines)
	res.Status = StatusExtracted
	res.Stats = res.Document.Stats()
	log.WithFields(logrus.Fields{
		"pages":    res.Pages,
		"lines":    res.Lines,
		"fields":   res.Stats.HeaderFields,
		"sections": res.Stats.ContentSections,
	}).Info("poster extracted")
	return res, nil
}

// Extract reads every page of src and structures the text. Unlike Run it
// reports page failures to the caller.
func Extract(ctx context.Context, src PageSource) (poster.Document, error) {
	lines, err := ReadLines(ctx, src)
	if err != nil {
		return poster.Document{}, err
	}
	return Structure(lines), nil
}

// ExtractOrTemplate is Extract with the failure path applied: any error
// yields the blank template and no partial result.
func ExtractOrTemplate(ctx context.Context, src PageSource) poster.Document {
	doc, err := Extract(ctx, src)
	if err != nil {
		return poster.Template()
	}
	return doc
}

// ReadLines fetches the pages of src in order and returns the document's
// line sequence. The first failing page aborts the read.
func ReadLines(ctx context.Context, src PageSource) ([]string, error) {
	n := src.NumPage()
	pages := make([][]string, 0, n)
	for i := 1; i <= n; i++ {
		frags, err := src.PageFragments(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d of %d: %w", i, n, err)
		}
		pages = append(pages, ReconstructLines(frags))
	}
	return splitLines(joinPages(pages)), nil
}

func templateResult(res Result, reason error) Result {
	res.Document = poster.Template()
	res.Status = StatusTemplate
	res.Reason = reason.Error()
	res.Stats = res.Document.Stats()
	return res
}

// fromAI maps a model answer onto the document model. Section titles that
// name a known heading take its canonical icon and id prefix; repeated
// titles are dropped.
func fromAI(p ai.Poster) poster.Document {
	d := poster.Details{
		Title:        strings.TrimSpace(p.Title),
		Authors:      strings.TrimSpace(p.Authors),
		Affiliations: strings.TrimSpace(p.Affiliations),
		Abstract:     strings.TrimSpace(p.Abstract),
		Conference:   strings.TrimSpace(p.Conference),
		Disclosures:  strings.TrimSpace(p.Disclosures),
	}
	var sections []poster.Section
	seen := map[string]bool{}
	for _, s := range p.Sections {
		title := strings.TrimSpace(s.Title)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		prefix, icon := "section", "📋"
		if pat, ok := Classify(title); ok {
			prefix, icon = pat.ID, pat.Icon
		}
		sections = append(sections, poster.Section{
			ID:      poster.NewID(prefix),
			Title:   title,
			Content: strings.TrimSpace(s.Content),
			Icon:    icon,
		})
	}
	return Assemble(d, sections)
}
