package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/poster-to-web/internal/ai"
	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

type fakeSource struct {
	pages  [][]poster.TextFragment
	failAt int
	calls  []int
}

func (f *fakeSource) NumPage() int { return len(f.pages) }

func (f *fakeSource) PageFragments(_ context.Context, page int) ([]poster.TextFragment, error) {
	f.calls = append(f.calls, page)
	if page == f.failAt {
		return nil, errors.New("corrupt content stream")
	}
	return f.pages[page-1], nil
}

// pageOf lays lines out top to bottom, one fragment per line.
func pageOf(lines ...string) []poster.TextFragment {
	frags := make([]poster.TextFragment, len(lines))
	for i, ln := range lines {
		frags[i] = frag(ln, 40, float64(800-20*i))
	}
	return frags
}

type fakeEnhancer struct {
	poster ai.Poster
	err    error
}

func (f fakeEnhancer) Summarize(context.Context, string, int) (string, error) { return "", nil }

func (f fakeEnhancer) ExtractPoster(context.Context, string) (ai.Poster, error) {
	return f.poster, f.err
}

func titles(secs []poster.Section) []string {
	out := make([]string, len(secs))
	for i, s := range secs {
		out[i] = s.Title
	}
	return out
}

func assertTemplate(t *testing.T, doc poster.Document) {
	t.Helper()
	assert.Equal(t, poster.Details{}, doc.Details)
	assert.Equal(t, []string{
		"Title", "Authors", "Affiliations", "Abstract", "Conference", "Disclosures",
		"Background", "Methods", "Results", "Conclusions",
	}, titles(doc.Sections))
	for _, s := range doc.Sections {
		assert.Empty(t, s.Content, s.Title)
	}
}

func TestExtractScenario(t *testing.T) {
	src := &fakeSource{pages: [][]poster.TextFragment{pageOf(
		"A Study of Widget Efficacy in Clinical Trials",
		"Jane Doe, John Smith, University Hospital",
		"METHODS",
		"We recruited 200 patients.",
		"RESULTS",
		"Efficacy was 95%.",
	)}}

	doc, err := Extract(context.Background(), src)
	require.NoError(t, err)

	require.Len(t, doc.Sections, 8)
	for i, id := range poster.DetailIDs() {
		assert.Equal(t, id, doc.Sections[i].ID)
		assert.True(t, doc.Sections[i].IsDetail)
	}
	assert.Equal(t, "A Study of Widget Efficacy in Clinical Trials", doc.Sections[0].Content)
	assert.Equal(t, "Jane Doe, John Smith, University Hospital", doc.Sections[1].Content)
	assert.Equal(t, doc.Title, doc.Sections[0].Content)

	assert.Equal(t, []string{"Methods", "Results"}, titles(doc.ContentSections()))
	assert.Equal(t, poster.Stats{HeaderFields: 3, ContentSections: 2}, doc.Stats())
	require.NoError(t, doc.Validate())
}

func TestExtractNoHeadingsUsesStarterSections(t *testing.T) {
	src := &fakeSource{pages: [][]poster.TextFragment{pageOf("Draft", "Widget efficacy in mice", "Mice were happy")}}

	doc, err := Extract(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, "Widget efficacy in mice", doc.Title)
	assert.Empty(t, doc.Authors)
	assert.Empty(t, doc.Affiliations)
	assert.Empty(t, doc.Abstract)
	assert.Empty(t, doc.Conference)
	assert.Empty(t, doc.Disclosures)
	assert.Equal(t, []string{"Background", "Methods", "Results", "Conclusions"}, titles(doc.ContentSections()))
	for _, s := range doc.ContentSections() {
		assert.Empty(t, s.Content)
	}
}

func TestExtractReadsPagesInOrder(t *testing.T) {
	src := &fakeSource{pages: [][]poster.TextFragment{
		pageOf("A Randomized Trial of Widget Therapy in Adults", "Methods"),
		pageOf("Randomized controlled design.", "Results", "Efficacy was high overall."),
	}}

	lines, err := ReadLines(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"A Randomized Trial of Widget Therapy in Adults",
		"Methods",
		"Randomized controlled design.",
		"Results",
		"Efficacy was high overall.",
	}, lines)
	assert.Equal(t, []int{1, 2}, src.calls)

	// A heading at the foot of one page takes its body from the next.
	doc := Structure(lines)
	assert.Equal(t, "Randomized controlled design.", doc.ContentSections()[0].Content)
}

func TestExtractPageFailureYieldsTemplate(t *testing.T) {
	src := &fakeSource{
		pages: [][]poster.TextFragment{
			pageOf("A Randomized Trial of Widget Therapy in Adults", "Methods", "Randomized controlled design."),
			pageOf("Results"),
			pageOf("Efficacy was high overall."),
		},
		failAt: 2,
	}

	_, err := Extract(context.Background(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2 of 3")
	assert.Equal(t, []int{1, 2}, src.calls)

	src.calls = nil
	assertTemplate(t, ExtractOrTemplate(context.Background(), src))
}

func TestExtractEmptySource(t *testing.T) {
	doc, err := Extract(context.Background(), &fakeSource{})
	require.NoError(t, err)
	assert.Empty(t, doc.Title)
	assert.Len(t, doc.ContentSections(), 4)
}

func TestFromAI(t *testing.T) {
	doc := fromAI(ai.Poster{
		Title:   "  Widget Therapy in Adults  ",
		Authors: "Jane Doe, John Smith",
		Sections: []ai.PosterSection{
			{Title: "Methods", Content: " Randomized design. "},
			{Title: "Patient Voices", Content: "Quotes from participants."},
			{Title: "Methods", Content: "dropped"},
			{Title: " ", Content: "dropped too"},
		},
	})

	assert.Equal(t, "Widget Therapy in Adults", doc.Title)
	assert.Equal(t, "Widget Therapy in Adults", doc.Sections[0].Content)

	content := doc.ContentSections()
	require.Len(t, content, 2)
	assert.Equal(t, "Methods", content[0].Title)
	assert.Equal(t, "Randomized design.", content[0].Content)
	assert.Equal(t, "📊", content[0].Icon)
	assert.True(t, strings.HasPrefix(content[0].ID, "methods-"))
	assert.Equal(t, "📋", content[1].Icon)
	assert.True(t, strings.HasPrefix(content[1].ID, "section-"))
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

// brokenPDF carries a PDF signature but no cross-reference table.
func brokenPDF(t *testing.T) string {
	return writeFile(t, "broken.pdf", []byte("%PDF-1.4\n"+strings.Repeat("garbage ", 40)))
}

func TestRunRejectsNonPDF(t *testing.T) {
	log, hook := test.NewNullLogger()
	p := writeFile(t, "notes.txt", []byte("Methods\nWe recruited 200 patients.\n"))

	res, err := Run(context.Background(), p, Config{Logger: log})
	require.NoError(t, err)
	assert.Equal(t, StatusTemplate, res.Status)
	assert.True(t, strings.HasPrefix(res.MIME, "text/plain"))
	assert.Contains(t, res.Reason, ErrUnsupportedInput.Error())
	assertTemplate(t, res.Document)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestRunUnreadablePDF(t *testing.T) {
	log, hook := test.NewNullLogger()

	res, err := Run(context.Background(), brokenPDF(t), Config{Logger: log})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", res.MIME)
	assert.Equal(t, StatusTemplate, res.Status)
	assert.Contains(t, res.Reason, ErrNoTextLayer.Error())
	assertTemplate(t, res.Document)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRunMissingFile(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), Config{})
	require.Error(t, err)
}

func TestRunAIExclusive(t *testing.T) {
	log, _ := test.NewNullLogger()
	enh := fakeEnhancer{poster: ai.Poster{
		Title:    "Widget Therapy in Adults",
		Sections: []ai.PosterSection{{Title: "Results", Content: "Efficacy was high."}},
	}}

	res, err := Run(context.Background(), brokenPDF(t), Config{AIExclusive: true, Enhancer: enh, Logger: log})
	require.NoError(t, err)
	assert.Equal(t, StatusAI, res.Status)
	assert.Equal(t, "Widget Therapy in Adults", res.Document.Title)
	assert.Equal(t, []string{"Results"}, titles(res.Document.ContentSections()))
	assert.Equal(t, poster.Stats{HeaderFields: 1, ContentSections: 1}, res.Stats)
}

func TestRunAIFailureFallsBack(t *testing.T) {
	tests := []struct {
		name string
		enh  fakeEnhancer
	}{
		{"error", fakeEnhancer{err: errors.New("quota exceeded")}},
		{"empty answer", fakeEnhancer{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, hook := test.NewNullLogger()
			res, err := Run(context.Background(), brokenPDF(t), Config{AIExclusive: true, Enhancer: tt.enh, Logger: log})
			require.NoError(t, err)
			assert.Equal(t, StatusTemplate, res.Status)

			var warned bool
			for _, e := range hook.AllEntries() {
				if strings.Contains(e.Message, "AI extraction") {
					warned = true
				}
			}
			assert.True(t, warned)
		})
	}
}
