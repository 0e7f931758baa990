// Package poster holds the editable poster document: six fixed header
// ("detail") fields mirrored as sections, followed by an ordered list of
// user-editable content sections.
package poster

import (
	"github.com/google/uuid"
)

// TextFragment is one positioned run of text from a PDF text layer. X and Y
// are the baseline coordinates in page space, Y increasing upward.
type TextFragment struct {
	Text string  `json:"text" yaml:"text"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
}

// Detail section ids, in document order.
const (
	IDTitle        = "title"
	IDAuthors      = "authors"
	IDAffiliations = "affiliations"
	IDAbstract     = "abstract"
	IDConference   = "conference"
	IDDisclosures  = "disclosures"
)

// Section is one block of the document. Detail sections carry the header
// fields; content sections are the body blocks a user can add, remove and
// reorder.
type Section struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Content   string `json:"content" yaml:"content"`
	Icon      string `json:"icon" yaml:"icon"`
	IsDetail  bool   `json:"isDetail" yaml:"isDetail"`
	HasChart  bool   `json:"hasChart" yaml:"hasChart"`
	ChartData string `json:"chartData,omitempty" yaml:"chartData,omitempty"`
	Image     string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Details are the single-value header fields of a poster.
type Details struct {
	Title        string `json:"title" yaml:"title"`
	Authors      string `json:"authors" yaml:"authors"`
	Affiliations string `json:"affiliations" yaml:"affiliations"`
	Abstract     string `json:"abstract" yaml:"abstract"`
	Conference   string `json:"conference" yaml:"conference"`
	Disclosures  string `json:"disclosures" yaml:"disclosures"`
}

// Document is the structured result of an extraction run. The header fields
// live both in Details and in the six leading detail sections; edits go
// through the methods in edit.go so the two stay in sync.
type Document struct {
	Details  `yaml:",inline"`
	Sections []Section `json:"sections" yaml:"sections"`
}

type detailSpec struct {
	id    string
	title string
	icon  string
}

var detailSpecs = []detailSpec{
	{IDTitle, "Title", "📌"},
	{IDAuthors, "Authors", "👥"},
	{IDAffiliations, "Affiliations", "🏛️"},
	{IDAbstract, "Abstract", "📄"},
	{IDConference, "Conference", "🎯"},
	{IDDisclosures, "Disclosures", "📋"},
}

// templateSpecs are the sections offered when nothing could be recognized.
var templateSpecs = []detailSpec{
	{"background", "Background", "🔬"},
	{"methods", "Methods", "📊"},
	{"results", "Results", "📈"},
	{"conclusions", "Conclusions", "💡"},
}

// Icons is the palette offered to editors for content sections.
var Icons = []string{"📊", "🔬", "📈", "💊", "🧬", "🩺", "📋", "🔍", "💡", "📌", "🎯", "📝"}

// NewID returns a unique section id of the form <prefix>-<uuid>. Tests
// replace it to get stable ids.
var NewID = func(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// DetailIDs returns the six detail ids in document order.
func DetailIDs() []string {
	ids := make([]string, len(detailSpecs))
	for i, s := range detailSpecs {
		ids[i] = s.id
	}
	return ids
}

// IsDetailID reports whether id names one of the six header fields.
func IsDetailID(id string) bool {
	for _, s := range detailSpecs {
		if s.id == id {
			return true
		}
	}
	return false
}

// DetailSections builds the six detail sections from d, in fixed order.
func DetailSections(d Details) []Section {
	out := make([]Section, 0, len(detailSpecs))
	for _, s := range detailSpecs {
		out = append(out, Section{
			ID:       s.id,
			Title:    s.title,
			Content:  *d.field(s.id),
			Icon:     s.icon,
			IsDetail: true,
		})
	}
	return out
}

// TemplateSections returns the four empty starter sections with fresh ids.
func TemplateSections() []Section {
	out := make([]Section, 0, len(templateSpecs))
	for _, s := range templateSpecs {
		out = append(out, Section{
			ID:    NewID(s.id),
			Title: s.title,
			Icon:  s.icon,
		})
	}
	return out
}

// Template returns the blank editable document used whenever extraction is
// not possible.
func Template() Document {
	doc := Document{}
	doc.Sections = append(DetailSections(doc.Details), TemplateSections()...)
	return doc
}

// Get returns the value of the header field named by a detail id.
func (d Details) Get(id string) (string, bool) {
	p := d.field(id)
	if p == nil {
		return "", false
	}
	return *p, true
}

func (d *Details) field(id string) *string {
	switch id {
	case IDTitle:
		return &d.Title
	case IDAuthors:
		return &d.Authors
	case IDAffiliations:
		return &d.Affiliations
	case IDAbstract:
		return &d.Abstract
	case IDConference:
		return &d.Conference
	case IDDisclosures:
		return &d.Disclosures
	}
	return nil
}

// ContentSections returns the non-detail sections in order.
func (d Document) ContentSections() []Section {
	var out []Section
	for _, s := range d.Sections {
		if !s.IsDetail {
			out = append(out, s)
		}
	}
	return out
}

// Stats summarizes what an extraction found.
type Stats struct {
	HeaderFields    int `json:"header_fields" yaml:"header_fields"`
	ContentSections int `json:"content_sections" yaml:"content_sections"`
}

// Stats counts the populated title, authors, abstract and affiliations
// fields and the content sections that carry text.
func (d Document) Stats() Stats {
	var st Stats
	for _, v := range []string{d.Title, d.Authors, d.Abstract, d.Affiliations} {
		if v != "" {
			st.HeaderFields++
		}
	}
	for _, s := range d.ContentSections() {
		if s.Content != "" {
			st.ContentSections++
		}
	}
	return st
}
