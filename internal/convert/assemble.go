package convert

import (
	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

// Assemble merges the extracted header fields and content sections into a
// document. The six detail sections always come first; when no content
// section was recognized the four empty starter sections are added instead.
func Assemble(d poster.Details, sections []poster.Section) poster.Document {
	doc := poster.Document{Details: d}
	doc.Sections = poster.DetailSections(d)
	if len(sections) == 0 {
		doc.Sections = append(doc.Sections, poster.TemplateSections()...)
		return doc
	}
	doc.Sections = append(doc.Sections, sections...)
	return doc
}

// Structure runs the field extractor and the section segmenter over the
// same lines and assembles the result.
func Structure(lines []string) poster.Document {
	fields := ExtractFields(lines)
	sections := SegmentSections(lines)
	return Assemble(fields, sections)
}
