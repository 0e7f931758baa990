package poster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("section not found")
	ErrDetailSection   = errors.New("detail sections are fixed")
	ErrDuplicateTitle  = errors.New("section title already in use")
	ErrEmptyTitle      = errors.New("section title is empty")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidOrder    = errors.New("order must list every content section exactly once")
	ErrInvalidDocument = errors.New("invalid document")
)

const (
	defaultSectionTitle   = "New Section"
	defaultSectionContent = "Enter section content here..."
	defaultSectionIcon    = "📋"
)

// Patch is a partial update of one section. Nil fields are left unchanged.
type Patch struct {
	Title     *string `json:"title,omitempty" yaml:"title,omitempty"`
	Content   *string `json:"content,omitempty" yaml:"content,omitempty"`
	Icon      *string `json:"icon,omitempty" yaml:"icon,omitempty"`
	HasChart  *bool   `json:"hasChart,omitempty" yaml:"hasChart,omitempty"`
	ChartData *string `json:"chartData,omitempty" yaml:"chartData,omitempty"`
	Image     *string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Index returns the position of the section with the given id, or -1.
func (d *Document) Index(id string) int {
	for i, s := range d.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Section returns the section with the given id.
func (d *Document) Section(id string) (Section, bool) {
	i := d.Index(id)
	if i < 0 {
		return Section{}, false
	}
	return d.Sections[i], true
}

// Update applies p to the section with the given id. Content changes on a
// detail section are mirrored into the matching header field.
func (d *Document) Update(id string, p Patch) error {
	i := d.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s := d.Sections[i]
	if p.Title != nil && *p.Title != s.Title {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		if !s.IsDetail && d.titleTaken(title, id) {
			return fmt.Errorf("%w: %q", ErrDuplicateTitle, title)
		}
		s.Title = title
	}
	if p.Content != nil {
		s.Content = *p.Content
	}
	if p.Icon != nil {
		s.Icon = *p.Icon
	}
	if p.HasChart != nil {
		s.HasChart = *p.HasChart
	}
	if p.ChartData != nil {
		s.ChartData = *p.ChartData
	}
	if p.Image != nil {
		s.Image = *p.Image
	}
	d.Sections[i] = s
	if s.IsDetail {
		*d.field(s.ID) = s.Content
	}
	return nil
}

// SetDetail sets the content of one of the six header fields.
func (d *Document) SetDetail(id, value string) error {
	if !IsDetailID(id) {
		return fmt.Errorf("%w: %s is not a detail field", ErrNotFound, id)
	}
	return d.Update(id, Patch{Content: &value})
}

// Add appends a new content section. Empty arguments fall back to the
// editor defaults; an empty title picks the first free "New Section" name.
func (d *Document) Add(title, content, icon string) (Section, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = d.freeTitle(defaultSectionTitle)
	} else if d.titleTaken(title, "") {
		return Section{}, fmt.Errorf("%w: %q", ErrDuplicateTitle, title)
	}
	if content == "" {
		content = defaultSectionContent
	}
	if icon == "" {
		icon = defaultSectionIcon
	}
	s := Section{
		ID:      NewID("section"),
		Title:   title,
		Content: content,
		Icon:    icon,
	}
	d.Sections = append(d.Sections, s)
	return s, nil
}

// Remove deletes a content section.
func (d *Document) Remove(id string) error {
	i := d.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if d.Sections[i].IsDetail {
		return fmt.Errorf("%w: cannot remove %s", ErrDetailSection, id)
	}
	d.Sections = append(d.Sections[:i], d.Sections[i+1:]...)
	return nil
}

// Move places a content section at index among the content sections
// (0 is the first section after the header fields).
func (d *Document) Move(id string, index int) error {
	i := d.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s := d.Sections[i]
	if s.IsDetail {
		return fmt.Errorf("%w: cannot move %s", ErrDetailSection, id)
	}
	content := d.ContentSections()
	if index < 0 || index >= len(content) {
		return fmt.Errorf("%w: %d (have %d sections)", ErrIndexOutOfRange, index, len(content))
	}

	rest := make([]Section, 0, len(content))
	for _, c := range content {
		if c.ID != id {
			rest = append(rest, c)
		}
	}
	moved := make([]Section, 0, len(content))
	moved = append(moved, rest[:index]...)
	moved = append(moved, s)
	moved = append(moved, rest[index:]...)
	d.Sections = append(d.detailSections(), moved...)
	return nil
}

// Reorder rearranges the content sections to follow ids, which must name
// every content section exactly once.
func (d *Document) Reorder(ids []string) error {
	content := d.ContentSections()
	if len(ids) != len(content) {
		return fmt.Errorf("%w: got %d ids for %d sections", ErrInvalidOrder, len(ids), len(content))
	}
	byID := make(map[string]Section, len(content))
	for _, s := range content {
		byID[s.ID] = s
	}
	ordered := make([]Section, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown or repeated id %s", ErrInvalidOrder, id)
		}
		delete(byID, id)
		ordered = append(ordered, s)
	}
	d.Sections = append(d.detailSections(), ordered...)
	return nil
}

// Reset discards all edits and returns the document to the blank template.
func (d *Document) Reset() {
	*d = Template()
}

// Validate checks the structural invariants of a document received from
// storage or over the wire.
func (d Document) Validate() error {
	ids := DetailIDs()
	if len(d.Sections) < len(ids) {
		return fmt.Errorf("%w: %d sections, need at least %d detail sections", ErrInvalidDocument, len(d.Sections), len(ids))
	}
	for i, id := range ids {
		s := d.Sections[i]
		if s.ID != id || !s.IsDetail {
			return fmt.Errorf("%w: section %d must be detail %q, got %q", ErrInvalidDocument, i, id, s.ID)
		}
		if v, _ := d.Get(id); v != s.Content {
			return fmt.Errorf("%w: field %s out of sync with its section", ErrInvalidDocument, id)
		}
	}
	seenID := map[string]bool{}
	seenTitle := map[string]bool{}
	for _, s := range d.Sections[len(ids):] {
		if s.IsDetail {
			return fmt.Errorf("%w: detail section %q after content sections", ErrInvalidDocument, s.ID)
		}
		if s.ID == "" || seenID[s.ID] {
			return fmt.Errorf("%w: missing or duplicate section id %q", ErrInvalidDocument, s.ID)
		}
		if seenTitle[s.Title] {
			return fmt.Errorf("%w: duplicate section title %q", ErrInvalidDocument, s.Title)
		}
		seenID[s.ID] = true
		seenTitle[s.Title] = true
	}
	return nil
}

func (d *Document) detailSections() []Section {
	out := make([]Section, 0, len(detailSpecs))
	for _, s := range d.Sections {
		if s.IsDetail {
			out = append(out, s)
		}
	}
	return out
}

func (d *Document) titleTaken(title, exceptID string) bool {
	for _, s := range d.Sections {
		if !s.IsDetail && s.ID != exceptID && s.Title == title {
			return true
		}
	}
	return false
}

func (d *Document) freeTitle(base string) string {
	if !d.titleTaken(base, "") {
		return base
	}
	for n := 2; ; n++ {
		t := fmt.Sprintf("%s %d", base, n)
		if !d.titleTaken(t, "") {
			return t
		}
	}
}
