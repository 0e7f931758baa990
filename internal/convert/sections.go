package convert

import (
	"regexp"
	"strings"

	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

const (
	// sectionWindow bounds body collection: lines after the heading are
	// taken while their index is below heading+sectionWindow.
	sectionWindow  = 50
	sectionMinLine = 5
	// headingSlack is how much longer than the canonical title a line that
	// starts with it may be and still count as that heading.
	headingSlack = 5
)

// SectionPattern maps recognizable heading text to a canonical section.
type SectionPattern struct {
	Matcher *regexp.Regexp
	ID      string
	Title   string
	Icon    string
}

// sectionPatterns is ordered; the first matching entry wins.
var sectionPatterns = []SectionPattern{
	{regexp.MustCompile(`(?i)^\s*(introduction|intro)\s*:?\s*$`), "introduction", "Introduction", "📝"},
	{regexp.MustCompile(`(?i)^\s*(background|context)\s*:?\s*$`), "background", "Background", "🔬"},
	{regexp.MustCompile(`(?i)^\s*(aim|aims|objective|objectives|purpose|goal|goals)\s*:?\s*$`), "objectives", "Objectives", "🎯"},
	{regexp.MustCompile(`(?i)^\s*(method|methods|methodology|materials?\s+and\s+methods?)\s*:?\s*$`), "methods", "Methods", "📊"},
	{regexp.MustCompile(`(?i)^\s*(result|results|findings)\s*:?\s*$`), "results", "Results", "📈"},
	{regexp.MustCompile(`(?i)^\s*(discussion|interpretation)\s*:?\s*$`), "discussion", "Discussion", "💭"},
	{regexp.MustCompile(`(?i)^\s*(conclusion|conclusions|summary)\s*:?\s*$`), "conclusions", "Conclusions", "💡"},
	{regexp.MustCompile(`(?i)^\s*(reference|references|bibliography|literature|citations?)\s*:?\s*$`), "references", "References", "📚"},
	{regexp.MustCompile(`(?i)^\s*(acknowledgm?ent|acknowledgm?ents|funding|grant|support)\s*:?\s*$`), "acknowledgments", "Acknowledgments", "🙏"},
}

// SectionPatterns returns a copy of the heading table in match order.
func SectionPatterns() []SectionPattern {
	out := make([]SectionPattern, len(sectionPatterns))
	copy(out, sectionPatterns)
	return out
}

// Classify reports which section heading line is, if any. A line is a
// heading when it matches a pattern's expression, equals its title ignoring
// case, or starts with the title and is at most a few characters longer.
func Classify(line string) (SectionPattern, bool) {
	upper := strings.ToUpper(line)
	for _, p := range sectionPatterns {
		title := strings.ToUpper(p.Title)
		if p.Matcher.MatchString(line) || upper == title ||
			(strings.HasPrefix(upper, title) && runeLen(upper) < runeLen(p.Title)+headingSlack) {
			return p, true
		}
	}
	return SectionPattern{}, false
}

// matchPattern reports whether line matches the expression of any pattern.
func matchPattern(line string) (SectionPattern, bool) {
	for _, p := range sectionPatterns {
		if p.Matcher.MatchString(line) {
			return p, true
		}
	}
	return SectionPattern{}, false
}

// endsBody reports whether line terminates a section body: a pattern
// expression, an exact heading title, or a shouted all-caps heading.
func endsBody(line string) bool {
	upper := strings.ToUpper(line)
	for _, p := range sectionPatterns {
		if p.Matcher.MatchString(line) || upper == strings.ToUpper(p.Title) {
			return true
		}
	}
	return shoutedRe.MatchString(line)
}

// SegmentSections finds recognized headings and collects the lines below
// each one as its body. Only the first section per heading kind is kept.
//
// Every line is tested as a heading, including lines already taken as the
// body of an earlier heading, so a body line that only Classify recognizes
// (for example "Conclusions 2") also opens a section of its own.
func SegmentSections(lines []string) []poster.Section {
	var out []poster.Section
	seen := make(map[string]bool)

	for i, line := range lines {
		p, ok := Classify(line)
		if !ok {
			continue
		}
		var body strings.Builder
		for j := i + 1; j < len(lines) && j < i+sectionWindow; j++ {
			next := lines[j]
			if endsBody(next) {
				break
			}
			if runeLen(next) > sectionMinLine {
				body.WriteString(next)
				body.WriteByte('\n')
			}
		}
		content := strings.TrimSpace(body.String())
		if content == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, poster.Section{
			ID:      poster.NewID(p.ID),
			Title:   p.Title,
			Content: content,
			Icon:    p.Icon,
		})
	}
	return out
}
