package convert

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

const (
	titleScanLines    = 5
	titleMinLen       = 30
	titleMaxLen       = 300
	titleFallbackLen  = 20
	abstractWindow    = 15
	abstractMinLen    = 10
	authorsScanLines  = 10
	authorsMinLen     = 20
	affiliationMinLen = 20
	affiliationMax    = 5
	conferenceMinLen  = 20
	disclosureLines   = 5
)

var (
	abstractRe      = regexp.MustCompile(`(?i)abstract`)
	shoutedRe       = regexp.MustCompile(`^[A-Z][A-Z\s]{2,}:?\s*$`)
	canonicalHeadRe = regexp.MustCompile(`(?i)^(INTRODUCTION|BACKGROUND|METHODS|RESULTS|DISCUSSION|CONCLUSIONS|REFERENCES)`)
	yearRe          = regexp.MustCompile(`\d{4}`)
	institutionRe   = regexp.MustCompile(`(?i)university|hospital|institute|center|department|school|college|clinic|laboratory`)
	conferenceRe    = regexp.MustCompile(`(?i)presented at|conference|meeting|symposium|congress|annual|poster`)
	disclosureRe    = regexp.MustCompile(`(?i)disclosure|conflict of interest|funding|grant|support`)
)

// ExtractFields runs the header field heuristics over the document lines.
// Each field is independent and best effort; a field that cannot be found
// is left empty. Title runs first because authors are searched below it.
func ExtractFields(lines []string) poster.Details {
	var d poster.Details
	d.Title = extractTitle(lines)
	d.Abstract = extractAbstract(lines)
	d.Authors = extractAuthors(lines, d.Title)
	d.Affiliations = extractAffiliations(lines)
	d.Conference = extractConference(lines)
	d.Disclosures = extractDisclosures(lines)
	return d
}

func extractTitle(lines []string) string {
	for i := 0; i < len(lines) && i < titleScanLines; i++ {
		n := runeLen(lines[i])
		if n > titleMinLen && n < titleMaxLen && !strings.Contains(lines[i], ",") {
			return lines[i]
		}
	}
	for _, ln := range lines {
		if runeLen(ln) > titleFallbackLen {
			return ln
		}
	}
	if len(lines) > 0 {
		return lines[0]
	}
	return ""
}

func extractAbstract(lines []string) string {
	for i, ln := range lines {
		if !abstractRe.MatchString(ln) {
			continue
		}
		var b strings.Builder
		for j := i + 1; j < len(lines) && j < i+abstractWindow; j++ {
			next := lines[j]
			if isAbstractStop(next) {
				break
			}
			if runeLen(next) > abstractMinLen {
				b.WriteString(next)
				b.WriteByte(' ')
			}
		}
		return strings.TrimSpace(b.String())
	}
	return ""
}

func isAbstractStop(line string) bool {
	if _, ok := matchPattern(line); ok {
		return true
	}
	return shoutedRe.MatchString(line) || canonicalHeadRe.MatchString(line)
}

func extractAuthors(lines []string, title string) string {
	start := -1
	for i, ln := range lines {
		if ln == title {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}
	for i := start + 1; i < len(lines) && i < start+authorsScanLines; i++ {
		if looksLikeAuthors(lines[i]) {
			return lines[i]
		}
	}
	return ""
}

func looksLikeAuthors(line string) bool {
	if !strings.Contains(line, ",") || runeLen(line) <= authorsMinLen {
		return false
	}
	if len(strings.Split(line, ",")) < 2 {
		return false
	}
	return strings.IndexFunc(line, unicode.IsLetter) >= 0 && !yearRe.MatchString(line)
}

func extractAffiliations(lines []string) string {
	var found []string
	for _, ln := range lines {
		if len(found) == affiliationMax {
			break
		}
		if runeLen(ln) > affiliationMinLen && institutionRe.MatchString(ln) {
			found = append(found, ln)
		}
	}
	return strings.Join(found, "; ")
}

func extractConference(lines []string) string {
	for _, ln := range lines {
		if runeLen(ln) > conferenceMinLen && conferenceRe.MatchString(ln) {
			return ln
		}
	}
	return ""
}

func extractDisclosures(lines []string) string {
	for i, ln := range lines {
		if !disclosureRe.MatchString(ln) {
			continue
		}
		if i == len(lines)-1 {
			return ""
		}
		end := i + disclosureLines
		if end > len(lines) {
			end = len(lines)
		}
		return strings.TrimSpace(strings.Join(lines[i:end], " "))
	}
	return ""
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
