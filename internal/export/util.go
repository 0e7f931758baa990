package export

import (
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9\-]+`)

func slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

// transformTables turns blocks of lines whose columns are separated by two
// or more spaces into Markdown tables. Chart data pasted into the editor
// usually arrives this way.
func transformTables(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	i := 0
	for i < len(lines) {
		start := i
		cols := 0
		var block [][]string
		for i < len(lines) {
			ln := strings.TrimRight(lines[i], " ")
			if ln == "" {
				break
			}
			parts := splitBy2Spaces(ln)
			if len(parts) < 2 {
				break
			}
			if cols == 0 {
				cols = len(parts)
			}
			if len(parts) != cols || len(block) == maxTableRows {
				break
			}
			block = append(block, parts)
			i++
		}
		if len(block) >= 2 {
			header := block[0]
			out = append(out, "| "+strings.Join(header, " | ")+" |")
			sep := make([]string, len(header))
			for k := range sep {
				sep[k] = "---"
			}
			out = append(out, "| "+strings.Join(sep, " | ")+" |")
			for _, row := range block[1:] {
				out = append(out, "| "+strings.Join(row, " | ")+" |")
			}
			continue
		}
		// Not a table: emit the lines consumed and the one that ended the
		// scan.
		for j := start; j <= i && j < len(lines); j++ {
			out = append(out, lines[j])
		}
		i++
	}
	return strings.Join(out, "\n")
}

const maxTableRows = 50

var twoPlusSpaces = regexp.MustCompile(`\s{2,}`)

func splitBy2Spaces(s string) []string {
	return twoPlusSpaces.Split(strings.TrimSpace(s), -1)
}
