package convert

import (
	"sort"
	"strings"

	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

// rowTolerance is the largest baseline difference, in page units, between
// two fragments that still sit on the same visual line.
const rowTolerance = 2.0

// ReconstructLines turns the unordered fragments of one page into reading
// order lines: top to bottom, then left to right within a row. Blank
// fragments are skipped and blank lines are never returned.
func ReconstructLines(frags []poster.TextFragment) []string {
	sorted := make([]poster.TextFragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if dy := b.Y - a.Y; dy > rowTolerance || dy < -rowTolerance {
			return a.Y > b.Y
		}
		return a.X < b.X
	})

	var lines []string
	var cur strings.Builder
	flush := func() {
		if ln := strings.TrimSpace(cur.String()); ln != "" {
			lines = append(lines, ln)
		}
		cur.Reset()
	}

	var lastY float64
	started := false
	for _, f := range sorted {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		if started && abs(f.Y-lastY) > rowTolerance {
			flush()
			cur.WriteString(f.Text)
		} else {
			if s := cur.String(); s != "" && !strings.HasSuffix(s, " ") && !strings.HasPrefix(f.Text, " ") {
				cur.WriteByte(' ')
			}
			cur.WriteString(f.Text)
		}
		lastY = f.Y
		started = true
	}
	flush()
	return lines
}

// joinPages concatenates per-page lines into one text, pages separated by a
// blank line.
func joinPages(pages [][]string) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(strings.Join(p, "\n"))
		b.WriteString("\n\n")
	}
	return b.String()
}

// splitLines normalizes line endings, trims every line and drops blanks.
// This is the line sequence the field and section heuristics work on.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
