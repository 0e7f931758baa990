package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

type docsJSON struct {
	Schema     string                 `json:"$schema"`
	Theme      string                 `json:"theme"`
	Name       string                 `json:"name"`
	Colors     map[string]string      `json:"colors,omitempty"`
	Favicon    string                 `json:"favicon,omitempty"`
	Navigation map[string]interface{} `json:"navigation"`
	Logo       map[string]string      `json:"logo,omitempty"`
	Navbar     map[string]interface{} `json:"navbar,omitempty"`
	Contextual map[string]interface{} `json:"contextual,omitempty"`
	Footer     map[string]interface{} `json:"footer,omitempty"`
}

// writeSite writes index.mdx, one page per content section and docs.json.
func writeSite(outDir string, v view, opts Options) ([]string, error) {
	var files []string

	index := filepath.Join(outDir, "index.mdx")
	if err := os.WriteFile(index, []byte(indexMDX(v)), 0o644); err != nil {
		return nil, err
	}
	files = append(files, index)

	slugs := sectionSlugs(v.Sections, opts.SlugPrefix)
	for i, s := range v.Sections {
		file := filepath.Join(outDir, slugs[i]+".mdx")
		if err := os.WriteFile(file, []byte(sectionMDX(s)), 0o644); err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	siteName := opts.SiteName
	if siteName == "" {
		siteName = v.Title
	}
	docs := filepath.Join(outDir, "docs.json")
	if err := updateDocsJSON(docs, siteName, v.Style, slugs); err != nil {
		return nil, fmt.Errorf("writing docs.json: %w", err)
	}
	files = append(files, docs)

	opts.logger().WithFields(logrus.Fields{"dir": outDir, "pages": len(slugs) + 1}).Info("mdx site written")
	return files, nil
}

func indexMDX(v view) string {
	title := v.Title
	if title == "" {
		title = "Poster"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "---\ntitle: \"%s\"\n", escapeQuotes(title))
	if v.Conference != "" {
		fmt.Fprintf(&b, "description: \"%s\"\n", escapeQuotes(v.Conference))
	}
	b.WriteString("---\n\n")
	if v.Authors != "" {
		fmt.Fprintf(&b, "**%s**\n\n", v.Authors)
	}
	if v.Affiliations != "" {
		for _, a := range strings.Split(v.Affiliations, "; ") {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}
	if v.Abstract != "" {
		b.WriteString("## 📄 Abstract\n\n")
		b.WriteString(v.Abstract)
		b.WriteString("\n\n")
	}
	if v.Disclosures != "" {
		b.WriteString("<Note>\n")
		b.WriteString(v.Disclosures)
		b.WriteString("\n</Note>\n")
	}
	return b.String()
}

func sectionMDX(s poster.Section) string {
	var b strings.Builder
	fmt.Fprintf(&b, "---\ntitle: \"%s\"\n", escapeQuotes(s.Title))
	if s.Icon != "" {
		fmt.Fprintf(&b, "icon: \"%s\"\n", escapeQuotes(s.Icon))
	}
	b.WriteString("---\n\n")
	if t := strings.TrimSpace(s.Content); t != "" {
		b.WriteString(transformTables(t))
		b.WriteString("\n\n")
	}
	if s.HasChart {
		switch {
		case s.Image != "":
			fmt.Fprintf(&b, "![%s](%s)\n\n", escapeQuotes(s.Title), s.Image)
		case s.ChartData != "":
			b.WriteString(transformTables(s.ChartData))
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// sectionSlugs gives every section a unique page slug. Titles that slugify
// to nothing fall back to the section id.
func sectionSlugs(secs []poster.Section, prefix string) []string {
	out := make([]string, len(secs))
	used := map[string]bool{"index": true}
	for i, s := range secs {
		base := slugify(s.Title)
		if base == "" {
			base = slugify(s.ID)
		}
		if prefix != "" {
			base = slugify(prefix) + "-" + base
		}
		slug := base
		for n := 2; used[slug]; n++ {
			slug = fmt.Sprintf("%s-%d", base, n)
		}
		used[slug] = true
		out[i] = slug
	}
	return out
}

func escapeQuotes(s string) string { return strings.ReplaceAll(s, "\"", "\\\"") }

func initializeDocsJSON(path string, siteName string) error {
	if siteName == "" {
		siteName = "Poster"
	}

	cfg := docsJSON{
		Schema: "https://mintlify.com/docs.json",
		Theme:  "mint",
		Name:   siteName,
		Navigation: map[string]interface{}{
			"tabs": []map[string]interface{}{},
		},
	}

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// updateDocsJSON rewrites the navigation and colors of an existing docs.json,
// creating it first when missing. Other settings a user added are kept.
func updateDocsJSON(path string, siteName string, st Style, slugs []string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := initializeDocsJSON(path, siteName); err != nil {
			return err
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var cfg docsJSON
	if err := json.Unmarshal(b, &cfg); err != nil {
		return err
	}
	if siteName != "" {
		cfg.Name = siteName
	}
	cfg.Colors = map[string]string{
		"primary": st.Primary,
		"light":   st.Primary,
		"dark":    st.Secondary,
	}

	pages := []interface{}{"index"}
	for _, s := range slugs {
		pages = append(pages, s)
	}

	cfg.Navigation = map[string]interface{}{
		"tabs": []map[string]interface{}{
			{
				"tab": "Poster",
				"groups": []map[string]interface{}{
					{
						"group": "Sections",
						"pages": pages,
					},
				},
			},
		},
	}

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
