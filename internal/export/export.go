// Package export renders a poster document into publishable artifacts: a
// standalone HTML page, a React component, a Next.js page, a Mintlify MDX
// site, or the raw document as YAML or JSON.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/thywilljoshua/poster-to-web/internal/ai"
	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

type Format string

const (
	Standalone Format = "standalone"
	React      Format = "react"
	NextJS     Format = "nextjs"
	MDX        Format = "mdx"
	YAML       Format = "yaml"
	JSON       Format = "json"
)

var formats = []Format{Standalone, React, NextJS, MDX, YAML, JSON}

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrUnknownStyle  = errors.New("unknown style option")
	// ErrMultiFile is returned by Render for formats that produce a
	// directory rather than one file.
	ErrMultiFile = errors.New("format writes several files")
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Filename is the name of the file a single-file format is written to.
func (f Format) Filename() string {
	switch f {
	case Standalone:
		return "poster-website.html"
	case React:
		return "PosterWebsite.jsx"
	case NextJS:
		return "poster-page.js"
	case YAML:
		return "poster.yaml"
	case JSON:
		return "poster.json"
	}
	return ""
}

// ContentType is the media type served for a single-file format.
func (f Format) ContentType() string {
	switch f {
	case Standalone:
		return "text/html; charset=utf-8"
	case React, NextJS:
		return "text/javascript; charset=utf-8"
	case YAML:
		return "application/yaml"
	case JSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// Scheme is a pair of page colors.
type Scheme struct {
	Primary   string `json:"primary" yaml:"primary"`
	Secondary string `json:"secondary" yaml:"secondary"`
}

var Schemes = map[string]Scheme{
	"clinical": {"#3498db", "#2c3e50"},
	"research": {"#27ae60", "#16a085"},
	"pharma":   {"#8e44ad", "#6c3483"},
	"modern":   {"#17a2b8", "#138496"},
	"academic": {"#e74c3c", "#c0392b"},
	"nature":   {"#f39c12", "#d68910"},
	"custom":   {"#3498db", "#2c3e50"},
}

// Fonts maps a font style name to its CSS font stack.
var Fonts = map[string]string{
	"professional": `-apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif`,
	"academic":     `Georgia, "Times New Roman", serif`,
	"modern":       `"Inter", -apple-system, BlinkMacSystemFont, sans-serif`,
}

var (
	layouts       = []string{"single", "sections", "slides"}
	logoPositions = []string{"left", "center", "right"}
	colorRe       = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)
)

// Style controls the look of the rendered page. Primary and Secondary
// override the scheme colors when set, which is how the custom scheme gets
// its colors.
type Style struct {
	ColorScheme  string `json:"colorScheme" yaml:"color_scheme"`
	Primary      string `json:"primaryColor,omitempty" yaml:"primary,omitempty"`
	Secondary    string `json:"secondaryColor,omitempty" yaml:"secondary,omitempty"`
	Font         string `json:"fontStyle" yaml:"font"`
	HeadlineSize int    `json:"headlineSize" yaml:"headline_size"`
	BodySize     int    `json:"bodySize" yaml:"body_size"`
	Layout       string `json:"layoutStyle" yaml:"layout"`
	Logo         string `json:"logo,omitempty" yaml:"logo,omitempty"`
	LogoPosition string `json:"logoPosition" yaml:"logo_position"`
}

func DefaultStyle() Style {
	return Style{
		ColorScheme:  "clinical",
		Font:         "professional",
		HeadlineSize: 36,
		BodySize:     16,
		Layout:       "single",
		LogoPosition: "left",
	}
}

// Resolve fills unset fields from the defaults and checks the named
// options.
func (s Style) Resolve() (Style, error) {
	def := DefaultStyle()
	if s.ColorScheme == "" {
		s.ColorScheme = def.ColorScheme
	}
	if s.Font == "" {
		s.Font = def.Font
	}
	if s.HeadlineSize <= 0 {
		s.HeadlineSize = def.HeadlineSize
	}
	if s.BodySize <= 0 {
		s.BodySize = def.BodySize
	}
	if s.Layout == "" {
		s.Layout = def.Layout
	}
	if s.LogoPosition == "" {
		s.LogoPosition = def.LogoPosition
	}

	scheme, ok := Schemes[s.ColorScheme]
	if !ok {
		return s, fmt.Errorf("%w: color scheme %q", ErrUnknownStyle, s.ColorScheme)
	}
	if _, ok := Fonts[s.Font]; !ok {
		return s, fmt.Errorf("%w: font %q", ErrUnknownStyle, s.Font)
	}
	if !contains(layouts, s.Layout) {
		return s, fmt.Errorf("%w: layout %q", ErrUnknownStyle, s.Layout)
	}
	if !contains(logoPositions, s.LogoPosition) {
		return s, fmt.Errorf("%w: logo position %q", ErrUnknownStyle, s.LogoPosition)
	}
	if s.Primary == "" {
		s.Primary = scheme.Primary
	}
	if s.Secondary == "" {
		s.Secondary = scheme.Secondary
	}
	for _, c := range []string{s.Primary, s.Secondary} {
		if !colorRe.MatchString(c) {
			return s, fmt.Errorf("%w: color %q", ErrUnknownStyle, c)
		}
	}
	return s, nil
}

type Options struct {
	Format   Format
	Style    Style
	SiteName string
	// SlugPrefix is prepended to MDX page slugs.
	SlugPrefix string
	// Enhancer, when set, writes the Next.js meta description.
	Enhancer ai.Enhancer
	Logger   logrus.FieldLogger
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// view is what the page renderers see: header fields as currently shown in
// the detail sections, and the content sections in order.
type view struct {
	poster.Details
	Sections []poster.Section
	Style    Style
}

func newView(doc poster.Document, st Style) (view, error) {
	st, err := st.Resolve()
	if err != nil {
		return view{}, err
	}
	v := view{Style: st, Sections: doc.ContentSections()}
	for _, s := range doc.Sections {
		if !s.IsDetail {
			continue
		}
		switch s.ID {
		case poster.IDTitle:
			v.Title = s.Content
		case poster.IDAuthors:
			v.Authors = s.Content
		case poster.IDAffiliations:
			v.Affiliations = s.Content
		case poster.IDAbstract:
			v.Abstract = s.Content
		case poster.IDConference:
			v.Conference = s.Content
		case poster.IDDisclosures:
			v.Disclosures = s.Content
		}
	}
	return v, nil
}

// Render produces the single-file artifact for opts.Format.
func Render(ctx context.Context, doc poster.Document, opts Options) ([]byte, error) {
	switch opts.Format {
	case YAML:
		return yaml.Marshal(doc)
	case JSON:
		return json.MarshalIndent(doc, "", "  ")
	case MDX:
		return nil, ErrMultiFile
	}

	v, err := newView(doc, opts.Style)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	switch opts.Format {
	case Standalone:
		err = renderHTML(&buf, v)
	case React:
		err = renderReact(&buf, v)
	case NextJS:
		err = renderNext(ctx, &buf, v, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", opts.Format, err)
	}
	return buf.Bytes(), nil
}

// Write renders doc into outDir and returns the paths written.
func Write(ctx context.Context, outDir string, doc poster.Document, opts Options) ([]string, error) {
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	if opts.Format == MDX {
		v, err := newView(doc, opts.Style)
		if err != nil {
			return nil, err
		}
		return writeSite(outDir, v, opts)
	}

	b, err := Render(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	file := filepath.Join(outDir, opts.Format.Filename())
	if err := os.WriteFile(file, b, 0o644); err != nil {
		return nil, err
	}
	opts.logger().WithFields(logrus.Fields{"format": opts.Format, "file": file}).Info("export written")
	return []string{file}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
