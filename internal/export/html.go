package export

import (
	"html/template"
	"io"
	"math"
	"strconv"
	"strings"
	texttemplate "text/template"
)

// The stylesheet is built with text/template: font stacks carry quotes,
// which html/template refuses inside a style element.
var cssTmpl = texttemplate.Must(texttemplate.New("css").Funcs(texttemplate.FuncMap{
	"px": px,
}).Parse(`
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
    font-family: {{.Font}};
    line-height: 1.6;
    color: #333;
    background: #f5f5f5;
    font-size: {{px .Style.BodySize 1}};
}
.header { background: {{.Style.Primary}}; color: white; padding: 80px 40px; text-align: center; }
.container { max-width: 1200px; margin: 0 auto; padding: 0 40px; }
.content {
    background: white;
    padding: 60px;
    border-radius: 12px;
    box-shadow: 0 2px 20px rgba(0,0,0,0.1);
    margin-top: -40px;
    position: relative;
}
h1 { font-size: {{px .Style.HeadlineSize 1}}; margin-bottom: 20px; line-height: 1.2; }
h2 {
    font-size: {{px .Style.HeadlineSize 0.8}};
    color: {{.Style.Primary}};
    margin-bottom: 25px;
    border-bottom: 2px solid {{.Style.Primary}};
    padding-bottom: 15px;
}
.authors { font-size: {{px .Style.BodySize 1.25}}; opacity: 0.9; margin-bottom: 15px; }
.affiliations { font-size: {{px .Style.BodySize 1}}; opacity: 0.8; max-width: 900px; margin: 0 auto 20px; line-height: 1.5; }
.conference { font-size: {{px .Style.BodySize 0.9}}; opacity: 0.7; margin-top: 20px; }
.abstract { background: #f8f9fa; padding: 40px; border-radius: 8px; margin-bottom: 50px; border-left: 4px solid {{.Style.Primary}}; }
.abstract h2 { color: {{.Style.Secondary}}; }
.section { margin-bottom: 50px; padding: 40px; background: #fafbfc; border-radius: 8px; transition: transform 0.3s ease; }
.section:hover { transform: translateY(-2px); box-shadow: 0 4px 12px rgba(0,0,0,0.08); }
.section p { line-height: 1.8; color: #444; margin-bottom: 20px; }
.chart-container { background: white; padding: 30px; border-radius: 8px; margin-top: 20px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }
.footer { background: {{.Style.Secondary}}; color: white; padding: 40px; text-align: center; margin-top: 60px; }
.disclosures { max-width: 900px; margin: 0 auto; font-size: {{px .Style.BodySize 0.9}}; line-height: 1.6; opacity: 0.9; }
{{- if eq .Style.Layout "sections"}}
.section-navigation {
    position: fixed;
    left: 0;
    top: 50%;
    transform: translateY(-50%);
    background: white;
    padding: 20px;
    border-radius: 0 8px 8px 0;
    box-shadow: 2px 0 10px rgba(0,0,0,0.1);
    z-index: 100;
}
.nav-link { display: block; padding: 10px; color: {{.Style.Primary}}; text-decoration: none; margin-bottom: 5px; border-radius: 4px; transition: all 0.3s; }
.nav-link:hover { background: {{.Style.Primary}}20; }
html { scroll-behavior: smooth; }
.content { margin-left: 200px; }
{{- else if eq .Style.Layout "slides"}}
.section.slide { min-height: 100vh; display: flex; flex-direction: column; justify-content: center; padding: 60px; page-break-after: always; }
.section.slide h2 { font-size: {{px .Style.HeadlineSize 1.2}}; }
{{- end}}
@media (max-width: 768px) {
    h1 { font-size: {{px .Style.HeadlineSize 0.8}}; }
    .content { padding: 30px; margin-left: 0; }
    .section { padding: 25px; }
    .section-navigation { display: none; }
}
`))

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"lines":  contentLines,
	"imgsrc": imageSource,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;600;700&display=swap" rel="stylesheet">
    <style>{{.CSS}}</style>
</head>
<body>
{{- if eq .Style.Layout "sections"}}
    <nav class="section-navigation">
    {{- range $i, $s := .Sections}}
        <a href="#section-{{$i}}" class="nav-link">{{$s.Icon}} {{$s.Title}}</a>
    {{- end}}
    </nav>
{{- end}}
    <div class="header">
        <div class="container">
        {{- with imgsrc .Style.Logo}}
            <div class="logo-container" style="text-align: {{$.Style.LogoPosition}}; margin-bottom: 20px;">
                <img src="{{.}}" alt="Logo" style="max-height: 80px; max-width: 200px;">
            </div>
        {{- end}}
            <h1>{{.Title}}</h1>
        {{- with .Authors}}
            <div class="authors">{{.}}</div>
        {{- end}}
        {{- with .Affiliations}}
            <div class="affiliations">{{.}}</div>
        {{- end}}
        {{- with .Conference}}
            <div class="conference">{{.}}</div>
        {{- end}}
        </div>
    </div>

    <div class="container">
        <div class="content">
        {{- with .Abstract}}
            <div class="abstract">
                <h2>📄 Abstract</h2>
                <p>{{.}}</p>
            </div>
        {{- end}}
        {{- range $i, $s := .Sections}}
            <div id="section-{{$i}}" class="section{{if eq $.Style.Layout "slides"}} slide{{end}}">
                <h2>{{$s.Icon}} {{$s.Title}}</h2>
                <p>{{range $j, $l := lines $s.Content}}{{if $j}}<br>{{end}}{{$l}}{{end}}</p>
            {{- if $s.HasChart}}
                <div class="chart-container">
                {{- with imgsrc $s.Image}}
                    <img src="{{.}}" alt="{{$s.Title}} image" style="max-width: 100%; height: auto;">
                {{- else}}
                    <p class="chart-description">{{if $s.ChartData}}{{$s.ChartData}}{{else}}Chart data{{end}}</p>
                {{- end}}
                </div>
            {{- end}}
            </div>
        {{- end}}
        </div>
    </div>
{{- with .Disclosures}}

    <div class="footer">
        <div class="container">
            <h3 style="margin-bottom: 15px;">Disclosures &amp; Acknowledgments</h3>
            <div class="disclosures">{{.}}</div>
        </div>
    </div>
{{- end}}
</body>
</html>
`))

type htmlPage struct {
	view
	CSS template.CSS
}

func renderHTML(w io.Writer, v view) error {
	var css strings.Builder
	err := cssTmpl.Execute(&css, struct {
		view
		Font string
	}{v, Fonts[v.Style.Font]})
	if err != nil {
		return err
	}
	return pageTmpl.Execute(w, htmlPage{view: v, CSS: template.CSS(css.String())})
}

func px(n int, scale float64) string {
	v := math.Round(float64(n)*scale*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func contentLines(s string) []string {
	return strings.Split(s, "\n")
}

// imageSource passes through inline images and http(s) links and drops
// anything else.
func imageSource(s string) template.URL {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "data:image/"),
		strings.HasPrefix(s, "https://"),
		strings.HasPrefix(s, "http://"):
		return template.URL(s)
	}
	return ""
}
