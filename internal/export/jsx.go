package export

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"text/template"

	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

// metaWords caps the AI written meta description.
const metaWords = 30

// posterData is the object literal embedded in the generated components.
type posterData struct {
	Title          string           `json:"title"`
	Authors        string           `json:"authors"`
	Affiliations   string           `json:"affiliations"`
	Abstract       string           `json:"abstract"`
	Conference     string           `json:"conference"`
	Disclosures    string           `json:"disclosures"`
	PrimaryColor   string           `json:"primaryColor"`
	SecondaryColor string           `json:"secondaryColor"`
	FontStyle      string           `json:"fontStyle"`
	HeadlineSize   int              `json:"headlineSize"`
	BodySize       int              `json:"bodySize"`
	LayoutStyle    string           `json:"layoutStyle"`
	Logo           string           `json:"logo,omitempty"`
	LogoPosition   string           `json:"logoPosition"`
	Sections       []poster.Section `json:"sections"`
}

func newPosterData(v view) posterData {
	return posterData{
		Title:          v.Title,
		Authors:        v.Authors,
		Affiliations:   v.Affiliations,
		Abstract:       v.Abstract,
		Conference:     v.Conference,
		Disclosures:    v.Disclosures,
		PrimaryColor:   v.Style.Primary,
		SecondaryColor: v.Style.Secondary,
		FontStyle:      v.Style.Font,
		HeadlineSize:   v.Style.HeadlineSize,
		BodySize:       v.Style.BodySize,
		LayoutStyle:    v.Style.Layout,
		Logo:           v.Style.Logo,
		LogoPosition:   v.Style.LogoPosition,
		Sections:       v.Sections,
	}
}

// jsx templates use [[ ]] since JSX style props are written {{ ... }}.
func jsxTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Delims("[[", "]]").Parse(text))
}

var reactTmpl = jsxTemplate("react", `import React from 'react';
import './PosterWebsite.css';

const PosterWebsite = () => {
    const posterData = [[.Data]];

    return (
        <div className="poster-website">
            <header className="header" style={{ backgroundColor: posterData.primaryColor }}>
                <div className="container">
                    <h1>{posterData.title}</h1>
                    <div className="authors">{posterData.authors}</div>
                    <div className="affiliations">{posterData.affiliations}</div>
                    <div className="conference">{posterData.conference}</div>
                </div>
            </header>

            <main className="container">
                <div className="content">
                    <section className="abstract">
                        <h2>Abstract</h2>
                        <p>{posterData.abstract}</p>
                    </section>

                    {posterData.sections.map((section) => (
                        <section key={section.id} className="section">
                            <h2>{section.icon} {section.title}</h2>
                            {section.content.split('\n').map((line, i) => <p key={i}>{line}</p>)}
                            {section.hasChart && (
                                <div className="chart-container">
                                    {section.image ? <img src={section.image} alt={section.title} /> : <p>{section.chartData}</p>}
                                </div>
                            )}
                        </section>
                    ))}
                </div>
            </main>

            {posterData.disclosures && (
                <footer className="footer" style={{ backgroundColor: posterData.secondaryColor }}>
                    <div className="container">
                        <h3>Disclosures & Acknowledgments</h3>
                        <div className="disclosures">{posterData.disclosures}</div>
                    </div>
                </footer>
            )}
        </div>
    );
};

export default PosterWebsite;
`)

var nextTmpl = jsxTemplate("nextjs", `import Head from 'next/head';
import styles from '../styles/Poster.module.css';

export default function PosterPage() {
    const posterData = [[.Data]];
    const description = [[.Description]];

    return (
        <>
            <Head>
                <title>{posterData.title}</title>
                <meta name="description" content={description} />
                <meta property="og:title" content={posterData.title} />
                <meta property="og:description" content={description} />
                <meta name="authors" content={posterData.authors} />
            </Head>

            <div className={styles.posterWebsite}>
                <header className={styles.header} style={{ backgroundColor: posterData.primaryColor }}>
                    <div className={styles.container}>
                        <h1>{posterData.title}</h1>
                        <div className={styles.authors}>{posterData.authors}</div>
                        <div className={styles.affiliations}>{posterData.affiliations}</div>
                        <div className={styles.conference}>{posterData.conference}</div>
                    </div>
                </header>

                <main className={styles.container}>
                    <div className={styles.content}>
                        <section className={styles.abstract}>
                            <h2>Abstract</h2>
                            <p>{posterData.abstract}</p>
                        </section>

                        {posterData.sections.map((section) => (
                            <section key={section.id} className={styles.section}>
                                <h2>{section.icon} {section.title}</h2>
                                {section.content.split('\n').map((line, i) => <p key={i}>{line}</p>)}
                                {section.hasChart && (
                                    <div className={styles.chartContainer}>
                                        {section.image ? <img src={section.image} alt={section.title} /> : <p>{section.chartData}</p>}
                                    </div>
                                )}
                            </section>
                        ))}
                    </div>
                </main>

                {posterData.disclosures && (
                    <footer className={styles.footer} style={{ backgroundColor: posterData.secondaryColor }}>
                        <div className={styles.container}>
                            <h3>Disclosures & Acknowledgments</h3>
                            <div className={styles.disclosures}>{posterData.disclosures}</div>
                        </div>
                    </footer>
                )}
            </div>
        </>
    );
}
`)

// jsLiteral encodes v as a JavaScript expression. HTML escaping stays on so
// a "</script>" in poster text cannot end an enclosing script block.
func jsLiteral(v any) (string, error) {
	b, err := json.MarshalIndent(v, "    ", "    ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func renderReact(w io.Writer, v view) error {
	data, err := jsLiteral(newPosterData(v))
	if err != nil {
		return err
	}
	return reactTmpl.Execute(w, struct{ Data string }{data})
}

func renderNext(ctx context.Context, w io.Writer, v view, opts Options) error {
	data, err := jsLiteral(newPosterData(v))
	if err != nil {
		return err
	}
	desc, err := jsLiteral(metaDescription(ctx, v.Abstract, opts))
	if err != nil {
		return err
	}
	return nextTmpl.Execute(w, struct{ Data, Description string }{data, desc})
}

// metaDescription is the abstract, or a one-sentence summary of it when an
// enhancer is configured. Summary failures fall back to the abstract.
func metaDescription(ctx context.Context, abstract string, opts Options) string {
	if opts.Enhancer == nil || strings.TrimSpace(abstract) == "" {
		return abstract
	}
	sum, err := opts.Enhancer.Summarize(ctx, abstract, metaWords)
	if err != nil {
		opts.logger().WithError(err).Warn("summarizing abstract failed, using it verbatim")
		return abstract
	}
	if sum = strings.TrimSpace(sum); sum != "" {
		return sum
	}
	return abstract
}
