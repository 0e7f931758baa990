package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	genai "google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

type Gemini struct {
	client *genai.Client
	model  string
	log    logrus.FieldLogger
}

func NewGemini(ctx context.Context, apiKey, model string, log logrus.FieldLogger) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if model == "" {
		model = defaultModel
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: model, log: log.WithField("model", model)}, nil
}

func (g *Gemini) prompt(ctx context.Context, text string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

func (g *Gemini) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	if g.client == nil || strings.TrimSpace(text) == "" {
		return "", nil
	}
	if maxWords <= 0 {
		maxWords = 25
	}
	prompt := fmt.Sprintf("Summarize in one sentence (max %d words), plain text only:\n\n%s", maxWords, text)
	out, err := g.prompt(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

const posterPrompt = `You are an academic poster parser. Return ONLY valid JSON - no markdown code blocks, no explanations.

Read this poster PDF and output exactly this structure:
{
  "title": "", "authors": "", "affiliations": "", "abstract": "",
  "conference": "", "disclosures": "",
  "sections": [{"title": "Methods", "content": "Full section text..."}]
}

RULES:
- authors: names as printed, comma separated
- affiliations: institutions separated by "; "
- conference: the line naming the meeting where the poster was presented, if any
- disclosures: funding / conflict of interest statements, if any
- sections: body blocks in reading order (Background, Methods, Results, ...), one entry per heading, full text
- use "" for anything not present
- DO NOT wrap the response in code fences`

// ExtractPoster sends the whole PDF to the model and parses its JSON answer.
func (g *Gemini) ExtractPoster(ctx context.Context, pdfPath string) (Poster, error) {
	var out Poster
	if g.client == nil {
		return out, errors.New("gemini not configured")
	}
	b, err := os.ReadFile(pdfPath)
	if err != nil {
		return out, err
	}
	content := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: posterPrompt},
				{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: b}},
			},
		},
	}
	res, err := g.client.Models.GenerateContent(ctx, g.model, content, nil)
	if err != nil {
		return out, fmt.Errorf("gemini API call failed: %w", err)
	}
	js := stripCodeFences(res.Text())
	g.log.WithField("bytes", len(js)).Debug("gemini poster response")

	if err := json.Unmarshal([]byte(js), &out); err != nil {
		s := findFirstJSON(js)
		if s == "" {
			return out, fmt.Errorf("failed to parse Gemini response - no JSON found: %w", err)
		}
		if err2 := json.Unmarshal([]byte(s), &out); err2 != nil {
			return out, fmt.Errorf("failed to parse Gemini response as JSON: %w (original error: %v)", err2, err)
		}
	}
	return out, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

func findFirstJSON(s string) string {
	// naive scan for the first balanced {...}
	start := -1
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
