package ai

import "context"

// PosterSection is one content block as returned by a model.
type PosterSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Poster is the model's reading of a poster: the header fields plus the
// body sections in poster order.
type Poster struct {
	Title        string          `json:"title"`
	Authors      string          `json:"authors"`
	Affiliations string          `json:"affiliations"`
	Abstract     string          `json:"abstract"`
	Conference   string          `json:"conference"`
	Disclosures  string          `json:"disclosures"`
	Sections     []PosterSection `json:"sections"`
}

type Enhancer interface {
	Summarize(ctx context.Context, text string, maxWords int) (string, error)
	ExtractPoster(ctx context.Context, pdfPath string) (Poster, error)
}

type Noop struct{}

func (Noop) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	return "", nil
}
func (Noop) ExtractPoster(ctx context.Context, pdfPath string) (Poster, error) {
	return Poster{}, nil
}
