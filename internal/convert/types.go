package convert

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/thywilljoshua/poster-to-web/internal/ai"
	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

// Status tells how a document was produced.
type Status string

const (
	StatusExtracted Status = "extracted"
	StatusAI        Status = "ai"
	StatusTemplate  Status = "template"
)

var (
	ErrUnsupportedInput = errors.New("unsupported input type")
	ErrNoTextLayer      = errors.New("no extractable text layer")
)

type Config struct {
	AIExclusive bool
	Enhancer    ai.Enhancer
	Logger      logrus.FieldLogger
}

type Result struct {
	Document poster.Document `json:"document" yaml:"document"`
	Status   Status          `json:"status" yaml:"status"`
	Reason   string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	MIME     string          `json:"mime" yaml:"mime"`
	Pages    int             `json:"pages" yaml:"pages"`
	Lines    int             `json:"lines" yaml:"lines"`
	Stats    poster.Stats    `json:"stats" yaml:"stats"`
}
