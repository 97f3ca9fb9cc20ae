package transcode

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMediaType = "image/svg+xml"

// VectorOptimizer minifies SVG documents.
type VectorOptimizer interface {
	Optimize(text string, multipass bool) (string, error)
}

// SVGMinifier optimizes SVG text with tdewolff/minify. In multipass mode the
// minifier is re-applied until the output stops changing or maxPasses is hit.
type SVGMinifier struct {
	m         *minify.M
	maxPasses int
}

// NewSVGMinifier builds a minifier with the given multipass ceiling.
func NewSVGMinifier(maxPasses int) *SVGMinifier {
	if maxPasses <= 0 {
		maxPasses = 1
	}
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc(svgMediaType, svg.Minify)
	return &SVGMinifier{m: m, maxPasses: maxPasses}
}

// Optimize minifies text.
func (s *SVGMinifier) Optimize(text string, multipass bool) (string, error) {
	passes := 1
	if multipass {
		passes = s.maxPasses
	}
	out := text
	for range passes {
		next, err := s.m.String(svgMediaType, out)
		if err != nil {
			return "", err
		}
		if next == out {
			break
		}
		out = next
	}
	return out, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText reads bytes as UTF-8 the way a browser TextDecoder does: a
// leading BOM is dropped and invalid sequences become U+FFFD.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD")
}
