package render

import (
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	mhtml "github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
	"github.com/tdewolff/minify/v2/svg"
)

// Minifier compacts HTML pages together with their inline CSS, scripts,
// JSON-LD and SVG. It is safe for concurrent use.
type Minifier struct {
	m *minify.M
}

// NewMinifier returns a minifier that keeps document and end tags so the
// output stays well-formed for downstream HTML tooling.
func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &mhtml.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
	})
	m.AddFunc("image/svg+xml", svg.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`[/+]json$`), json.Minify)
	return &Minifier{m: m}
}

// HTML minifies a full HTML document.
func (m *Minifier) HTML(in []byte) ([]byte, error) {
	return m.m.Bytes("text/html", in)
}

// CSS minifies a stylesheet.
func (m *Minifier) CSS(in []byte) ([]byte, error) {
	return m.m.Bytes("text/css", in)
}

// JS minifies a script.
func (m *Minifier) JS(in []byte) ([]byte, error) {
	return m.m.Bytes("application/javascript", in)
}
