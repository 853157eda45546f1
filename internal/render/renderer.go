// Package render produces the final HTML of a page: layout, head tags,
// navigation, HTML transforms and minification.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/meta"
	"git.home.luguber.info/inful/sitebuilder/internal/navtree"
)

//go:embed layouts/*.html
var builtinLayouts embed.FS

// LayoutName is the template executed for every page.
const LayoutName = "page.html"

// Input is one page to render.
type Input struct {
	Page *meta.Page
	// Body is the rendered Markdown HTML fragment.
	Body []byte
	// Tree is the completed navigation tree.
	Tree *navtree.Node
}

// Renderer renders pages. It is safe for concurrent use after New returns.
type Renderer struct {
	site      config.SiteConfig
	theme     config.ThemeConfig
	tmpl      *template.Template
	inlineCSS template.CSS
	minifier  *Minifier
}

// New parses the layout and reads inline CSS files. The built-in layout is
// used unless theme.layout_dir is set.
func New(cfg *config.Config) (*Renderer, error) {
	tmpl, err := loadLayout(cfg.Theme.LayoutDir)
	if err != nil {
		return nil, err
	}

	var css strings.Builder
	for _, p := range cfg.Theme.InlineCSS {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryRender, "read inline stylesheet").
				WithContext("path", p).Fatal().Build()
		}
		css.Write(data)
		css.WriteByte('\n')
	}

	r := &Renderer{
		site:      cfg.Site,
		theme:     cfg.Theme,
		tmpl:      tmpl,
		inlineCSS: template.CSS(strings.TrimSpace(css.String())), //nolint:gosec // operator-provided stylesheet
	}
	if cfg.Output.MinifyEnabled() {
		r.minifier = NewMinifier()
	}
	return r, nil
}

func loadLayout(dir string) (*template.Template, error) {
	base := template.New(LayoutName).Funcs(funcs)
	var (
		tmpl *template.Template
		err  error
	)
	if dir == "" {
		tmpl, err = base.ParseFS(builtinLayouts, "layouts/*.html")
	} else {
		tmpl, err = base.ParseGlob(filepath.Join(dir, "*.html"))
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "parse layout").
			WithContext("path", dir).Fatal().Build()
	}
	if layout := tmpl.Lookup(LayoutName); layout == nil || layout.Tree == nil {
		return nil, ferrors.RenderError("layout directory has no "+LayoutName).
			WithContext("path", dir).Build()
	}
	return tmpl, nil
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// Render executes the layout for in and applies the HTML transforms and
// minification.
func (r *Renderer) Render(ctx context.Context, in Input) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Page == nil {
		return nil, ferrors.InternalError("render called without page metadata").Build()
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, LayoutName, r.data(in)); err != nil {
		return nil, r.fail(in, err, "execute layout")
	}

	out, err := Transform(buf.Bytes(), TransformOptions{Lang: in.Page.Language, SiteOrigin: r.site.Origin})
	if err != nil {
		return nil, r.fail(in, err, "transform html")
	}

	if r.minifier != nil {
		out, err = r.minifier.HTML(out)
		if err != nil {
			return nil, r.fail(in, err, "minify html")
		}
	}
	return out, nil
}

func (r *Renderer) fail(in Input, err error, msg string) error {
	return ferrors.RenderError(msg).WithCause(err).
		WithContext("document", in.Page.Path).Build()
}

// pageData is the layout's dot.
type pageData struct {
	Site          config.SiteConfig
	Page          *meta.Page
	Content       template.HTML
	DocumentTitle string
	ShowTitle     bool
	Keywords      string
	OGType        string
	OGLocale      string
	Published     string
	Modified      string
	ModifiedDate  string
	Nav           []*NavItem
	Breadcrumbs   []Crumb
	Stylesheets   []string
	Scripts       []string
	InlineCSS     template.CSS
}

func (r *Renderer) data(in Input) pageData {
	p := in.Page
	d := pageData{
		Site:          r.site,
		Page:          p,
		Content:       template.HTML(in.Body), //nolint:gosec // rendered from site content
		DocumentTitle: documentTitle(p.Title, r.site.Title),
		ShowTitle:     !hasH1(p),
		Keywords:      strings.Join(p.Tags, ", "),
		OGType:        "article",
		OGLocale:      strings.ReplaceAll(p.Language, "-", "_"),
		Stylesheets:   r.theme.Stylesheets,
		Scripts:       r.theme.Scripts,
		InlineCSS:     r.inlineCSS,
	}
	if p.Path == navtree.RootPath {
		d.OGType = "website"
	}
	if !p.Published.IsZero() {
		d.Published = p.Published.UTC().Format(time.RFC3339)
	}
	if !p.Modified.IsZero() {
		d.Modified = p.Modified.UTC().Format(time.RFC3339)
		d.ModifiedDate = p.Modified.UTC().Format("2006-01-02")
	}
	if in.Tree != nil {
		d.Nav = Navigation(in.Tree, p.Path)
		d.Breadcrumbs = Breadcrumbs(in.Tree, p.Path)
	}
	return d
}

func documentTitle(page, site string) string {
	if page == "" || page == site {
		return site
	}
	return fmt.Sprintf("%s | %s", page, site)
}

func hasH1(p *meta.Page) bool {
	for _, h := range p.TOC {
		if h.Level == 1 {
			return true
		}
	}
	return false
}
