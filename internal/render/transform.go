package render

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TransformOptions configures Transform.
type TransformOptions struct {
	// Lang is set on <html> when the layout left it out.
	Lang string
	// SiteOrigin identifies internal absolute links.
	SiteOrigin string
}

// Transform rewrites a full HTML document:
//   - <html> gets a lang attribute if missing
//   - links to other hosts open in a new tab with rel="noopener noreferrer"
//   - images load lazily and decode asynchronously
//   - headings without an id get a unique slug id
func Transform(doc []byte, opts TransformOptions) ([]byte, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	siteHost := ""
	if u, err := url.Parse(opts.SiteOrigin); err == nil {
		siteHost = u.Host
	}

	ids := map[string]int{}
	collectIDs(root, ids)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Html:
				if opts.Lang != "" && getAttr(n, "lang") == "" {
					setAttr(n, "lang", opts.Lang)
				}
			case atom.A:
				if isExternal(getAttr(n, "href"), siteHost) {
					setAttr(n, "rel", "noopener noreferrer")
					setAttr(n, "target", "_blank")
				}
			case atom.Img:
				setDefaultAttr(n, "loading", "lazy")
				setDefaultAttr(n, "decoding", "async")
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				if getAttr(n, "id") == "" {
					if slug := Slugify(extractText(n)); slug != "" {
						setAttr(n, "id", uniqueID(slug, ids))
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func isExternal(href, siteHost string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return !strings.EqualFold(u.Host, siteHost)
}

func collectIDs(n *html.Node, ids map[string]int) {
	if n.Type == html.ElementNode {
		if id := getAttr(n, "id"); id != "" {
			ids[id]++
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectIDs(c, ids)
	}
}

func uniqueID(slug string, ids map[string]int) string {
	candidate := slug
	for i := 1; ids[candidate] > 0; i++ {
		candidate = slug + "-" + strconv.Itoa(i)
	}
	ids[candidate]++
	return candidate
}

// Slugify lowercases s and joins its letter and digit runs with dashes.
func Slugify(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return sb.String()
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func setDefaultAttr(n *html.Node, key, val string) {
	for _, a := range n.Attr {
		if a.Key == key {
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
