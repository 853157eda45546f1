// Package sitemap serializes sitemaps.org URL sets with hreflang links.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

// Entry is one page in the sitemap.
type Entry struct {
	URL          string
	LastModified time.Time
	Lang         string
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	XHTML   string   `xml:"xmlns:xhtml,attr"`
	URLs    []url    `xml:"url"`
}

type url struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
	Links   []link `xml:"xhtml:link,omitempty"`
}

type link struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Serialize renders entries as sitemap XML, keeping their order. Entries
// with a language get an alternate link to themselves; a zero LastModified
// omits <lastmod>.
func Serialize(entries []Entry) ([]byte, error) {
	set := urlset{XMLNS: sitemapNS, XHTML: xhtmlNS, URLs: make([]url, 0, len(entries))}
	for i, e := range entries {
		if e.URL == "" {
			return nil, fmt.Errorf("sitemap entry %d: empty URL", i)
		}
		u := url{Loc: e.URL}
		if !e.LastModified.IsZero() {
			u.LastMod = e.LastModified.UTC().Format(time.RFC3339)
		}
		if e.Lang != "" {
			u.Links = []link{{Rel: "alternate", Hreflang: e.Lang, Href: e.URL}}
		}
		set.URLs = append(set.URLs, u)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
