package sitemap

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	mod := time.Date(2024, 4, 5, 6, 7, 8, 0, time.FixedZone("CEST", 2*3600))
	out, err := Serialize([]Entry{
		{URL: "https://example.com/", LastModified: mod, Lang: "en"},
		{URL: "https://example.com/b/?q=1&x=2"},
		{URL: "https://example.com/a/", Lang: "de-CH"},
	})
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, xml.Header))
	assert.Contains(t, s, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xhtml="http://www.w3.org/1999/xhtml">`)
	assert.Contains(t, s, "<lastmod>2024-04-05T04:07:08Z</lastmod>")
	assert.Contains(t, s, `<xhtml:link rel="alternate" hreflang="en" href="https://example.com/"></xhtml:link>`)
	assert.Contains(t, s, "<loc>https://example.com/b/?q=1&amp;x=2</loc>")
	assert.Equal(t, 1, strings.Count(s, "<lastmod>"))

	// Order is kept.
	assert.Less(t, strings.Index(s, "example.com/</loc>"), strings.Index(s, "example.com/b/"))
	assert.Less(t, strings.Index(s, "example.com/b/"), strings.Index(s, "example.com/a/"))

	var parsed struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(out, &parsed))
	require.Len(t, parsed.URLs, 3)
	assert.Equal(t, "https://example.com/b/?q=1&x=2", parsed.URLs[1].Loc)
}

func TestSerialize_Empty(t *testing.T) {
	out, err := Serialize(nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<urlset")
}

func TestSerialize_RejectsEmptyURL(t *testing.T) {
	_, err := Serialize([]Entry{{URL: ""}})
	require.Error(t, err)
}
