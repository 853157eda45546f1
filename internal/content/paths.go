package content

import (
	"path"
	"strings"
)

// indexNames map to their directory's path.
var indexNames = map[string]bool{
	"index":  true,
	"readme": true,
	"_index": true,
}

// CanonicalPath maps a slash-separated path relative to the content root to
// its site path. "index.md" becomes "/", "guide/setup.md" becomes
// "/guide/setup/". Segments are lowercased and spaces become dashes.
func CanonicalPath(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	dir, file := path.Split(rel)
	name := strings.TrimSuffix(file, path.Ext(file))

	segments := splitSegments(dir)
	if !indexNames[strings.ToLower(name)] {
		segments = append(segments, name)
	}
	return joinSegments(segments)
}

// ApplyOverrides applies the front matter "path" and "slug" keys to a
// canonical path. "path" replaces the whole path; "slug" replaces the last
// segment and has no effect on the root.
func ApplyOverrides(canonical string, fm FrontMatter) string {
	if p := strings.TrimSpace(fm.Path); p != "" {
		return joinSegments(splitSegments(p))
	}
	if slug := strings.Trim(strings.TrimSpace(fm.Slug), "/"); slug != "" {
		segments := splitSegments(canonical)
		if len(segments) == 0 {
			return canonical
		}
		segments[len(segments)-1] = normalizeSegment(slug)
		return joinSegments(segments)
	}
	return canonical
}

func splitSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s = normalizeSegment(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeSegment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "-")
}

func joinSegments(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/") + "/"
}
