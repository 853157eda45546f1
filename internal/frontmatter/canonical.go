package frontmatter

import (
	"bytes"
	"maps"

	"gopkg.in/yaml.v3"
)

// Canonical renders fields as LF-terminated YAML with sorted keys and no
// trailing newline, leaving out the named keys. The result is stable across
// runs and is what content fingerprints are computed from.
func Canonical(fields map[string]any, without ...string) (string, error) {
	filtered := maps.Clone(fields)
	for _, k := range without {
		delete(filtered, k)
	}
	if len(filtered) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(filtered); err != nil {
		_ = enc.Close()
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
