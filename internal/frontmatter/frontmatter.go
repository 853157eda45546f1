// Package frontmatter separates a leading YAML block from a Markdown body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// ErrNotMapping is returned when the front matter block is valid YAML but
// not a key/value mapping.
var ErrNotMapping = errors.New("yaml front matter is not a mapping")

// Block is a source document split into its parts.
type Block struct {
	// Raw is the YAML between the delimiters, without them.
	Raw []byte
	// Body is everything after the closing delimiter.
	Body []byte
	// Present is false when the document has no front matter at all.
	Present bool
	// BodyLine is the 1-based line number where Body starts in the source.
	BodyLine int
}

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// If the document does not start with a delimiter, Present is false and Body
// is the full input. Both LF and CRLF line endings are accepted.
func Split(content []byte) (Block, error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return Block{Body: content, BodyLine: 1}, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return Block{Raw: []byte{}, Body: content[start+len(open):], Present: true, BodyLine: 3}, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter at EOF without a trailing newline is still valid.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content, tail) {
			raw := content[start : len(content)-len("---")]
			return Block{Raw: raw, Body: []byte{}, Present: true, BodyLine: countLines(content) + 1}, nil
		}
		return Block{}, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	bodyStart := start + idx + len(closeSeq)
	return Block{
		Raw:      content[start:end],
		Body:     content[bodyStart:],
		Present:  true,
		BodyLine: countLines(content[:bodyStart]) + 1,
	}, nil
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return map[string]any{}, nil
	}
	if node.Content[0].Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	var fields map[string]any
	if err := node.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return map[string]any{}, nil
	}
	for k, v := range fields {
		fields[k] = stringKeys(v)
	}
	return fields, nil
}

// stringKeys rewrites nested mappings with non-string keys (e.g. `{1: one}`)
// into map[string]any so that the fields stay JSON-encodable.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			t[k] = stringKeys(inner)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = stringKeys(inner)
		}
		return out
	case []any:
		for i, inner := range t {
			t[i] = stringKeys(inner)
		}
		return t
	default:
		return v
	}
}

// Decode unmarshals raw front matter into a typed struct. Unknown keys are
// ignored so that the raw map can carry them separately.
func Decode(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode front matter: %w", err)
	}
	return nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

func countLines(b []byte) int {
	return bytes.Count(b, []byte("\n"))
}
