// Package frontmatter composes and splits the YAML metadata headers carried
// by every file in the grep-tree projection. Compose is used by the renderer;
// Split and ParseYAML are used by the validator when re-reading emitted files.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates a document started with a YAML
// frontmatter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

var delim = []byte("---\n")

// Compose renders a document: `---` delimited YAML marshalled from meta,
// a blank separator line, then the markdown body.
func Compose(meta any, body string) ([]byte, error) {
	fields, err := yaml.Marshal(meta)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(delim)*2+len(fields)+1+len(body))
	out = append(out, delim...)
	out = append(out, fields...)
	out = append(out, delim...)
	out = append(out, '\n')
	out = append(out, body...)
	return out, nil
}

// Split separates the YAML header (without delimiters) from the body.
// had is false when the document carries no frontmatter; body is then the
// full input.
func Split(content []byte) (meta []byte, body []byte, had bool, err error) {
	if !bytes.HasPrefix(content, delim) {
		return nil, content, false, nil
	}

	rest := content[len(delim):]
	if bytes.HasPrefix(rest, delim) {
		return []byte{}, rest[len(delim):], true, nil
	}

	closeSeq := []byte("\n---\n")
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+1], rest[idx+len(closeSeq):], true, nil
}

// ParseYAML parses a raw YAML header into a map.
func ParseYAML(meta []byte) (map[string]any, error) {
	if len(meta) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
