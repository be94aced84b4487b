package skills

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// ParseSkillFile parses SKILL.md content into typed metadata and the body with
// the frontmatter stripped. Name and description are required; everything else
// is optional.
func ParseSkillFile(content []byte) (*Metadata, string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, "", errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, "", errors.New("missing frontmatter")
	}

	m := &Metadata{}
	m.Name, _ = metaData["name"].(string)
	m.Description, _ = metaData["description"].(string)
	m.Version, _ = metaData["version"].(string)
	m.Triggers = toStringSlice(metaData["triggers"])
	m.AllowedTools = toStringSlice(metaData["allowed-tools"])

	if m.Name == "" {
		return nil, "", errors.New("skill name is required in frontmatter")
	}
	if m.Description == "" {
		return nil, "", errors.New("skill description is required in frontmatter")
	}

	return m, ExtractBody(string(content)), nil
}

// toStringSlice converts the loosely-typed YAML list values goldmark-meta
// produces into a string slice. Scalar values become a one-element slice.
func toStringSlice(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []string{val}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}

// ExtractBody removes the leading YAML frontmatter block and returns the body.
func ExtractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
