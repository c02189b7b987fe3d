package skills

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// canonicalFieldOrder is the key order canonical frontmatter is emitted
// in. Unknown fields are dropped; lint flags them before fmt would
// silently discard anything a user cares about.
var canonicalFieldOrder = []string{
	"name",
	"description",
	"license",
	"compatibility",
	"allowed-tools",
	"metadata",
}

// Normalize rewrites a skill document with canonical frontmatter and
// the body preserved byte for byte. It is idempotent: normalizing the
// output again yields the same bytes. Documents whose frontmatter could
// not be decoded are returned unchanged with an error, since there is
// no metadata to render.
func Normalize(s *Skill, original []byte) ([]byte, error) {
	if !s.Parsed() {
		return nil, errors.New("cannot normalize a skill without decoded frontmatter")
	}

	header, err := CanonicalFrontmatter(s)
	if err != nil {
		return nil, err
	}

	_, body, ok := SplitDocument(original)
	if !ok {
		return nil, errors.New("document has no frontmatter block")
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString(header)
	b.WriteString("---\n")
	b.WriteString(body)
	return []byte(b.String()), nil
}

// CanonicalFrontmatter renders the metadata as a YAML block in
// canonical field order, without the delimiter lines. Scalar fields
// keep their source values except allowed-tools, whose tokens are
// re-joined with single spaces. The metadata mapping is emitted with
// sorted keys.
func CanonicalFrontmatter(s *Skill) (string, error) {
	if !s.Parsed() {
		return "", errors.New("no decoded frontmatter to render")
	}
	m := s.Meta

	root := &yaml.Node{Kind: yaml.MappingNode}
	appendField := func(key string, value *yaml.Node) {
		root.Content = append(root.Content,
			stringNode(key),
			value,
		)
	}

	for _, key := range canonicalFieldOrder {
		if !m.HasField(key) {
			continue
		}
		switch key {
		case "name":
			appendField(key, stringNode(m.Name))
		case "description":
			appendField(key, stringNode(m.Description))
		case "license":
			appendField(key, stringNode(m.License))
		case "compatibility":
			appendField(key, stringNode(m.Compatibility))
		case "allowed-tools":
			appendField(key, stringNode(strings.Join(m.Tools(), " ")))
		case "metadata":
			appendField(key, customMappingNode(m.Custom))
		}
	}

	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", errors.Wrap(err, "encoding frontmatter")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, "encoding frontmatter")
	}
	return b.String(), nil
}

// stringNode builds a scalar node tagged as a string, so values whose
// plain form would resolve to another YAML type ("1.0", "null", "on")
// are quoted by the encoder and survive a reparse unchanged.
func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func customMappingNode(custom map[string]string) *yaml.Node {
	keys := make([]string, 0, len(custom))
	for k := range custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		node.Content = append(node.Content, stringNode(k), stringNode(custom[k]))
	}
	return node
}
