package skills

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseSkill reads and parses the candidate's SKILL.md. Read failures
// produce a stub skill carrying an unreadable-skill finding.
func ParseSkill(c Candidate) *Skill {
	content, err := os.ReadFile(c.SkillFile)
	if err != nil {
		return &Skill{
			Candidate:     c,
			ParseFindings: []Finding{unreadableFinding(c.Dir, err)},
		}
	}
	return Parse(c, content)
}

// Parse splits the document into frontmatter and body and decodes the
// frontmatter into typed metadata. Decode failures yield a stub skill
// (Meta == nil) with findings instead of an error, so later stages can
// still report the broken path. Field-level problems on an otherwise
// decodable header keep the record and attach findings.
func Parse(c Candidate, content []byte) *Skill {
	skill := &Skill{Candidate: c}

	header, body, ok := SplitDocument(content)
	if !ok {
		skill.ParseFindings = append(skill.ParseFindings, Finding{
			Severity: SeverityError,
			Code:     CodeFrontmatterMissing,
			Message:  "SKILL.md must start and end its frontmatter with a '---' delimiter line",
			Path:     c.Dir,
		})
		return skill
	}
	skill.Body = body
	// Opening delimiter, header lines, closing delimiter, then the body.
	skill.BodyLine = strings.Count(header, "\n") + 4

	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(header), &raw); err != nil {
		skill.ParseFindings = append(skill.ParseFindings, Finding{
			Severity: SeverityError,
			Code:     CodeFrontmatterInvalid,
			Message:  fmt.Sprintf("frontmatter is not valid YAML: %v", err),
			Path:     c.Dir,
		})
		return skill
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	meta := &Metadata{fields: make(map[string]struct{}, len(raw))}
	for key := range raw {
		meta.fields[key] = struct{}{}
	}

	var findings []Finding
	meta.Name = stringField(raw, "name", c.Dir, &findings)
	meta.Description = stringField(raw, "description", c.Dir, &findings)
	meta.License = stringField(raw, "license", c.Dir, &findings)
	meta.Compatibility = stringField(raw, "compatibility", c.Dir, &findings)
	meta.AllowedTools = stringField(raw, "allowed-tools", c.Dir, &findings)
	meta.Custom = customField(raw, c.Dir, &findings)

	for _, required := range []string{"name", "description"} {
		if !meta.HasField(required) {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Code:     CodeFieldMissing,
				Message:  fmt.Sprintf("required field %q is missing from frontmatter", required),
				Path:     c.Dir,
			})
		}
	}

	skill.Meta = meta
	skill.ParseFindings = findings
	return skill
}

// SplitDocument splits a SKILL.md document into its frontmatter block
// (without delimiters) and body. CRLF line endings are tolerated. ok is
// false when either delimiter is missing.
func SplitDocument(content []byte) (frontmatter, body string, ok bool) {
	text := string(content)

	var rest string
	switch {
	case strings.HasPrefix(text, "---\r\n"):
		rest = text[5:]
	case strings.HasPrefix(text, "---\n"):
		rest = text[4:]
	default:
		return "", "", false
	}

	idx := strings.Index(rest, "\n---\n")
	crlfIdx := strings.Index(rest, "\n---\r\n")
	if idx == -1 || (crlfIdx != -1 && crlfIdx < idx) {
		idx = crlfIdx
	}
	if idx == -1 {
		return "", "", false
	}

	frontmatter = rest[:idx]
	if strings.HasPrefix(rest[idx:], "\n---\r\n") {
		body = rest[idx+6:]
	} else {
		body = rest[idx+5:]
	}
	return frontmatter, body, true
}

// stringField extracts a scalar field as a string. A present field with
// a non-scalar value is recorded as a field-invalid finding and read as
// empty.
func stringField(raw map[string]interface{}, key, path string, findings *[]Finding) string {
	value, ok := raw[key]
	if !ok {
		return ""
	}
	str, ok := scalarString(value)
	if !ok {
		*findings = append(*findings, Finding{
			Severity: SeverityError,
			Code:     CodeFieldInvalid,
			Message:  fmt.Sprintf("field %q must be a scalar string", key),
			Path:     path,
		})
		return ""
	}
	return str
}

// customField decodes the optional "metadata" mapping into flat
// string-to-string pairs. Non-mapping values and nested values are
// field-invalid findings.
func customField(raw map[string]interface{}, path string, findings *[]Finding) map[string]string {
	value, ok := raw["metadata"]
	if !ok {
		return nil
	}

	invalid := func(msg string) map[string]string {
		*findings = append(*findings, Finding{
			Severity: SeverityError,
			Code:     CodeFieldInvalid,
			Message:  msg,
			Path:     path,
		})
		return nil
	}

	mapping, ok := value.(map[string]interface{})
	if !ok {
		return invalid(`field "metadata" must be a mapping of string keys to scalar values`)
	}

	custom := make(map[string]string, len(mapping))
	for k, v := range mapping {
		str, ok := scalarString(v)
		if !ok {
			return invalid(`field "metadata" values must be scalars, not nested structures`)
		}
		custom[k] = str
	}
	return custom
}

// scalarString renders a YAML scalar as its string form.
func scalarString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return fmt.Sprintf("%v", v), true
	case int, int64, uint64, float64:
		return fmt.Sprintf("%v", v), true
	case nil:
		return "", true
	default:
		return "", false
	}
}
