// Package skills implements discovery, validation and normalization of
// Agent Skill packages: directories carrying a SKILL.md document whose
// YAML frontmatter describes a reusable agent capability.
package skills

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// SkillFileName is the metadata document every skill directory must contain.
const SkillFileName = "SKILL.md"

// AllowedFrontmatterFields is the closed set of frontmatter keys the
// AgentSkills spec recognizes. Any other key is a validation error.
var AllowedFrontmatterFields = []string{
	"name",
	"description",
	"license",
	"compatibility",
	"allowed-tools",
	"metadata",
}

// Finding codes for spec-level and structural problems. Best-practice
// findings use their rule id (AS001..AS020) as the code instead.
const (
	CodeUnreadableSkill    = "unreadable-skill"
	CodeFrontmatterMissing = "frontmatter-missing"
	CodeFrontmatterInvalid = "frontmatter-invalid"
	CodeFieldMissing       = "field-missing"
	CodeFieldInvalid       = "field-invalid"
	CodeFieldUnknown       = "field-unknown"
	CodeNameMismatch       = "name-mismatch"
	CodeDuplicateName      = "duplicate-name"
)

// Severity classifies a finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// MarshalJSON emits the lowercase severity name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the lowercase severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return errors.Errorf("unknown severity %q", str)
	}
	return nil
}

// Finding is a single validation or lint result. Findings are values and
// are never mutated after creation.
type Finding struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Path     string   `json:"path,omitempty"`
	// Related lists the paths of other skills involved in a cross-skill
	// finding, such as the members of a duplicate-name group.
	Related []string `json:"related,omitempty"`
}

// Candidate is a discovered filesystem location believed to contain a
// skill. It is immutable and discarded once parsed.
type Candidate struct {
	// Dir is the skill directory.
	Dir string `json:"dir"`
	// SkillFile is the path to the SKILL.md inside Dir.
	SkillFile string `json:"skillFile"`
}

// Metadata is the typed representation of a SKILL.md frontmatter block.
// Name and Description hold the raw source strings; constraint checking
// is the validator's job, not the parser's.
type Metadata struct {
	Name          string
	Description   string
	License       string
	Compatibility string
	// AllowedTools keeps the space-delimited source form; Tools splits it.
	AllowedTools string
	// Custom holds the free-form "metadata" mapping.
	Custom map[string]string

	fields map[string]struct{}
}

// HasField reports whether the key appeared in the source frontmatter,
// regardless of its value.
func (m *Metadata) HasField(name string) bool {
	_, ok := m.fields[name]
	return ok
}

// Fields returns the sorted set of keys present in the source frontmatter.
func (m *Metadata) Fields() []string {
	out := make([]string, 0, len(m.fields))
	for f := range m.fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Tools returns the allowed-tools tokens.
func (m *Metadata) Tools() []string {
	return strings.Fields(m.AllowedTools)
}

// Skill is a parsed skill record or, when Meta is nil, a stub for a
// candidate whose frontmatter could not be decoded. Stubs still carry
// their parse findings so broken paths show up in reports instead of
// silently vanishing.
type Skill struct {
	Candidate
	Meta *Metadata
	Body string
	// BodyLine is the 1-based line in SKILL.md where the body starts,
	// so body-relative diagnostics can be mapped back to the file.
	BodyLine int
	// ParseFindings are structural problems detected while reading and
	// decoding the document.
	ParseFindings []Finding
}

// Parsed reports whether the skill carries decoded metadata.
func (s *Skill) Parsed() bool {
	return s.Meta != nil
}
