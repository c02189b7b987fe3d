package skills

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

const (
	maxNameLength          = 64
	maxDescriptionLength   = 1024
	maxCompatibilityLength = 500
)

// ValidateSkill checks one parsed record against the AgentSkills
// specification. Rules are evaluated independently, so a record can
// accumulate several findings. Stubs produce no findings; their parse
// findings already cover them. All name constraints operate on the
// NFKC-normalized form, so Unicode-distinct but visually equal names
// behave identically.
func ValidateSkill(s *Skill) []Finding {
	if !s.Parsed() {
		return nil
	}

	var findings []Finding
	findings = append(findings, validateName(s)...)
	findings = append(findings, validateDescription(s)...)
	findings = append(findings, validateLicense(s)...)
	findings = append(findings, validateCompatibility(s)...)
	findings = append(findings, validateAllowedTools(s)...)
	findings = append(findings, validateExtraFields(s)...)
	return findings
}

func validateName(s *Skill) []Finding {
	if !s.Meta.HasField("name") {
		return nil
	}

	var findings []Finding
	invalid := func(code, msg string) {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Code:     code,
			Message:  msg,
			Path:     s.Dir,
		})
	}

	name := norm.NFKC.String(s.Meta.Name)
	if strings.TrimSpace(name) == "" {
		invalid(CodeFieldMissing, "name cannot be empty")
		return findings
	}

	if n := len([]rune(name)); n > maxNameLength {
		invalid(CodeFieldInvalid, fmt.Sprintf("name exceeds %d characters (got %d)", maxNameLength, n))
	}
	if name != strings.ToLower(name) {
		invalid(CodeFieldInvalid, fmt.Sprintf("name must be lowercase (got %q)", name))
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			invalid(CodeFieldInvalid, fmt.Sprintf("invalid character %q in name: only letters, digits and hyphens are allowed", r))
			break
		}
	}
	if strings.HasPrefix(name, "-") {
		invalid(CodeFieldInvalid, "name cannot start with a hyphen")
	}
	if strings.HasSuffix(name, "-") {
		invalid(CodeFieldInvalid, "name cannot end with a hyphen")
	}
	if strings.Contains(name, "--") {
		invalid(CodeFieldInvalid, "name cannot contain consecutive hyphens")
	}

	dirName := norm.NFKC.String(filepath.Base(s.Dir))
	if dirName != name {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Code:     CodeNameMismatch,
			Message:  fmt.Sprintf("directory name %q does not match skill name %q", dirName, name),
			Path:     s.Dir,
		})
	}
	return findings
}

func validateDescription(s *Skill) []Finding {
	if !s.Meta.HasField("description") {
		return nil
	}

	desc := s.Meta.Description
	if strings.TrimSpace(desc) == "" {
		return []Finding{{
			Severity: SeverityError,
			Code:     CodeFieldMissing,
			Message:  "description cannot be empty",
			Path:     s.Dir,
		}}
	}
	if n := len([]rune(desc)); n > maxDescriptionLength {
		return []Finding{{
			Severity: SeverityError,
			Code:     CodeFieldInvalid,
			Message:  fmt.Sprintf("description exceeds %d characters (got %d)", maxDescriptionLength, n),
			Path:     s.Dir,
		}}
	}
	return nil
}

func validateLicense(s *Skill) []Finding {
	if !s.Meta.HasField("license") {
		return nil
	}
	if strings.TrimSpace(s.Meta.License) == "" {
		return []Finding{{
			Severity: SeverityError,
			Code:     CodeFieldInvalid,
			Message:  "license cannot be empty when present",
			Path:     s.Dir,
		}}
	}
	return nil
}

func validateCompatibility(s *Skill) []Finding {
	if !s.Meta.HasField("compatibility") {
		return nil
	}

	compat := s.Meta.Compatibility
	if strings.TrimSpace(compat) == "" {
		return []Finding{{
			Severity: SeverityError,
			Code:     CodeFieldInvalid,
			Message:  "compatibility cannot be empty when present",
			Path:     s.Dir,
		}}
	}
	if n := len([]rune(compat)); n > maxCompatibilityLength {
		return []Finding{{
			Severity: SeverityError,
			Code:     CodeFieldInvalid,
			Message:  fmt.Sprintf("compatibility exceeds %d characters (got %d)", maxCompatibilityLength, n),
			Path:     s.Dir,
		}}
	}
	return nil
}

func validateAllowedTools(s *Skill) []Finding {
	if !s.Meta.HasField("allowed-tools") {
		return nil
	}
	for _, token := range strings.Split(s.Meta.AllowedTools, " ") {
		if token == "" {
			return []Finding{{
				Severity: SeverityError,
				Code:     CodeFieldInvalid,
				Message:  "allowed-tools must be a space-delimited list of non-empty tokens",
				Path:     s.Dir,
			}}
		}
	}
	return nil
}

func validateExtraFields(s *Skill) []Finding {
	allowed := make(map[string]struct{}, len(AllowedFrontmatterFields))
	for _, f := range AllowedFrontmatterFields {
		allowed[f] = struct{}{}
	}

	var findings []Finding
	for _, field := range s.Meta.Fields() {
		if _, ok := allowed[field]; ok {
			continue
		}
		findings = append(findings, Finding{
			Severity: SeverityError,
			Code:     CodeFieldUnknown,
			Message:  fmt.Sprintf("unexpected frontmatter field %q: allowed fields are %s", field, strings.Join(AllowedFrontmatterFields, ", ")),
			Path:     s.Dir,
		})
	}
	return findings
}

// ValidateUniqueness detects duplicate NFKC-normalized names across the
// discovered set. Every member of a duplicate group gets a finding
// naming the other members' paths. The check works over an
// arbitrary-size set and makes no assumption about how many base
// directories produced it.
func ValidateUniqueness(all []*Skill) []Finding {
	groups := make(map[string][]*Skill)
	var order []string
	for _, s := range all {
		if !s.Parsed() || !s.Meta.HasField("name") {
			continue
		}
		name := norm.NFKC.String(s.Meta.Name)
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], s)
	}

	var findings []Finding
	for _, name := range order {
		group := groups[name]
		if len(group) < 2 {
			continue
		}
		for _, member := range group {
			var others []string
			for _, other := range group {
				if other != member {
					others = append(others, other.Dir)
				}
			}
			findings = append(findings, Finding{
				Severity: SeverityError,
				Code:     CodeDuplicateName,
				Message:  fmt.Sprintf("skill name %q is also declared by %s", name, strings.Join(others, ", ")),
				Path:     member.Dir,
				Related:  others,
			})
		}
	}
	return findings
}

// ValidateName applies the spec's name rules to a bare name, for
// callers like init that check a name before any skill exists. The
// directory-match rule does not apply.
func ValidateName(name string) error {
	s := &Skill{
		Candidate: Candidate{Dir: norm.NFKC.String(name)},
		Meta: &Metadata{
			Name:   name,
			fields: map[string]struct{}{"name": {}},
		},
	}
	if findings := validateName(s); len(findings) > 0 {
		msgs := make([]string, len(findings))
		for i, f := range findings {
			msgs[i] = f.Message
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}
