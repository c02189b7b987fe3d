package skills

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skillWith(dir string, fields map[string]string) *Skill {
	meta := &Metadata{fields: make(map[string]struct{})}
	for key, value := range fields {
		meta.fields[key] = struct{}{}
		switch key {
		case "name":
			meta.Name = value
		case "description":
			meta.Description = value
		case "license":
			meta.License = value
		case "compatibility":
			meta.Compatibility = value
		case "allowed-tools":
			meta.AllowedTools = value
		}
	}
	return &Skill{
		Candidate: Candidate{Dir: dir, SkillFile: dir + "/SKILL.md"},
		Meta:      meta,
	}
}

func codes(findings []Finding) []string {
	var out []string
	for _, f := range findings {
		out = append(out, f.Code)
	}
	return out
}

func TestValidateSkillPasses(t *testing.T) {
	s := skillWith("/repo/.github/skills/pdf-tools", map[string]string{
		"name":        "pdf-tools",
		"description": "Processes PDF documents.",
	})

	assert.Empty(t, ValidateSkill(s))
}

func TestValidateSkillStubSkipped(t *testing.T) {
	s := &Skill{Candidate: Candidate{Dir: "/skills/broken"}}

	assert.Nil(t, ValidateSkill(s))
}

func TestValidateNameRules(t *testing.T) {
	tests := []struct {
		name      string
		skillName string
		wantCodes []string
		wantMsg   string
	}{
		{"valid", "pdf-tools", nil, ""},
		{"valid digits", "skill123", nil, ""},
		{"uppercase and space", "PDF Tools", []string{CodeFieldInvalid, CodeFieldInvalid, CodeNameMismatch}, "lowercase"},
		{"leading hyphen", "-tools", []string{CodeFieldInvalid, CodeNameMismatch}, "start with a hyphen"},
		{"trailing hyphen", "tools-", []string{CodeFieldInvalid, CodeNameMismatch}, "end with a hyphen"},
		{"double hyphen", "pdf--tools", []string{CodeFieldInvalid, CodeNameMismatch}, "consecutive hyphens"},
		{"underscore", "pdf_tools", []string{CodeFieldInvalid, CodeNameMismatch}, "invalid character"},
		{"too long", strings.Repeat("a", 65), []string{CodeFieldInvalid, CodeNameMismatch}, "exceeds 64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := skillWith("/skills/pdf-tools", map[string]string{
				"name":        tt.skillName,
				"description": "Processes PDF documents.",
			})
			if tt.wantCodes == nil {
				s.Dir = "/skills/" + tt.skillName
			}

			findings := ValidateSkill(s)

			assert.Equal(t, tt.wantCodes, codes(findings))
			if tt.wantMsg != "" {
				found := false
				for _, f := range findings {
					if strings.Contains(f.Message, tt.wantMsg) {
						found = true
					}
				}
				assert.True(t, found, "expected a finding mentioning %q", tt.wantMsg)
			}
		})
	}
}

func TestValidateNameUppercaseAndSpaceBothCited(t *testing.T) {
	s := skillWith("/skills/pdf-tools", map[string]string{
		"name":        "PDF Tools",
		"description": "Processes PDF documents.",
	})

	findings := ValidateSkill(s)

	var sawCase, sawChar bool
	for _, f := range findings {
		if strings.Contains(f.Message, "lowercase") {
			sawCase = true
		}
		if strings.Contains(f.Message, "invalid character") {
			sawChar = true
		}
	}
	assert.True(t, sawCase, "case constraint should be cited")
	assert.True(t, sawChar, "disallowed character should be cited")
}

func TestValidateNameNFKC(t *testing.T) {
	t.Run("rune counting", func(t *testing.T) {
		// 64 multi-byte runes are within the limit.
		name := strings.Repeat("é", 64)
		s := skillWith("/skills/"+name, map[string]string{
			"name":        name,
			"description": "Handles accented names.",
		})

		assert.Empty(t, ValidateSkill(s))
	})

	t.Run("compatibility forms compare equal", func(t *testing.T) {
		// "café" with a combining accent normalizes to the composed form.
		decomposed := "café"
		s := skillWith("/skills/café", map[string]string{
			"name":        decomposed,
			"description": "Serves coffee metaphors.",
		})

		assert.Empty(t, ValidateSkill(s))
	})
}

func TestValidateNameDirMismatch(t *testing.T) {
	s := skillWith("/skills/other-dir", map[string]string{
		"name":        "pdf-tools",
		"description": "Processes PDF documents.",
	})

	findings := ValidateSkill(s)

	require.Len(t, findings, 1)
	assert.Equal(t, CodeNameMismatch, findings[0].Code)
	assert.Contains(t, findings[0].Message, "other-dir")
}

func TestValidateEmptyName(t *testing.T) {
	s := skillWith("/skills/blank", map[string]string{
		"name":        "   ",
		"description": "Has a blank name.",
	})

	findings := ValidateSkill(s)

	require.Len(t, findings, 1)
	assert.Equal(t, CodeFieldMissing, findings[0].Code)
}

func TestValidateDescription(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := skillWith("/skills/d", map[string]string{"name": "d", "description": " "})
		findings := ValidateSkill(s)
		require.Len(t, findings, 1)
		assert.Equal(t, CodeFieldMissing, findings[0].Code)
	})

	t.Run("too long", func(t *testing.T) {
		s := skillWith("/skills/d", map[string]string{
			"name":        "d",
			"description": strings.Repeat("x", 1025),
		})
		findings := ValidateSkill(s)
		require.Len(t, findings, 1)
		assert.Equal(t, CodeFieldInvalid, findings[0].Code)
	})

	t.Run("at limit", func(t *testing.T) {
		s := skillWith("/skills/d", map[string]string{
			"name":        "d",
			"description": strings.Repeat("x", 1024),
		})
		assert.Empty(t, ValidateSkill(s))
	})
}

func TestValidateOptionalFields(t *testing.T) {
	base := map[string]string{"name": "opt", "description": "Checks optional fields."}

	t.Run("empty license", func(t *testing.T) {
		fields := map[string]string{"license": ""}
		for k, v := range base {
			fields[k] = v
		}
		s := skillWith("/skills/opt", fields)
		assert.Equal(t, []string{CodeFieldInvalid}, codes(ValidateSkill(s)))
	})

	t.Run("compatibility too long", func(t *testing.T) {
		fields := map[string]string{"compatibility": strings.Repeat("c", 501)}
		for k, v := range base {
			fields[k] = v
		}
		s := skillWith("/skills/opt", fields)
		assert.Equal(t, []string{CodeFieldInvalid}, codes(ValidateSkill(s)))
	})

	t.Run("allowed-tools empty token", func(t *testing.T) {
		fields := map[string]string{"allowed-tools": "Bash  Read"}
		for k, v := range base {
			fields[k] = v
		}
		s := skillWith("/skills/opt", fields)
		assert.Equal(t, []string{CodeFieldInvalid}, codes(ValidateSkill(s)))
	})

	t.Run("allowed-tools valid", func(t *testing.T) {
		fields := map[string]string{"allowed-tools": "Bash Read Write"}
		for k, v := range base {
			fields[k] = v
		}
		s := skillWith("/skills/opt", fields)
		assert.Empty(t, ValidateSkill(s))
	})
}

func TestValidateUnknownFields(t *testing.T) {
	s := skillWith("/skills/extra", map[string]string{
		"name":        "extra",
		"description": "Carries unknown fields.",
		"author":      "someone",
	})

	findings := ValidateSkill(s)

	require.Len(t, findings, 1)
	assert.Equal(t, CodeFieldUnknown, findings[0].Code)
	assert.Contains(t, findings[0].Message, "author")
}

func TestValidateUniqueness(t *testing.T) {
	t.Run("two duplicates", func(t *testing.T) {
		a := skillWith("/skills/helper", map[string]string{"name": "helper", "description": "First helper."})
		b := skillWith("/skills/group/helper", map[string]string{"name": "helper", "description": "Second helper."})

		findings := ValidateUniqueness([]*Skill{a, b})

		require.Len(t, findings, 2)
		assert.Equal(t, CodeDuplicateName, findings[0].Code)
		assert.Equal(t, CodeDuplicateName, findings[1].Code)
		assert.Equal(t, []string{"/skills/group/helper"}, findings[0].Related)
		assert.Equal(t, []string{"/skills/helper"}, findings[1].Related)
	})

	t.Run("NFKC-equal names collide", func(t *testing.T) {
		a := skillWith("/skills/café", map[string]string{"name": "café", "description": "Composed."})
		b := skillWith("/skills/other", map[string]string{"name": "café", "description": "Decomposed."})

		findings := ValidateUniqueness([]*Skill{a, b})

		assert.Len(t, findings, 2)
	})

	t.Run("unique names pass", func(t *testing.T) {
		a := skillWith("/skills/a", map[string]string{"name": "a", "description": "A."})
		b := skillWith("/skills/b", map[string]string{"name": "b", "description": "B."})

		assert.Empty(t, ValidateUniqueness([]*Skill{a, b}))
	})

	t.Run("stubs ignored", func(t *testing.T) {
		a := skillWith("/skills/a", map[string]string{"name": "a", "description": "A."})
		stub := &Skill{Candidate: Candidate{Dir: "/skills/broken"}}

		assert.Empty(t, ValidateUniqueness([]*Skill{a, stub}))
	})
}

func TestValidateNameStandalone(t *testing.T) {
	assert.NoError(t, ValidateName("pdf-tools"))
	assert.NoError(t, ValidateName("skill123"))

	assert.Error(t, ValidateName("PDF-Tools"))
	assert.Error(t, ValidateName("-leading"))
	assert.Error(t, ValidateName("trailing-"))
	assert.Error(t, ValidateName("double--hyphen"))
	assert.Error(t, ValidateName("under_score"))
	assert.Error(t, ValidateName(strings.Repeat("a", 65)))
	assert.Error(t, ValidateName(""))
}
