package skills

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bpSkill(t *testing.T, name, description, body string) *Skill {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	skillFile := filepath.Join(dir, SkillFileName)
	content := "---\nname: " + name + "\ndescription: " + description + "\n---\n" + body
	require.NoError(t, os.WriteFile(skillFile, []byte(content), 0o644))

	skill := ParseSkill(Candidate{Dir: dir, SkillFile: skillFile})
	require.True(t, skill.Parsed())
	return skill
}

func findingsFor(code string, findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out
}

func runRule(t *testing.T, code string, s *Skill) []Finding {
	t.Helper()
	for _, rule := range Rules() {
		if rule.Code == code {
			return rule.Check(s)
		}
	}
	t.Fatalf("unknown rule %s", code)
	return nil
}

func TestRulesCoverAS001ThroughAS020(t *testing.T) {
	rules := Rules()
	require.Len(t, rules, 20)
	seen := make(map[string]bool)
	for _, r := range rules {
		assert.NotEmpty(t, r.Summary)
		seen[r.Code] = true
	}
	for _, code := range []string{"AS001", "AS010", "AS015", "AS020"} {
		assert.True(t, seen[code], "missing rule %s", code)
	}
}

func TestRunBestPracticesSkipsStubs(t *testing.T) {
	stub := &Skill{Candidate: Candidate{Dir: "/skills/broken"}}
	assert.Nil(t, RunBestPractices(stub))
}

func TestAS001NameChecks(t *testing.T) {
	s := bpSkill(t, "claude-helper", "Assists with tasks. Use when needed.", "body\n")
	findings := runRule(t, "AS001", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "reserved words")

	s.Meta.Name = "<tag>-skill"
	findings = runRule(t, "AS001", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "XML tags")

	s.Meta.Name = "plain-skill"
	assert.Empty(t, runRule(t, "AS001", s))
}

func TestAS002DescriptionXMLTags(t *testing.T) {
	s := bpSkill(t, "x", "Wraps text in <b> tags for emphasis.", "body\n")
	assert.Len(t, runRule(t, "AS002", s), 1)

	s.Meta.Description = "Formats text safely."
	assert.Empty(t, runRule(t, "AS002", s))
}

func TestAS003ThirdPerson(t *testing.T) {
	s := bpSkill(t, "x", "I will help you with documents.", "body\n")
	assert.Len(t, runRule(t, "AS003", s), 1)

	s.Meta.Description = "Processes documents for analysis."
	assert.Empty(t, runRule(t, "AS003", s))
}

func TestAS003EmptyDescriptionNoFinding(t *testing.T) {
	s := bpSkill(t, "x", "placeholder", "body\n")
	s.Meta.Description = ""
	assert.Empty(t, runRule(t, "AS003", s))
	assert.Empty(t, runRule(t, "AS002", s))
	assert.Empty(t, runRule(t, "AS014", s))
}

func TestAS004BodyLength(t *testing.T) {
	long := strings.Repeat("line\n", 501)
	s := bpSkill(t, "x", "Checks length limits.", long)
	findings := runRule(t, "AS004", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "501")

	short := bpSkill(t, "y", "Checks length limits.", strings.Repeat("line\n", 10))
	assert.Empty(t, runRule(t, "AS004", short))
}

func TestAS005BackslashPaths(t *testing.T) {
	s := bpSkill(t, "x", "Documents paths.", "See scripts\\helpers for details.\n")
	assert.Len(t, runRule(t, "AS005", s), 1)

	clean := bpSkill(t, "y", "Documents paths.", "See scripts/helpers for details.\n")
	assert.Empty(t, runRule(t, "AS005", clean))
}

func TestAS006NestedReferences(t *testing.T) {
	s := bpSkill(t, "x", "Links documents.", "Read [the guide](guide.md) first.\n")
	nested := "More in [details](details.md).\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "guide.md"), []byte(nested), 0o644))

	findings := runRule(t, "AS006", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "guide.md")

	// A leaf reference is fine.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "guide.md"), []byte("Plain text.\n"), 0o644))
	assert.Empty(t, runRule(t, "AS006", s))
}

func TestAS007GenericFilenames(t *testing.T) {
	s := bpSkill(t, "x", "Ships helper files.", "body\n")
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "helper.py"), []byte("print('hi')\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "extract_tables.py"), []byte("print('hi')\n"), 0o644))

	findings := runRule(t, "AS007", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "helper.py")
}

func TestAS008TOCForLongCompanions(t *testing.T) {
	s := bpSkill(t, "x", "Ships long companion docs.", "body\n")
	long := strings.Repeat("text line\n", 101)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "reference.md"), []byte(long), 0o644))

	assert.Len(t, runRule(t, "AS008", s), 1)

	withTOC := "## Table of Contents\n" + long
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "reference.md"), []byte(withTOC), 0o644))
	assert.Empty(t, runRule(t, "AS008", s))
}

func TestAS009MCPToolFormat(t *testing.T) {
	s := bpSkill(t, "x", "Calls tools.", "Use the `get_weather` MCP tool to fetch data.\n")
	findings := runRule(t, "AS009", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "get_weather")

	ok := bpSkill(t, "y", "Calls tools.", "Use `get_weather` to look things up in conversation.\n")
	assert.Empty(t, runRule(t, "AS009", ok))
}

func TestAS010AbsoluteDates(t *testing.T) {
	s := bpSkill(t, "x", "Documents history.", "This changed in March 2024 substantially.\n")
	assert.Len(t, runRule(t, "AS010", s), 1)

	iso := bpSkill(t, "y", "Documents history.", "Released 2024-03-15.\n")
	assert.Len(t, runRule(t, "AS010", iso), 1)

	old := bpSkill(t, "z", "Documents history.", "<details>deprecated notes</details>\nThis changed in March 2024.\n")
	assert.Empty(t, runRule(t, "AS010", old))
}

func TestAS011TemplatesForOutputSkills(t *testing.T) {
	s := bpSkill(t, "x", "Generates summary reports.", "Instructions only.\n")
	assert.Len(t, runRule(t, "AS011", s), 1)

	with := bpSkill(t, "y", "Generates summary reports.", "## Template\n\nReport: ...\n")
	assert.Empty(t, runRule(t, "AS011", with))

	unrelated := bpSkill(t, "z", "Reads documents aloud.", "Instructions only.\n")
	assert.Empty(t, runRule(t, "AS011", unrelated))
}

func TestAS012ConsistentTerminology(t *testing.T) {
	s := bpSkill(t, "x", "Manages accounts.", "Ask the user first, then notify the customer.\n")
	findings := runRule(t, "AS012", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "user")

	ok := bpSkill(t, "y", "Manages accounts.", "Ask the user first, then notify the user again.\n")
	assert.Empty(t, runRule(t, "AS012", ok))
}

func TestAS013ScriptDependencies(t *testing.T) {
	s := bpSkill(t, "x", "Runs scripts.", "Run the script.\n")
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "convert_images.py"), []byte("import sys\nsys.exit(0)\n"), 0o644))

	assert.Len(t, runRule(t, "AS013", s), 1)

	documented := bpSkill(t, "y", "Runs scripts.", "## Dependencies\n\npip install pillow\n")
	require.NoError(t, os.WriteFile(filepath.Join(documented.Dir, "convert_images.py"), []byte("import sys\nsys.exit(0)\n"), 0o644))
	assert.Empty(t, runRule(t, "AS013", documented))
}

func TestAS014UsageTriggers(t *testing.T) {
	s := bpSkill(t, "x", "Processes spreadsheets.", "body\n")
	assert.Len(t, runRule(t, "AS014", s), 1)

	with := bpSkill(t, "y", "Processes spreadsheets. Use when tabular data needs cleanup.", "body\n")
	assert.Empty(t, runRule(t, "AS014", with))
}

func TestAS015GerundNaming(t *testing.T) {
	s := bpSkill(t, "extract-tables", "Extracts tables. Use when needed.", "body\n")
	findings := runRule(t, "AS015", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "extract")

	gerund := bpSkill(t, "extracting-tables", "Extracts tables. Use when needed.", "body\n")
	assert.Empty(t, runRule(t, "AS015", gerund))

	noun := bpSkill(t, "pdf-tools", "Processes PDFs. Use when needed.", "body\n")
	assert.Empty(t, runRule(t, "AS015", noun))
}

func TestAS016ReservedWords(t *testing.T) {
	s := bpSkill(t, "anthropic-tools", "Does things. Use when needed.", "body\n")
	assert.Len(t, runRule(t, "AS016", s), 1)

	ok := bpSkill(t, "pdf-tools", "Does things. Use when needed.", "body\n")
	assert.Empty(t, runRule(t, "AS016", ok))
}

func TestAS017ScriptErrorHandling(t *testing.T) {
	s := bpSkill(t, "x", "Runs scripts.", "body\n")
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "fetch_data.py"), []byte("print('no handling')\n"), 0o644))

	findings := runRule(t, "AS017", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "fetch_data.py")

	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "fetch_data.py"), []byte("try:\n    pass\nexcept Exception:\n    pass\n"), 0o644))
	assert.Empty(t, runRule(t, "AS017", s))
}

func TestAS018MagicConstants(t *testing.T) {
	s := bpSkill(t, "x", "Runs scripts.", "body\n")
	script := "import sys\nTIMEOUT = 30\nsys.exit(0)\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "poll_api.py"), []byte(script), 0o644))

	findings := runRule(t, "AS018", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "poll_api.py")

	commented := "import sys\n# seconds before giving up\nTIMEOUT = 30\nsys.exit(0)\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir, "poll_api.py"), []byte(commented), 0o644))
	assert.Empty(t, runRule(t, "AS018", s))
}

func TestAS019NumberedWorkflow(t *testing.T) {
	s := bpSkill(t, "x", "Guides a workflow.", "## Workflow\n\nDo things in order.\n")
	assert.Len(t, runRule(t, "AS019", s), 1)

	numbered := bpSkill(t, "y", "Guides a workflow.", "## Workflow\n\n1. First\n2. Second\n")
	assert.Empty(t, runRule(t, "AS019", numbered))

	boxes := bpSkill(t, "z", "Guides a workflow.", "## Workflow\n\n- [ ] First\n- [ ] Second\n")
	assert.Empty(t, runRule(t, "AS019", boxes))
}

func TestAS020TOCCompleteness(t *testing.T) {
	incomplete := `## Table of Contents

- [Setup](#setup)

## Setup

text

## Usage

text
`
	s := bpSkill(t, "x", "Has a TOC.", incomplete)
	findings := runRule(t, "AS020", s)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "missing 1 header")

	complete := `## Table of Contents

- [Setup](#setup)
- [Usage](#usage)

## Setup

text

## Usage

text
`
	ok := bpSkill(t, "y", "Has a TOC.", complete)
	assert.Empty(t, runRule(t, "AS020", ok))
}

func TestRunBestPracticesSeverity(t *testing.T) {
	s := bpSkill(t, "claude-helper", "I help you.", "body\n")
	findings := RunBestPractices(s)
	require.NotEmpty(t, findings)
	for _, f := range findings {
		assert.Equal(t, SeverityWarning, f.Severity)
	}
	assert.NotEmpty(t, findingsFor("AS001", findings))
	assert.NotEmpty(t, findingsFor("AS003", findings))
}
