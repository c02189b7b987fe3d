package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Rule is one best-practice check. Rules are advisory: every finding
// they produce is a warning, and strictness is applied when the report
// decides pass or fail, not here.
type Rule struct {
	Code    string
	Summary string
	Check   func(*Skill) []Finding
}

// Rules returns the best-practice rule set in code order.
func Rules() []Rule {
	return bestPracticeRules
}

// RunBestPractices evaluates every rule against a parsed skill. Stubs
// are skipped; their structural findings already explain the failure.
func RunBestPractices(s *Skill) []Finding {
	if !s.Parsed() {
		return nil
	}
	var findings []Finding
	for _, rule := range bestPracticeRules {
		findings = append(findings, rule.Check(s)...)
	}
	return findings
}

func warn(code, msg, path string) Finding {
	return Finding{
		Severity: SeverityWarning,
		Code:     code,
		Message:  msg,
		Path:     path,
	}
}

var (
	backslashPathPattern = regexp.MustCompile(`[a-zA-Z0-9_-]+\\[a-zA-Z0-9_-]`)
	snakeCaseToolPattern = regexp.MustCompile("`([a-z_]+(?:_[a-z]+)+)`")
	gerundNamePattern    = regexp.MustCompile(`\w+ing(-|$)`)
	numberedListPattern  = regexp.MustCompile(`(?m)^\d+\.\s+`)

	absoluteDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(before|after|in|as of|since)\s+(january|february|march|april|may|june|july|august|september|october|november|december)\s+20\d{2}`),
		regexp.MustCompile(`(?i)(before|after|in)\s+20\d{2}`),
		regexp.MustCompile(`(?i)Q[1-4]\s+20\d{2}`),
		regexp.MustCompile(`20\d{2}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])`),
	}

	genericFilenamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^doc\d+\.md$`),
		regexp.MustCompile(`^file\d+\.md$`),
		regexp.MustCompile(`^script\d+\.(py|js|sh)$`),
		regexp.MustCompile(`^helper\.(py|js|sh)$`),
		regexp.MustCompile(`^utils\.(md|py|js)$`),
		regexp.MustCompile(`^misc\.md$`),
		regexp.MustCompile(`^temp\.md$`),
	}

	mcpToolVerbs = []string{
		"get", "create", "update", "delete", "list", "search", "execute",
		"query", "send", "fetch",
	}

	imperativeVerbs = []string{
		"analyze", "process", "generate", "create", "validate", "parse",
		"extract", "format", "convert", "transform",
	}

	synonymPairs = []struct {
		a []string
		b []string
	}{
		{[]string{"user", "users"}, []string{"customer", "customers"}},
		{[]string{"remove", "removing"}, []string{"delete", "deleting"}},
		{[]string{"error", "errors"}, []string{"failure", "failures"}},
	}
)

var bestPracticeRules = []Rule{
	{
		Code:    "AS001",
		Summary: "name avoids XML tags and reserved words",
		Check: func(s *Skill) []Finding {
			name := s.Meta.Name
			if name == "" {
				return nil
			}
			var findings []Finding
			if containsXMLTags(name) {
				findings = append(findings, warn("AS001", "name cannot contain XML tags", s.Dir))
			}
			lower := strings.ToLower(name)
			if strings.Contains(lower, "anthropic") || strings.Contains(lower, "claude") {
				findings = append(findings, warn("AS001",
					fmt.Sprintf("name cannot contain reserved words (found: %s)", name), s.Dir))
			}
			return findings
		},
	},
	{
		Code:    "AS002",
		Summary: "description avoids XML tags",
		Check: func(s *Skill) []Finding {
			if s.Meta.Description == "" || !containsXMLTags(s.Meta.Description) {
				return nil
			}
			return []Finding{warn("AS002", "description cannot contain XML tags", s.Dir)}
		},
	},
	{
		Code:    "AS003",
		Summary: "description uses third-person voice",
		Check: func(s *Skill) []Finding {
			if s.Meta.Description == "" || !containsFirstOrSecondPerson(s.Meta.Description) {
				return nil
			}
			return []Finding{warn("AS003",
				"description should use third-person voice (avoid 'I', 'you', 'we')", s.Dir)}
		},
	},
	{
		Code:    "AS004",
		Summary: "SKILL.md body stays under 500 lines",
		Check: func(s *Skill) []Finding {
			if s.Body == "" {
				return nil
			}
			if n := countLines(s.Body); n > 500 {
				return []Finding{warn("AS004",
					fmt.Sprintf("SKILL.md body has %d lines (should be under 500 for optimal performance)", n),
					s.SkillFile)}
			}
			return nil
		},
	},
	{
		Code:    "AS005",
		Summary: "file paths use forward slashes",
		Check: func(s *Skill) []Finding {
			if !backslashPathPattern.MatchString(s.Body) {
				return nil
			}
			return []Finding{warn("AS005",
				`use forward slashes (/) in file paths, not backslashes (\)`, s.SkillFile)}
		},
	},
	{
		Code:    "AS006",
		Summary: "references stay one level deep",
		Check: func(s *Skill) []Finding {
			var findings []Finding
			for _, ref := range extractMarkdownLinks(s.Body) {
				refPath := filepath.Join(s.Dir, ref)
				content, err := os.ReadFile(refPath)
				if err != nil {
					continue
				}
				if len(extractMarkdownLinks(string(content))) > 0 {
					findings = append(findings, warn("AS006",
						fmt.Sprintf("file %s contains nested references (references should be one level deep from SKILL.md)", ref),
						refPath))
				}
			}
			return findings
		},
	},
	{
		Code:    "AS007",
		Summary: "companion files have descriptive names",
		Check: func(s *Skill) []Finding {
			var findings []Finding
			for _, file := range listSkillFiles(s.Dir) {
				name := filepath.Base(file)
				if name == SkillFileName || name == "README.md" || name == "LICENSE.md" {
					continue
				}
				for _, pattern := range genericFilenamePatterns {
					if pattern.MatchString(name) {
						findings = append(findings, warn("AS007",
							fmt.Sprintf("use descriptive file names instead of generic names like %q", name),
							file))
						break
					}
				}
			}
			return findings
		},
	},
	{
		Code:    "AS008",
		Summary: "long companion documents carry a table of contents",
		Check: func(s *Skill) []Finding {
			var findings []Finding
			for _, file := range listSkillFiles(s.Dir) {
				if filepath.Ext(file) != ".md" || file == s.SkillFile {
					continue
				}
				content, err := os.ReadFile(file)
				if err != nil {
					continue
				}
				text := string(content)
				if n := countLines(text); n > 100 && !hasTableOfContents(text) {
					findings = append(findings, warn("AS008",
						fmt.Sprintf("file has %d lines but no table of contents (recommended for files > 100 lines)", n),
						file))
				}
			}
			return findings
		},
	},
	{
		Code:    "AS009",
		Summary: "MCP tools use the ServerName:tool format",
		Check:   checkMCPToolFormat,
	},
	{
		Code:    "AS010",
		Summary: "avoid time-sensitive absolute dates",
		Check: func(s *Skill) []Finding {
			lower := strings.ToLower(s.Body)
			inOldPatterns := strings.Contains(lower, "<details>") &&
				(strings.Contains(lower, "deprecated") || strings.Contains(lower, "legacy"))
			if inOldPatterns {
				return nil
			}
			for _, pattern := range absoluteDatePatterns {
				if pattern.MatchString(s.Body) {
					return []Finding{warn("AS010",
						"avoid time-sensitive information with absolute dates (use 'old patterns' section for deprecated content)",
						s.SkillFile)}
				}
			}
			return nil
		},
	},
	{
		Code:    "AS011",
		Summary: "output-generating skills include templates",
		Check: func(s *Skill) []Finding {
			desc := strings.ToLower(s.Meta.Description)
			if desc == "" {
				return nil
			}
			outputKeywords := []string{"generate", "create", "write", "produce", "output", "format", "export"}
			isOutputSkill := false
			for _, kw := range outputKeywords {
				if strings.Contains(desc, kw) {
					isOutputSkill = true
					break
				}
			}
			if !isOutputSkill {
				return nil
			}
			hasTemplate := strings.Contains(s.Body, "## Template") ||
				strings.Contains(s.Body, "## Example Output") ||
				(strings.Contains(s.Body, "```") && strings.Contains(s.Body, "Output format:"))
			if hasTemplate {
				return nil
			}
			return []Finding{warn("AS011",
				"output-generating skills should include templates or examples (## Template or ## Example Output section)",
				s.SkillFile)}
		},
	},
	{
		Code:    "AS012",
		Summary: "terminology stays consistent",
		Check: func(s *Skill) []Finding {
			var findings []Finding
			for _, pair := range synonymPairs {
				if containsAnyWord(s.Body, pair.a) && containsAnyWord(s.Body, pair.b) {
					findings = append(findings, warn("AS012",
						fmt.Sprintf("use consistent terminology: mixing %q and %q (pick one)", pair.a[0], pair.b[0]),
						s.SkillFile))
				}
			}
			return findings
		},
	},
	{
		Code:    "AS013",
		Summary: "scripts come with documented dependencies",
		Check: func(s *Skill) []Finding {
			if len(findScriptFiles(s.Dir)) == 0 {
				return nil
			}
			lower := strings.ToLower(s.Body)
			hasDepsSection := strings.Contains(lower, "## dependencies") ||
				strings.Contains(lower, "## requirements") ||
				strings.Contains(lower, "## installation") ||
				strings.Contains(s.Body, "pip install") ||
				strings.Contains(s.Body, "npm install")
			if hasDepsSection {
				return nil
			}
			return []Finding{warn("AS013",
				"scripts found but no ## Dependencies or ## Requirements section documenting required packages",
				s.SkillFile)}
		},
	},
	{
		Code:    "AS014",
		Summary: "description includes usage triggers",
		Check: func(s *Skill) []Finding {
			desc := strings.ToLower(s.Meta.Description)
			if desc == "" {
				return nil
			}
			hasTrigger := strings.Contains(desc, "use when") ||
				strings.Contains(desc, "use this when") ||
				strings.Contains(desc, "for ") ||
				strings.Contains(desc, "to help")
			if hasTrigger {
				return nil
			}
			return []Finding{warn("AS014",
				"description should include usage triggers (e.g., 'Use when...', 'For...', 'To help...')", s.Dir)}
		},
	},
	{
		Code:    "AS015",
		Summary: "action skills prefer gerund names",
		Check: func(s *Skill) []Finding {
			name := s.Meta.Name
			if name == "" || gerundNamePattern.MatchString(name) {
				return nil
			}
			for _, verb := range imperativeVerbs {
				if strings.HasPrefix(name, verb) {
					first := name
					if i := strings.Index(name, "-"); i >= 0 {
						first = name[:i]
					}
					return []Finding{warn("AS015",
						fmt.Sprintf("consider using gerund form for action names (e.g., '%s-ing' instead of '%s')", first, name),
						s.Dir)}
				}
			}
			return nil
		},
	},
	{
		Code:    "AS016",
		Summary: "name avoids vendor reserved words",
		Check: func(s *Skill) []Finding {
			name := s.Meta.Name
			if name == "" {
				return nil
			}
			lower := strings.ToLower(name)
			if strings.Contains(lower, "anthropic") || strings.Contains(lower, "claude") {
				return []Finding{warn("AS016",
					fmt.Sprintf("name %q contains reserved words (anthropic, claude)", name), s.Dir)}
			}
			return nil
		},
	},
	{
		Code:    "AS017",
		Summary: "scripts handle errors",
		Check:   checkScriptErrorHandling,
	},
	{
		Code:    "AS018",
		Summary: "constants in scripts are documented",
		Check:   checkMagicConstants,
	},
	{
		Code:    "AS019",
		Summary: "workflows use numbered steps or checkboxes",
		Check: func(s *Skill) []Finding {
			indicators := []string{"## Workflow", "## Process", "## Steps", "## Procedure", "multi-step"}
			hasWorkflow := false
			for _, ind := range indicators {
				if strings.Contains(s.Body, ind) {
					hasWorkflow = true
					break
				}
			}
			if !hasWorkflow {
				return nil
			}
			if numberedListPattern.MatchString(s.Body) || strings.Contains(s.Body, "- [ ]") {
				return nil
			}
			return []Finding{warn("AS019",
				"workflow found but not using numbered lists (1. 2. 3.) or checkboxes (- [ ])", s.SkillFile)}
		},
	},
	{
		Code:    "AS020",
		Summary: "table of contents matches the headings",
		Check: func(s *Skill) []Finding {
			if !hasTableOfContents(s.Body) {
				return nil
			}
			tocAnchors := make(map[string]struct{})
			for _, m := range anchorLinkPattern.FindAllStringSubmatch(s.Body, -1) {
				tocAnchors[m[2]] = struct{}{}
			}
			var missing int
			var total int
			for _, header := range extractHeaders(s.Body) {
				switch strings.ToLower(header) {
				case "table of contents", "contents", "toc":
					continue
				}
				total++
				if _, ok := tocAnchors[headerToAnchor(header)]; !ok {
					missing++
				}
			}
			if missing == 0 {
				return nil
			}
			return []Finding{warn("AS020",
				fmt.Sprintf("TOC incomplete: missing %d header(s) (%d headers total, %d in TOC)", missing, total, len(tocAnchors)),
				s.SkillFile)}
		},
	},
}

// checkMCPToolFormat flags snake_case tool names mentioned near MCP
// context that lack a ServerName: prefix.
func checkMCPToolFormat(s *Skill) []Finding {
	var findings []Finding
	content := s.Body
	for _, loc := range snakeCaseToolPattern.FindAllStringSubmatchIndex(content, -1) {
		tool := content[loc[2]:loc[3]]
		isVerb := false
		for _, verb := range mcpToolVerbs {
			if strings.HasPrefix(tool, verb) {
				isVerb = true
				break
			}
		}
		if !isVerb || strings.Contains(tool, ":") {
			continue
		}
		start := loc[0] - 100
		if start < 0 {
			start = 0
		}
		end := loc[1] + 100
		if end > len(content) {
			end = len(content)
		}
		context := strings.ToLower(content[start:end])
		if strings.Contains(context, "mcp") || strings.Contains(context, "server") || strings.Contains(context, "tool") {
			findings = append(findings, warn("AS009",
				fmt.Sprintf("MCP tool %q should use ServerName:tool_name format (e.g., 'BigQuery:%s')", tool, tool),
				s.SkillFile))
		}
	}
	return findings
}

func checkScriptErrorHandling(s *Skill) []Finding {
	var findings []Finding
	for _, script := range findScriptFiles(s.Dir) {
		raw, err := os.ReadFile(script)
		if err != nil {
			continue
		}
		content := string(raw)

		handled := true
		switch filepath.Ext(script) {
		case ".py":
			handled = strings.Contains(content, "try:") ||
				strings.Contains(content, "except ") ||
				strings.Contains(content, "if not ") ||
				strings.Contains(content, "sys.exit(")
		case ".sh":
			handled = strings.Contains(content, "set -e") ||
				strings.Contains(content, "if [ ") ||
				strings.Contains(content, "exit 1") ||
				strings.Contains(content, "||")
		case ".js", ".ts":
			handled = strings.Contains(content, "try {") ||
				strings.Contains(content, "catch (") ||
				strings.Contains(content, "if (!") ||
				strings.Contains(content, "process.exit(")
		}

		if !handled {
			findings = append(findings, warn("AS017",
				fmt.Sprintf("script %s lacks error handling (add try/catch, if checks, or exit codes)", filepath.Base(script)),
				script))
		}
	}
	return findings
}

var magicConstantPatterns = map[string][]*regexp.Regexp{
	".py": {
		regexp.MustCompile(`^\s*[A-Z_]+\s*=\s*\d+\s*$`),
		regexp.MustCompile(`timeout\s*=\s*\d+`),
		regexp.MustCompile(`max_.*\s*=\s*\d+`),
	},
	".js": {
		regexp.MustCompile(`^\s*const\s+[A-Z_]+\s*=\s*\d+\s*;`),
		regexp.MustCompile(`timeout:\s*\d+`),
	},
	".ts": {
		regexp.MustCompile(`^\s*const\s+[A-Z_]+\s*=\s*\d+\s*;`),
		regexp.MustCompile(`timeout:\s*\d+`),
	},
}

// checkMagicConstants looks for numeric assignments with no comment on
// the same or preceding line. One finding per script keeps the noise
// down.
func checkMagicConstants(s *Skill) []Finding {
	var findings []Finding
	for _, script := range findScriptFiles(s.Dir) {
		patterns, ok := magicConstantPatterns[filepath.Ext(script)]
		if !ok {
			continue
		}
		raw, err := os.ReadFile(script)
		if err != nil {
			continue
		}
		lines := strings.Split(string(raw), "\n")

	scan:
		for _, pattern := range patterns {
			for i, line := range lines {
				if !pattern.MatchString(line) {
					continue
				}
				commented := strings.Contains(line, "#") || strings.Contains(line, "//")
				if i > 0 {
					commented = commented || strings.Contains(lines[i-1], "#") || strings.Contains(lines[i-1], "//")
				}
				if !commented {
					findings = append(findings, Finding{
						Severity: SeverityWarning,
						Code:     "AS018",
						Message:  fmt.Sprintf("undocumented constant in %s line %d: add comment explaining the value", filepath.Base(script), i+1),
						Path:     script,
					})
					break scan
				}
			}
		}
	}
	return findings
}

func containsAnyWord(content string, words []string) bool {
	for _, word := range words {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
		if re.MatchString(content) {
			return true
		}
	}
	return false
}
