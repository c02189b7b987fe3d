// Package markdown provides the small markdown lint and fix engine
// applied to SKILL.md bodies. Line-level rules work on the raw text;
// structural rules walk the goldmark AST.
package markdown

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Rule identifiers, following the common markdownlint numbering.
const (
	RuleHeadingIncrement = "MD001"
	RuleTrailingSpaces   = "MD009"
	RuleHardTabs         = "MD010"
	RuleMultipleBlanks   = "MD012"
	RuleFinalNewline     = "MD047"
)

// Diagnostic is one markdown lint result. Line is 1-based.
type Diagnostic struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
	Line    int    `json:"line"`
}

// Config controls which rules run.
type Config struct {
	// Disabled lists rule identifiers to skip.
	Disabled []string `yaml:"disabled"`
}

func (c *Config) enabled(rule string) bool {
	for _, d := range c.Disabled {
		if d == rule {
			return false
		}
	}
	return true
}

// LoadConfig reads a rule configuration file. An empty path yields the
// default configuration with every rule enabled.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading markdown lint config")
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing markdown lint config")
	}
	return cfg, nil
}

var parser = goldmark.New(goldmark.WithExtensions(meta.Meta))

// Lint checks markdown text and returns diagnostics in line order.
func Lint(content string, cfg *Config) []Diagnostic {
	if cfg == nil {
		cfg = &Config{}
	}

	var diags []Diagnostic
	if cfg.enabled(RuleHeadingIncrement) {
		diags = append(diags, lintHeadingIncrement(content)...)
	}

	lines := strings.Split(content, "\n")
	blankRun := 0
	for i, line := range lines {
		lineNo := i + 1

		if cfg.enabled(RuleTrailingSpaces) {
			trimmed := strings.TrimRight(line, " ")
			// Exactly two trailing spaces is a markdown hard break.
			if n := len(line) - len(trimmed); n > 0 && n != 2 {
				diags = append(diags, Diagnostic{
					Rule:    RuleTrailingSpaces,
					Message: fmt.Sprintf("trailing spaces (%d)", n),
					Line:    lineNo,
				})
			}
		}
		if cfg.enabled(RuleHardTabs) && strings.Contains(line, "\t") {
			diags = append(diags, Diagnostic{
				Rule:    RuleHardTabs,
				Message: "hard tab character",
				Line:    lineNo,
			})
		}

		if strings.TrimSpace(line) == "" {
			blankRun++
			if cfg.enabled(RuleMultipleBlanks) && blankRun == 2 {
				diags = append(diags, Diagnostic{
					Rule:    RuleMultipleBlanks,
					Message: "multiple consecutive blank lines",
					Line:    lineNo,
				})
			}
		} else {
			blankRun = 0
		}
	}

	if cfg.enabled(RuleFinalNewline) && content != "" && !strings.HasSuffix(content, "\n") {
		diags = append(diags, Diagnostic{
			Rule:    RuleFinalNewline,
			Message: "file should end with a single newline",
			Line:    len(lines),
		})
	}

	return diags
}

// lintHeadingIncrement flags heading levels that skip a step, like an
// h3 directly under an h1.
func lintHeadingIncrement(content string) []Diagnostic {
	source := []byte(content)
	doc := parser.Parser().Parse(text.NewReader(source))

	var diags []Diagnostic
	prev := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if prev > 0 && heading.Level > prev+1 {
			diags = append(diags, Diagnostic{
				Rule:    RuleHeadingIncrement,
				Message: fmt.Sprintf("heading level jumps from h%d to h%d", prev, heading.Level),
				Line:    headingLine(source, heading),
			})
		}
		prev = heading.Level
		return ast.WalkContinue, nil
	})
	return diags
}

func headingLine(source []byte, heading *ast.Heading) int {
	if heading.Lines().Len() == 0 {
		return 1
	}
	seg := heading.Lines().At(0)
	return strings.Count(string(source[:seg.Start]), "\n") + 1
}

// Format applies the fixable rules and returns the rewritten text.
// Hard tabs and heading jumps are lint-only; fixing them would change
// meaning. Format is idempotent.
func Format(content string, cfg *Config) string {
	if cfg == nil {
		cfg = &Config{}
	}
	if content == "" {
		return content
	}

	lines := strings.Split(content, "\n")

	if cfg.enabled(RuleTrailingSpaces) {
		for i, line := range lines {
			trimmed := strings.TrimRight(line, " ")
			if n := len(line) - len(trimmed); n > 0 && n != 2 {
				lines[i] = trimmed
			}
		}
	}

	if cfg.enabled(RuleMultipleBlanks) {
		var out []string
		blankRun := 0
		for _, line := range lines {
			if strings.TrimSpace(line) == "" && line == "" {
				blankRun++
				if blankRun > 1 {
					continue
				}
			} else {
				blankRun = 0
			}
			out = append(out, line)
		}
		lines = out
	}

	result := strings.Join(lines, "\n")

	if cfg.enabled(RuleFinalNewline) {
		result = strings.TrimRight(result, "\n") + "\n"
	}
	return result
}
