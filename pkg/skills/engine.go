package skills

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skillcheck/pkg/logger"
	"github.com/jingkaihe/skillcheck/pkg/markdown"
)

// ErrNoSkillsDir is returned when an explicitly requested skills
// directory does not exist. Implicit resolution failures are not
// errors; they mean zero skills.
var ErrNoSkillsDir = errors.New("skills directory does not exist")

// RunConfig configures a discovery-and-validation run.
type RunConfig struct {
	// Root is the repository root to operate on.
	Root string
	// SkillsDir explicitly overrides base-path resolution.
	SkillsDir string
	// HomeDir overrides ~ expansion, mainly for tests.
	HomeDir string

	// Include and Exclude are doublestar globs over SKILL.md paths
	// relative to Root.
	Include []string
	Exclude []string
	// SkillFilter restricts validation to skills whose name matches the
	// glob. Discovery is unaffected.
	SkillFilter string

	CheckSpec          bool
	CheckBestPractices bool
	CheckMarkdown      bool
	// MarkdownConfig is an optional markdown lint configuration file.
	MarkdownConfig string
}

// RunResult carries everything a command needs from a run: the parsed
// skills in discovery order, the findings report, and how the base
// path was resolved.
type RunResult struct {
	Skills     []*Skill
	Report     *Report
	Resolution Resolution
}

// Run resolves the skills directory, discovers and parses every
// candidate, and evaluates the enabled check groups. Cross-skill
// uniqueness always runs with the spec checks since a duplicate name
// breaks consumers the same way an invalid one does.
func Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	log := logger.G(ctx)

	resolver := NewResolver(cfg.Root,
		WithOverride(cfg.SkillsDir),
		WithHomeDir(cfg.HomeDir),
	)
	res := resolver.Resolve(ctx)

	result := &RunResult{Report: NewReport(), Resolution: res}
	if !res.Exists {
		if res.Source == SourceOverride {
			return nil, errors.Wrapf(ErrNoSkillsDir, "%s", res.BasePath)
		}
		log.WithField("path", res.BasePath).Debug("no skills directory, nothing to check")
		return result, nil
	}

	var nameFilter glob.Glob
	if cfg.SkillFilter != "" {
		compiled, err := glob.Compile(cfg.SkillFilter)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid skill filter %q", cfg.SkillFilter)
		}
		nameFilter = compiled
	}

	var mdConfig *markdown.Config
	if cfg.CheckMarkdown {
		loaded, err := markdown.LoadConfig(cfg.MarkdownConfig)
		if err != nil {
			return nil, err
		}
		mdConfig = loaded
	}

	candidates, findings := Locate(ctx, LocateConfig{
		Root:     cfg.Root,
		BasePath: res.BasePath,
		Include:  cfg.Include,
		Exclude:  cfg.Exclude,
	})
	result.Report.Add(findings...)

	var checked []*Skill
	for _, cand := range candidates {
		skill := ParseSkill(cand)
		result.Skills = append(result.Skills, skill)

		if nameFilter != nil && !matchesFilter(nameFilter, skill) {
			continue
		}
		checked = append(checked, skill)

		result.Report.Add(skill.ParseFindings...)
		if cfg.CheckSpec {
			result.Report.Add(ValidateSkill(skill)...)
		}
		if cfg.CheckBestPractices {
			result.Report.Add(RunBestPractices(skill)...)
		}
		if cfg.CheckMarkdown && skill.Parsed() {
			for _, d := range markdown.Lint(skill.Body, mdConfig) {
				result.Report.Add(Finding{
					Severity: SeverityWarning,
					Code:     d.Rule,
					// Diagnostic lines are body-relative; report file lines.
					Message: fmt.Sprintf("line %d: %s", skill.BodyLine+d.Line-1, d.Message),
					Path:    skill.SkillFile,
				})
			}
		}
	}

	if cfg.CheckSpec {
		result.Report.Add(ValidateUniqueness(checked)...)
	}

	log.WithField("skills", len(result.Skills)).
		WithField("errors", result.Report.Errors).
		WithField("warnings", result.Report.Warnings).
		Debug("run complete")
	return result, nil
}

// matchesFilter matches the glob against the declared name when one
// exists, falling back to the directory name so stubs can still be
// selected.
func matchesFilter(g glob.Glob, s *Skill) bool {
	if s.Parsed() && s.Meta.Name != "" {
		return g.Match(s.Meta.Name)
	}
	return g.Match(filepath.Base(s.Dir))
}
