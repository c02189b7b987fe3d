package skills

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/jingkaihe/skillcheck/pkg/logger"
)

// LocateConfig controls candidate enumeration under a resolved base path.
type LocateConfig struct {
	// Root is the repository root; ignore files and include/exclude
	// globs are evaluated relative to it.
	Root string
	// BasePath is the resolved skills directory.
	BasePath string
	// Include restricts discovery to SKILL.md paths matching at least
	// one doublestar glob (relative to Root). Empty means no restriction.
	Include []string
	// Exclude drops SKILL.md paths matching any doublestar glob.
	Exclude []string
}

// Locate enumerates skill candidates under the base path in
// lexicographic order. A skill directory sits directly under the base
// path or under one grouping level below it; skill directories are not
// scanned for further nested SKILL.md files. Ignored paths are skipped
// without being opened, and per-entry read failures become findings
// rather than aborting the walk.
func Locate(ctx context.Context, cfg LocateConfig) ([]Candidate, []Finding) {
	log := logger.G(ctx)

	matcher := loadIgnoreMatcher(cfg.Root, cfg.BasePath)

	var candidates []Candidate
	var findings []Finding

	entries, err := os.ReadDir(cfg.BasePath)
	if err != nil {
		findings = append(findings, unreadableFinding(cfg.BasePath, err))
		return nil, findings
	}

	for _, entry := range entries {
		dir := filepath.Join(cfg.BasePath, entry.Name())
		if skipEntry(cfg, matcher, dir, entry.Name()) {
			continue
		}

		if cand, ok := candidateAt(cfg, matcher, dir); ok {
			candidates = append(candidates, cand)
			continue
		}

		// One grouping level, matching org/repo style layouts.
		sub, err := os.ReadDir(dir)
		if err != nil {
			findings = append(findings, unreadableFinding(dir, err))
			continue
		}
		for _, nested := range sub {
			nestedDir := filepath.Join(dir, nested.Name())
			if skipEntry(cfg, matcher, nestedDir, nested.Name()) {
				continue
			}
			if cand, ok := candidateAt(cfg, matcher, nestedDir); ok {
				candidates = append(candidates, cand)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Dir < candidates[j].Dir
	})
	log.WithField("count", len(candidates)).Debug("skill candidates located")
	return candidates, findings
}

// candidateAt reports the directory as a candidate when it directly
// contains a SKILL.md that survives the ignore rules and glob filters.
func candidateAt(cfg LocateConfig, matcher gitignore.Matcher, dir string) (Candidate, bool) {
	skillFile := filepath.Join(dir, SkillFileName)
	rel := relSlash(cfg.Root, skillFile)

	if matcher != nil && matcher.Match(strings.Split(rel, "/"), false) {
		return Candidate{}, false
	}
	if matchesAny(cfg.Exclude, rel) {
		return Candidate{}, false
	}
	if len(cfg.Include) > 0 && !matchesAny(cfg.Include, rel) {
		return Candidate{}, false
	}

	info, err := os.Stat(skillFile)
	if err != nil || info.IsDir() {
		return Candidate{}, false
	}
	return Candidate{Dir: dir, SkillFile: skillFile}, true
}

// skipEntry filters out non-directories and ignored directories before
// they are opened. Symlinked directories are followed via os.Stat.
func skipEntry(cfg LocateConfig, matcher gitignore.Matcher, path, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return true
	}
	if matcher != nil {
		rel := relSlash(cfg.Root, path)
		if matcher.Match(strings.Split(rel, "/"), true) {
			return true
		}
	}
	return false
}

// loadIgnoreMatcher builds a .gitignore matcher from the repository root
// down to the base path so discovery honors the same ignore rules as
// the surrounding repository.
func loadIgnoreMatcher(root, base string) gitignore.Matcher {
	var patterns []gitignore.Pattern

	dirs := []string{root}
	if rel, err := filepath.Rel(root, base); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		parts := strings.Split(filepath.ToSlash(rel), "/")
		for i := range parts {
			dirs = append(dirs, filepath.Join(root, filepath.Join(parts[:i+1]...)))
		}
	}

	for _, dir := range dirs {
		content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		if err != nil {
			continue
		}
		var domain []string
		if rel, err := filepath.Rel(root, dir); err == nil && rel != "." {
			domain = strings.Split(filepath.ToSlash(rel), "/")
		}
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, domain))
		}
	}

	if len(patterns) == 0 {
		return nil
	}
	return gitignore.NewMatcher(patterns)
}

func matchesAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func unreadableFinding(path string, err error) Finding {
	return Finding{
		Severity: SeverityError,
		Code:     CodeUnreadableSkill,
		Message:  fmt.Sprintf("cannot read skill directory: %v", err),
		Path:     path,
	}
}
