package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ScaffoldConfig describes the skill directory to create.
type ScaffoldConfig struct {
	// Name is the skill identifier; it must satisfy the name rules.
	Name string
	// Root is the repository root to create the default layout under.
	Root string
	// Dir overrides the default layout with an explicit parent directory.
	Dir string
	// Legacy creates under .claude/skills instead of .github/skills.
	Legacy bool
	// Description fills the frontmatter; a placeholder is used when empty.
	Description string
	// Force overwrites an existing skill directory.
	Force bool
}

// Scaffold creates a new skill directory with a starter SKILL.md and
// README.md. It returns the paths of the files it wrote.
func Scaffold(cfg ScaffoldConfig) ([]string, error) {
	if err := ValidateName(cfg.Name); err != nil {
		return nil, errors.Wrapf(err, "invalid skill name %q", cfg.Name)
	}

	target := cfg.Dir
	if target == "" {
		layout := filepath.Join(".github", "skills")
		if cfg.Legacy {
			layout = filepath.Join(".claude", "skills")
		}
		target = filepath.Join(cfg.Root, layout, cfg.Name)
	} else {
		target = filepath.Join(target, cfg.Name)
	}

	if _, err := os.Stat(target); err == nil && !cfg.Force {
		return nil, errors.Errorf("directory already exists: %s (use --force to overwrite)", target)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating directory %s", target)
	}

	description := cfg.Description
	if description == "" {
		description = fmt.Sprintf("Description for %s", cfg.Name)
	}
	title := displayName(cfg.Name)

	skillFile := filepath.Join(target, SkillFileName)
	skillContent := fmt.Sprintf(`---
name: %s
description: %s
---

# %s

TODO: Add skill content here
`, cfg.Name, description, title)
	if err := os.WriteFile(skillFile, []byte(skillContent), 0o644); err != nil {
		return nil, errors.Wrapf(err, "writing %s", skillFile)
	}

	readmeFile := filepath.Join(target, "README.md")
	readmeContent := fmt.Sprintf(`# %s

Brief description of this skill.

## Usage

Describe how to use this skill.
`, title)
	if err := os.WriteFile(readmeFile, []byte(readmeContent), 0o644); err != nil {
		return nil, errors.Wrapf(err, "writing %s", readmeFile)
	}

	return []string{skillFile, readmeFile}, nil
}

// displayName turns a hyphenated identifier into a title, e.g.
// "pdf-processing" becomes "Pdf Processing".
func displayName(name string) string {
	words := strings.Split(name, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
