package skills

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jingkaihe/skillcheck/pkg/logger"
)

// Source records which resolution rule supplied the base path. It is
// kept for verbose output only and never drives validation logic.
type Source int

const (
	SourceNone Source = iota
	SourceOverride
	SourceAgentsDoc
	SourceWellKnown
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceOverride:
		return "override"
	case SourceAgentsDoc:
		return "agents-doc"
	case SourceWellKnown:
		return "well-known"
	case SourceFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Resolution is the outcome of base-path resolution. Exists=false means
// callers should treat the run as "zero skills found" unless they
// explicitly required the directory (init creates it, an explicit
// override that is missing is a setup error).
type Resolution struct {
	BasePath string
	Source   Source
	Exists   bool
}

// agentsDocName is the root document scanned for a skills directory
// reference.
const agentsDocName = "AGENTS.md"

// wellKnownSkillDirs are checked in priority order; the first one that
// exists wins.
var wellKnownSkillDirs = []string{
	filepath.Join(".github", "skills"),
	filepath.Join(".claude", "skills"),
	"skills",
}

var agentsSkillsPattern = regexp.MustCompile(`[~A-Za-z0-9._/-]*skills[A-Za-z0-9._/-]*`)

// Resolver determines the single base path under which skills are
// discovered for a repository root.
type Resolver struct {
	root     string
	override string
	home     string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithOverride sets an explicit skills directory, normally sourced from
// the --skills-dir flag or the SKILLCHECK_SKILLS_DIR environment
// variable. It takes precedence over every other source.
func WithOverride(dir string) ResolverOption {
	return func(r *Resolver) {
		r.override = dir
	}
}

// WithHomeDir sets the directory used to expand ~-prefixed paths.
func WithHomeDir(dir string) ResolverOption {
	return func(r *Resolver) {
		r.home = dir
	}
}

// NewResolver creates a resolver for the given repository root.
func NewResolver(root string, opts ...ResolverOption) *Resolver {
	r := &Resolver{root: root}
	for _, opt := range opts {
		opt(r)
	}
	if r.home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			r.home = home
		}
	}
	return r
}

// Resolve picks the base path for skill discovery. Priority, first match
// wins with no merging: explicit override, AGENTS.md reference,
// well-known directories, layout fallback. An AGENTS.md reference only
// counts when the referenced directory exists, so a stale doc falls
// through to the later rules.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	log := logger.G(ctx)

	if r.override != "" {
		path := r.abs(r.expandHome(r.override))
		res := Resolution{BasePath: path, Source: SourceOverride, Exists: isDir(path)}
		log.WithField("path", path).WithField("exists", res.Exists).Debug("skills directory set by override")
		return res
	}

	if path, ok := r.scanAgentsDoc(); ok {
		log.WithField("path", path).Debug("skills directory referenced by AGENTS.md")
		return Resolution{BasePath: path, Source: SourceAgentsDoc, Exists: true}
	}

	for _, rel := range wellKnownSkillDirs {
		path := filepath.Join(r.root, rel)
		if isDir(path) {
			log.WithField("path", path).Debug("skills directory found at well-known location")
			return Resolution{BasePath: path, Source: SourceWellKnown, Exists: true}
		}
	}

	fallback := filepath.Join(r.root, "skills")
	if isDir(filepath.Join(r.root, ".github")) {
		fallback = filepath.Join(r.root, ".github", "skills")
	}
	log.WithField("path", fallback).Debug("no skills directory found, using fallback")
	return Resolution{BasePath: fallback, Source: SourceFallback, Exists: isDir(fallback)}
}

// scanAgentsDoc looks for a path-like token referencing a skills
// subdirectory in the root AGENTS.md. The first token that resolves to
// an existing directory wins.
func (r *Resolver) scanAgentsDoc() (string, bool) {
	content, err := os.ReadFile(filepath.Join(r.root, agentsDocName))
	if err != nil {
		return "", false
	}

	for _, token := range agentsSkillsPattern.FindAllString(string(content), -1) {
		token = strings.TrimRight(token, "/")
		if !isSkillsPath(token) {
			continue
		}
		path := r.abs(r.expandHome(token))
		if isDir(path) {
			return path, true
		}
	}
	return "", false
}

// isSkillsPath reports whether a token is a path reference with
// "skills" as one of its segments. A bare word with no separator is
// prose, not a directory reference.
func isSkillsPath(token string) bool {
	if !strings.Contains(token, "/") {
		return false
	}
	for _, seg := range strings.Split(token, "/") {
		if seg == "skills" {
			return true
		}
	}
	return false
}

func (r *Resolver) expandHome(path string) string {
	if path == "~" {
		return r.home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(r.home, path[2:])
	}
	return path
}

func (r *Resolver) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.root, path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
