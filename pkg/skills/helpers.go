package skills

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	xmlTagPattern        = regexp.MustCompile(`<[a-zA-Z][a-zA-Z0-9]*>`)
	levelTwoHeaderRegexp = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	markdownLinkPattern  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+\.md)\)`)
	anchorLinkPattern    = regexp.MustCompile(`\[([^\]]+)\]\(#([^)]+)\)`)
)

func containsXMLTags(text string) bool {
	return xmlTagPattern.MatchString(text)
}

// containsFirstOrSecondPerson flags pronouns that indicate the text is
// not written in third-person voice.
func containsFirstOrSecondPerson(text string) bool {
	lower := strings.ToLower(text)
	for _, pronoun := range []string{"i ", "you ", "we ", "our ", "my ", "your "} {
		if strings.Contains(lower, pronoun) {
			return true
		}
	}
	return false
}

// hasTableOfContents uses a loose heuristic: either an explicit TOC
// heading or a cluster of in-page anchor links.
func hasTableOfContents(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "## table of contents") ||
		strings.Contains(lower, "## contents") ||
		strings.Contains(lower, "## toc") ||
		strings.Count(content, "](#") > 3
}

func countLines(content string) int {
	if content == "" {
		return 1
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// listSkillFiles returns the regular files directly inside a skill
// directory. Discovery never recurses here; companion material is
// expected to sit next to SKILL.md.
func listSkillFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, path)
	}
	return files
}

func findScriptFiles(dir string) []string {
	var scripts []string
	for _, file := range listSkillFiles(dir) {
		switch filepath.Ext(file) {
		case ".sh", ".py", ".js", ".ts":
			scripts = append(scripts, file)
		}
	}
	return scripts
}

// extractHeaders returns the text of every level-2 heading.
func extractHeaders(content string) []string {
	var headers []string
	for _, m := range levelTwoHeaderRegexp.FindAllStringSubmatch(content, -1) {
		headers = append(headers, m[1])
	}
	return headers
}

// extractMarkdownLinks returns local .md link targets, skipping
// absolute URLs.
func extractMarkdownLinks(content string) []string {
	var links []string
	for _, m := range markdownLinkPattern.FindAllStringSubmatch(content, -1) {
		target := m[2]
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			continue
		}
		links = append(links, target)
	}
	return links
}

// headerToAnchor converts heading text to its GitHub-style anchor.
func headerToAnchor(header string) string {
	anchor := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(header)), " ", "-")
	var b strings.Builder
	for _, r := range anchor {
		if r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
