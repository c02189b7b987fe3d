package skills

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Result groups the findings attached to one path.
type Result struct {
	Path     string    `json:"path"`
	Findings []Finding `json:"findings"`
}

// Report aggregates findings across a run. Findings are merged by path
// and kept in the order they were added, with paths ordered by first
// appearance.
type Report struct {
	Results  []Result `json:"results"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
	Infos    int      `json:"infos"`

	index map[string]int
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{index: make(map[string]int)}
}

// Add appends findings to the report, merging them into the existing
// result for their path.
func (r *Report) Add(findings ...Finding) {
	for _, f := range findings {
		i, ok := r.index[f.Path]
		if !ok {
			i = len(r.Results)
			r.index[f.Path] = i
			r.Results = append(r.Results, Result{Path: f.Path})
		}
		r.Results[i].Findings = append(r.Results[i].Findings, f)

		switch f.Severity {
		case SeverityError:
			r.Errors++
		case SeverityWarning:
			r.Warnings++
		default:
			r.Infos++
		}
	}
}

// Empty reports whether nothing was recorded.
func (r *Report) Empty() bool {
	return len(r.Results) == 0
}

// Pass reports whether the run succeeded. Errors always fail; warnings
// fail only in strict mode.
func (r *Report) Pass(strict bool) bool {
	if r.Errors > 0 {
		return false
	}
	return !strict || r.Warnings == 0
}

// Text renders the report for terminals: findings grouped under their
// path, followed by a one-line summary.
func (r *Report) Text() string {
	var b strings.Builder
	for _, result := range r.Results {
		fmt.Fprintf(&b, "%s\n", result.Path)
		for _, f := range result.Findings {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", strings.ToUpper(f.Severity.String()), f.Code, f.Message)
			for _, rel := range f.Related {
				fmt.Fprintf(&b, "    also: %s\n", rel)
			}
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Found %d error(s) and %d warning(s)\n", r.Errors, r.Warnings)
	return b.String()
}

// JSON renders the report as indented JSON.
func (r *Report) JSON() (string, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding report")
	}
	return string(out), nil
}

// Sorted returns a copy of the results ordered by path, for callers
// that want deterministic output independent of insertion order.
func (r *Report) Sorted() []Result {
	out := make([]Result, len(r.Results))
	copy(out, r.Results)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}
