package skills

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportAddMergesByPath(t *testing.T) {
	r := NewReport()
	r.Add(
		Finding{Severity: SeverityError, Code: CodeFieldMissing, Message: "m1", Path: "/a"},
		Finding{Severity: SeverityWarning, Code: "AS003", Message: "m2", Path: "/b"},
		Finding{Severity: SeverityWarning, Code: "AS014", Message: "m3", Path: "/a"},
	)

	require.Len(t, r.Results, 2)
	assert.Equal(t, "/a", r.Results[0].Path)
	assert.Len(t, r.Results[0].Findings, 2)
	assert.Equal(t, "/b", r.Results[1].Path)
	assert.Equal(t, 1, r.Errors)
	assert.Equal(t, 2, r.Warnings)
}

func TestReportPass(t *testing.T) {
	clean := NewReport()
	assert.True(t, clean.Pass(false))
	assert.True(t, clean.Pass(true))

	warned := NewReport()
	warned.Add(Finding{Severity: SeverityWarning, Code: "AS003", Path: "/a"})
	assert.True(t, warned.Pass(false))
	assert.False(t, warned.Pass(true))

	failed := NewReport()
	failed.Add(Finding{Severity: SeverityError, Code: CodeFieldMissing, Path: "/a"})
	assert.False(t, failed.Pass(false))
	assert.False(t, failed.Pass(true))
}

func TestReportText(t *testing.T) {
	r := NewReport()
	r.Add(
		Finding{Severity: SeverityError, Code: CodeNameMismatch, Message: "names differ", Path: "/skills/a"},
		Finding{Severity: SeverityWarning, Code: "AS014", Message: "no triggers", Path: "/skills/a"},
	)

	text := r.Text()

	assert.Contains(t, text, "/skills/a\n")
	assert.Contains(t, text, "[ERROR] name-mismatch: names differ")
	assert.Contains(t, text, "[WARNING] AS014: no triggers")
	assert.Contains(t, text, "Found 1 error(s) and 1 warning(s)")
}

func TestReportTextRelatedPaths(t *testing.T) {
	r := NewReport()
	r.Add(Finding{
		Severity: SeverityError,
		Code:     CodeDuplicateName,
		Message:  "duplicate",
		Path:     "/skills/a",
		Related:  []string{"/skills/b"},
	})

	assert.Contains(t, r.Text(), "also: /skills/b")
}

func TestReportJSON(t *testing.T) {
	r := NewReport()
	r.Add(Finding{Severity: SeverityError, Code: CodeFieldMissing, Message: "m", Path: "/a"})

	out, err := r.JSON()
	require.NoError(t, err)

	var decoded struct {
		Results []struct {
			Path     string `json:"path"`
			Findings []struct {
				Severity string `json:"severity"`
				Code     string `json:"code"`
			} `json:"findings"`
		} `json:"results"`
		Errors int `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, "error", decoded.Results[0].Findings[0].Severity)
	assert.Equal(t, 1, decoded.Errors)
}

func TestReportSorted(t *testing.T) {
	r := NewReport()
	r.Add(
		Finding{Severity: SeverityError, Code: "x", Path: "/z"},
		Finding{Severity: SeverityError, Code: "x", Path: "/a"},
	)

	sorted := r.Sorted()
	assert.Equal(t, "/a", sorted[0].Path)
	assert.Equal(t, "/z", sorted[1].Path)
	// Original insertion order is untouched.
	assert.Equal(t, "/z", r.Results[0].Path)
}

func TestSeverityJSONRoundTrip(t *testing.T) {
	for _, s := range []Severity{SeverityInfo, SeverityWarning, SeverityError} {
		data, err := json.Marshal(s)
		require.NoError(t, err)

		var back Severity
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, s, back)
	}

	var invalid Severity
	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &invalid))
}
