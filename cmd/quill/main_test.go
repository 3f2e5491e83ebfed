package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// risingCSV returns n daily entries whose scores climb by two points a day.
func risingCSV(n int, withSubskills bool) string {
	var b strings.Builder
	b.WriteString("date,score")
	if withSubskills {
		b.WriteString(",grammar,phrasing,vocabulary")
	}
	b.WriteString("\n")
	for i := 0; i < n; i++ {
		s := 40 + 2*float64(i)
		fmt.Fprintf(&b, "2024-01-%02d,%g", i+1, s)
		if withSubskills {
			fmt.Fprintf(&b, ",%g,%g,%g", s-5, s, s+5)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestForecastCmd_JSON(t *testing.T) {
	path := writeFile(t, "scores.csv", risingCSV(10, true))

	out, err := execute(t, "forecast", "--file", path, "--horizon-days", "5", "--json")
	require.NoError(t, err)

	var got domain.ProficiencyForecast
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	// Daily entries: one point per day of horizon.
	require.Len(t, got.PredictedOverall, 5)
	require.Len(t, got.PredictedSubskills, 5)
	assert.Equal(t, "2024-01-11", got.PredictedOverall[0].Date.Format("2006-01-02"))
	for _, p := range got.PredictedOverall {
		assert.Greater(t, p.Score, 57.9)
		assert.LessOrEqual(t, p.Score, 100.0)
	}
}

func TestForecastCmd_Table(t *testing.T) {
	path := writeFile(t, "scores.csv", risingCSV(8, false))

	out, err := execute(t, "forecast", "-f", path, "--horizon-days", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "Overall")
	assert.Contains(t, out, "2024-01-09")
	assert.Contains(t, out, "2024-01-11")
	assert.NotContains(t, out, "Subskills")
}

func TestForecastCmd_ShortHistory(t *testing.T) {
	path := writeFile(t, "scores.csv", risingCSV(3, false))

	out, err := execute(t, "forecast", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Not enough history to forecast: 3 entries, need at least 7.")
}

func TestForecastCmd_YAMLAndJSONInput(t *testing.T) {
	var yamlDoc, jsonRows strings.Builder
	var rows []string
	for i := 0; i < 7; i++ {
		fmt.Fprintf(&yamlDoc, "- date: \"2024-02-%02d\"\n  score: 70\n", i+1)
		rows = append(rows, fmt.Sprintf(`{"date":"2024-02-%02dT09:00:00Z","score":70}`, i+1))
	}
	jsonRows.WriteString("[" + strings.Join(rows, ",") + "]")

	for name, content := range map[string]string{
		"history.yaml": yamlDoc.String(),
		"history.json": jsonRows.String(),
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, content)
			out, err := execute(t, "forecast", "--file", path, "--horizon-days", "2", "--json")
			require.NoError(t, err)

			var got domain.ProficiencyForecast
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			require.Len(t, got.PredictedOverall, 2)
			// A flat history forecasts its constant.
			assert.Equal(t, 70.0, got.PredictedOverall[1].Score)
		})
	}
}

func TestForecastCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		args    []string
		wantErr string
	}{
		{"bad date", "s.csv", "yesterday,50\n", nil, `invalid date "yesterday"`},
		{"bad score", "s.csv", "2024-01-01,abc\n", nil, "column 2"},
		{"out of range", "s.csv", "2024-01-01,101\n", nil, "score must be between 0 and 100"},
		{"wrong columns", "s.csv", "2024-01-01,50,60\n", nil, "expected 2 or 5 columns"},
		{"partial subskills", "s.yaml", "- {date: \"2024-01-01\", score: 50, grammar: 40}\n", nil, "must be given together"},
		{"unsupported", "s.txt", "", nil, "unsupported history format"},
		{"horizon", "s.csv", "2024-01-01,50\n", []string{"--horizon-days", "0"}, "--horizon-days must be positive"},
		{"horizon too long", "s.csv", "2024-01-01,50\n", []string{"--horizon-days", "1e15"}, "--horizon-days must be at most 365"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := execute(t, append([]string{"forecast", "--file", path}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := execute(t, "forecast")
	assert.ErrorContains(t, err, `required flag(s) "file" not set`)
}

func TestReviewCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"graduates", []string{"--interval", "1", "--ease", "2.5", "--quality", "3"}, []string{"6d", "2.36", "2024-03-16"}},
		{"grows", []string{"--interval", "10", "--ease", "2.5", "--quality", "5"}, []string{"26d", "2.60", "2024-04-05"}},
		{"forgot", []string{"--interval", "10", "--ease", "2.5", "--quality", "0"}, []string{"1d", "2.50", "2024-03-11"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"review", "--on", "2024-03-10"}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestReviewCmd_InvalidInput(t *testing.T) {
	_, err := execute(t, "review", "--quality", "6")
	assert.ErrorContains(t, err, "--quality must be between 0 and 5")

	_, err = execute(t, "review", "--ease", "1.2")
	assert.ErrorContains(t, err, "--ease must be at least 1.3")

	_, err = execute(t, "review", "--interval", "0.5")
	assert.ErrorContains(t, err, "--interval must be at least 1")
}

func TestPreviewCmd(t *testing.T) {
	out, err := execute(t, "preview", "--interval", "10", "--ease", "2.5")
	require.NoError(t, err)

	for _, w := range []string{"Forgot", "Good", "Easy", "1d", "24d", "26d"} {
		assert.Contains(t, out, w)
	}
}
