package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/quill-api/internal/domain"
	"gopkg.in/yaml.v3"
)

// history is a score history split into the two series the forecaster
// accepts, each in chronological order.
type history struct {
	overall   []domain.ScorePoint
	subskills []domain.SubskillPoint
}

// historyRow is one entry of a JSON or YAML history file. Subskills are
// optional but must be given together.
type historyRow struct {
	Date       string   `yaml:"date"`
	Score      float64  `yaml:"score"`
	Grammar    *float64 `yaml:"grammar"`
	Phrasing   *float64 `yaml:"phrasing"`
	Vocabulary *float64 `yaml:"vocabulary"`
}

// loadHistory reads a history file, choosing the format by extension.
func loadHistory(path string) (*history, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = f.Close() }()

	var rows []historyRow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = parseCSV(f)
	case ".json", ".yaml", ".yml":
		// JSON is valid YAML, so one decoder reads both.
		err = yaml.NewDecoder(f).Decode(&rows)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("unsupported history format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return buildHistory(rows)
}

func parseCSV(r io.Reader) ([]historyRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "date") {
		records = records[1:]
	}

	rows := make([]historyRow, 0, len(records))
	for i, rec := range records {
		if len(rec) != 2 && len(rec) != 5 {
			return nil, fmt.Errorf("row %d: expected 2 or 5 columns, got %d", i+1, len(rec))
		}

		nums := make([]float64, len(rec)-1)
		for j, field := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: column %d: %w", i+1, j+2, err)
			}
			nums[j] = v
		}

		row := historyRow{Date: rec[0], Score: nums[0]}
		if len(nums) == 4 {
			row.Grammar, row.Phrasing, row.Vocabulary = &nums[1], &nums[2], &nums[3]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func buildHistory(rows []historyRow) (*history, error) {
	type dated struct {
		at  time.Time
		row historyRow
	}

	entries := make([]dated, 0, len(rows))
	for i, row := range rows {
		at, err := parseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if err := checkScore(row.Score); err != nil {
			return nil, fmt.Errorf("entry %d: score: %w", i+1, err)
		}
		entries = append(entries, dated{at: at, row: row})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	h := &history{}
	for i, e := range entries {
		h.overall = append(h.overall, domain.ScorePoint{Date: e.at, Score: e.row.Score})

		sub := []*float64{e.row.Grammar, e.row.Phrasing, e.row.Vocabulary}
		given := 0
		for _, s := range sub {
			if s != nil {
				given++
			}
		}
		switch given {
		case 0:
			continue
		case len(sub):
		default:
			return nil, fmt.Errorf("entry dated %s: grammar, phrasing and vocabulary must be given together",
				e.at.Format(time.DateOnly))
		}
		for _, s := range sub {
			if err := checkScore(*s); err != nil {
				return nil, fmt.Errorf("entry %d: subskill: %w", i+1, err)
			}
		}
		h.subskills = append(h.subskills, domain.SubskillPoint{
			Date:       e.at,
			Grammar:    *e.row.Grammar,
			Phrasing:   *e.row.Phrasing,
			Vocabulary: *e.row.Vocabulary,
		})
	}
	return h, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

func checkScore(v float64) error {
	if v < domain.MinScore || v > domain.MaxScore {
		return domain.ErrScoreOutOfRange
	}
	return nil
}
