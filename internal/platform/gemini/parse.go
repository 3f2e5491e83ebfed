package gemini

import (
	"fmt"
	"strings"

	"github.com/phrazzld/quill-api/internal/analysis"
	"github.com/tidwall/gjson"
)

var scoreFields = []string{"overall", "grammar", "phrasing", "vocabulary"}

// parseResult reads the score object out of a model reply. The reply may
// be wrapped in a markdown code fence.
func parseResult(raw string) (*analysis.Result, error) {
	body := stripFence(raw)
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", analysis.ErrInvalidResponse)
	}

	doc := gjson.Parse(body)
	scores := make(map[string]float64, len(scoreFields))
	for _, field := range scoreFields {
		v := doc.Get(field)
		if v.Type != gjson.Number {
			return nil, fmt.Errorf("%w: missing numeric %q score", analysis.ErrInvalidResponse, field)
		}
		scores[field] = v.Float()
	}

	res := &analysis.Result{
		Overall:    scores["overall"],
		Grammar:    scores["grammar"],
		Phrasing:   scores["phrasing"],
		Vocabulary: scores["vocabulary"],
		Feedback:   strings.TrimSpace(doc.Get("feedback").String()),
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
