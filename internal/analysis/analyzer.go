package analysis

import (
	"context"
	"fmt"

	"github.com/phrazzld/quill-api/internal/domain"
)

// Result holds the scores and feedback for one entry. Scores are on the
// 0..100 scale.
type Result struct {
	Overall    float64 `json:"overall"`
	Grammar    float64 `json:"grammar"`
	Phrasing   float64 `json:"phrasing"`
	Vocabulary float64 `json:"vocabulary"`
	Feedback   string  `json:"feedback"`
}

// Validate reports ErrInvalidResponse if any score is outside [0,100].
func (r *Result) Validate() error {
	scores := map[string]float64{
		"overall":    r.Overall,
		"grammar":    r.Grammar,
		"phrasing":   r.Phrasing,
		"vocabulary": r.Vocabulary,
	}
	for name, s := range scores {
		if s < domain.MinScore || s > domain.MaxScore {
			return fmt.Errorf("%w: %s score %.1f out of range", ErrInvalidResponse, name, s)
		}
	}
	return nil
}

// Analyzer scores a journal entry written in language.
type Analyzer interface {
	AnalyzeEntry(ctx context.Context, text, language string) (*Result, error)
}
