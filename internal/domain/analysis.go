package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Analysis validation errors
var (
	ErrEmptyAnalysisEntryID = errors.New("analysis entry ID cannot be empty")
	ErrEmptyAnalysisUserID  = errors.New("analysis user ID cannot be empty")
	ErrScoreOutOfRange      = errors.New("score must be between 0 and 100")
)

// Score bounds shared by analyses and forecasts.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// EntryAnalysis is the AI assessment of one journal entry. Every score is on
// the 0..100 scale.
type EntryAnalysis struct {
	ID         uuid.UUID `json:"id"`
	EntryID    uuid.UUID `json:"entry_id"`
	UserID     uuid.UUID `json:"user_id"`
	Overall    float64   `json:"overall"`
	Grammar    float64   `json:"grammar"`
	Phrasing   float64   `json:"phrasing"`
	Vocabulary float64   `json:"vocabulary"`
	Feedback   string    `json:"feedback"`
	AssessedAt time.Time `json:"assessed_at"`
}

// Validate checks the ids and that every score lies within [0,100].
func (a *EntryAnalysis) Validate() error {
	if a.EntryID == uuid.Nil {
		return ErrEmptyAnalysisEntryID
	}
	if a.UserID == uuid.Nil {
		return ErrEmptyAnalysisUserID
	}
	for _, s := range []float64{a.Overall, a.Grammar, a.Phrasing, a.Vocabulary} {
		if s < MinScore || s > MaxScore {
			return ErrScoreOutOfRange
		}
	}
	return nil
}

// ScorePoint returns the overall score of the analysis as a history point.
func (a *EntryAnalysis) ScorePoint() ScorePoint {
	return ScorePoint{Date: a.AssessedAt, Score: a.Overall}
}

// SubskillPoint returns the subskill scores of the analysis as a history point.
func (a *EntryAnalysis) SubskillPoint() SubskillPoint {
	return SubskillPoint{
		Date:       a.AssessedAt,
		Grammar:    a.Grammar,
		Phrasing:   a.Phrasing,
		Vocabulary: a.Vocabulary,
	}
}

// ScorePoint is one dated overall score, observed or predicted.
type ScorePoint struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
}

// SubskillPoint is one dated set of subskill scores, observed or predicted.
type SubskillPoint struct {
	Date       time.Time `json:"date"`
	Grammar    float64   `json:"grammar"`
	Phrasing   float64   `json:"phrasing"`
	Vocabulary float64   `json:"vocabulary"`
}

// ProficiencyForecast holds the predicted future scores of a learner. Either
// series is empty when there was not enough history to forecast it.
type ProficiencyForecast struct {
	PredictedOverall   []ScorePoint    `json:"predicted_overall"`
	PredictedSubskills []SubskillPoint `json:"predicted_subskills"`
}
