package srs

import (
	"math"
	"time"

	"github.com/phrazzld/quill-api/internal/domain"
)

// Quality is a recall grade on the SM-2 0..5 scale. Only three values are
// offered to learners, but any value is accepted and extrapolated.
type Quality int

// Grades behind the three review buttons.
const (
	QualityForgot Quality = 0
	QualityGood   Quality = 3
	QualityEasy   Quality = 5
)

// QualityForOutcome maps a review button to its grade.
func QualityForOutcome(outcome domain.ReviewOutcome) (Quality, bool) {
	switch outcome {
	case domain.ReviewOutcomeForgot:
		return QualityForgot, true
	case domain.ReviewOutcomeGood:
		return QualityGood, true
	case domain.ReviewOutcomeEasy:
		return QualityEasy, true
	default:
		return 0, false
	}
}

// State is the memory-strength part of a review state.
type State struct {
	Interval   float64
	EaseFactor float64
}

// Result is the outcome of a single review.
type Result struct {
	Interval       float64
	EaseFactor     float64
	NextReviewAt   time.Time
	LastReviewedAt time.Time
}

// Intervals are the candidate next intervals, in days, for each button.
type Intervals struct {
	Forgot float64 `json:"forgot"`
	Good   float64 `json:"good"`
	Easy   float64 `json:"easy"`
}

// Review applies one graded review to current at time now.
//
// A failed review (quality below params.PassingQuality) sends the card back
// to the learning step and leaves the ease factor untouched. A passing review
// updates the ease factor with
//
//	EF' = max(MinEaseFactor, EF + (0.1 - (5-q)(0.08 + (5-q)0.02)))
//
// and either graduates the card (interval 1 -> GraduatingInterval) or
// multiplies the interval by EF' and rounds to whole days.
//
// NextReviewAt is the start of the UTC day interval days after now.
// LastReviewedAt is now, unmodified.
func Review(current State, quality Quality, now time.Time, params *Params) Result {
	interval, ef := next(current, quality, params)

	return Result{
		Interval:       interval,
		EaseFactor:     ef,
		NextReviewAt:   dueDate(now, interval),
		LastReviewedAt: now,
	}
}

// Preview returns what Review would set the interval to for each button.
// It shares next with Review so preview and actual outcome never disagree.
func Preview(current State, params *Params) Intervals {
	forgot, _ := next(current, QualityForgot, params)
	good, _ := next(current, QualityGood, params)
	easy, _ := next(current, QualityEasy, params)

	return Intervals{Forgot: forgot, Good: good, Easy: easy}
}

func next(current State, quality Quality, params *Params) (float64, float64) {
	if quality < params.PassingQuality {
		return params.InitialInterval, current.EaseFactor
	}

	ef := easeFactorAfter(current.EaseFactor, quality, params)

	if current.Interval == params.InitialInterval {
		return params.GraduatingInterval, ef
	}

	return math.Round(current.Interval * ef), ef
}

func easeFactorAfter(ef float64, quality Quality, params *Params) float64 {
	miss := float64(QualityEasy - quality)
	return math.Max(params.MinEaseFactor, ef+(0.1-miss*(0.08+miss*0.02)))
}

// maxDueDays caps the calendar offset of a due date. Intervals themselves
// are unbounded, but time.Time cannot hold dates much past this.
const maxDueDays = 1e12

// dueDate adds interval days to now and truncates to 00:00 UTC. Whole days
// are added on the calendar so long intervals cannot overflow a Duration.
func dueDate(now time.Time, interval float64) time.Time {
	days := math.Floor(math.Min(interval, maxDueDays))
	frac := interval - days
	if interval >= maxDueDays {
		frac = 0
	}

	due := now.UTC().AddDate(0, 0, int(days)).Add(time.Duration(frac * float64(24*time.Hour)))
	return startOfDay(due)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
