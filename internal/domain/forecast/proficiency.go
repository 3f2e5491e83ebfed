package forecast

import (
	"math"
	"time"

	"github.com/phrazzld/quill-api/internal/domain"
)

const minPaceDays = 0.1

const day = 24 * time.Hour

// Proficiency forecasts overall and subskill scores horizonDays into the
// future. Both series must be in chronological order.
//
// The number of points is derived from the learner's writing pace: the
// average gap between entries, floored at 0.1 days, divides the horizon.
// Predicted point i is dated i average gaps after the last entry, without
// the floor. A series with
// fewer than MinHistoryEntries points is not forecast and comes back empty.
func Proficiency(
	history []domain.ScorePoint,
	subskills []domain.SubskillPoint,
	horizonDays float64,
) domain.ProficiencyForecast {
	result := domain.ProficiencyForecast{
		PredictedOverall:   []domain.ScorePoint{},
		PredictedSubskills: []domain.SubskillPoint{},
	}

	if len(history) >= MinHistoryEntries {
		dates := projectDates(scoreDates(history), horizonDays)
		values := make([]float64, len(history))
		for i, p := range history {
			values[i] = p.Score
		}
		for i, v := range Forecast(values, len(dates)) {
			result.PredictedOverall = append(result.PredictedOverall, domain.ScorePoint{
				Date:  dates[i],
				Score: v,
			})
		}
	}

	if len(subskills) >= MinHistoryEntries {
		dates := projectDates(subskillDates(subskills), horizonDays)
		grammar := make([]float64, len(subskills))
		phrasing := make([]float64, len(subskills))
		vocabulary := make([]float64, len(subskills))
		for i, p := range subskills {
			grammar[i] = p.Grammar
			phrasing[i] = p.Phrasing
			vocabulary[i] = p.Vocabulary
		}

		g := Forecast(grammar, len(dates))
		ph := Forecast(phrasing, len(dates))
		v := Forecast(vocabulary, len(dates))
		for i := range dates {
			result.PredictedSubskills = append(result.PredictedSubskills, domain.SubskillPoint{
				Date:       dates[i],
				Grammar:    g[i],
				Phrasing:   ph[i],
				Vocabulary: v[i],
			})
		}
	}

	return result
}

// PointCount returns how many points cover horizonDays for entries written
// avgGap apart.
func PointCount(avgGap time.Duration, horizonDays float64) int {
	if horizonDays <= 0 || math.IsNaN(horizonDays) || math.IsInf(horizonDays, 0) {
		return 0
	}
	return int(math.Ceil(horizonDays / paceDays(avgGap)))
}

// projectDates returns the dates of the forecast points following dates.
// len(dates) must be at least 2.
func projectDates(dates []time.Time, horizonDays float64) []time.Time {
	last := dates[len(dates)-1]
	gap := averageGap(dates)

	out := make([]time.Time, PointCount(gap, horizonDays))
	for i := range out {
		out[i] = last.Add(time.Duration(i+1) * gap)
	}
	return out
}

func averageGap(dates []time.Time) time.Duration {
	if len(dates) < 2 {
		return 0
	}
	return dates[len(dates)-1].Sub(dates[0]) / time.Duration(len(dates)-1)
}

func paceDays(gap time.Duration) float64 {
	return math.Max(minPaceDays, float64(gap)/float64(day))
}

func scoreDates(points []domain.ScorePoint) []time.Time {
	out := make([]time.Time, len(points))
	for i, p := range points {
		out[i] = p.Date
	}
	return out
}

func subskillDates(points []domain.SubskillPoint) []time.Time {
	out := make([]time.Time, len(points))
	for i, p := range points {
		out[i] = p.Date
	}
	return out
}
