package forecast

// The first gates whether a series is forecast at all, the second picks the
// model. They are independent.
const (
	// MinHistoryEntries is the shortest history Proficiency will forecast.
	MinHistoryEntries = 7

	// DampedModelThreshold is the series length from which the damped
	// model replaces the linear one.
	DampedModelThreshold = 20
)

// DefaultMaxHorizonDays is the longest horizon accepted unless configured
// otherwise.
const DefaultMaxHorizonDays = 365.0

// Forecast returns exactly horizon future values for data, each in [0,100].
//
// An empty series forecasts zeros and a single point forecasts itself. A
// series with no variation forecasts its constant. Otherwise the series is
// fitted with Fit and projected.
func Forecast(data []float64, horizon int) []float64 {
	return Fit(data).Project(horizon)
}
