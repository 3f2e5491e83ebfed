package forecast

import "math"

// Kind identifies the smoothing model used for a forecast.
type Kind string

// Model kinds.
const (
	KindConstant Kind = "constant"
	KindLinear   Kind = "holt_linear"
	KindDamped   Kind = "holt_damped"
)

// Model is a fitted smoothing model. Level and Trend are the smoothed values
// after the last observation.
type Model struct {
	Kind  Kind    `json:"kind"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Phi   float64 `json:"phi"`
	Level float64 `json:"level"`
	Trend float64 `json:"trend"`
	MSE   float64 `json:"mse"`
}

// Fit selects and fits a model for data. Series shorter than two points or
// with no variation yield a constant model.
func Fit(data []float64) Model {
	switch {
	case len(data) == 0:
		return Model{Kind: KindConstant, Phi: 1}
	case len(data) == 1 || isFlat(data):
		return Model{Kind: KindConstant, Phi: 1, Level: data[len(data)-1]}
	case len(data) < DampedModelThreshold:
		return fitGrid(data, KindLinear, []float64{1})
	default:
		return fitGrid(data, KindDamped, phiGrid())
	}
}

// Project returns horizon future points from m, each clamped to [0,100].
func (m Model) Project(horizon int) []float64 {
	if horizon < 0 {
		horizon = 0
	}
	out := make([]float64, horizon)

	switch m.Kind {
	case KindLinear:
		for i := range out {
			step := float64(i + 1)
			raw := m.Level + step*m.Trend
			// Past the ceiling the correction stops growth entirely.
			remaining := math.Max(0, (100-math.Max(0, raw))/100)
			difficulty := math.Pow(remaining, 1.5)
			out[i] = clamp(m.Level + step*m.Trend*difficulty)
		}
	case KindDamped:
		var damping, phiK float64 = 0, 1
		for i := range out {
			phiK *= m.Phi
			damping += phiK
			out[i] = clamp(m.Level + damping*m.Trend)
		}
	default:
		v := clamp(m.Level)
		for i := range out {
			out[i] = v
		}
	}

	return out
}

// fitGrid runs the smoothing recurrence for every (alpha, beta, phi) on the
// grid and keeps the first combination with the lowest error.
func fitGrid(data []float64, kind Kind, phis []float64) Model {
	best := Model{Kind: kind, MSE: math.Inf(1)}

	for ai := 1; ai <= 9; ai++ {
		alpha := float64(ai) / 10
		for bi := 1; bi <= 9; bi++ {
			beta := float64(bi) / 10
			for _, phi := range phis {
				level, trend, mse := smooth(data, alpha, beta, phi)
				if mse < best.MSE {
					best = Model{
						Kind:  kind,
						Alpha: alpha,
						Beta:  beta,
						Phi:   phi,
						Level: level,
						Trend: trend,
						MSE:   mse,
					}
				}
			}
		}
	}

	return best
}

// smooth applies the damped Holt recurrence to data (phi = 1 is the linear
// method) and returns the final level, final trend and the mean squared
// one-step-ahead error over data[1:]. len(data) must be at least 2.
func smooth(data []float64, alpha, beta, phi float64) (float64, float64, float64) {
	level := data[0]
	trend := data[1] - data[0]

	var sse float64
	for _, v := range data[1:] {
		lastLevel := level
		e := v - (lastLevel + phi*trend)
		sse += e * e

		level = alpha*v + (1-alpha)*(lastLevel+phi*trend)
		trend = beta*(level-lastLevel) + (1-beta)*phi*trend
	}

	return level, trend, sse / float64(len(data)-1)
}

// phiGrid returns the damping factors 0.80, 0.81, ..., 0.99.
func phiGrid() []float64 {
	phis := make([]float64, 0, 20)
	for p := 80; p <= 99; p++ {
		phis = append(phis, float64(p)/100)
	}
	return phis
}

func isFlat(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}
