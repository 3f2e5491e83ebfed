package srs

import "errors"

// ErrInvalidParams is returned by NewParams when a parameter is out of range.
var ErrInvalidParams = errors.New("invalid scheduler parameters")

// Params defines the configurable constants of the scheduling algorithm.
type Params struct {
	// MinEaseFactor is the floor applied after every passing review.
	MinEaseFactor float64

	// InitialEaseFactor and InitialInterval describe a brand-new card.
	InitialEaseFactor float64
	InitialInterval   float64

	// GraduatingInterval replaces InitialInterval after the first pass.
	GraduatingInterval float64

	// PassingQuality is the lowest grade that counts as recalled.
	PassingQuality Quality
}

// ParamsConfig allows overriding the default parameters. Zero fields keep
// their defaults.
type ParamsConfig struct {
	MinEaseFactor      float64
	InitialEaseFactor  float64
	InitialInterval    float64
	GraduatingInterval float64
	PassingQuality     Quality
}

// NewDefaultParams returns the classic SM-2 constants.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:      1.3,
		InitialEaseFactor:  2.5,
		InitialInterval:    1,
		GraduatingInterval: 6,
		PassingQuality:     QualityGood,
	}
}

// NewParams creates Params from the defaults with the non-zero fields of cfg
// applied on top.
func NewParams(cfg ParamsConfig) (*Params, error) {
	p := NewDefaultParams()

	if cfg.MinEaseFactor != 0 {
		p.MinEaseFactor = cfg.MinEaseFactor
	}
	if cfg.InitialEaseFactor != 0 {
		p.InitialEaseFactor = cfg.InitialEaseFactor
	}
	if cfg.InitialInterval != 0 {
		p.InitialInterval = cfg.InitialInterval
	}
	if cfg.GraduatingInterval != 0 {
		p.GraduatingInterval = cfg.GraduatingInterval
	}
	if cfg.PassingQuality != 0 {
		p.PassingQuality = cfg.PassingQuality
	}

	if p.MinEaseFactor <= 0 || p.InitialEaseFactor < p.MinEaseFactor {
		return nil, ErrInvalidParams
	}
	if p.InitialInterval < 1 || p.GraduatingInterval < p.InitialInterval {
		return nil, ErrInvalidParams
	}
	if p.PassingQuality < QualityForgot || p.PassingQuality > QualityEasy {
		return nil, ErrInvalidParams
	}

	return p, nil
}
