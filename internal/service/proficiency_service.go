package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/domain/forecast"
	"github.com/phrazzld/quill-api/internal/platform/cache"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/platform/metrics"
	"github.com/phrazzld/quill-api/internal/store"
)

// ProficiencyService forecasts a learner's writing scores.
type ProficiencyService interface {
	// GetForecast predicts overall and subskill scores horizonDays ahead.
	// A horizon of 0 selects the configured default; anything outside
	// [1, max] returns ErrInvalidHorizon.
	GetForecast(ctx context.Context, userID uuid.UUID, horizonDays int) (*domain.ProficiencyForecast, error)
}

type proficiencyService struct {
	analyses       store.AnalysisStore
	cache          cache.ForecastCache
	defaultHorizon int
	maxHorizon     int
	logger         *slog.Logger
}

// NewProficiencyService creates a ProficiencyService. A nil cache disables
// caching.
func NewProficiencyService(
	analyses store.AnalysisStore,
	forecasts cache.ForecastCache,
	defaultHorizon, maxHorizon int,
	logger *slog.Logger,
) (ProficiencyService, error) {
	if analyses == nil {
		return nil, nilDependency("analyses")
	}
	if maxHorizon < 1 || defaultHorizon < 1 || defaultHorizon > maxHorizon {
		return nil, fmt.Errorf("%w: default %d, max %d", ErrInvalidHorizon, defaultHorizon, maxHorizon)
	}
	if forecasts == nil {
		forecasts = cache.NoopForecastCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &proficiencyService{
		analyses:       analyses,
		cache:          forecasts,
		defaultHorizon: defaultHorizon,
		maxHorizon:     maxHorizon,
		logger:         logger.With(slog.String("component", "proficiency_service")),
	}, nil
}

func (s *proficiencyService) GetForecast(
	ctx context.Context,
	userID uuid.UUID,
	horizonDays int,
) (*domain.ProficiencyForecast, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if horizonDays == 0 {
		horizonDays = s.defaultHorizon
	}
	if horizonDays < 1 || horizonDays > s.maxHorizon {
		return nil, fmt.Errorf("%w: must be between 1 and %d days", ErrInvalidHorizon, s.maxHorizon)
	}

	cached, ok, err := s.cache.Get(ctx, userID, horizonDays)
	if err != nil {
		log.Warn("forecast cache read failed", slog.String("error", err.Error()))
	}
	if ok {
		metrics.RecordForecast(true)
		return cached, nil
	}
	metrics.RecordForecast(false)

	analyses, err := s.analyses.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_forecast", "failed to load analyses", err)
	}

	history := make([]domain.ScorePoint, len(analyses))
	subskills := make([]domain.SubskillPoint, len(analyses))
	for i, a := range analyses {
		history[i] = a.ScorePoint()
		subskills[i] = a.SubskillPoint()
	}

	result := forecast.Proficiency(history, subskills, float64(horizonDays))

	if err := s.cache.Set(ctx, userID, horizonDays, &result); err != nil {
		log.Warn("forecast cache write failed", slog.String("error", err.Error()))
	}

	log.Debug("forecast computed",
		slog.Int("history", len(analyses)),
		slog.Int("horizon_days", horizonDays),
		slog.Int("points", len(result.PredictedOverall)))
	return &result, nil
}
