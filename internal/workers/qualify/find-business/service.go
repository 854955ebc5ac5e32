package findbusiness

import (
	"context"
	stderrors "errors"
	"fmt"

	"pos-onboarding-workers/internal/common/errors"
	httpclient "pos-onboarding-workers/internal/common/http"
	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/common/metrics"
	"pos-onboarding-workers/internal/common/places"
	"pos-onboarding-workers/internal/common/validation"
	"pos-onboarding-workers/internal/models"
)

type Service struct {
	config *Config
	places PlaceSearcher
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		places: deps.Places,
		logger: deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if s.places == nil || !s.places.Configured() {
		return nil, errors.NewServiceNotConfiguredError("places", "api key")
	}

	ids, err := s.places.TextSearch(ctx, input.Query)
	if err != nil {
		return nil, s.searchError(err)
	}
	if len(ids) == 0 {
		metrics.PlacesLookups.WithLabelValues(places.StatusZeroResults).Inc()
		s.logger.Info("No businesses found", map[string]interface{}{"query": input.Query})
		return &Output{Places: []models.BusinessRecord{}, ZeroResults: true}, nil
	}
	metrics.PlacesLookups.WithLabelValues(places.StatusOK).Inc()

	if len(ids) > s.config.MaxCandidates {
		ids = ids[:s.config.MaxCandidates]
	}

	records := make([]models.BusinessRecord, 0, len(ids))
	for _, id := range ids {
		place, err := s.places.Details(ctx, id)
		if err != nil {
			s.logger.Warn("Skipping place after details failure", map[string]interface{}{
				"placeId": id,
				"error":   err.Error(),
			})
			continue
		}
		records = append(records, s.toRecord(place))
	}

	if len(records) > s.config.MaxSuggestions {
		records = records[:s.config.MaxSuggestions]
	}

	answer := models.BusinessSuggestions{Places: records}
	if result := validation.ValidateDocument(answerSchema, answer); !result.Valid {
		return nil, errors.NewValidationFailedError(fmt.Sprintf("suggestions do not match the answer schema: %v", result.GetErrorMessages()))
	}

	s.logger.Info("Business lookup completed", map[string]interface{}{
		"query":      input.Query,
		"candidates": len(ids),
		"returned":   len(records),
	})

	return &Output{Places: records, Count: len(records)}, nil
}

func (s *Service) toRecord(p *places.Place) models.BusinessRecord {
	return models.BusinessRecord{
		PlaceName:     p.Name,
		Address:       p.FormattedAddress,
		Lat:           models.DecimalString(p.Lat),
		Long:          models.DecimalString(p.Lng),
		ReviewRatings: models.DecimalString(p.Rating),
		Highlights:    p.EditorialSummary,
		ImageURL:      s.places.PhotoURL(p.PhotoReference),
		MapURL:        places.MapURL(p.PlaceID),
		PlaceID:       p.PlaceID,
	}
}

func (s *Service) searchError(err error) error {
	var statusErr *places.StatusError
	if stderrors.As(err, &statusErr) {
		metrics.PlacesLookups.WithLabelValues(statusErr.Status).Inc()
		return errors.NewPlaceSearchFailedError(statusErr.Status, err)
	}

	metrics.PlacesLookups.WithLabelValues("error").Inc()
	if stderrors.Is(err, httpclient.ErrTimeout) {
		return errors.NewTimeoutError("places", err)
	}
	return errors.NewPlaceSearchFailedError("", err)
}
