package findbusiness

import (
	"context"

	"pos-onboarding-workers/internal/common/logger"
	"pos-onboarding-workers/internal/common/places"
	"pos-onboarding-workers/internal/models"
)

type Input struct {
	Query string `json:"query" jsonschema:"minLength=1,description=Business name and city to look up on Google Maps"`
}

type Output struct {
	Places      []models.BusinessRecord `json:"places"`
	Count       int                     `json:"count"`
	ZeroResults bool                    `json:"zeroResults"`
}

// PlaceSearcher is the subset of the Places client the lookup needs.
type PlaceSearcher interface {
	Configured() bool
	TextSearch(ctx context.Context, query string) ([]string, error)
	Details(ctx context.Context, placeID string) (*places.Place, error)
	PhotoURL(reference string) string
}

type ServiceDependencies struct {
	Places PlaceSearcher
	Logger logger.Logger
}
