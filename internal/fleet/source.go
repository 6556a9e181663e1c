package fleet

import (
	"context"

	"github.com/rs/zerolog"

	"rentacar/internal/metrics"
	"rentacar/internal/models"
)

// Source fetches fleet records. ListCars returns newest first.
type Source interface {
	ListCars(ctx context.Context) ([]models.Car, error)
	GetCar(ctx context.Context, id string) (*models.Car, error)
}

// Listing is a filtered fleet view. Loaded is false when the fetch failed,
// which lets callers tell "no data" apart from "filters exclude everything".
type Listing struct {
	Loaded bool     `json:"loaded"`
	Total  int      `json:"total"`
	Groups *Grouped `json:"groups"`
}

// Browser serves filtered listings from a Source.
type Browser struct {
	source Source
	logger *zerolog.Logger
}

func NewBrowser(source Source, logger *zerolog.Logger) *Browser {
	return &Browser{source: source, logger: logger}
}

// Browse fetches the fleet and applies c. A fetch failure yields an empty, unloaded listing.
func (b *Browser) Browse(ctx context.Context, c Criteria) Listing {
	cars, err := b.source.ListCars(ctx)
	if err != nil {
		b.logger.Error().Err(err).Msg("fleet fetch failed")
		metrics.IncFleetFetchError()
		return Listing{Loaded: false, Groups: NewGrouped()}
	}

	groups := Filter(cars, c)
	return Listing{Loaded: true, Total: groups.Total(), Groups: groups}
}

// Car returns one fleet record.
func (b *Browser) Car(ctx context.Context, id string) (*models.Car, error) {
	return b.source.GetCar(ctx, id)
}
