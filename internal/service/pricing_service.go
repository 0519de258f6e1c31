package service

import (
	"math"

	"github.com/adeolu/swiftride/internal/config"
	apperrors "github.com/adeolu/swiftride/internal/errors"
	"github.com/adeolu/swiftride/internal/models"
)

const quoteCurrency = "NGN"

// PricingService computes deterministic fare breakdowns from the configured
// pricing table. It knows nothing about rides, drivers or vehicles; identical
// inputs always produce identical output.
type PricingService interface {
	Estimate(vehicleClass string, distanceKm float64, durationMins int) (*models.FareBreakdown, error)
	Quote(vehicleClass string, distanceKm float64, durationMins int, approximate bool) (*models.FareQuote, error)
}

type pricingService struct {
	pricing map[string]config.FareConfig
}

func NewPricingService(cfg *config.Config) PricingService {
	return &pricingService{pricing: cfg.Pricing}
}

func (s *pricingService) Estimate(vehicleClass string, distanceKm float64, durationMins int) (*models.FareBreakdown, error) {
	fc, exists := s.pricing[vehicleClass]
	if !exists {
		return nil, apperrors.BadRequest("unknown vehicle class: " + vehicleClass)
	}

	distanceFare := roundHalfUp(distanceKm * float64(fc.PerKmRate))
	timeFare := int64(durationMins) * fc.PerMinuteRate
	subtotal := fc.BaseFare + distanceFare + timeFare
	serviceFee := (subtotal*fc.ServiceFeePercent + 50) / 100

	return &models.FareBreakdown{
		BaseFare:     fc.BaseFare,
		DistanceFare: distanceFare,
		TimeFare:     timeFare,
		ServiceFee:   serviceFee,
		Total:        subtotal + serviceFee,
	}, nil
}

func (s *pricingService) Quote(vehicleClass string, distanceKm float64, durationMins int, approximate bool) (*models.FareQuote, error) {
	fare, err := s.Estimate(vehicleClass, distanceKm, durationMins)
	if err != nil {
		return nil, err
	}

	minDuration := durationMins - 5
	if minDuration < 5 {
		minDuration = 5
	}

	return &models.FareQuote{
		VehicleClass:    vehicleClass,
		DistanceKm:      distanceKm,
		DurationMins:    durationMins,
		MinDurationMins: minDuration,
		MaxDurationMins: durationMins + 5,
		Fare:            *fare,
		Currency:        quoteCurrency,
		Approximate:     approximate,
	}, nil
}

// roundHalfUp rounds to the nearest whole currency unit, halves away from zero.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
