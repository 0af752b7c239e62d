package handler

import (
	"time"

	"drivedrop-pricing/internal/models"

	"github.com/shopspring/decimal"
)

// quoteRequest - тело POST /pricing/quote.
type quoteRequest struct {
	VehicleType        string          `json:"vehicle_type"`
	DistanceMiles      decimal.Decimal `json:"distance_miles"`
	PickupDate         time.Time       `json:"pickup_date"`
	DeliveryDate       time.Time       `json:"delivery_date"`
	IsAccidentRecovery bool            `json:"is_accident_recovery"`
	VehicleCount       int             `json:"vehicle_count"`
	UseDynamicConfig   bool            `json:"use_dynamic_config"`
}

// toModel переводит DTO в доменный запрос. Нулевой vehicle_count
// трактуем как "одна машина", это самый частый случай.
func (r *quoteRequest) toModel() models.QuoteRequest {
	count := r.VehicleCount
	if count == 0 {
		count = 1
	}
	return models.QuoteRequest{
		VehicleType:        models.VehicleType(r.VehicleType),
		DistanceMiles:      r.DistanceMiles,
		PickupDate:         r.PickupDate,
		DeliveryDate:       r.DeliveryDate,
		IsAccidentRecovery: r.IsAccidentRecovery,
		VehicleCount:       count,
		UseDynamicConfig:   r.UseDynamicConfig,
	}
}

// updateConfigRequest - тело PUT /admin/pricing/config/:id.
// nil-поле означает "не менять". change_reason пишется в историю.
type updateConfigRequest struct {
	CurrentFuelPrice          *decimal.Decimal                               `json:"current_fuel_price"`
	MinQuote                  *decimal.Decimal                               `json:"min_quote"`
	SurgeEnabled              *bool                                          `json:"surge_enabled"`
	SurgeMultiplier           *decimal.Decimal                               `json:"surge_multiplier"`
	BaseRatePerMile           *decimal.Decimal                               `json:"base_rate_per_mile"`
	VehicleTypeMultipliers    map[models.VehicleType]decimal.Decimal         `json:"vehicle_type_multipliers"`
	DeliveryTypeMultipliers   map[models.DeliveryType]decimal.Decimal        `json:"delivery_type_multipliers"`
	AccidentRecoverySurcharge *decimal.Decimal                               `json:"accident_recovery_surcharge"`
	ExpeditedThresholdDays    *int                                           `json:"expedited_threshold_days"`
	ChangeReason              string                                         `json:"change_reason"`
}

func (r *updateConfigRequest) toModel() models.PricingConfigUpdate {
	return models.PricingConfigUpdate{
		CurrentFuelPrice:          r.CurrentFuelPrice,
		MinQuote:                  r.MinQuote,
		SurgeEnabled:              r.SurgeEnabled,
		SurgeMultiplier:           r.SurgeMultiplier,
		BaseRatePerMile:           r.BaseRatePerMile,
		VehicleTypeMultipliers:    r.VehicleTypeMultipliers,
		DeliveryTypeMultipliers:   r.DeliveryTypeMultipliers,
		AccidentRecoverySurcharge: r.AccidentRecoverySurcharge,
		ExpeditedThresholdDays:    r.ExpeditedThresholdDays,
	}
}
