package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteRequest - запрос на расчет котировки. Не персистится.
type QuoteRequest struct {
	VehicleType        VehicleType     `json:"vehicle_type"`
	DistanceMiles      decimal.Decimal `json:"distance_miles"`
	PickupDate         time.Time       `json:"pickup_date"`
	DeliveryDate       time.Time       `json:"delivery_date"`
	IsAccidentRecovery bool            `json:"is_accident_recovery"`
	VehicleCount       int             `json:"vehicle_count"`
	UseDynamicConfig   bool            `json:"use_dynamic_config"`
}

// Validate проверяет домены полей запроса.
func (r *QuoteRequest) Validate() error {
	if r.VehicleType == "" {
		return fmt.Errorf("%w: vehicle_type is required", ErrValidation)
	}
	if !r.DistanceMiles.IsPositive() {
		return fmt.Errorf("%w: distance_miles must be greater than zero", ErrValidation)
	}
	if r.VehicleCount < 1 {
		return fmt.Errorf("%w: vehicle_count must be at least 1", ErrValidation)
	}
	if r.PickupDate.IsZero() || r.DeliveryDate.IsZero() {
		return fmt.Errorf("%w: pickup_date and delivery_date are required", ErrValidation)
	}
	if r.DeliveryDate.Before(r.PickupDate) {
		return fmt.Errorf("%w: delivery_date must not be before pickup_date", ErrValidation)
	}
	return nil
}

// QuoteBreakdown - детализация рассчитанной котировки, возвращается клиенту.
// Не персистится отдельно от shipment'а, к которому ее привязывает вызывающий код.
// Имена JSON-полей в camelCase - так же их отдают остальные контроллеры котировок.
type QuoteBreakdown struct {
	Total                     decimal.Decimal `json:"total"`
	FuelPricePerGallon        decimal.Decimal `json:"fuelPricePerGallon"`
	SurgeMultiplier           decimal.Decimal `json:"surgeMultiplier"`
	DeliveryType              DeliveryType    `json:"deliveryType"`
	DeliveryTypeMultiplier    decimal.Decimal `json:"deliveryTypeMultiplier"`
	BaseComponent             decimal.Decimal `json:"baseComponent"`
	DistanceComponent         decimal.Decimal `json:"distanceComponent"`
	VehicleComponent          decimal.Decimal `json:"vehicleComponent"`
	AccidentRecoverySurcharge decimal.Decimal `json:"accidentRecoverySurcharge"`
	VehicleCount              int             `json:"vehicleCount"`
	ConfigVersion             int             `json:"configVersion"`
}
