package service

import (
	"fmt"

	"drivedrop-pricing/internal/models"

	"github.com/shopspring/decimal"
)

// ComputeQuoteBreakdown - чистый расчет котировки по снимку конфигурации.
// Никакого I/O: конфигурация передается параметром, поэтому функция
// детерминирована и тестируется без базы.
//
// Вся арифметика на decimal: двоичный float накапливает дрейф округления,
// недопустимый в финансовом выводе. Итог округляется до центов (half-up).
func ComputeQuoteBreakdown(req models.QuoteRequest, cfg *models.PricingConfig) (*models.QuoteBreakdown, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 1. Тариф скорости доставки из разницы дат
	deliveryType := models.DeliveryTypeStandard
	if req.DeliveryDate.Sub(req.PickupDate).Hours() < float64(cfg.ExpeditedThresholdDays)*24 {
		deliveryType = models.DeliveryTypeExpedited
	}
	deliveryMultiplier, ok := cfg.DeliveryTypeMultipliers[deliveryType]
	if !ok {
		// Отсутствующий тариф - это 1.0, а не ошибка
		deliveryMultiplier = decimal.NewFromInt(1)
	}

	// 2. Базовая стоимость за дистанцию
	distanceComponent := cfg.BaseRatePerMile.Mul(req.DistanceMiles)

	// 3. Множитель типа ТС. Неизвестный тип - ошибка, а не дефолт:
	// молчаливый дефолт означал бы недо- или переоценку перевозки.
	vehicleMultiplier, ok := cfg.VehicleTypeMultipliers[req.VehicleType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownVehicleType, req.VehicleType)
	}
	vehicleComponent := distanceComponent.Mul(vehicleMultiplier)

	// 4. Surge применяется только когда включен
	surgeMultiplier := decimal.NewFromInt(1)
	if cfg.SurgeEnabled {
		surgeMultiplier = cfg.SurgeMultiplier
	}

	// 5. Доплата за эвакуацию после ДТП аддитивна,
	// чтобы не перемножаться с surge
	surcharge := decimal.Zero
	if req.IsAccidentRecovery {
		surcharge = cfg.AccidentRecoverySurcharge
	}

	// 6-7. Итог с полом min_quote
	baseComponent := vehicleComponent.
		Mul(deliveryMultiplier).
		Mul(surgeMultiplier).
		Mul(decimal.NewFromInt(int64(req.VehicleCount)))
	subtotal := baseComponent.Add(surcharge)

	total := subtotal
	if total.LessThan(cfg.MinQuote) {
		total = cfg.MinQuote
	}
	total = total.Round(2)

	return &models.QuoteBreakdown{
		Total:                     total,
		FuelPricePerGallon:        cfg.CurrentFuelPrice,
		SurgeMultiplier:           surgeMultiplier,
		DeliveryType:              deliveryType,
		DeliveryTypeMultiplier:    deliveryMultiplier,
		BaseComponent:             baseComponent,
		DistanceComponent:         distanceComponent,
		VehicleComponent:          vehicleComponent,
		AccidentRecoverySurcharge: surcharge,
		VehicleCount:              req.VehicleCount,
		ConfigVersion:             cfg.Version,
	}, nil
}
