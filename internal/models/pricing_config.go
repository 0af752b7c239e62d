package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleType - тип перевозимого транспортного средства.
type VehicleType string

const (
	VehicleTypeSedan      VehicleType = "sedan"
	VehicleTypeSUV        VehicleType = "suv"
	VehicleTypePickup     VehicleType = "pickup"
	VehicleTypeLuxury     VehicleType = "luxury"
	VehicleTypeMotorcycle VehicleType = "motorcycle"
	VehicleTypeHeavyDuty  VehicleType = "heavy_duty"
)

// DeliveryType - тариф скорости доставки, вычисляется из разницы дат.
type DeliveryType string

const (
	DeliveryTypeStandard  DeliveryType = "standard"
	DeliveryTypeExpedited DeliveryType = "expedited"
)

// PricingConfig - активная конфигурация ценообразования.
// Инвариант: в любой момент времени ровно одна строка имеет is_active = true
// (обеспечивается частичным уникальным индексом в БД).
type PricingConfig struct {
	ID                        uuid.UUID                        `json:"id" db:"id"`
	CurrentFuelPrice          decimal.Decimal                  `json:"current_fuel_price" db:"current_fuel_price"`
	MinQuote                  decimal.Decimal                  `json:"min_quote" db:"min_quote"`
	SurgeEnabled              bool                             `json:"surge_enabled" db:"surge_enabled"`
	SurgeMultiplier           decimal.Decimal                  `json:"surge_multiplier" db:"surge_multiplier"`
	BaseRatePerMile           decimal.Decimal                  `json:"base_rate_per_mile" db:"base_rate_per_mile"`
	VehicleTypeMultipliers    map[VehicleType]decimal.Decimal  `json:"vehicle_type_multipliers" db:"vehicle_type_multipliers"`
	DeliveryTypeMultipliers   map[DeliveryType]decimal.Decimal `json:"delivery_type_multipliers" db:"delivery_type_multipliers"`
	AccidentRecoverySurcharge decimal.Decimal                  `json:"accident_recovery_surcharge" db:"accident_recovery_surcharge"`
	ExpeditedThresholdDays    int                              `json:"expedited_threshold_days" db:"expedited_threshold_days"`
	IsActive                  bool                             `json:"is_active" db:"is_active"`
	Version                   int                              `json:"version" db:"version"`
	CreatedAt                 time.Time                        `json:"created_at" db:"created_at"`
	UpdatedAt                 time.Time                        `json:"updated_at" db:"updated_at"`
}

// DefaultPricingConfig возвращает статический снимок конфигурации,
// используемый при use_dynamic_config = false. Значения совпадают с seed-миграцией.
func DefaultPricingConfig() *PricingConfig {
	return &PricingConfig{
		CurrentFuelPrice: decimal.NewFromFloat(3.95),
		MinQuote:         decimal.NewFromInt(150),
		SurgeEnabled:     false,
		SurgeMultiplier:  decimal.NewFromInt(1),
		BaseRatePerMile:  decimal.NewFromFloat(1.75),
		VehicleTypeMultipliers: map[VehicleType]decimal.Decimal{
			VehicleTypeSedan:      decimal.NewFromFloat(1.0),
			VehicleTypeSUV:        decimal.NewFromFloat(1.15),
			VehicleTypePickup:     decimal.NewFromFloat(1.25),
			VehicleTypeLuxury:     decimal.NewFromFloat(1.5),
			VehicleTypeMotorcycle: decimal.NewFromFloat(0.85),
			VehicleTypeHeavyDuty:  decimal.NewFromFloat(1.6),
		},
		DeliveryTypeMultipliers: map[DeliveryType]decimal.Decimal{
			DeliveryTypeStandard:  decimal.NewFromFloat(1.0),
			DeliveryTypeExpedited: decimal.NewFromFloat(1.35),
		},
		AccidentRecoverySurcharge: decimal.NewFromInt(150),
		ExpeditedThresholdDays:    7,
		IsActive:                  true,
		Version:                   1,
	}
}

// PricingConfigUpdate - частичное обновление конфигурации. nil-поле означает "не менять".
type PricingConfigUpdate struct {
	CurrentFuelPrice          *decimal.Decimal                 `json:"current_fuel_price,omitempty"`
	MinQuote                  *decimal.Decimal                 `json:"min_quote,omitempty"`
	SurgeEnabled              *bool                            `json:"surge_enabled,omitempty"`
	SurgeMultiplier           *decimal.Decimal                 `json:"surge_multiplier,omitempty"`
	BaseRatePerMile           *decimal.Decimal                 `json:"base_rate_per_mile,omitempty"`
	VehicleTypeMultipliers    map[VehicleType]decimal.Decimal  `json:"vehicle_type_multipliers,omitempty"`
	DeliveryTypeMultipliers   map[DeliveryType]decimal.Decimal `json:"delivery_type_multipliers,omitempty"`
	AccidentRecoverySurcharge *decimal.Decimal                 `json:"accident_recovery_surcharge,omitempty"`
	ExpeditedThresholdDays    *int                             `json:"expedited_threshold_days,omitempty"`
}

// IsEmpty возвращает true, если обновление не затрагивает ни одного поля.
func (u *PricingConfigUpdate) IsEmpty() bool {
	return u.CurrentFuelPrice == nil &&
		u.MinQuote == nil &&
		u.SurgeEnabled == nil &&
		u.SurgeMultiplier == nil &&
		u.BaseRatePerMile == nil &&
		u.VehicleTypeMultipliers == nil &&
		u.DeliveryTypeMultipliers == nil &&
		u.AccidentRecoverySurcharge == nil &&
		u.ExpeditedThresholdDays == nil
}

// Validate проверяет домены всех заданных полей. Ошибки оборачивают ErrValidation,
// чтобы обработчик мог отличить их от внутренних ошибок.
func (u *PricingConfigUpdate) Validate() error {
	if u.CurrentFuelPrice != nil && !u.CurrentFuelPrice.IsPositive() {
		return fmt.Errorf("%w: current_fuel_price must be greater than zero", ErrValidation)
	}
	if u.MinQuote != nil && u.MinQuote.IsNegative() {
		return fmt.Errorf("%w: min_quote must not be negative", ErrValidation)
	}
	if u.SurgeMultiplier != nil && u.SurgeMultiplier.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: surge_multiplier must be at least 1", ErrValidation)
	}
	if u.BaseRatePerMile != nil && !u.BaseRatePerMile.IsPositive() {
		return fmt.Errorf("%w: base_rate_per_mile must be greater than zero", ErrValidation)
	}
	for vt, m := range u.VehicleTypeMultipliers {
		if !m.IsPositive() {
			return fmt.Errorf("%w: vehicle_type_multipliers[%s] must be greater than zero", ErrValidation, vt)
		}
	}
	for dt, m := range u.DeliveryTypeMultipliers {
		if !m.IsPositive() {
			return fmt.Errorf("%w: delivery_type_multipliers[%s] must be greater than zero", ErrValidation, dt)
		}
	}
	if u.AccidentRecoverySurcharge != nil && u.AccidentRecoverySurcharge.IsNegative() {
		return fmt.Errorf("%w: accident_recovery_surcharge must not be negative", ErrValidation)
	}
	if u.ExpeditedThresholdDays != nil && *u.ExpeditedThresholdDays <= 0 {
		return fmt.Errorf("%w: expedited_threshold_days must be greater than zero", ErrValidation)
	}
	return nil
}

// ApplyUpdate применяет частичное обновление к копии конфигурации и возвращает
// новую конфигурацию вместе со списком реально изменившихся полей и их
// старыми/новыми значениями (для строки истории). Поля, значение которых не
// отличается от текущего, в diff не попадают.
func (c *PricingConfig) ApplyUpdate(u PricingConfigUpdate) (PricingConfig, []string, map[string]interface{}, map[string]interface{}) {
	merged := *c
	changed := make([]string, 0, 4)
	prev := make(map[string]interface{})
	next := make(map[string]interface{})

	record := func(field string, oldVal, newVal interface{}) {
		changed = append(changed, field)
		prev[field] = oldVal
		next[field] = newVal
	}

	if u.CurrentFuelPrice != nil && !u.CurrentFuelPrice.Equal(c.CurrentFuelPrice) {
		record("current_fuel_price", c.CurrentFuelPrice, *u.CurrentFuelPrice)
		merged.CurrentFuelPrice = *u.CurrentFuelPrice
	}
	if u.MinQuote != nil && !u.MinQuote.Equal(c.MinQuote) {
		record("min_quote", c.MinQuote, *u.MinQuote)
		merged.MinQuote = *u.MinQuote
	}
	if u.SurgeEnabled != nil && *u.SurgeEnabled != c.SurgeEnabled {
		record("surge_enabled", c.SurgeEnabled, *u.SurgeEnabled)
		merged.SurgeEnabled = *u.SurgeEnabled
	}
	if u.SurgeMultiplier != nil && !u.SurgeMultiplier.Equal(c.SurgeMultiplier) {
		record("surge_multiplier", c.SurgeMultiplier, *u.SurgeMultiplier)
		merged.SurgeMultiplier = *u.SurgeMultiplier
	}
	if u.BaseRatePerMile != nil && !u.BaseRatePerMile.Equal(c.BaseRatePerMile) {
		record("base_rate_per_mile", c.BaseRatePerMile, *u.BaseRatePerMile)
		merged.BaseRatePerMile = *u.BaseRatePerMile
	}
	if u.VehicleTypeMultipliers != nil && !vehicleMultipliersEqual(c.VehicleTypeMultipliers, u.VehicleTypeMultipliers) {
		record("vehicle_type_multipliers", c.VehicleTypeMultipliers, u.VehicleTypeMultipliers)
		merged.VehicleTypeMultipliers = u.VehicleTypeMultipliers
	}
	if u.DeliveryTypeMultipliers != nil && !deliveryMultipliersEqual(c.DeliveryTypeMultipliers, u.DeliveryTypeMultipliers) {
		record("delivery_type_multipliers", c.DeliveryTypeMultipliers, u.DeliveryTypeMultipliers)
		merged.DeliveryTypeMultipliers = u.DeliveryTypeMultipliers
	}
	if u.AccidentRecoverySurcharge != nil && !u.AccidentRecoverySurcharge.Equal(c.AccidentRecoverySurcharge) {
		record("accident_recovery_surcharge", c.AccidentRecoverySurcharge, *u.AccidentRecoverySurcharge)
		merged.AccidentRecoverySurcharge = *u.AccidentRecoverySurcharge
	}
	if u.ExpeditedThresholdDays != nil && *u.ExpeditedThresholdDays != c.ExpeditedThresholdDays {
		record("expedited_threshold_days", c.ExpeditedThresholdDays, *u.ExpeditedThresholdDays)
		merged.ExpeditedThresholdDays = *u.ExpeditedThresholdDays
	}

	return merged, changed, prev, next
}

// Сравнение decimal внутри map через Equal, а не DeepEqual:
// одинаковые значения могут иметь разные экспоненты (1.5 vs 1.50).
func vehicleMultipliersEqual(a, b map[VehicleType]decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}

func deliveryMultipliersEqual(a, b map[DeliveryType]decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}
