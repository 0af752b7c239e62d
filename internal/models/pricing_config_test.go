package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyUpdate_RecordsOnlyChangedFields(t *testing.T) {
	cfg := DefaultPricingConfig()
	newFuelPrice := decimal.NewFromFloat(4.25)
	sameMinQuote := cfg.MinQuote
	upd := PricingConfigUpdate{
		CurrentFuelPrice: &newFuelPrice,
		MinQuote:         &sameMinQuote, // то же значение, в diff попасть не должно
	}

	merged, changed, prev, next := cfg.ApplyUpdate(upd)

	assert.Equal(t, []string{"current_fuel_price"}, changed)
	assert.True(t, merged.CurrentFuelPrice.Equal(newFuelPrice))
	assert.True(t, merged.MinQuote.Equal(cfg.MinQuote))

	prevVal, ok := prev["current_fuel_price"].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, prevVal.Equal(decimal.NewFromFloat(3.95)))
	nextVal, ok := next["current_fuel_price"].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, nextVal.Equal(newFuelPrice))
}

func TestApplyUpdate_DecimalScaleDoesNotCount(t *testing.T) {
	cfg := DefaultPricingConfig()
	// 1.750 и 1.75 - одно значение с разной экспонентой
	sameRate := decimal.RequireFromString("1.750")
	upd := PricingConfigUpdate{BaseRatePerMile: &sameRate}

	_, changed, _, _ := cfg.ApplyUpdate(upd)
	assert.Empty(t, changed)
}

func TestApplyUpdate_MapReplacement(t *testing.T) {
	cfg := DefaultPricingConfig()

	sameMultipliers := map[VehicleType]decimal.Decimal{}
	for k, v := range cfg.VehicleTypeMultipliers {
		sameMultipliers[k] = v
	}

	_, changed, _, _ := cfg.ApplyUpdate(PricingConfigUpdate{VehicleTypeMultipliers: sameMultipliers})
	assert.Empty(t, changed, "identical map must not be recorded as a change")

	sameMultipliers[VehicleTypeSedan] = decimal.NewFromFloat(1.05)
	merged, changed, _, _ := cfg.ApplyUpdate(PricingConfigUpdate{VehicleTypeMultipliers: sameMultipliers})
	assert.Equal(t, []string{"vehicle_type_multipliers"}, changed)
	assert.True(t, merged.VehicleTypeMultipliers[VehicleTypeSedan].Equal(decimal.NewFromFloat(1.05)))
}

func TestApplyUpdate_DoesNotMutateReceiver(t *testing.T) {
	cfg := DefaultPricingConfig()
	original := cfg.CurrentFuelPrice

	newFuelPrice := decimal.NewFromFloat(9.99)
	cfg.ApplyUpdate(PricingConfigUpdate{CurrentFuelPrice: &newFuelPrice})

	assert.True(t, cfg.CurrentFuelPrice.Equal(original))
}

func TestPricingConfigUpdate_IsEmpty(t *testing.T) {
	assert.True(t, (&PricingConfigUpdate{}).IsEmpty())

	enabled := true
	assert.False(t, (&PricingConfigUpdate{SurgeEnabled: &enabled}).IsEmpty())
}

func TestPricingConfigUpdate_Validate(t *testing.T) {
	negative := decimal.NewFromInt(-1)
	zero := decimal.Zero
	belowOne := decimal.NewFromFloat(0.9)
	badThreshold := 0

	testCases := []struct {
		name string
		upd  PricingConfigUpdate
	}{
		{"non-positive fuel price", PricingConfigUpdate{CurrentFuelPrice: &zero}},
		{"negative min quote", PricingConfigUpdate{MinQuote: &negative}},
		{"surge multiplier below one", PricingConfigUpdate{SurgeMultiplier: &belowOne}},
		{"non-positive base rate", PricingConfigUpdate{BaseRatePerMile: &zero}},
		{"non-positive vehicle multiplier", PricingConfigUpdate{
			VehicleTypeMultipliers: map[VehicleType]decimal.Decimal{VehicleTypeSedan: zero},
		}},
		{"non-positive delivery multiplier", PricingConfigUpdate{
			DeliveryTypeMultipliers: map[DeliveryType]decimal.Decimal{DeliveryTypeExpedited: negative},
		}},
		{"negative surcharge", PricingConfigUpdate{AccidentRecoverySurcharge: &negative}},
		{"non-positive threshold", PricingConfigUpdate{ExpeditedThresholdDays: &badThreshold}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.upd.Validate(), ErrValidation)
		})
	}

	valid := decimal.NewFromFloat(4.25)
	assert.NoError(t, (&PricingConfigUpdate{CurrentFuelPrice: &valid}).Validate())
}
