package events

import (
	"testing"
	"time"

	"github.com/Rob-Negrete/dura-gas/internal/config"
	"github.com/Rob-Negrete/dura-gas/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(withSolar bool) domain.Snapshot {
	days := 12.8
	weeks := 1.8
	next := time.Date(2025, 1, 28, 0, 0, 0, 0, time.UTC)
	snap := domain.Snapshot{
		Tank: domain.TankState{
			Capacity:       120,
			UsableCapacity: 96,
			CurrentLevel:   50,
			CurrentLiters:  48,
			CurrentKg:      24.49,
			CurrentValue:   522.24,
		},
		Consumption: domain.ConsumptionStats{
			Daily:           3.76,
			Monthly:         112.9,
			DaysSinceRefill: 10,
			LitersConsumed:  37.63,
		},
		Projection: domain.Projection{
			DaysRemaining:     &days,
			WeeksRemaining:    &weeks,
			NextRefillDate:    &next,
			RecommendedLiters: 48,
			RecommendedCost:   522.24,
			ResultingLevel:    100,
		},
		Strategy: domain.StrategyAnalysis{
			Current:         domain.StrategyFillComplete,
			MonthlyCost:     1228.35,
			RefillsPerMonth: 2.35,
			VsCylinders:     -644.35,
		},
	}
	if withSolar {
		payback := 91.2
		snap.Solar = &domain.SolarEstimate{
			EfficiencyReal:      70,
			SavingsMonthly:      274.18,
			ROIAccumulated:      548.36,
			ROIPercentage:       2.19,
			MonthsToPayback:     &payback,
			HotWaterConsumption: 1.5,
			HeatingMode:         domain.HeatingModeSolarGasHybrid,
		}
	}
	return snap
}

func eventById(t *testing.T, evs []domain.SensorUpdateEvent, id string) domain.SensorUpdateEvent {
	t.Helper()
	for _, ev := range evs {
		if ev.SensorId() == id {
			return ev
		}
	}
	require.Failf(t, "missing event", "no event for sensor %s", id)
	return nil
}

func TestSnapshotToUpdateEvents(t *testing.T) {
	tank := config.TankConfig{LowThreshold: 20, RefillThreshold: 30}
	data := domain.TankData{
		RefillStrategy: domain.StrategyFillComplete,
		HeatingMode:    domain.HeatingModeSolarGasHybrid,
	}

	solar := config.SolarConfig{Enable: true, InstallationDate: "2024-03-15"}
	evs := SnapshotToUpdateEvents(testSnapshot(true), data, 10.88, tank, solar)

	level := eventById(t, evs, SENSOR_ID_TANK_LEVEL).(domain.FloatSensorUpdateEvent)
	assert.Equal(t, 50.0, level.Value)
	assert.Equal(t, uint(1), level.Decimals)

	days := eventById(t, evs, SENSOR_ID_DAYS_REMAINING).(domain.FloatSensorUpdateEvent)
	assert.Equal(t, 12.8, days.Value)

	next := eventById(t, evs, SENSOR_ID_NEXT_REFILL_DATE).(domain.TimestampSensorUpdateEvent)
	require.NotNil(t, next.Value)
	assert.Equal(t, 2025, next.Value.Year())

	price := eventById(t, evs, SENSOR_ID_PRICE_TRACKING).(domain.FloatSensorUpdateEvent)
	assert.Equal(t, 10.88, price.Value)

	mode := eventById(t, evs, SENSOR_ID_HEATING_MODE).(domain.TextSensorUpdateEvent)
	assert.Equal(t, "solar_gas_hybrid", mode.Value)

	active := eventById(t, evs, BINARY_SENSOR_ID_SOLAR_ACTIVE).(domain.BinarySensorUpdateEvent)
	assert.True(t, active.Value)

	installed := eventById(t, evs, SENSOR_ID_SOLAR_INSTALL_DATE).(domain.TextSensorUpdateEvent)
	assert.Equal(t, "2024-03-15", installed.Value)

	strategy := eventById(t, evs, SELECT_ID_REFILL_STRATEGY).(domain.SelectSensorUpdateEvent)
	assert.Equal(t, "fill_complete", strategy.Value)

	amount := eventById(t, evs, INPUT_NUMBER_ID_CUSTOM_AMOUNT).(domain.InputNumberSensorUpdateEvent)
	assert.Equal(t, float64(domain.DefaultCustomStrategyAmount), amount.Value)
}

func TestSnapshotToUpdateEventsAlerts(t *testing.T) {
	tank := config.TankConfig{LowThreshold: 20, RefillThreshold: 30}
	snap := testSnapshot(false)
	snap.Tank.CurrentLevel = 15

	evs := SnapshotToUpdateEvents(snap, domain.TankData{}, 10.88, tank, config.SolarConfig{})

	low := eventById(t, evs, BINARY_SENSOR_ID_LOW_LEVEL).(domain.BinarySensorUpdateEvent)
	assert.True(t, low.Value)
	refill := eventById(t, evs, BINARY_SENSOR_ID_REFILL_RECOMMEND).(domain.BinarySensorUpdateEvent)
	assert.True(t, refill.Value)
}

func TestSnapshotToUpdateEventsNilProjection(t *testing.T) {
	tank := config.TankConfig{LowThreshold: 20, RefillThreshold: 30}
	snap := testSnapshot(false)
	snap.Projection.DaysRemaining = nil
	snap.Projection.WeeksRemaining = nil
	snap.Projection.NextRefillDate = nil

	evs := SnapshotToUpdateEvents(snap, domain.TankData{}, 10.88, tank, config.SolarConfig{})

	days := eventById(t, evs, SENSOR_ID_DAYS_REMAINING).(domain.TextSensorUpdateEvent)
	assert.Equal(t, "", days.Value)
	next := eventById(t, evs, SENSOR_ID_NEXT_REFILL_DATE).(domain.TimestampSensorUpdateEvent)
	assert.Nil(t, next.Value)

	// no solar estimate, no solar sensors
	for _, ev := range evs {
		assert.NotEqual(t, SENSOR_ID_SOLAR_SAVINGS_MONTHLY, ev.SensorId())
	}
}

func TestSensorCatalog(t *testing.T) {
	device := TankDevice("duragas")

	withSolar := TankSensors(device, true)
	withoutSolar := TankSensors(device, false)
	assert.Len(t, withSolar, len(withoutSolar)+len(solarSensorSpecs))

	seen := map[string]bool{}
	for _, s := range withSolar {
		assert.False(t, seen[s.UniqueId], "duplicate unique id %s", s.UniqueId)
		seen[s.UniqueId] = true
		assert.Equal(t, SENSOR_TYPE_SENSOR, s.SensorType)
	}

	assert.Len(t, TankBinarySensors(device, true), 3)
	assert.Len(t, TankBinarySensors(device, false), 2)
	assert.Len(t, TankSelects(device, true), 2)
	assert.Len(t, TankSelects(device, false), 1)
	assert.Len(t, TankInputNumbers(device, 65, 10.88), 3)
}
