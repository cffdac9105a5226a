package events

import (
	"github.com/Rob-Negrete/dura-gas/internal/config"
	. "github.com/Rob-Negrete/dura-gas/internal/core/domain"
)

// SnapshotToUpdateEvents maps a refresh snapshot to the sensor update
// events to publish. Pointer fields that are nil produce clearing events
// so stale retained values do not linger.
func SnapshotToUpdateEvents(snap Snapshot, data TankData, price float64, tank config.TankConfig, solar config.SolarConfig) []SensorUpdateEvent {

	var updateEvents []SensorUpdateEvent

	addFloat := func(id string, value float64, decimals uint) {
		updateEvents = append(updateEvents, FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: id},
			Value:                  value,
			Decimals:               decimals,
		})
	}
	addOptFloat := func(id string, value *float64, decimals uint) {
		if value != nil {
			addFloat(id, *value, decimals)
			return
		}
		updateEvents = append(updateEvents, TextSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: id},
			Value:                  "",
		})
	}

	// tank state
	addFloat(SENSOR_ID_TANK_LEVEL, snap.Tank.CurrentLevel, 1)
	addFloat(SENSOR_ID_TANK_LITERS, snap.Tank.CurrentLiters, 1)
	addFloat(SENSOR_ID_TANK_KILOGRAMS, snap.Tank.CurrentKg, 2)
	addFloat(SENSOR_ID_TANK_VALUE, snap.Tank.CurrentValue, 2)

	// consumption
	addFloat(SENSOR_ID_DAILY_CONSUMPTION, snap.Consumption.Daily, 2)
	addFloat(SENSOR_ID_MONTHLY_CONSUMPTION, snap.Consumption.Monthly, 1)
	addFloat(SENSOR_ID_DAYS_SINCE_REFILL, float64(snap.Consumption.DaysSinceRefill), 0)
	addFloat(SENSOR_ID_LITERS_CONSUMED, snap.Consumption.LitersConsumed, 1)

	// projection
	addOptFloat(SENSOR_ID_DAYS_REMAINING, snap.Projection.DaysRemaining, 1)
	addOptFloat(SENSOR_ID_WEEKS_REMAINING, snap.Projection.WeeksRemaining, 1)
	updateEvents = append(updateEvents, TimestampSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SENSOR_ID_NEXT_REFILL_DATE},
		Value:                  snap.Projection.NextRefillDate,
	})
	addFloat(SENSOR_ID_RECOMMENDED_LITERS, snap.Projection.RecommendedLiters, 1)
	addFloat(SENSOR_ID_RECOMMENDED_COST, snap.Projection.RecommendedCost, 2)
	addFloat(SENSOR_ID_RESULTING_LEVEL, snap.Projection.ResultingLevel, 1)

	// last refill
	updateEvents = append(updateEvents, TimestampSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SENSOR_ID_LAST_REFILL_DATE},
		Value:                  snap.LastRefill.Date,
	})
	addOptFloat(SENSOR_ID_LAST_REFILL_LITERS, snap.LastRefill.Liters, 1)
	addOptFloat(SENSOR_ID_LAST_REFILL_COST, snap.LastRefill.TotalCost, 2)

	// strategy
	addFloat(SENSOR_ID_MONTHLY_COST, snap.Strategy.MonthlyCost, 2)
	addFloat(SENSOR_ID_REFILLS_PER_MONTH, snap.Strategy.RefillsPerMonth, 2)
	addFloat(SENSOR_ID_VS_CYLINDERS, snap.Strategy.VsCylinders, 2)
	addFloat(SENSOR_ID_PRICE_TRACKING, price, 2)

	// solar
	if snap.Solar != nil {
		addFloat(SENSOR_ID_SOLAR_EFFICIENCY_REAL, snap.Solar.EfficiencyReal, 1)
		addFloat(SENSOR_ID_SOLAR_SAVINGS_MONTHLY, snap.Solar.SavingsMonthly, 2)
		addFloat(SENSOR_ID_SOLAR_ROI_ACCUMULATED, snap.Solar.ROIAccumulated, 2)
		addFloat(SENSOR_ID_HOT_WATER_CONSUMPTION, snap.Solar.HotWaterConsumption, 2)
		updateEvents = append(updateEvents, TextSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SENSOR_ID_HEATING_MODE},
			Value:                  string(snap.Solar.HeatingMode),
		})
		updateEvents = append(updateEvents, TextSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SENSOR_ID_SOLAR_INSTALL_DATE},
			Value:                  solar.InstallationDate,
		})
		solarActive := snap.Solar.HeatingMode != HeatingModeGasOnly
		updateEvents = append(updateEvents, BinarySensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: BINARY_SENSOR_ID_SOLAR_ACTIVE},
			Value:                  solarActive,
		})
	}

	// alerts
	updateEvents = append(updateEvents, BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: BINARY_SENSOR_ID_LOW_LEVEL},
		Value:                  snap.Tank.CurrentLevel < tank.LowThreshold,
	})
	updateEvents = append(updateEvents, BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: BINARY_SENSOR_ID_REFILL_RECOMMEND},
		Value:                  snap.Tank.CurrentLevel < tank.RefillThreshold,
	})

	// controls reflect the stored state back to HA
	updateEvents = append(updateEvents, SelectSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SELECT_ID_REFILL_STRATEGY},
		Value:                  string(data.RefillStrategy),
	})
	updateEvents = append(updateEvents, SelectSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: SELECT_ID_HEATING_MODE},
		Value:                  string(data.HeatingMode),
	})
	updateEvents = append(updateEvents, InputNumberSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: INPUT_NUMBER_ID_TANK_LEVEL},
		Value:                  snap.Tank.CurrentLevel,
		Decimals:               1,
	})
	updateEvents = append(updateEvents, InputNumberSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: INPUT_NUMBER_ID_GAS_PRICE},
		Value:                  price,
		Decimals:               2,
	})
	customAmount := data.CustomStrategyAmount
	if customAmount <= 0 {
		customAmount = DefaultCustomStrategyAmount
	}
	updateEvents = append(updateEvents, InputNumberSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{Id: INPUT_NUMBER_ID_CUSTOM_AMOUNT},
		Value:                  customAmount,
		Decimals:               0,
	})

	return updateEvents
}
