package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	. "github.com/Rob-Negrete/dura-gas/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE            = "bridge"
	SENSOR_ID_TANK_LEVEL              = "tank_level"
	SENSOR_ID_TANK_LITERS             = "tank_liters"
	SENSOR_ID_TANK_KILOGRAMS          = "tank_kilograms"
	SENSOR_ID_TANK_VALUE              = "tank_value"
	SENSOR_ID_DAILY_CONSUMPTION       = "daily_consumption"
	SENSOR_ID_MONTHLY_CONSUMPTION     = "monthly_consumption"
	SENSOR_ID_DAYS_SINCE_REFILL       = "days_since_refill"
	SENSOR_ID_LITERS_CONSUMED         = "liters_consumed"
	SENSOR_ID_DAYS_REMAINING          = "days_remaining"
	SENSOR_ID_WEEKS_REMAINING         = "weeks_remaining"
	SENSOR_ID_NEXT_REFILL_DATE        = "next_refill_date"
	SENSOR_ID_RECOMMENDED_LITERS      = "recommended_liters"
	SENSOR_ID_RECOMMENDED_COST        = "recommended_cost"
	SENSOR_ID_RESULTING_LEVEL         = "resulting_level"
	SENSOR_ID_LAST_REFILL_DATE        = "last_refill_date"
	SENSOR_ID_LAST_REFILL_LITERS      = "last_refill_liters"
	SENSOR_ID_LAST_REFILL_COST        = "last_refill_cost"
	SENSOR_ID_MONTHLY_COST            = "monthly_cost"
	SENSOR_ID_REFILLS_PER_MONTH       = "refills_per_month"
	SENSOR_ID_VS_CYLINDERS            = "vs_cylinders"
	SENSOR_ID_PRICE_TRACKING          = "price_per_liter_tracking"
	SENSOR_ID_SOLAR_EFFICIENCY_REAL   = "solar_efficiency_real"
	SENSOR_ID_SOLAR_SAVINGS_MONTHLY   = "solar_savings_monthly"
	SENSOR_ID_SOLAR_ROI_ACCUMULATED   = "solar_roi_accumulated"
	SENSOR_ID_SOLAR_INSTALL_DATE      = "solar_installation_date"
	SENSOR_ID_HOT_WATER_CONSUMPTION   = "hot_water_consumption"
	SENSOR_ID_HEATING_MODE            = "heating_mode"
	BINARY_SENSOR_ID_LOW_LEVEL        = "low_level"
	BINARY_SENSOR_ID_REFILL_RECOMMEND = "refill_recommended"
	BINARY_SENSOR_ID_SOLAR_ACTIVE     = "solar_active"
	SELECT_ID_HEATING_MODE            = "heating_mode_select"
	SELECT_ID_REFILL_STRATEGY         = "refill_strategy"
	INPUT_NUMBER_ID_TANK_LEVEL        = "tank_level_set"
	INPUT_NUMBER_ID_GAS_PRICE         = "gas_price"
	INPUT_NUMBER_ID_CUSTOM_AMOUNT     = "custom_strategy_amount"
	STATE_CLASS_MEASUREMENT           = "measurement"
	STATE_CLASS_TOTAL                 = "total"
	STATE_CLASS_TOTAL_INCREASING      = "total_increasing"
	DEVICE_CLASS_MONETARY             = "monetary"
	DEVICE_CLASS_TIMESTAMP            = "timestamp"
	DEVICE_CLASS_PROBLEM              = "problem"
	DEVICE_CLASS_RUNNING              = "running"
	DEVICE_CLASS_CONNECTIVITY         = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC           = "diagnostic"
	SENSOR_TYPE_SENSOR                = "sensor"
	SENSOR_TYPE_BINARY                = "binary_sensor"
	INPUT_NUMBER_MODE_BOX             = "box"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("duragas_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "DuraGas",
		Model:        "DuraGas Bridge",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("DuraGas %s", md5HashShort(baseTopic)),
	}
}

func TankDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("duragas_tank_%s", md5HashShort(baseTopic)),
		Manufacturer: "DuraGas",
		Model:        "LP Gas Tank",
		Version:      versioninfo.Short(),
		Name:         "DuraGas Tank Monitor",
	}
}

type sensorSpec struct {
	id          string
	name        string
	unit        string
	stateClass  string
	deviceClass string
	category    string
	icon        string
}

var tankSensorSpecs = []sensorSpec{
	// tank state
	{id: SENSOR_ID_TANK_LEVEL, name: "Tank level", unit: "%", stateClass: STATE_CLASS_MEASUREMENT, icon: "mdi:propane-tank"},
	{id: SENSOR_ID_TANK_LITERS, name: "Tank liters", unit: "L", stateClass: STATE_CLASS_MEASUREMENT, icon: "mdi:propane-tank"},
	{id: SENSOR_ID_TANK_KILOGRAMS, name: "Tank kilograms", unit: "kg", stateClass: STATE_CLASS_MEASUREMENT, icon: "mdi:weight-kilogram"},
	{id: SENSOR_ID_TANK_VALUE, name: "Tank value", unit: "MXN", stateClass: STATE_CLASS_TOTAL, deviceClass: DEVICE_CLASS_MONETARY, icon: "mdi:cash"},
	// consumption
	{id: SENSOR_ID_DAILY_CONSUMPTION, name: "Daily consumption", unit: "L/day", stateClass: STATE_CLASS_MEASUREMENT, icon: "mdi:fire"},
	{id: SENSOR_ID_MONTHLY_CONSUMPTION, name: "Monthly consumption", unit: "L/month", stateClass: STATE_CLASS_MEASUREMENT, icon: "mdi:calendar-month"},
	{id: SENSOR_ID_DAYS_SINCE_REFILL, name: "Days since refill", unit: "d", icon: "mdi:calendar-clock"},
	{id: SENSOR_ID_LITERS_CONSUMED, name: "Liters consumed", unit: "L", stateClass: STATE_CLASS_TOTAL_INCREASING, icon: "mdi:counter"},
	// projection
	{id: SENSOR_ID_DAYS_REMAINING, name: "Days remaining", unit: "d", icon: "mdi:calendar-arrow-right"},
	{id: SENSOR_ID_WEEKS_REMAINING, name: "Weeks remaining", unit: "weeks", icon: "mdi:calendar-week"},
	{id: SENSOR_ID_NEXT_REFILL_DATE, name: "Next refill date", deviceClass: DEVICE_CLASS_TIMESTAMP, icon: "mdi:calendar-alert"},
	{id: SENSOR_ID_RECOMMENDED_LITERS, name: "Recommended liters", unit: "L", icon: "mdi:gas-station"},
	{id: SENSOR_ID_RECOMMENDED_COST, name: "Recommended cost", unit: "MXN", deviceClass: DEVICE_CLASS_MONETARY, icon: "mdi:cash-plus"},
	{id: SENSOR_ID_RESULTING_LEVEL, name: "Resulting level", unit: "%", icon: "mdi:propane-tank-outline"},
	// last refill
	{id: SENSOR_ID_LAST_REFILL_DATE, name: "Last refill date", deviceClass: DEVICE_CLASS_TIMESTAMP, icon: "mdi:calendar-check"},
	{id: SENSOR_ID_LAST_REFILL_LITERS, name: "Last refill liters", unit: "L", icon: "mdi:gas-station"},
	{id: SENSOR_ID_LAST_REFILL_COST, name: "Last refill cost", unit: "MXN", deviceClass: DEVICE_CLASS_MONETARY, icon: "mdi:cash"},
	// strategy
	{id: SENSOR_ID_MONTHLY_COST, name: "Monthly cost", unit: "MXN/month", stateClass: STATE_CLASS_TOTAL, deviceClass: DEVICE_CLASS_MONETARY, icon: "mdi:cash-multiple"},
	{id: SENSOR_ID_REFILLS_PER_MONTH, name: "Refills per month", unit: "refills/month", stateClass: STATE_CLASS_MEASUREMENT, icon: "mdi:counter"},
	{id: SENSOR_ID_VS_CYLINDERS, name: "Savings vs cylinders", unit: "MXN/month", stateClass: STATE_CLASS_TOTAL, deviceClass: DEVICE_CLASS_MONETARY, icon: "mdi:compare-horizontal"},
	// no monetary device class: keeps measurement state class for graphing
	{id: SENSOR_ID_PRICE_TRACKING, name: "Price per liter", unit: "MXN/L", stateClass: STATE_CLASS_MEASUREMENT, category: ENTITY_CLASS_DIAGNOSTIC, icon: "mdi:chart-line-variant"},
}

var solarSensorSpecs = []sensorSpec{
	{id: SENSOR_ID_SOLAR_EFFICIENCY_REAL, name: "Solar efficiency", unit: "%", stateClass: STATE_CLASS_MEASUREMENT, icon: "mdi:solar-power"},
	{id: SENSOR_ID_SOLAR_SAVINGS_MONTHLY, name: "Solar savings monthly", unit: "MXN/month", stateClass: STATE_CLASS_MEASUREMENT, deviceClass: DEVICE_CLASS_MONETARY, icon: "mdi:piggy-bank"},
	{id: SENSOR_ID_SOLAR_ROI_ACCUMULATED, name: "Solar ROI accumulated", unit: "MXN", stateClass: STATE_CLASS_TOTAL, deviceClass: DEVICE_CLASS_MONETARY, icon: "mdi:chart-line"},
	{id: SENSOR_ID_HOT_WATER_CONSUMPTION, name: "Hot water consumption", unit: "L/day", stateClass: STATE_CLASS_MEASUREMENT, icon: "mdi:water-thermometer"},
	{id: SENSOR_ID_HEATING_MODE, name: "Heating mode", icon: "mdi:water-boiler"},
	{id: SENSOR_ID_SOLAR_INSTALL_DATE, name: "Solar installation date", category: ENTITY_CLASS_DIAGNOSTIC, icon: "mdi:calendar-star"},
}

func TankSensors(tankDevice Device, hasSolar bool) []GenericSensor {
	specs := tankSensorSpecs
	if hasSolar {
		specs = append(append([]sensorSpec{}, specs...), solarSensorSpecs...)
	}

	var sensors []GenericSensor
	for _, spec := range specs {
		sensors = append(sensors, GenericSensor{
			Device:            tankDevice,
			Id:                spec.id,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              spec.name,
			UnitOfMeasurement: spec.unit,
			StateClass:        spec.stateClass,
			DeviceClass:       spec.deviceClass,
			EntityCategory:    spec.category,
			Icon:              spec.icon,
			UniqueId:          uniqueId(tankDevice.Id, spec.id),
		})
	}
	return sensors
}

func TankBinarySensors(tankDevice Device, hasSolar bool) []GenericSensor {

	var sensors []GenericSensor

	// Low level alert
	sensors = append(sensors, GenericSensor{
		Device:      tankDevice,
		Id:          BINARY_SENSOR_ID_LOW_LEVEL,
		SensorType:  SENSOR_TYPE_BINARY,
		Name:        "Low level",
		DeviceClass: DEVICE_CLASS_PROBLEM,
		Icon:        "mdi:alert",
		UniqueId:    uniqueId(tankDevice.Id, BINARY_SENSOR_ID_LOW_LEVEL),
	})

	// Refill recommended
	sensors = append(sensors, GenericSensor{
		Device:      tankDevice,
		Id:          BINARY_SENSOR_ID_REFILL_RECOMMEND,
		SensorType:  SENSOR_TYPE_BINARY,
		Name:        "Refill recommended",
		DeviceClass: DEVICE_CLASS_PROBLEM,
		Icon:        "mdi:gas-station",
		UniqueId:    uniqueId(tankDevice.Id, BINARY_SENSOR_ID_REFILL_RECOMMEND),
	})

	if hasSolar {
		// Solar heating active
		sensors = append(sensors, GenericSensor{
			Device:      tankDevice,
			Id:          BINARY_SENSOR_ID_SOLAR_ACTIVE,
			SensorType:  SENSOR_TYPE_BINARY,
			Name:        "Solar active",
			DeviceClass: DEVICE_CLASS_RUNNING,
			Icon:        "mdi:solar-power-variant",
			UniqueId:    uniqueId(tankDevice.Id, BINARY_SENSOR_ID_SOLAR_ACTIVE),
		})
	}

	return sensors
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {

	var sensors []GenericSensor

	// Bridge connection state
	sensors = append(sensors, GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	})

	return sensors
}

func TankSelects(tankDevice Device, hasSolar bool) []GenericSelect {

	var selects []GenericSelect

	if hasSolar {
		selects = append(selects, GenericSelect{
			Device:   tankDevice,
			Id:       SELECT_ID_HEATING_MODE,
			Name:     "Heating mode",
			UniqueId: uniqueId(tankDevice.Id, SELECT_ID_HEATING_MODE),
			Icon:     "mdi:water-boiler",
			Options: []string{
				string(HeatingModeSolarGasHybrid),
				string(HeatingModeSolarOnly),
				string(HeatingModeGasOnly),
				string(HeatingModeNone),
			},
		})
	}

	selects = append(selects, GenericSelect{
		Device:   tankDevice,
		Id:       SELECT_ID_REFILL_STRATEGY,
		Name:     "Refill strategy",
		UniqueId: uniqueId(tankDevice.Id, SELECT_ID_REFILL_STRATEGY),
		Icon:     "mdi:strategy",
		Options: []string{
			string(StrategyFillComplete),
			string(StrategyFixed300),
			string(StrategyFixed400),
			string(StrategyFixed500),
			string(StrategyFixed600),
			string(StrategyLevel50),
			string(StrategyLevel60),
			string(StrategyLevel70),
			string(StrategyCustom),
		},
	})

	return selects
}

func TankInputNumbers(tankDevice Device, initialLevel, pricePerLiter float64) []GenericInputNumber {

	var inputNumbers []GenericInputNumber

	// Tank level correction
	inputNumbers = append(inputNumbers, GenericInputNumber{
		Device:       tankDevice,
		Id:           INPUT_NUMBER_ID_TANK_LEVEL,
		Name:         "Tank level",
		UniqueId:     uniqueId(tankDevice.Id, INPUT_NUMBER_ID_TANK_LEVEL),
		Icon:         "mdi:propane-tank",
		Max:          100,
		Min:          0,
		Step:         0.5,
		Mode:         INPUT_NUMBER_MODE_BOX,
		InitialValue: initialLevel,
	})

	// Gas price
	inputNumbers = append(inputNumbers, GenericInputNumber{
		Device:       tankDevice,
		Id:           INPUT_NUMBER_ID_GAS_PRICE,
		Name:         "Gas price",
		UniqueId:     uniqueId(tankDevice.Id, INPUT_NUMBER_ID_GAS_PRICE),
		Icon:         "mdi:currency-usd",
		Max:          20,
		Min:          8,
		Step:         0.01,
		Mode:         INPUT_NUMBER_MODE_BOX,
		InitialValue: pricePerLiter,
	})

	// Custom strategy amount
	inputNumbers = append(inputNumbers, GenericInputNumber{
		Device:       tankDevice,
		Id:           INPUT_NUMBER_ID_CUSTOM_AMOUNT,
		Name:         "Custom strategy amount",
		UniqueId:     uniqueId(tankDevice.Id, INPUT_NUMBER_ID_CUSTOM_AMOUNT),
		Icon:         "mdi:cash-edit",
		Max:          2000,
		Min:          100,
		Step:         50,
		Mode:         INPUT_NUMBER_MODE_BOX,
		InitialValue: DefaultCustomStrategyAmount,
	})

	return inputNumbers
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}
