package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LP gas density conversion (liters per kg)
const LPGasKgToLiters = 1.96

// Baseline monthly cost of cylinder exchange (29kg @ 20.15 MXN/kg)
const CylinderMonthlyCost = 584.0

// Fraction of gas consumption assumed to go to water heating
const WaterHeatingBaseFraction = 0.40

type Config struct {
	LogLevel zapcore.Level
	MQTT     MQTTConfig `mapstructure:"mqtt"`

	TankConfig    TankConfig    `mapstructure:"tank"`
	SolarConfig   SolarConfig   `mapstructure:"solar"`
	MonitorConfig MonitorConfig `mapstructure:"monitor"`
	StorageConfig StorageConfig `mapstructure:"storage"`
	Port          uint          `mapstructure:"port"`
	HttpLog       bool          `mapstructure:"http_log"`
}

type TankConfig struct {
	Size            string  `mapstructure:"size"`
	CapacityCustom  float64 `mapstructure:"capacity_custom"`
	UsablePercent   float64 `mapstructure:"usable_percentage"`
	InitialLevel    float64 `mapstructure:"initial_level"`
	PricePerLiter   float64 `mapstructure:"price_per_liter"`
	LowThreshold    float64 `mapstructure:"low_threshold"`
	RefillThreshold float64 `mapstructure:"refill_threshold"`
}

type SolarConfig struct {
	Enable           bool    `mapstructure:"enable"`
	Investment       float64 `mapstructure:"investment"`
	Efficiency       float64 `mapstructure:"efficiency"`
	InstallationDate string  `mapstructure:"installation_date"`
}

type MonitorConfig struct {
	RefreshIntervalMillis uint32 `mapstructure:"refresh_interval_millis"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

// tankCapacities maps the standard tank size presets to total capacity
// in liters. "custom" defers to tank.capacity_custom.
var tankCapacities = map[string]float64{
	"120":  120,
	"180":  180,
	"300":  300,
	"500":  500,
	"1000": 1000,
}

// Capacity resolves the configured tank size preset to liters.
func (c TankConfig) Capacity() float64 {
	if c.Size == "custom" {
		if c.CapacityCustom > 0 {
			return c.CapacityCustom
		}
		return tankCapacities["120"]
	}
	if capacity, ok := tankCapacities[c.Size]; ok {
		return capacity
	}
	return tankCapacities["120"]
}

// UsableCapacity is the fraction of total capacity that can actually be
// filled (LP tanks are never filled to 100%).
func (c TankConfig) UsableCapacity() float64 {
	return c.Capacity() * c.UsablePercent / 100
}

func CheckTankSize(size string) error {
	if size == "custom" {
		return nil
	}
	if _, ok := tankCapacities[size]; !ok {
		return errors.New("invalid tank size. valid values: 120, 180, 300, 500, 1000, custom")
	}
	return nil
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
