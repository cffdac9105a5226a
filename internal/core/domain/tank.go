package domain

import (
	"fmt"
	"time"
)

// MaxRefillHistory caps the persisted refill log. Oldest entries are
// dropped first.
const MaxRefillHistory = 50

// DefaultCustomStrategyAmount is used when the custom strategy is active
// but no amount has been set.
const DefaultCustomStrategyAmount = 400

// HeatingMode selects how water heating is covered.
type HeatingMode string

const (
	HeatingModeSolarGasHybrid HeatingMode = "solar_gas_hybrid"
	HeatingModeSolarOnly      HeatingMode = "solar_only"
	HeatingModeGasOnly        HeatingMode = "gas_only"
	HeatingModeNone           HeatingMode = "none"
)

func ParseHeatingMode(s string) (HeatingMode, error) {
	switch HeatingMode(s) {
	case HeatingModeSolarGasHybrid, HeatingModeSolarOnly, HeatingModeGasOnly, HeatingModeNone:
		return HeatingMode(s), nil
	}
	return "", fmt.Errorf("unknown heating mode %q", s)
}

// RefillStrategy selects how much gas to recommend on the next refill.
type RefillStrategy string

const (
	StrategyFillComplete RefillStrategy = "fill_complete"
	StrategyFixed300     RefillStrategy = "fixed_300"
	StrategyFixed400     RefillStrategy = "fixed_400"
	StrategyFixed500     RefillStrategy = "fixed_500"
	StrategyFixed600     RefillStrategy = "fixed_600"
	StrategyLevel50      RefillStrategy = "level_50"
	StrategyLevel60      RefillStrategy = "level_60"
	StrategyLevel70      RefillStrategy = "level_70"
	StrategyCustom       RefillStrategy = "custom"
)

func ParseRefillStrategy(s string) (RefillStrategy, error) {
	switch RefillStrategy(s) {
	case StrategyFillComplete, StrategyFixed300, StrategyFixed400, StrategyFixed500,
		StrategyFixed600, StrategyLevel50, StrategyLevel60, StrategyLevel70, StrategyCustom:
		return RefillStrategy(s), nil
	}
	return "", fmt.Errorf("unknown refill strategy %q", s)
}

// RefillRecord is one logged refill.
type RefillRecord struct {
	Date          time.Time `json:"date"`
	Liters        float64   `json:"liters"`
	PricePerLiter float64   `json:"price_per_liter"`
	TotalCost     float64   `json:"total_cost"`
	LevelBefore   float64   `json:"level_before"`
	LevelAfter    float64   `json:"level_after"`
}

// TankData is the durable state of one tank instance. It is mutated only
// by the tank monitor and persisted through the state store.
type TankData struct {
	CurrentLevel         float64        `json:"current_level"`
	RefillHistory        []RefillRecord `json:"refill_history"`
	SolarROIAccumulated  float64        `json:"solar_roi_accumulated"`
	HeatingMode          HeatingMode    `json:"heating_mode"`
	RefillStrategy       RefillStrategy `json:"refill_strategy"`
	CustomStrategyAmount float64        `json:"custom_strategy_amount"`
	PricePerLiter        float64        `json:"price_per_liter"`
	LastSolarUpdate      *time.Time     `json:"last_solar_update"`
}

// LastRefillRecord returns the newest history entry, or nil.
func (d *TankData) LastRefillRecord() *RefillRecord {
	if len(d.RefillHistory) == 0 {
		return nil
	}
	return &d.RefillHistory[len(d.RefillHistory)-1]
}

// Snapshot is the derived data recomputed on every refresh. It is never
// persisted.
type Snapshot struct {
	Tank        TankState
	Consumption ConsumptionStats
	Projection  Projection
	LastRefill  LastRefill
	Strategy    StrategyAnalysis
	Solar       *SolarEstimate
}

type TankState struct {
	Capacity       float64
	UsableCapacity float64
	CurrentLevel   float64
	CurrentLiters  float64
	CurrentKg      float64
	CurrentValue   float64
}

type ConsumptionStats struct {
	Daily           float64
	Monthly         float64
	DaysSinceRefill int
	LitersConsumed  float64
}

type Projection struct {
	// DaysRemaining and WeeksRemaining are nil when daily consumption
	// is zero.
	DaysRemaining     *float64
	WeeksRemaining    *float64
	NextRefillDate    *time.Time
	RecommendedLiters float64
	RecommendedCost   float64
	ResultingLevel    float64
}

type LastRefill struct {
	Date          *time.Time
	Liters        *float64
	PricePerLiter *float64
	TotalCost     *float64
}

type StrategyAnalysis struct {
	Current         RefillStrategy
	MonthlyCost     float64
	RefillsPerMonth float64
	VsCylinders     float64
}

type SolarEstimate struct {
	EfficiencyReal      float64
	SavingsMonthly      float64
	ROIAccumulated      float64
	ROIPercentage       float64
	MonthsToPayback     *float64
	HotWaterConsumption float64
	HeatingMode         HeatingMode
}
