package service

import (
	"math"
	"time"

	"github.com/Rob-Negrete/dura-gas/internal/config"
	"github.com/Rob-Negrete/dura-gas/internal/core/domain"

	"go.uber.org/zap"
)

// TankEngine derives the snapshot from persisted state and static
// configuration. All methods are pure except Refresh's ROI accrual,
// which mutates the passed TankData and reports whether it must be
// persisted.
type TankEngine struct {
	Tank   config.TankConfig
	Solar  config.SolarConfig
	Logger *zap.Logger
}

func NewTankEngine(cfg *config.Config, logger *zap.Logger) *TankEngine {
	return &TankEngine{
		Tank:   cfg.TankConfig,
		Solar:  cfg.SolarConfig,
		Logger: logger,
	}
}

// EffectivePrice is the configured price unless a service call has
// overridden it.
func (e *TankEngine) EffectivePrice(data *domain.TankData) float64 {
	if data.PricePerLiter > 0 {
		return data.PricePerLiter
	}
	return e.Tank.PricePerLiter
}

// DefaultTankData builds first-run state: initial level from config,
// hybrid heating if solar is installed, fill-complete strategy.
func (e *TankEngine) DefaultTankData() domain.TankData {
	mode := domain.HeatingModeGasOnly
	if e.Solar.Enable {
		mode = domain.HeatingModeSolarGasHybrid
	}
	return domain.TankData{
		CurrentLevel:   clampLevel(e.Tank.InitialLevel),
		HeatingMode:    mode,
		RefillStrategy: domain.StrategyFillComplete,
	}
}

// Refresh computes the derived snapshot. The returned bool indicates
// that the solar ROI accrual changed data and it must be saved.
func (e *TankEngine) Refresh(data *domain.TankData, now time.Time) (domain.Snapshot, bool) {
	tank := e.tankState(data)
	consumption := e.consumption(data, tank, now)
	projection := e.projection(data, tank, consumption, now)
	lastRefill := e.lastRefill(data)
	strategy := e.strategyAnalysis(data, consumption)

	// accrual is applied after the estimate, so the snapshot shows the
	// pre-accrual total until the next refresh
	var solar *domain.SolarEstimate
	dirty := false
	if e.Solar.Enable {
		est := e.solarEstimate(data, consumption)
		solar = &est
		dirty = e.accrueSolarROI(data, est.SavingsMonthly, now)
	}

	return domain.Snapshot{
		Tank:        tank,
		Consumption: consumption,
		Projection:  projection,
		LastRefill:  lastRefill,
		Strategy:    strategy,
		Solar:       solar,
	}, dirty
}

func (e *TankEngine) tankState(data *domain.TankData) domain.TankState {
	usable := e.Tank.UsableCapacity()
	liters := usable * data.CurrentLevel / 100
	return domain.TankState{
		Capacity:       e.Tank.Capacity(),
		UsableCapacity: usable,
		CurrentLevel:   data.CurrentLevel,
		CurrentLiters:  round2(liters),
		CurrentKg:      round2(liters / config.LPGasKgToLiters),
		CurrentValue:   round2(liters * e.EffectivePrice(data)),
	}
}

func (e *TankEngine) consumption(data *domain.TankData, tank domain.TankState, now time.Time) domain.ConsumptionStats {
	last := data.LastRefillRecord()
	if last == nil {
		return domain.ConsumptionStats{}
	}

	// floor to 1 so a same-day refill never divides by zero
	days := int(now.Sub(last.Date).Hours() / 24)
	if days < 1 {
		days = 1
	}

	usable := tank.UsableCapacity
	litersAtRefill := usable * last.LevelAfter / 100
	currentLiters := usable * data.CurrentLevel / 100
	// clamped: a manual level correction upward is not consumption
	consumed := math.Max(litersAtRefill-currentLiters, 0)

	daily := consumed / float64(days)
	return domain.ConsumptionStats{
		Daily:           round2(daily),
		Monthly:         round2(daily * 30),
		DaysSinceRefill: days,
		LitersConsumed:  round2(consumed),
	}
}

func (e *TankEngine) projection(data *domain.TankData, tank domain.TankState,
	consumption domain.ConsumptionStats, now time.Time) domain.Projection {

	price := e.EffectivePrice(data)
	proj := domain.Projection{}

	if consumption.Daily > 0 {
		days := tank.CurrentLiters / consumption.Daily
		weeks := days / 7
		next := now.Add(time.Duration(days * 24 * float64(time.Hour)))
		proj.DaysRemaining = ptr(round1(days))
		proj.WeeksRemaining = ptr(round1(weeks))
		proj.NextRefillDate = &next
	}

	recommended := e.RecommendedLiters(data.RefillStrategy, tank.UsableCapacity, tank.CurrentLiters, price, data.CustomStrategyAmount)
	resulting := (tank.CurrentLiters + recommended) / tank.UsableCapacity * 100

	proj.RecommendedLiters = round2(recommended)
	proj.RecommendedCost = round2(recommended * price)
	proj.ResultingLevel = round1(math.Min(resulting, 100))
	return proj
}

// RecommendedLiters dispatches on the refill strategy. Unrecognized
// strategies behave like fill_complete.
func (e *TankEngine) RecommendedLiters(strategy domain.RefillStrategy,
	usableCapacity, currentLiters, pricePerLiter, customAmount float64) float64 {

	switch strategy {
	case domain.StrategyFixed300:
		return 300 / pricePerLiter
	case domain.StrategyFixed400:
		return 400 / pricePerLiter
	case domain.StrategyFixed500:
		return 500 / pricePerLiter
	case domain.StrategyFixed600:
		return 600 / pricePerLiter
	case domain.StrategyLevel50:
		return math.Max(usableCapacity*0.5-currentLiters, 0)
	case domain.StrategyLevel60:
		return math.Max(usableCapacity*0.6-currentLiters, 0)
	case domain.StrategyLevel70:
		return math.Max(usableCapacity*0.7-currentLiters, 0)
	case domain.StrategyCustom:
		amount := customAmount
		if amount <= 0 {
			amount = domain.DefaultCustomStrategyAmount
		}
		return amount / pricePerLiter
	case domain.StrategyFillComplete:
		return math.Max(usableCapacity-currentLiters, 0)
	default:
		e.Logger.Warn("unrecognized refill strategy, assuming fill_complete", zap.String("strategy", string(strategy)))
		return math.Max(usableCapacity-currentLiters, 0)
	}
}

func (e *TankEngine) lastRefill(data *domain.TankData) domain.LastRefill {
	last := data.LastRefillRecord()
	if last == nil {
		return domain.LastRefill{}
	}
	return domain.LastRefill{
		Date:          &last.Date,
		Liters:        ptr(last.Liters),
		PricePerLiter: ptr(last.PricePerLiter),
		TotalCost:     ptr(last.TotalCost),
	}
}

func (e *TankEngine) strategyAnalysis(data *domain.TankData, consumption domain.ConsumptionStats) domain.StrategyAnalysis {
	monthlyCost := consumption.Monthly * e.EffectivePrice(data)

	refillsPerMonth := 0.0
	if consumption.Monthly > 0 {
		refillsPerMonth = consumption.Monthly / e.Tank.UsableCapacity()
	}

	return domain.StrategyAnalysis{
		Current:         data.RefillStrategy,
		MonthlyCost:     round2(monthlyCost),
		RefillsPerMonth: round2(refillsPerMonth),
		VsCylinders:     round2(config.CylinderMonthlyCost - monthlyCost),
	}
}

func (e *TankEngine) solarEstimate(data *domain.TankData, consumption domain.ConsumptionStats) domain.SolarEstimate {
	baseWaterHeating := consumption.Monthly * config.WaterHeatingBaseFraction

	var coverage float64
	switch data.HeatingMode {
	case domain.HeatingModeSolarGasHybrid:
		coverage = e.Solar.Efficiency / 100
	case domain.HeatingModeSolarOnly:
		coverage = 1.0
	default:
		coverage = 0.0
	}

	litersSaved := baseWaterHeating * coverage
	savingsMonthly := litersSaved * e.EffectivePrice(data)

	roi := data.SolarROIAccumulated

	var monthsToPayback *float64
	if roi >= e.Solar.Investment {
		monthsToPayback = ptr(0.0)
	} else if savingsMonthly > 0 {
		monthsToPayback = ptr(round1((e.Solar.Investment - roi) / savingsMonthly))
	}

	hotWater := 0.0
	if consumption.Monthly > 0 {
		hotWater = baseWaterHeating / 30
	}

	return domain.SolarEstimate{
		EfficiencyReal:      e.Solar.Efficiency,
		SavingsMonthly:      round2(savingsMonthly),
		ROIAccumulated:      round2(roi),
		ROIPercentage:       roiPercentage(roi, e.Solar.Investment),
		MonthsToPayback:     monthsToPayback,
		HotWaterConsumption: round2(hotWater),
		HeatingMode:         data.HeatingMode,
	}
}

// accrueSolarROI adds the monthly savings to the accumulated ROI once
// per calendar month. The first run only records the baseline month.
// Returns true when data changed.
func (e *TankEngine) accrueSolarROI(data *domain.TankData, savingsMonthly float64, now time.Time) bool {
	if data.LastSolarUpdate == nil {
		data.LastSolarUpdate = &now
		return true
	}
	last := *data.LastSolarUpdate
	if now.Month() == last.Month() && now.Year() == last.Year() {
		return false
	}
	data.SolarROIAccumulated += savingsMonthly
	data.LastSolarUpdate = &now
	e.Logger.Info("solar ROI accrued",
		zap.Float64("savings_monthly", savingsMonthly),
		zap.Float64("roi_accumulated", data.SolarROIAccumulated))
	return true
}

// ApplyRefill records a refill, caps the history and raises the level.
func (e *TankEngine) ApplyRefill(data *domain.TankData, liters, pricePerLiter float64, date time.Time) domain.RefillRecord {
	usable := e.Tank.UsableCapacity()

	levelBefore := data.CurrentLevel
	litersBefore := usable * levelBefore / 100
	levelAfter := math.Min((litersBefore+liters)/usable*100, 100)

	record := domain.RefillRecord{
		Date:          date,
		Liters:        liters,
		PricePerLiter: pricePerLiter,
		TotalCost:     round2(liters * pricePerLiter),
		LevelBefore:   round1(levelBefore),
		LevelAfter:    round1(levelAfter),
	}

	data.RefillHistory = append(data.RefillHistory, record)
	if len(data.RefillHistory) > domain.MaxRefillHistory {
		data.RefillHistory = data.RefillHistory[len(data.RefillHistory)-domain.MaxRefillHistory:]
	}
	data.CurrentLevel = levelAfter

	e.Logger.Info("recorded refill",
		zap.Float64("liters", liters),
		zap.Float64("price_per_liter", pricePerLiter),
		zap.Float64("level_before", record.LevelBefore),
		zap.Float64("level_after", record.LevelAfter))
	return record
}

// ApplyLevel overwrites the current level, clamped to [0,100].
func (e *TankEngine) ApplyLevel(data *domain.TankData, levelPercent float64) float64 {
	data.CurrentLevel = clampLevel(levelPercent)
	return data.CurrentLevel
}

// ApplyPrice overrides the configured gas price.
func (e *TankEngine) ApplyPrice(data *domain.TankData, pricePerLiter float64) {
	data.PricePerLiter = pricePerLiter
}

// ApplyHeatingMode overwrites the water heating mode.
func (e *TankEngine) ApplyHeatingMode(data *domain.TankData, mode domain.HeatingMode) {
	data.HeatingMode = mode
}

// ApplyStrategy overwrites the refill strategy; a custom amount is only
// stored when the custom strategy is selected.
func (e *TankEngine) ApplyStrategy(data *domain.TankData, strategy domain.RefillStrategy, customAmount *float64) {
	data.RefillStrategy = strategy
	if strategy == domain.StrategyCustom && customAmount != nil {
		data.CustomStrategyAmount = *customAmount
	}
}

// ApplyCustomAmount stores the custom strategy amount. It takes effect
// when the custom strategy is selected.
func (e *TankEngine) ApplyCustomAmount(data *domain.TankData, amount float64) {
	data.CustomStrategyAmount = amount
}

func clampLevel(level float64) float64 {
	return math.Max(0, math.Min(100, level))
}

func roiPercentage(roi, investment float64) float64 {
	if investment <= 0 {
		return 0
	}
	return round2(roi / investment * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ptr[T any](v T) *T {
	return &v
}
