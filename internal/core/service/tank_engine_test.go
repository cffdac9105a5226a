package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/Rob-Negrete/dura-gas/internal/config"
	"github.com/Rob-Negrete/dura-gas/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEngine(solar bool) *TankEngine {
	cfg := config.Config{
		TankConfig: config.TankConfig{
			Size:            "120",
			UsablePercent:   80,
			InitialLevel:    50,
			PricePerLiter:   10.88,
			LowThreshold:    20,
			RefillThreshold: 30,
		},
		SolarConfig: config.SolarConfig{
			Enable:     solar,
			Investment: 25000,
			Efficiency: 70,
		},
	}
	return NewTankEngine(&cfg, zap.NewNop())
}

func TestTankStateConversions(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()

	// 120L tank at 80% usable => 96L; level 50% => 48L, 24.49kg
	snap, _ := e.Refresh(&data, time.Now())
	assert.EqualValues(t, 96, snap.Tank.UsableCapacity)
	assert.EqualValues(t, 48.0, snap.Tank.CurrentLiters)
	assert.EqualValues(t, 24.49, snap.Tank.CurrentKg)
	assert.EqualValues(t, 522.24, snap.Tank.CurrentValue)
}

func TestKgLitersRoundTrip(t *testing.T) {
	e := testEngine(false)
	for level := 0.0; level <= 100; level += 12.5 {
		data := e.DefaultTankData()
		data.CurrentLevel = level
		snap, _ := e.Refresh(&data, time.Now())
		assert.InDelta(t, snap.Tank.CurrentLiters, snap.Tank.CurrentKg*config.LPGasKgToLiters, 0.02,
			"level %.1f", level)
	}
}

func TestEmptyHistoryZeroConsumption(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()

	snap, _ := e.Refresh(&data, time.Now())
	assert.Zero(t, snap.Consumption.Daily)
	assert.Zero(t, snap.Consumption.Monthly)
	assert.Zero(t, snap.Consumption.DaysSinceRefill)
	assert.Zero(t, snap.Consumption.LitersConsumed)
	assert.Nil(t, snap.Projection.DaysRemaining)
	assert.Nil(t, snap.Projection.WeeksRemaining)
	assert.Nil(t, snap.Projection.NextRefillDate)
	assert.Nil(t, snap.LastRefill.Date)
}

func TestDaysSinceRefillFlooredToOne(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()
	now := time.Now()

	e.ApplyRefill(&data, 40, 11.0, now)

	snap, _ := e.Refresh(&data, now)
	assert.Equal(t, 1, snap.Consumption.DaysSinceRefill)
}

func TestConsumptionSinceRefill(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()
	now := time.Now()

	// refill 10 days ago to 89.2%, then drop level to 50%
	e.ApplyRefill(&data, 37.63, 11.0, now.AddDate(0, 0, -10))
	require.InDelta(t, 89.2, data.CurrentLevel, 0.1)
	e.ApplyLevel(&data, 50)

	snap, _ := e.Refresh(&data, now)
	assert.Equal(t, 10, snap.Consumption.DaysSinceRefill)
	// 96 * (89.2-50)/100 = 37.63L consumed => 3.76 L/day
	assert.InDelta(t, 37.63, snap.Consumption.LitersConsumed, 0.05)
	assert.InDelta(t, 3.76, snap.Consumption.Daily, 0.01)
	assert.InDelta(t, 112.9, snap.Consumption.Monthly, 0.3)

	require.NotNil(t, snap.Projection.DaysRemaining)
	assert.InDelta(t, 48.0/3.76, *snap.Projection.DaysRemaining, 0.1)
	require.NotNil(t, snap.Projection.WeeksRemaining)
	require.NotNil(t, snap.Projection.NextRefillDate)
	assert.True(t, snap.Projection.NextRefillDate.After(now))
}

func TestConsumptionClampedOnManualCorrection(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()
	now := time.Now()

	e.ApplyRefill(&data, 20, 11.0, now.AddDate(0, 0, -5))
	// manual correction above the post-refill level
	e.ApplyLevel(&data, 100)

	snap, _ := e.Refresh(&data, now)
	assert.Zero(t, snap.Consumption.LitersConsumed)
	assert.Zero(t, snap.Consumption.Daily)
}

func TestRecommendedLitersNonNegative(t *testing.T) {
	e := testEngine(false)
	strategies := []domain.RefillStrategy{
		domain.StrategyFillComplete, domain.StrategyFixed300, domain.StrategyFixed400,
		domain.StrategyFixed500, domain.StrategyFixed600, domain.StrategyLevel50,
		domain.StrategyLevel60, domain.StrategyLevel70, domain.StrategyCustom,
		domain.RefillStrategy("bogus"),
	}
	for _, strategy := range strategies {
		for _, liters := range []float64{0, 48, 96} {
			got := e.RecommendedLiters(strategy, 96, liters, 10.88, 0)
			assert.GreaterOrEqual(t, got, 0.0, "strategy %s at %.0fL", strategy, liters)
		}
	}
}

func TestRecommendedLitersTable(t *testing.T) {
	e := testEngine(false)

	// fixed_300 @ 10.88 => 27.57
	assert.InDelta(t, 27.57, e.RecommendedLiters(domain.StrategyFixed300, 96, 48, 10.88, 0), 0.01)
	// fill_complete tops up to usable capacity
	assert.EqualValues(t, 48, e.RecommendedLiters(domain.StrategyFillComplete, 96, 48, 10.88, 0))
	// level_50 target already met
	assert.EqualValues(t, 0, e.RecommendedLiters(domain.StrategyLevel50, 96, 48, 10.88, 0))
	// level_70 tops up to 67.2L
	assert.InDelta(t, 19.2, e.RecommendedLiters(domain.StrategyLevel70, 96, 48, 10.88, 0), 0.01)
	// custom falls back to 400 MXN when unset
	assert.InDelta(t, 400/10.88, e.RecommendedLiters(domain.StrategyCustom, 96, 48, 10.88, 0), 0.01)
	assert.InDelta(t, 1000/10.88, e.RecommendedLiters(domain.StrategyCustom, 96, 48, 10.88, 1000), 0.01)
	// unrecognized behaves like fill_complete
	assert.EqualValues(t, 48, e.RecommendedLiters(domain.RefillStrategy("bogus"), 96, 48, 10.88, 0))
}

func TestResultingLevelCappedAt100(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()
	data.CurrentLevel = 90
	data.RefillStrategy = domain.StrategyFixed600

	snap, _ := e.Refresh(&data, time.Now())
	assert.LessOrEqual(t, snap.Projection.ResultingLevel, 100.0)
}

func TestStrategyAnalysis(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()
	now := time.Now()

	// 90L/month: consume 3L/day over 30 days
	e.ApplyLevel(&data, 100)
	e.ApplyRefill(&data, 0, 10.88, now.AddDate(0, 0, -30))
	e.ApplyLevel(&data, 100-90.0/96*100)

	snap, _ := e.Refresh(&data, now)
	require.InDelta(t, 90, snap.Consumption.Monthly, 0.2)
	assert.InDelta(t, 979.2, snap.Strategy.MonthlyCost, 2)
	assert.InDelta(t, -395.2, snap.Strategy.VsCylinders, 2)
	assert.InDelta(t, 90.0/96, snap.Strategy.RefillsPerMonth, 0.01)
}

func TestSolarEstimateHybrid(t *testing.T) {
	e := testEngine(true)
	data := e.DefaultTankData()
	now := time.Now()

	// 90L/month consumption
	e.ApplyLevel(&data, 100)
	e.ApplyRefill(&data, 0, 10.88, now.AddDate(0, 0, -30))
	e.ApplyLevel(&data, 100-90.0/96*100)

	snap, _ := e.Refresh(&data, now)
	require.NotNil(t, snap.Solar)
	// base water heating 36L, hybrid coverage 70% => 25.2L saved
	assert.InDelta(t, 274.18, snap.Solar.SavingsMonthly, 1.5)
	assert.InDelta(t, 1.2, snap.Solar.HotWaterConsumption, 0.05)
	assert.Equal(t, domain.HeatingModeSolarGasHybrid, snap.Solar.HeatingMode)
}

func TestSolarCoverageByMode(t *testing.T) {
	e := testEngine(true)
	now := time.Now()

	for _, tc := range []struct {
		mode     domain.HeatingMode
		coverage float64
	}{
		{domain.HeatingModeSolarGasHybrid, 0.7},
		{domain.HeatingModeSolarOnly, 1.0},
		{domain.HeatingModeGasOnly, 0.0},
		{domain.HeatingModeNone, 0.0},
	} {
		data := e.DefaultTankData()
		e.ApplyLevel(&data, 100)
		e.ApplyRefill(&data, 0, 10.88, now.AddDate(0, 0, -30))
		e.ApplyLevel(&data, 100-90.0/96*100)
		e.ApplyHeatingMode(&data, tc.mode)

		snap, _ := e.Refresh(&data, now)
		require.NotNil(t, snap.Solar, "mode %s", tc.mode)
		expected := snap.Consumption.Monthly * config.WaterHeatingBaseFraction * tc.coverage * 10.88
		assert.InDelta(t, expected, snap.Solar.SavingsMonthly, 0.5, "mode %s", tc.mode)
	}
}

func TestSolarDisabledNilEstimate(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()
	snap, dirty := e.Refresh(&data, time.Now())
	assert.Nil(t, snap.Solar)
	assert.False(t, dirty)
	assert.Nil(t, data.LastSolarUpdate)
}

func TestROIPercentageZeroInvestment(t *testing.T) {
	e := testEngine(true)
	e.Solar.Investment = 0
	data := e.DefaultTankData()
	data.SolarROIAccumulated = 500

	snap, _ := e.Refresh(&data, time.Now())
	require.NotNil(t, snap.Solar)
	assert.Zero(t, snap.Solar.ROIPercentage)
}

func TestMonthsToPaybackZeroWhenPaidOff(t *testing.T) {
	e := testEngine(true)
	data := e.DefaultTankData()
	data.SolarROIAccumulated = e.Solar.Investment + 1

	snap, _ := e.Refresh(&data, time.Now())
	require.NotNil(t, snap.Solar)
	require.NotNil(t, snap.Solar.MonthsToPayback)
	assert.Zero(t, *snap.Solar.MonthsToPayback)
}

func TestMonthsToPaybackNilWithoutSavings(t *testing.T) {
	e := testEngine(true)
	data := e.DefaultTankData()
	// no consumption => no savings, payback undefined

	snap, _ := e.Refresh(&data, time.Now())
	require.NotNil(t, snap.Solar)
	assert.Nil(t, snap.Solar.MonthsToPayback)
}

func TestSolarROIAccruesOncePerMonth(t *testing.T) {
	e := testEngine(true)
	data := e.DefaultTankData()

	// steady consumption so savings_monthly > 0
	jan := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	e.ApplyLevel(&data, 100)
	e.ApplyRefill(&data, 0, 10.88, jan.AddDate(0, 0, -30))
	e.ApplyLevel(&data, 100-90.0/96*100)

	// first run records the baseline month without accruing
	_, dirty := e.Refresh(&data, jan)
	require.True(t, dirty)
	assert.Zero(t, data.SolarROIAccumulated)

	// repeated refreshes inside the same month never accrue
	for day := 16; day <= 31; day++ {
		_, dirty = e.Refresh(&data, time.Date(2025, time.January, day, 12, 0, 0, 0, time.UTC))
		assert.False(t, dirty)
	}
	assert.Zero(t, data.SolarROIAccumulated)

	// month rollover accrues exactly once
	feb := time.Date(2025, time.February, 1, 12, 0, 0, 0, time.UTC)
	snap, dirty := e.Refresh(&data, feb)
	require.True(t, dirty)
	require.NotNil(t, snap.Solar)
	accrued := data.SolarROIAccumulated
	assert.Greater(t, accrued, 0.0)

	_, dirty = e.Refresh(&data, feb.AddDate(0, 0, 10))
	assert.False(t, dirty)
	assert.Equal(t, accrued, data.SolarROIAccumulated)
}

func TestApplyRefillExample(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()
	data.CurrentLevel = 20

	record := e.ApplyRefill(&data, 50, 11.0, time.Now())

	// 96L usable: 19.2L before + 50L => 69.2L => 72.1%
	assert.InDelta(t, 20, record.LevelBefore, 0.01)
	assert.InDelta(t, 72.1, record.LevelAfter, 0.05)
	assert.EqualValues(t, 550, record.TotalCost)
	assert.InDelta(t, 72.1, data.CurrentLevel, 0.05)
}

func TestApplyRefillLevelCapped(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()
	data.CurrentLevel = 95

	record := e.ApplyRefill(&data, 200, 11.0, time.Now())
	assert.EqualValues(t, 100, record.LevelAfter)
	assert.EqualValues(t, 100, data.CurrentLevel)
}

func TestRefillHistoryCapFIFO(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()
	now := time.Now()

	for i := 0; i < domain.MaxRefillHistory+1; i++ {
		e.ApplyLevel(&data, 10)
		e.ApplyRefill(&data, float64(i+1), 11.0, now.AddDate(0, 0, i-60))
	}

	require.Len(t, data.RefillHistory, domain.MaxRefillHistory)
	// the first insertion (1L) was evicted
	assert.EqualValues(t, 2, data.RefillHistory[0].Liters)
	assert.EqualValues(t, domain.MaxRefillHistory+1, data.RefillHistory[len(data.RefillHistory)-1].Liters)
}

func TestApplyLevelClamped(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()

	assert.EqualValues(t, 100, e.ApplyLevel(&data, 150))
	assert.EqualValues(t, 0, e.ApplyLevel(&data, -5))
	assert.EqualValues(t, 42.5, e.ApplyLevel(&data, 42.5))
}

func TestApplyPriceOverridesConfig(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()

	assert.EqualValues(t, 10.88, e.EffectivePrice(&data))
	e.ApplyPrice(&data, 12.5)
	assert.EqualValues(t, 12.5, e.EffectivePrice(&data))

	snap, _ := e.Refresh(&data, time.Now())
	assert.EqualValues(t, 600.0, snap.Tank.CurrentValue)
}

func TestApplyStrategyCustomAmount(t *testing.T) {
	e := testEngine(false)
	data := e.DefaultTankData()

	amount := 800.0
	e.ApplyStrategy(&data, domain.StrategyCustom, &amount)
	assert.Equal(t, domain.StrategyCustom, data.RefillStrategy)
	assert.EqualValues(t, 800, data.CustomStrategyAmount)

	// switching strategy without amount keeps the stored one
	e.ApplyStrategy(&data, domain.StrategyFixed400, nil)
	e.ApplyStrategy(&data, domain.StrategyCustom, nil)
	assert.EqualValues(t, 800, data.CustomStrategyAmount)
}

func TestDefaultTankDataModes(t *testing.T) {
	withSolar := testEngine(true).DefaultTankData()
	assert.Equal(t, domain.HeatingModeSolarGasHybrid, withSolar.HeatingMode)

	gasOnly := testEngine(false).DefaultTankData()
	assert.Equal(t, domain.HeatingModeGasOnly, gasOnly.HeatingMode)

	for _, data := range []domain.TankData{withSolar, gasOnly} {
		assert.Equal(t, domain.StrategyFillComplete, data.RefillStrategy)
		assert.Empty(t, data.RefillHistory)
		fmt.Printf("default data: %+v\n", data)
	}
}
