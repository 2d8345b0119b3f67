// Package indicators derives moving-average overlays for the candlestick
// chart feed. It uses the cinar/indicator library to calculate SMA and EMA
// series from candle close prices.
package indicators

import (
	"fmt"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"

	"github.com/tanonw/paperdesk/internal/domain"
)

// ChartOverlay holds indicator series computed for one candle set.
// Series are aligned to the tail of the input: the first value corresponds
// to the earliest candle with enough history for the period.
type ChartOverlay struct {
	// SMA20 is the 20-period Simple Moving Average of close prices.
	SMA20 []decimal.Decimal
	// EMA50 is the 50-period Exponential Moving Average of close prices.
	EMA50 []decimal.Decimal
}

const (
	smaPeriod = 20
	emaPeriod = 50
)

// CalculateSMA calculates the Simple Moving Average for the given period.
func CalculateSMA(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if len(closes) < period {
		return nil, fmt.Errorf("not enough data points: need %d, got %d", period, len(closes))
	}

	closesFloat := decimalsToFloat64(closes)

	sma := trend.NewSmaWithPeriod[float64](period)
	inputChan := helper.SliceToChan(closesFloat)
	outputChan := sma.Compute(inputChan)
	smaFloat := helper.ChanToSlice(outputChan)

	return float64ToDecimals(smaFloat), nil
}

// CalculateEMA calculates the Exponential Moving Average for the given period.
func CalculateEMA(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if len(closes) < period {
		return nil, fmt.Errorf("not enough data points: need %d, got %d", period, len(closes))
	}

	closesFloat := decimalsToFloat64(closes)

	ema := trend.NewEmaWithPeriod[float64](period)
	inputChan := helper.SliceToChan(closesFloat)
	outputChan := ema.Compute(inputChan)
	emaFloat := helper.ChanToSlice(outputChan)

	return float64ToDecimals(emaFloat), nil
}

// BuildChartOverlay computes all chart overlays for the given candles.
// Series that lack enough history are left nil rather than failing the call.
func BuildChartOverlay(candles []domain.MarketCandle) *ChartOverlay {
	closes := make([]decimal.Decimal, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	overlay := &ChartOverlay{}
	if sma, err := CalculateSMA(closes, smaPeriod); err == nil {
		overlay.SMA20 = sma
	}
	if ema, err := CalculateEMA(closes, emaPeriod); err == nil {
		overlay.EMA50 = ema
	}
	return overlay
}

func decimalsToFloat64(values []decimal.Decimal) []float64 {
	result := make([]float64, len(values))
	for i, v := range values {
		result[i], _ = v.Float64()
	}
	return result
}

func float64ToDecimals(values []float64) []decimal.Decimal {
	result := make([]decimal.Decimal, len(values))
	for i, v := range values {
		result[i] = decimal.NewFromFloat(v)
	}
	return result
}
