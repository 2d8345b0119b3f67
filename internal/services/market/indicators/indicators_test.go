package indicators

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanonw/paperdesk/internal/domain"
)

func constantCloses(value float64, n int) []decimal.Decimal {
	closes := make([]decimal.Decimal, n)
	for i := range closes {
		closes[i] = decimal.NewFromFloat(value)
	}
	return closes
}

func rampCloses(n int) []decimal.Decimal {
	closes := make([]decimal.Decimal, n)
	for i := range closes {
		closes[i] = decimal.NewFromInt(int64(i + 1))
	}
	return closes
}

func TestCalculateSMA_ConstantSeries(t *testing.T) {
	sma, err := CalculateSMA(constantCloses(100, 25), 20)
	require.NoError(t, err)
	require.NotEmpty(t, sma)

	for _, v := range sma {
		f, _ := v.Float64()
		assert.InDelta(t, 100, f, 1e-9)
	}
}

func TestCalculateSMA_RampSeries(t *testing.T) {
	// closes 1..10, period 5: the last full window is 6..10, mean 8
	sma, err := CalculateSMA(rampCloses(10), 5)
	require.NoError(t, err)
	require.NotEmpty(t, sma)

	last, _ := sma[len(sma)-1].Float64()
	assert.InDelta(t, 8, last, 1e-9)
}

func TestCalculateSMA_NotEnoughData(t *testing.T) {
	_, err := CalculateSMA(constantCloses(100, 5), 20)
	assert.Error(t, err)
}

func TestCalculateEMA_ConstantSeries(t *testing.T) {
	ema, err := CalculateEMA(constantCloses(42, 60), 50)
	require.NoError(t, err)
	require.NotEmpty(t, ema)

	for _, v := range ema {
		f, _ := v.Float64()
		assert.InDelta(t, 42, f, 1e-9)
	}
}

func TestBuildChartOverlay(t *testing.T) {
	candles := make([]domain.MarketCandle, 30)
	for i := range candles {
		candles[i] = domain.MarketCandle{Close: decimal.NewFromInt(100)}
	}

	overlay := BuildChartOverlay(candles)
	assert.NotEmpty(t, overlay.SMA20)
	assert.Nil(t, overlay.EMA50, "ema needs 50 candles")

	short := BuildChartOverlay(candles[:10])
	assert.Nil(t, short.SMA20)
	assert.Nil(t, short.EMA50)
}
