// Package technical computes indicators from daily OHLC series. All
// functions are pure; the caller supplies candles fetched elsewhere.
package technical

import (
	"fmt"
	"math"
	"strings"

	"investiq/models"
)

// MinCloses is the minimum series length needed for a meaningful
// indicator set. Shorter series yield ErrInsufficientData.
const MinCloses = 50

// ErrInsufficientData is returned when the price series is too short.
type ErrInsufficientData struct {
	Ticker string
	Have   int
}

func (e *ErrInsufficientData) Error() string {
	return fmt.Sprintf("insufficient price history for %s: %d closes, need %d", e.Ticker, e.Have, MinCloses)
}

// Compute derives the full indicator set from a daily series. Closes,
// highs, and lows are oldest first; highs and lows must be at least as
// long as the support/resistance window.
func Compute(ticker string, closes, highs, lows []float64) (*models.TechnicalIndicators, error) {
	ticker = strings.ToUpper(ticker)
	if len(closes) < MinCloses {
		return nil, &ErrInsufficientData{Ticker: ticker, Have: len(closes)}
	}

	price := closes[len(closes)-1]

	indicators := &models.TechnicalIndicators{
		Ticker: ticker,
		MovingAverages: models.MovingAverages{
			SMA20:  SMA(closes, 20),
			SMA50:  SMA(closes, 50),
			SMA200: SMA(closes, 200),
			EMA12:  EMA(closes, 12),
			EMA26:  EMA(closes, 26),
		},
		RSI:          computeRSI(closes),
		MACD:         computeMACD(closes),
		CurrentPrice: round2(price),
	}
	indicators.SupportResistance = pivotLevels(highs, lows, price)
	indicators.Trend = classifyTrend(price, indicators.MovingAverages.SMA20, indicators.MovingAverages.SMA50)

	return indicators, nil
}

// SMA is the simple moving average of the last period values, or nil if
// the series is shorter than the window.
func SMA(values []float64, period int) *float64 {
	if len(values) < period {
		return nil
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	avg := round2(sum / float64(period))
	return &avg
}

// EMA is the exponential moving average over the whole series, seeded
// with the SMA of the first period values.
func EMA(values []float64, period int) *float64 {
	series := emaSeries(values, period)
	if series == nil {
		return nil
	}
	last := round2(series[len(series)-1])
	return &last
}

// emaSeries returns the EMA at each point from the seed onward, so
// series[i] corresponds to values[period-1+i].
func emaSeries(values []float64, period int) []float64 {
	if len(values) < period {
		return nil
	}

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	multiplier := 2.0 / float64(period+1)
	series := make([]float64, 0, len(values)-period+1)
	series = append(series, seed)

	current := seed
	for _, v := range values[period:] {
		current = (v-current)*multiplier + current
		series = append(series, current)
	}
	return series
}

// computeRSI is the 14-period RSI with Wilder smoothing: average gain
// and loss are seeded from the first 14 changes, then each later change
// folds in at weight 1/14. 100 when the smoothed loss is zero.
func computeRSI(closes []float64) models.RSIIndicator {
	const period = 14
	if len(closes) < period+1 {
		return models.RSIIndicator{Signal: "neutral"}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= period
	avgLoss /= period

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(period-1) + gain) / period
		avgLoss = (avgLoss*(period-1) + loss) / period
	}

	var value float64
	if avgLoss == 0 {
		value = 100
	} else {
		rs := avgGain / avgLoss
		value = 100 - 100/(1+rs)
	}
	value = round2(value)

	signal := "neutral"
	switch {
	case value > 70:
		signal = "overbought"
	case value < 30:
		signal = "oversold"
	}
	return models.RSIIndicator{Value: &value, Signal: signal}
}

// computeMACD builds the MACD line as EMA12 minus EMA26 and the signal
// line as the EMA9 of the MACD line itself.
func computeMACD(closes []float64) models.MACDIndicator {
	fast := emaSeries(closes, 12)
	slow := emaSeries(closes, 26)
	if fast == nil || slow == nil {
		return models.MACDIndicator{}
	}

	// Both series end at the latest close; align them from the back.
	offset := len(fast) - len(slow)
	macd := make([]float64, len(slow))
	for i := range slow {
		macd[i] = fast[i+offset] - slow[i]
	}

	line := round2(macd[len(macd)-1])
	result := models.MACDIndicator{MACDLine: &line}

	signalSeries := emaSeries(macd, 9)
	if signalSeries != nil {
		signal := round2(signalSeries[len(signalSeries)-1])
		histogram := round2(line - signal)
		result.SignalLine = &signal
		result.Histogram = &histogram
	}
	return result
}

// pivotLevels derives classic pivot-point support and resistance from
// the last 20 bars.
func pivotLevels(highs, lows []float64, close float64) models.SupportResistance {
	const window = 20

	high := close
	if len(highs) > 0 {
		start := len(highs) - window
		if start < 0 {
			start = 0
		}
		high = highs[start]
		for _, h := range highs[start:] {
			if h > high {
				high = h
			}
		}
	}

	low := close
	if len(lows) > 0 {
		start := len(lows) - window
		if start < 0 {
			start = 0
		}
		low = lows[start]
		for _, l := range lows[start:] {
			if l < low {
				low = l
			}
		}
	}

	pivot := (high + low + close) / 3
	return models.SupportResistance{
		Support1:    round2(2*pivot - high),
		Pivot:       round2(pivot),
		Resistance1: round2(2*pivot - low),
	}
}

// classifyTrend compares price against the short moving averages:
// above both is bullish, below both is bearish, anything mixed is
// neutral.
func classifyTrend(price float64, sma20, sma50 *float64) string {
	if sma20 == nil || sma50 == nil {
		return "neutral"
	}
	switch {
	case price > *sma20 && price > *sma50:
		return "bullish"
	case price < *sma20 && price < *sma50:
		return "bearish"
	}
	return "neutral"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
