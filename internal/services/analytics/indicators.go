package analytics

import (
	"math"

	"AShareLab/internal/domain/models"
)

// floatPtr boxes a value for the optional indicator fields.
func floatPtr(v float64) *float64 { return &v }

// SMA computes the simple moving average of the last n closes.
// Returns nil when fewer than n bars are available.
func SMA(bars []models.Bar, n int) *float64 {
	if n <= 0 || len(bars) < n {
		return nil
	}
	sum := 0.0
	for i := len(bars) - n; i < len(bars); i++ {
		sum += bars[i].Close
	}
	return floatPtr(sum / float64(n))
}

// RSI computes the Wilder-smoothed relative strength index over period n.
func RSI(bars []models.Bar, n int) *float64 {
	if n <= 0 || len(bars) < n+1 {
		return nil
	}
	var avgGain, avgLoss float64
	for i := 1; i <= n; i++ {
		delta := bars[i].Close - bars[i-1].Close
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(n)
	avgLoss /= float64(n)
	for i := n + 1; i < len(bars); i++ {
		delta := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(n-1) + gain) / float64(n)
		avgLoss = (avgLoss*float64(n-1) + loss) / float64(n)
	}
	if avgLoss == 0 {
		return floatPtr(100)
	}
	rs := avgGain / avgLoss
	return floatPtr(100 - 100/(1+rs))
}

// ema computes the exponential moving average series over closes.
func ema(closes []float64, n int) []float64 {
	if n <= 0 || len(closes) == 0 {
		return nil
	}
	k := 2.0 / float64(n+1)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = closes[i]*k + out[i-1]*(1-k)
	}
	return out
}

// MACD computes the (12, 26, 9) MACD triple: dif, dea and histogram (macd).
// All three are nil when the series is shorter than the slow period.
func MACD(bars []models.Bar) (dif, dea, macd *float64) {
	const fast, slow, signal = 12, 26, 9
	if len(bars) < slow {
		return nil, nil, nil
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	emaFast := ema(closes, fast)
	emaSlow := ema(closes, slow)
	difs := make([]float64, len(closes))
	for i := range closes {
		difs[i] = emaFast[i] - emaSlow[i]
	}
	deas := ema(difs, signal)
	last := len(closes) - 1
	d := difs[last]
	s := deas[last]
	h := (d - s) * 2
	return floatPtr(d), floatPtr(s), floatPtr(h)
}

// Bollinger computes 20-day Bollinger bands at 2 standard deviations.
func Bollinger(bars []models.Bar) (upper, mid, lower *float64) {
	const n = 20
	if len(bars) < n {
		return nil, nil, nil
	}
	sum, sum2 := 0.0, 0.0
	for i := len(bars) - n; i < len(bars); i++ {
		c := bars[i].Close
		sum += c
		sum2 += c * c
	}
	mean := sum / n
	variance := sum2/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	sd := math.Sqrt(variance)
	return floatPtr(mean + 2*sd), floatPtr(mean), floatPtr(mean - 2*sd)
}

// pctReturn computes the percentage return over the last n bars.
func pctReturn(bars []models.Bar, n int) *float64 {
	if n <= 0 || len(bars) < n+1 {
		return nil
	}
	prev := bars[len(bars)-1-n].Close
	if prev == 0 {
		return nil
	}
	cur := bars[len(bars)-1].Close
	return floatPtr((cur - prev) / prev * 100)
}

// ComputeTechnical derives the full indicator set from an oldest-first daily
// price series. It never fails: with a short series the optional fields stay
// nil and DataRows reports what was available.
func ComputeTechnical(bars []models.Bar) *models.Technical {
	if len(bars) == 0 {
		return nil
	}
	last := bars[len(bars)-1]
	t := &models.Technical{
		LastClose:  last.Close,
		LastHigh:   last.High,
		LastLow:    last.Low,
		LastVolume: last.Volume,
		DataDate:   last.TradeDate,
		DataRows:   len(bars),
	}

	t.Return1D = pctReturn(bars, 1)
	t.Return5D = pctReturn(bars, 5)
	t.Return20D = pctReturn(bars, 20)
	t.Return60D = pctReturn(bars, 60)

	t.MA5 = SMA(bars, 5)
	t.MA10 = SMA(bars, 10)
	t.MA20 = SMA(bars, 20)
	t.MA60 = SMA(bars, 60)
	t.RSI14 = RSI(bars, 14)
	t.DIF, t.DEA, t.MACD = MACD(bars)
	t.BollUpper, t.BollMid, t.BollLower = Bollinger(bars)

	// 52-week range over at most 250 trading days
	window := bars
	if len(window) > 250 {
		window = window[len(window)-250:]
	}
	hi, lo := window[0].High, window[0].Low
	for _, b := range window[1:] {
		if b.High > hi {
			hi = b.High
		}
		if b.Low < lo && b.Low > 0 {
			lo = b.Low
		}
	}
	t.High52W = floatPtr(hi)
	t.Low52W = floatPtr(lo)

	t.Signal = trendSignal(t)
	return t
}

// trendSignal labels the short-term trend from MA alignment and RSI.
func trendSignal(t *models.Technical) string {
	if t.MA5 == nil || t.MA20 == nil {
		return ""
	}
	switch {
	case t.RSI14 != nil && *t.RSI14 >= 70:
		return "overbought"
	case t.RSI14 != nil && *t.RSI14 <= 30:
		return "oversold"
	case *t.MA5 > *t.MA20 && t.LastClose > *t.MA5:
		return "bullish"
	case *t.MA5 < *t.MA20 && t.LastClose < *t.MA5:
		return "bearish"
	default:
		return "neutral"
	}
}
