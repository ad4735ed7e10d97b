package analytics

import (
	"fmt"
	"math"
	"testing"

	"AShareLab/internal/domain/models"
)

func mkBars(closes ...float64) []models.Bar {
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			TradeDate: fmt.Sprintf("202401%02d", i+1),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func TestSMA(t *testing.T) {
	bars := mkBars(1, 2, 3, 4, 5)
	got := SMA(bars, 5)
	if got == nil || *got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	if SMA(bars, 6) != nil {
		t.Fatalf("expected nil for short series")
	}
}

func TestRSIAllGains(t *testing.T) {
	bars := mkBars(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15)
	got := RSI(bars, 14)
	if got == nil || *got != 100 {
		t.Fatalf("expected 100 for monotonic gains, got %v", got)
	}
}

func TestRSIMidRange(t *testing.T) {
	closes := make([]float64, 0, 30)
	for i := 0; i < 30; i++ {
		if i%2 == 0 {
			closes = append(closes, 10+float64(i)*0.1)
		} else {
			closes = append(closes, 10+float64(i)*0.1-0.05)
		}
	}
	got := RSI(mkBars(closes...), 14)
	if got == nil {
		t.Fatalf("expected rsi")
	}
	if *got <= 0 || *got >= 100 {
		t.Fatalf("rsi out of range: %v", *got)
	}
}

func TestMACDShortSeries(t *testing.T) {
	dif, dea, macd := MACD(mkBars(1, 2, 3))
	if dif != nil || dea != nil || macd != nil {
		t.Fatalf("expected nil for short series")
	}
}

func TestMACDFlatSeries(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 10
	}
	dif, dea, macd := MACD(mkBars(closes...))
	if dif == nil || dea == nil || macd == nil {
		t.Fatalf("expected values")
	}
	if math.Abs(*dif) > 1e-9 || math.Abs(*macd) > 1e-9 {
		t.Fatalf("flat series should have zero macd, got dif=%v macd=%v", *dif, *macd)
	}
}

func TestBollingerFlat(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 10
	}
	upper, mid, lower := Bollinger(mkBars(closes...))
	if upper == nil || mid == nil || lower == nil {
		t.Fatalf("expected bands")
	}
	if *mid != 10 || *upper != 10 || *lower != 10 {
		t.Fatalf("flat series bands should collapse, got %v %v %v", *upper, *mid, *lower)
	}
}

func TestComputeTechnicalShortSeries(t *testing.T) {
	tech := ComputeTechnical(mkBars(10, 11))
	if tech == nil {
		t.Fatalf("expected technical")
	}
	if tech.DataRows != 2 {
		t.Fatalf("expected 2 rows, got %d", tech.DataRows)
	}
	if tech.LastClose != 11 {
		t.Fatalf("expected last close 11, got %v", tech.LastClose)
	}
	if tech.RSI14 != nil || tech.MA20 != nil || tech.MACD != nil {
		t.Fatalf("short series should leave indicators nil")
	}
	if tech.Return1D == nil || *tech.Return1D != 10 {
		t.Fatalf("expected 10%% return, got %v", tech.Return1D)
	}
}

func TestComputeTechnicalEmpty(t *testing.T) {
	if ComputeTechnical(nil) != nil {
		t.Fatalf("expected nil for empty series")
	}
}
