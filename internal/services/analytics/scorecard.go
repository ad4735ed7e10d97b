package analytics

import (
	"math"

	"AShareLab/internal/domain/models"
)

// Neutral sub-scores used when a whole category of input is missing.
// Scoring must always produce a card, so absent data scores mid-range
// rather than zero.
const (
	neutralTechnical   = 20.0
	neutralSentiment   = 10.0
	neutralFundamental = 10.0
	neutralMacro       = 2.0
)

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// scoreTechnical scores the technical picture out of 40.
func scoreTechnical(t *models.Technical) float64 {
	if t == nil {
		return neutralTechnical
	}
	score := 0.0

	if t.RSI14 != nil {
		rsi := *t.RSI14
		switch {
		case rsi >= 40 && rsi <= 60:
			score += 15
		case rsi < 30:
			score += 10
		case rsi > 70:
			score += 5
		default:
			score += 8
		}
	}

	if t.DIF != nil && t.DEA != nil {
		if *t.DIF > *t.DEA {
			score += 15
		} else {
			score += 5
		}
	}

	// band position: support near the lower band, pressure at the upper
	switch {
	case t.BollLower != nil && t.LastClose <= *t.BollLower:
		score += 8
	case t.BollUpper != nil && t.LastClose >= *t.BollUpper:
		score += 3
	default:
		score += 5
	}

	return clamp(score, 0, 40)
}

// scoreSentimentPart scores news tone out of 35.
func scoreSentimentPart(s *models.Sentiment) float64 {
	if s == nil {
		return neutralSentiment
	}
	score := 0.0
	switch s.Overall {
	case "positive":
		score += 20
	case "negative":
		score += 5
	default:
		score += 10
	}

	posPct := s.Percentages["positive"]
	negPct := s.Percentages["negative"]
	switch {
	case posPct > 60:
		score += 10
	case posPct > 40:
		score += 7
	case posPct > 20:
		score += 4
	}
	switch {
	case negPct > 40:
		score -= 5
	case negPct > 20:
		score -= 2
	}

	return clamp(score, 0, 35)
}

// scoreFundamental scores financials out of 20.
func scoreFundamental(f *models.Fundamental) float64 {
	if f == nil || (f.Latest == nil && len(f.IncomeRecent) == 0) {
		return neutralFundamental
	}
	score := 0.0

	if latest := f.Latest; latest != nil {
		if latest.ROE != nil {
			score += clamp(*latest.ROE/20.0*8.0, 0, 8)
		}
		if latest.NetProfitMargin != nil {
			score += clamp(*latest.NetProfitMargin/20.0*4.0, 0, 4)
		}
		if latest.DebtToAssets != nil {
			switch dr := *latest.DebtToAssets; {
			case dr < 30:
				score += 3
			case dr < 60:
				score += 2
			case dr < 80:
				score += 1
			}
		}
	}

	// revenue and profit trend over the last four quarters, newest first
	if inc := f.IncomeRecent; len(inc) >= 2 {
		take := inc
		if len(take) > 4 {
			take = take[:4]
		}
		first, last := take[0], take[len(take)-1]
		if first.Revenue != nil && last.Revenue != nil && *first.Revenue >= *last.Revenue {
			score += 2
		}
		if first.NetIncome != nil && last.NetIncome != nil && *first.NetIncome >= *last.NetIncome {
			score += 3
		}
	}

	return clamp(score, 0, 20)
}

// scoreMacro scores the macro backdrop out of 5.
func scoreMacro(m *models.Macro) float64 {
	if m == nil || (m.M2YoY == nil && m.ShiborON == nil) {
		return neutralMacro
	}
	score := 0.0
	if m.M2YoY != nil {
		switch m2 := *m.M2YoY; {
		case m2 >= 8:
			score += 2
		case m2 >= 5:
			score += 1
		}
	}
	if m.ShiborON != nil {
		switch on := *m.ShiborON; {
		case on <= 1.5:
			score += 2
		case on <= 2.0:
			score += 1
		}
	}
	return clamp(score, 0, 5)
}

// ComputeScoreCard combines the four sub-scores (technical 40, sentiment 35,
// fundamental 20, macro 5) into a rated card. It is deterministic and never
// fails: missing categories fall back to neutral mid-range values.
func ComputeScoreCard(t *models.Technical, s *models.Sentiment, f *models.Fundamental, m *models.Macro) *models.ScoreCard {
	card := &models.ScoreCard{
		Technical:   round1(scoreTechnical(t)),
		Sentiment:   round1(scoreSentimentPart(s)),
		Fundamental: round1(scoreFundamental(f)),
		Macro:       round1(scoreMacro(m)),
	}
	card.Total = round1(clamp(card.Technical+card.Sentiment+card.Fundamental+card.Macro, 0, 100))
	card.Rating, card.Suggestion = ratingFor(card.Total)
	return card
}

func ratingFor(total float64) (rating, suggestion string) {
	switch {
	case total >= 80:
		return "强烈推荐", "买入"
	case total >= 70:
		return "推荐", "买入"
	case total >= 60:
		return "中性偏多", "持有"
	case total >= 50:
		return "中性", "观望"
	case total >= 40:
		return "中性偏空", "减持"
	default:
		return "不推荐", "卖出"
	}
}
