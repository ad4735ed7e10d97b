package analytics

import (
	"strings"

	"AShareLab/internal/domain/models"
)

var positiveWords = []string{
	"上涨", "利好", "增长", "突破", "买入", "推荐", "牛市", "涨停",
	"盈利", "业绩增长", "分红", "回购",
}

var negativeWords = []string{
	"下跌", "利空", "下滑", "暴跌", "卖出", "风险", "熊市", "跌停",
	"亏损", "业绩下滑", "减持", "退市",
}

func keywordHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// ScoreSentiment classifies news tone by keyword counting. Each item scores
// 0..100 (positive items 70..100, negative 0..30, neutral 50) and the result
// averages them. With no news it returns a neutral baseline so scoring can
// proceed without a sentiment source.
func ScoreSentiment(items []models.NewsItem) *models.Sentiment {
	if len(items) == 0 {
		return &models.Sentiment{
			Overall:     "neutral",
			Score:       50,
			Percentages: map[string]float64{"positive": 30, "neutral": 40, "negative": 30},
		}
	}

	var posCount, negCount int
	var total float64
	for _, it := range items {
		text := it.Title + " " + it.Summary
		pos := keywordHits(text, positiveWords)
		neg := keywordHits(text, negativeWords)
		switch {
		case pos > neg:
			posCount++
			bonus := float64(pos * 5)
			if bonus > 30 {
				bonus = 30
			}
			total += 70 + bonus
		case neg > pos:
			negCount++
			penalty := float64(neg * 5)
			score := 30 - penalty
			if score < 0 {
				score = 0
			}
			total += score
		default:
			total += 50
		}
	}

	n := len(items)
	neuCount := n - posCount - negCount
	posPct := float64(posCount) / float64(n) * 100
	negPct := float64(negCount) / float64(n) * 100
	neuPct := float64(neuCount) / float64(n) * 100

	overall := "neutral"
	if posPct > 50 {
		overall = "positive"
	} else if negPct > 50 {
		overall = "negative"
	}

	return &models.Sentiment{
		Overall: overall,
		Score:   total / float64(n),
		Counts: map[string]int{
			"positive": posCount,
			"neutral":  neuCount,
			"negative": negCount,
		},
		Percentages: map[string]float64{
			"positive": posPct,
			"neutral":  neuPct,
			"negative": negPct,
		},
		Items: items,
	}
}
