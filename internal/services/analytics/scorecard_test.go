package analytics

import (
	"testing"
)

func TestScoreCardNeutralFallbacks(t *testing.T) {
	card := ComputeScoreCard(nil, nil, nil, nil)
	if card.Technical != neutralTechnical {
		t.Fatalf("expected technical %v, got %v", neutralTechnical, card.Technical)
	}
	if card.Sentiment != neutralSentiment {
		t.Fatalf("expected sentiment %v, got %v", neutralSentiment, card.Sentiment)
	}
	if card.Fundamental != neutralFundamental {
		t.Fatalf("expected fundamental %v, got %v", neutralFundamental, card.Fundamental)
	}
	if card.Macro != neutralMacro {
		t.Fatalf("expected macro %v, got %v", neutralMacro, card.Macro)
	}
	if card.Total != 42 {
		t.Fatalf("expected total 42, got %v", card.Total)
	}
	if card.Rating != "中性偏空" || card.Suggestion != "减持" {
		t.Fatalf("unexpected rating for 42: %s/%s", card.Rating, card.Suggestion)
	}
}

func TestScoreCardDeterministic(t *testing.T) {
	bars := mkBars(10, 10.2, 10.1, 10.4, 10.6, 10.5, 10.8, 11, 10.9, 11.2,
		11.1, 11.4, 11.6, 11.5, 11.8, 12, 11.9, 12.2, 12.1, 12.4,
		12.6, 12.5, 12.8, 13, 12.9, 13.2, 13.1, 13.4, 13.6, 13.5,
		13.8, 14, 13.9, 14.2, 14.1, 14.4)
	tech := ComputeTechnical(bars)
	a := ComputeScoreCard(tech, ScoreSentiment(nil), nil, nil)
	b := ComputeScoreCard(tech, ScoreSentiment(nil), nil, nil)
	if *a != *b {
		t.Fatalf("same inputs must produce identical cards: %+v vs %+v", a, b)
	}
	if a.Total != a.Technical+a.Sentiment+a.Fundamental+a.Macro {
		t.Fatalf("total should be sum of parts, got %v", a.Total)
	}
}

func TestRatingLadder(t *testing.T) {
	cases := []struct {
		total      float64
		rating     string
		suggestion string
	}{
		{85, "强烈推荐", "买入"},
		{80, "强烈推荐", "买入"},
		{75, "推荐", "买入"},
		{65, "中性偏多", "持有"},
		{55, "中性", "观望"},
		{45, "中性偏空", "减持"},
		{30, "不推荐", "卖出"},
	}
	for _, c := range cases {
		rating, suggestion := ratingFor(c.total)
		if rating != c.rating || suggestion != c.suggestion {
			t.Fatalf("total %v: expected %s/%s, got %s/%s", c.total, c.rating, c.suggestion, rating, suggestion)
		}
	}
}
