package analytics

import (
	"testing"

	"AShareLab/internal/domain/models"
)

func TestScoreSentimentEmpty(t *testing.T) {
	s := ScoreSentiment(nil)
	if s.Overall != "neutral" || s.Score != 50 {
		t.Fatalf("expected neutral/50 baseline, got %s/%v", s.Overall, s.Score)
	}
	if s.Percentages["positive"] != 30 || s.Percentages["neutral"] != 40 || s.Percentages["negative"] != 30 {
		t.Fatalf("unexpected baseline percentages: %v", s.Percentages)
	}
}

func TestScoreSentimentPositiveMajority(t *testing.T) {
	items := []models.NewsItem{
		{Title: "公司业绩增长超预期 股价上涨"},
		{Title: "机构推荐买入 利好不断"},
		{Title: "例行公告"},
	}
	s := ScoreSentiment(items)
	if s.Overall != "positive" {
		t.Fatalf("expected positive, got %s", s.Overall)
	}
	if s.Counts["positive"] != 2 || s.Counts["neutral"] != 1 {
		t.Fatalf("unexpected counts: %v", s.Counts)
	}
	if s.Score <= 50 {
		t.Fatalf("expected score above 50, got %v", s.Score)
	}
}

func TestScoreSentimentNegative(t *testing.T) {
	items := []models.NewsItem{
		{Title: "股价暴跌 大股东减持 风险加大"},
	}
	s := ScoreSentiment(items)
	if s.Overall != "negative" {
		t.Fatalf("expected negative, got %s", s.Overall)
	}
	// three hits, 30 - 15 = 15
	if s.Score != 15 {
		t.Fatalf("expected 15, got %v", s.Score)
	}
}

func TestScoreSentimentMixedItemNeutral(t *testing.T) {
	items := []models.NewsItem{
		{Title: "上涨乏力 风险犹存"}, // one positive, one negative hit
	}
	s := ScoreSentiment(items)
	if s.Counts["neutral"] != 1 || s.Score != 50 {
		t.Fatalf("balanced hits should be neutral: %v %v", s.Counts, s.Score)
	}
}
