package models

// ScoreCard is the structured numeric output of the scoring engine.
// Sub-scores keep their original ceilings: technical 40, sentiment 35,
// fundamental 20, macro 5. Total is their sum clamped to [0, 100].
type ScoreCard struct {
	Total       float64 `json:"total_score"`
	Technical   float64 `json:"score_technical"`
	Sentiment   float64 `json:"score_sentiment"`
	Fundamental float64 `json:"score_fundamental"`
	Macro       float64 `json:"score_macro"`
	Rating      string  `json:"rating"`
	Suggestion  string  `json:"suggestion"`
}
