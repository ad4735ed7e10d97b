package usecase

import (
	"context"
	"fmt"
	"strings"

	"AShareLab/internal/domain/models"
	domrepo "AShareLab/internal/domain/repository"
	"AShareLab/pkg/logger"
)

// NarrativeUseCase produces commentary text. It tries the LLM first and
// falls back to templated Chinese text built from the structured data, so
// callers always get a non-empty narrative.
type NarrativeUseCase struct {
	narrator domrepo.Narrator
	metrics  domrepo.Metrics
	log      *logger.Logger
}

// NewNarrativeUseCase wires the narrator. narrator may be nil, in which case
// every call takes the templated path.
func NewNarrativeUseCase(narrator domrepo.Narrator, metrics domrepo.Metrics, log *logger.Logger) *NarrativeUseCase {
	return &NarrativeUseCase{narrator: narrator, metrics: metrics, log: log}
}

// StockNarrative returns commentary for one stock and whether it came from
// the LLM.
func (uc *NarrativeUseCase) StockNarrative(ctx context.Context, snap *models.AggregatedSnapshot, card *models.ScoreCard) (string, bool) {
	if uc.narrator != nil {
		text, err := uc.narrator.SummarizeStock(ctx, snap, card)
		if err == nil && text != "" {
			return text, true
		}
		uc.fallback("stock", err)
	}
	return templateStock(snap, card), false
}

// HotspotNarrative returns commentary for a hotspot analysis.
func (uc *NarrativeUseCase) HotspotNarrative(ctx context.Context, hot *models.HotspotResult) (string, bool) {
	if uc.narrator != nil {
		text, err := uc.narrator.SummarizeHotspot(ctx, hot)
		if err == nil && text != "" {
			return text, true
		}
		uc.fallback("hotspot", err)
	}
	return templateHotspot(hot), false
}

// MarketNarrative returns commentary for the market overview.
func (uc *NarrativeUseCase) MarketNarrative(ctx context.Context, mkt *models.MarketOverview) (string, bool) {
	if uc.narrator != nil {
		text, err := uc.narrator.SummarizeMarket(ctx, mkt)
		if err == nil && text != "" {
			return text, true
		}
		uc.fallback("market", err)
	}
	return templateMarket(mkt), false
}

func (uc *NarrativeUseCase) fallback(kind string, err error) {
	uc.metrics.RecordLLMFallback(kind)
	uc.log.Warn("llm unavailable, using templated narrative",
		logger.String("kind", kind), logger.Error(err))
}

func templateStock(snap *models.AggregatedSnapshot, card *models.ScoreCard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s（%s）", snap.Base.Name, snap.Base.TSCode)
	if t := snap.Technical; t != nil {
		fmt.Fprintf(&b, "最新收盘价%.2f元（%s）。", t.LastClose, t.DataDate)
		if t.Return20D != nil {
			fmt.Fprintf(&b, "近20日涨跌幅%.2f%%。", *t.Return20D)
		}
		if t.RSI14 != nil {
			fmt.Fprintf(&b, "RSI14为%.1f。", *t.RSI14)
		}
	}
	if s := snap.Sentiment; s != nil {
		switch s.Overall {
		case "positive":
			b.WriteString("近期新闻情绪偏正面。")
		case "negative":
			b.WriteString("近期新闻情绪偏负面。")
		default:
			b.WriteString("近期新闻情绪中性。")
		}
	}
	if card != nil {
		fmt.Fprintf(&b, "综合评分%.0f分，评级「%s」，操作建议：%s。", card.Total, card.Rating, card.Suggestion)
	}
	b.WriteString("以上内容由规则模板生成，仅供参考，不构成投资建议。")
	return b.String()
}

func templateHotspot(hot *models.HotspotResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "题材「%s」近期共收录%d条相关新闻。", hot.Keyword, len(hot.News))
	if s := hot.Sentiment; s != nil {
		switch s.Overall {
		case "positive":
			b.WriteString("整体舆论偏正面。")
		case "negative":
			b.WriteString("整体舆论偏负面。")
		default:
			b.WriteString("整体舆论情绪中性。")
		}
	}
	if len(hot.Stocks) > 0 {
		names := make([]string, 0, len(hot.Stocks))
		for _, st := range hot.Stocks {
			names = append(names, st.Base.Name)
		}
		fmt.Fprintf(&b, "相关个股包括：%s。", strings.Join(names, "、"))
	}
	b.WriteString("以上内容由规则模板生成，仅供参考，不构成投资建议。")
	return b.String()
}

func templateMarket(mkt *models.MarketOverview) string {
	var b strings.Builder
	for _, ix := range mkt.Indices {
		fmt.Fprintf(&b, "%s报%.2f点，涨跌幅%+.2f%%。", ix.Name, ix.Close, ix.PctChg)
	}
	if br := mkt.Breadth; br != nil {
		fmt.Fprintf(&b, "两市上涨%d家，下跌%d家，涨停%d家，跌停%d家。", br.Up, br.Down, br.LimitUp, br.LimitDown)
	}
	if cf := mkt.CapitalFlow; cf != nil && cf.NorthNet != nil {
		fmt.Fprintf(&b, "北向资金净流入%.2f亿元。", *cf.NorthNet)
	}
	if b.Len() == 0 {
		b.WriteString("暂无可用的大盘数据。")
	}
	b.WriteString("以上内容由规则模板生成，仅供参考，不构成投资建议。")
	return b.String()
}
