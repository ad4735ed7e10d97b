package models

// Requests for HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Name  string `query:"name" json:"name" validate:"required,min=1,max=32"`
	Force bool   `query:"force" json:"force"`
}

type HotspotRequest struct {
	Keyword string `query:"keyword" json:"keyword" validate:"required,min=1,max=32"`
	Force   bool   `query:"force" json:"force"`
}

type ResolveRequest struct {
	Name string `query:"name" json:"name" validate:"required,min=1,max=32"`
}

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
}

type ReportHistoryRequest struct {
	Days int `query:"days" json:"days" default:"7" validate:"gte=1,lte=90"`
}
