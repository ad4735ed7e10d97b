package models

import "time"

// ReportType identifies one of the daily report slots.
type ReportType string

const (
	ReportMorning ReportType = "morning"
	ReportNoon    ReportType = "noon"
	ReportEvening ReportType = "evening"
)

// ValidReportType reports whether t is a known report slot.
func ValidReportType(t string) bool {
	switch ReportType(t) {
	case ReportMorning, ReportNoon, ReportEvening:
		return true
	}
	return false
}

// Report is a generated daily report, persisted as a dated file.
type Report struct {
	Type        ReportType      `json:"type"`
	Date        string          `json:"date"` // YYYY-MM-DD
	GeneratedAt time.Time       `json:"generated_at"`
	Market      *MarketOverview `json:"market,omitempty"`
	Highlights  []string        `json:"highlights,omitempty"`
	Summary     string          `json:"summary"`
	LLMUsed     bool            `json:"llm_used"`
}

// TaskState tracks an async report generation task.
type TaskState string

const (
	TaskPending TaskState = "pending"
	TaskRunning TaskState = "running"
	TaskDone    TaskState = "done"
	TaskFailed  TaskState = "failed"
)

// ReportTask is the pollable state of one report generation request.
type ReportTask struct {
	ID        string     `json:"task_id"`
	Type      ReportType `json:"type"`
	State     TaskState  `json:"state"`
	Progress  int        `json:"progress"` // 0..100
	Error     string     `json:"error,omitempty"`
	Report    *Report    `json:"report,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
