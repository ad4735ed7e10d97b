package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"AShareLab/internal/domain/models"
	domrepo "AShareLab/internal/domain/repository"
	"AShareLab/pkg/logger"
	"AShareLab/pkg/queue"
	"AShareLab/pkg/util"
)

// ReportJobType is the queue message type for report generation.
const ReportJobType = "report:generate"

// reportJobPayload is the queue payload for one generation run.
type reportJobPayload struct {
	TaskID string `json:"task_id"`
	Type   string `json:"type"`
	Date   string `json:"date"`
}

// ReportUseCase generates the three daily report slots. Generation is
// asynchronous: Enqueue returns a task id immediately and a queue worker
// builds the report, updating task state as it goes.
type ReportUseCase struct {
	market  *MarketUseCase
	narr    *NarrativeUseCase
	store   domrepo.ReportStore
	queue   queue.QueueService
	metrics domrepo.Metrics
	log     *logger.Logger

	mu    sync.RWMutex
	tasks map[string]*models.ReportTask
}

// NewReportUseCase wires report generation.
func NewReportUseCase(
	market *MarketUseCase,
	narr *NarrativeUseCase,
	store domrepo.ReportStore,
	q queue.QueueService,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		market:  market,
		narr:    narr,
		store:   store,
		queue:   q,
		metrics: metrics,
		log:     log,
		tasks:   make(map[string]*models.ReportTask),
	}
}

// Enqueue registers a pending task and publishes the generation job.
func (uc *ReportUseCase) Enqueue(ctx context.Context, t models.ReportType) (*models.ReportTask, error) {
	if !models.ValidReportType(string(t)) {
		return nil, fmt.Errorf("unknown report type %q", t)
	}
	now := time.Now()
	task := &models.ReportTask{
		ID:        uuid.NewString(),
		Type:      t,
		State:     models.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	uc.mu.Lock()
	uc.tasks[task.ID] = task
	uc.mu.Unlock()

	payload := reportJobPayload{TaskID: task.ID, Type: string(t), Date: util.DateDash(0)}
	if err := uc.queue.PublishMessage(ctx, ReportJobType, payload); err != nil {
		uc.updateTask(task.ID, func(t *models.ReportTask) {
			t.State = models.TaskFailed
			t.Error = err.Error()
		})
		return nil, fmt.Errorf("enqueue report: %w", err)
	}
	return task, nil
}

// Task returns the current state of a task by id.
func (uc *ReportUseCase) Task(id string) (*models.ReportTask, bool) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	t, ok := uc.tasks[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

// Latest returns the newest stored report for a slot.
func (uc *ReportUseCase) Latest(ctx context.Context, t models.ReportType) (*models.Report, error) {
	return uc.store.Latest(ctx, t)
}

// Get returns one stored report by slot and date.
func (uc *ReportUseCase) Get(ctx context.Context, t models.ReportType, date string) (*models.Report, error) {
	return uc.store.Get(ctx, t, date)
}

// History returns reports generated in the last N days, newest first.
func (uc *ReportUseCase) History(ctx context.Context, days int) ([]*models.Report, error) {
	if days <= 0 {
		days = 7
	}
	return uc.store.List(ctx, time.Now().AddDate(0, 0, -days))
}

// Delete removes one stored report by slot and date.
func (uc *ReportUseCase) Delete(ctx context.Context, t models.ReportType, date string) error {
	return uc.store.Delete(ctx, t, date)
}

func (uc *ReportUseCase) updateTask(id string, fn func(*models.ReportTask)) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if t, ok := uc.tasks[id]; ok {
		fn(t)
		t.UpdatedAt = time.Now()
	}
}

// Generate builds and persists one report synchronously. The scheduler calls
// this directly; queued tasks go through the job handler below.
func (uc *ReportUseCase) Generate(ctx context.Context, t models.ReportType, date string) (*models.Report, error) {
	started := time.Now()
	mkt, err := uc.market.Overview(ctx, false)
	if err != nil {
		uc.metrics.RecordError("report:" + string(t))
		return nil, fmt.Errorf("report %s: market overview: %w", t, err)
	}

	report := &models.Report{
		Type:        t,
		Date:        date,
		GeneratedAt: time.Now(),
		Market:      mkt,
		Highlights:  reportHighlights(mkt),
	}
	report.Summary, report.LLMUsed = uc.narr.MarketNarrative(ctx, mkt)

	if err := uc.store.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("report %s: save: %w", t, err)
	}
	uc.metrics.RecordPipeline("report", time.Since(started).Seconds())
	uc.log.Info("report generated",
		logger.String("type", string(t)),
		logger.String("date", date),
		logger.Bool("llm_used", report.LLMUsed))
	return report, nil
}

// reportHighlights extracts one-line highlights from the overview.
func reportHighlights(mkt *models.MarketOverview) []string {
	var out []string
	for _, ix := range mkt.Indices {
		out = append(out, fmt.Sprintf("%s %+.2f%%", ix.Name, ix.PctChg))
	}
	if br := mkt.Breadth; br != nil {
		out = append(out, fmt.Sprintf("涨%d家 跌%d家 涨停%d家", br.Up, br.Down, br.LimitUp))
	}
	if cf := mkt.CapitalFlow; cf != nil && cf.NorthNet != nil {
		out = append(out, fmt.Sprintf("北向资金 %+.2f亿", *cf.NorthNet))
	}
	return out
}

// ReportJob is the queue job that runs report generation for async tasks.
type ReportJob struct {
	uc *ReportUseCase
}

// NewReportJob creates the queue job handler.
func NewReportJob(uc *ReportUseCase) *ReportJob { return &ReportJob{uc: uc} }

func (j *ReportJob) Name() string { return "report-generator" }

func (j *ReportJob) Type() string { return ReportJobType }

// Handle generates the report and moves the task through its states.
func (j *ReportJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[reportJobPayload](payload)
	if err != nil {
		return fmt.Errorf("report job payload: %w", err)
	}

	j.uc.updateTask(p.TaskID, func(t *models.ReportTask) {
		t.State = models.TaskRunning
		t.Progress = 10
	})

	report, err := j.uc.Generate(ctx, models.ReportType(p.Type), p.Date)
	if err != nil {
		j.uc.updateTask(p.TaskID, func(t *models.ReportTask) {
			t.State = models.TaskFailed
			t.Error = err.Error()
		})
		return err
	}

	j.uc.updateTask(p.TaskID, func(t *models.ReportTask) {
		t.State = models.TaskDone
		t.Progress = 100
		t.Report = report
	})
	return nil
}

var _ queue.Job = (*ReportJob)(nil)
