package repository

import (
	"context"
	"testing"
	"time"

	"AShareLab/internal/domain/models"
)

func mkReport(t models.ReportType, date, summary string) *models.Report {
	return &models.Report{
		Type:        t,
		Date:        date,
		GeneratedAt: time.Now(),
		Summary:     summary,
	}
}

func TestFileReportStoreSaveGet(t *testing.T) {
	store, err := NewFileReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	want := mkReport(models.ReportMorning, "2026-08-28", "开盘前瞻")
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, models.ReportMorning, "2026-08-28")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Summary != want.Summary || got.Type != want.Type || got.Date != want.Date {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestFileReportStoreSaveRejectsInvalid(t *testing.T) {
	store, err := NewFileReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, nil); err == nil {
		t.Fatalf("nil report must be rejected")
	}
	if err := store.Save(ctx, mkReport("weekly", "2026-08-28", "x")); err == nil {
		t.Fatalf("unknown slot must be rejected")
	}
	if err := store.Save(ctx, mkReport(models.ReportNoon, "", "x")); err == nil {
		t.Fatalf("empty date must be rejected")
	}
}

func TestFileReportStoreSaveOverwrites(t *testing.T) {
	store, err := NewFileReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, mkReport(models.ReportEvening, "2026-08-28", "v1")); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	if err := store.Save(ctx, mkReport(models.ReportEvening, "2026-08-28", "v2")); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	got, err := store.Get(ctx, models.ReportEvening, "2026-08-28")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Summary != "v2" {
		t.Fatalf("expected overwrite, got %s", got.Summary)
	}
}

func TestFileReportStoreLatest(t *testing.T) {
	store, err := NewFileReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	for _, date := range []string{"2026-08-26", "2026-08-28", "2026-08-27"} {
		if err := store.Save(ctx, mkReport(models.ReportMorning, date, date)); err != nil {
			t.Fatalf("save %s: %v", date, err)
		}
	}
	if err := store.Save(ctx, mkReport(models.ReportEvening, "2026-08-29", "other slot")); err != nil {
		t.Fatalf("save evening: %v", err)
	}

	got, err := store.Latest(ctx, models.ReportMorning)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.Date != "2026-08-28" {
		t.Fatalf("expected 2026-08-28, got %s", got.Date)
	}

	if _, err := store.Latest(ctx, models.ReportNoon); err == nil {
		t.Fatalf("expected error for empty slot")
	}
}

func TestFileReportStoreListSince(t *testing.T) {
	store, err := NewFileReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	saves := []struct {
		t    models.ReportType
		date string
	}{
		{models.ReportMorning, "2026-08-20"},
		{models.ReportMorning, "2026-08-28"},
		{models.ReportEvening, "2026-08-28"},
		{models.ReportNoon, "2026-08-27"},
	}
	for _, s := range saves {
		if err := store.Save(ctx, mkReport(s.t, s.date, "x")); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	since, _ := time.Parse("2006-01-02", "2026-08-25")
	got, err := store.List(ctx, since)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 reports since cutoff, got %d", len(got))
	}
	if got[0].Date != "2026-08-28" {
		t.Fatalf("expected newest first, got %s", got[0].Date)
	}
	if got[len(got)-1].Date != "2026-08-27" {
		t.Fatalf("expected oldest last, got %s", got[len(got)-1].Date)
	}
}

func TestFileReportStoreDelete(t *testing.T) {
	store, err := NewFileReportStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, mkReport(models.ReportNoon, "2026-08-28", "x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, models.ReportNoon, "2026-08-28"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, models.ReportNoon, "2026-08-28"); err == nil {
		t.Fatalf("expected miss after delete")
	}
}
