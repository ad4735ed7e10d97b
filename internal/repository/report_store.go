package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"AShareLab/internal/domain/models"
	drepo "AShareLab/internal/domain/repository"
)

// FileReportStore persists reports as one JSON file per slot and date,
// named <type>_<YYYY-MM-DD>.json under the reports directory.
type FileReportStore struct {
	dir string
}

// NewFileReportStore creates the store and its directory.
func NewFileReportStore(dir string) (*FileReportStore, error) {
	if dir == "" {
		dir = "data/reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	return &FileReportStore{dir: dir}, nil
}

func (s *FileReportStore) path(t models.ReportType, date string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", t, date))
}

// Save writes the report, replacing any existing file for the same slot
// and date. The write is atomic via a temp file rename.
func (s *FileReportStore) Save(ctx context.Context, r *models.Report) error {
	if r == nil || !models.ValidReportType(string(r.Type)) || r.Date == "" {
		return fmt.Errorf("invalid report")
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	p := s.path(r.Type, r.Date)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return os.Rename(tmp, p)
}

// Get loads one report by slot and date.
func (s *FileReportStore) Get(ctx context.Context, t models.ReportType, date string) (*models.Report, error) {
	b, err := os.ReadFile(s.path(t, date))
	if err != nil {
		return nil, fmt.Errorf("read report %s %s: %w", t, date, err)
	}
	var r models.Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse report %s %s: %w", t, date, err)
	}
	return &r, nil
}

// Latest returns the most recent report of the given slot.
func (s *FileReportStore) Latest(ctx context.Context, t models.ReportType) (*models.Report, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	prefix := string(t) + "_"
	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("no %s reports", t)
	}
	sort.Strings(dates)
	return s.Get(ctx, t, dates[len(dates)-1])
}

// List returns all reports generated since the given time, newest first.
func (s *FileReportStore) List(ctx context.Context, since time.Time) ([]*models.Report, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	cutoff := since.Format("2006-01-02")
	var out []*models.Report
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		base := strings.TrimSuffix(name, ".json")
		i := strings.IndexByte(base, '_')
		if i <= 0 {
			continue
		}
		t, date := models.ReportType(base[:i]), base[i+1:]
		if !models.ValidReportType(string(t)) || date < cutoff {
			continue
		}
		r, err := s.Get(ctx, t, date)
		if err != nil {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// Delete removes one report file.
func (s *FileReportStore) Delete(ctx context.Context, t models.ReportType, date string) error {
	if err := os.Remove(s.path(t, date)); err != nil {
		return fmt.Errorf("delete report %s %s: %w", t, date, err)
	}
	return nil
}

var _ drepo.ReportStore = (*FileReportStore)(nil)
