package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"AShareLab/internal/domain/models"
	"AShareLab/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func writeSymbolMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "symbol_map.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write symbol map: %v", err)
	}
	return path
}

const sampleMap = `[
  {"ts_code": "600519.SH", "name": "贵州茅台", "industry": "白酒", "aliases": ["茅台"]},
  {"ts_code": "000858.SZ", "name": "五粮液", "industry": "白酒"},
  {"ts_code": "300750.SZ", "name": "宁德时代", "industry": "电池", "aliases": ["宁王"]}
]`

func TestGuessTSCode(t *testing.T) {
	cases := []struct {
		code string
		want string
		ok   bool
	}{
		{"600519", "600519.SH", true},
		{"601318", "601318.SH", true},
		{"688981", "688981.SH", true},
		{"000001", "000001.SZ", true},
		{"002594", "002594.SZ", true},
		{"300750", "300750.SZ", true},
		{"430047", "430047.BJ", true},
		{"830799", "830799.BJ", true},
		{"999999", "", false},
		{"60051", "", false},
		{"60051a", "", false},
	}
	for _, c := range cases {
		got, ok := GuessTSCode(c.code)
		if got != c.want || ok != c.ok {
			t.Fatalf("GuessTSCode(%q) = %q,%v; want %q,%v", c.code, got, ok, c.want, c.ok)
		}
	}
}

func TestResolvePriority(t *testing.T) {
	r := NewResolver(writeSymbolMap(t, sampleMap), testLogger(t))
	ctx := context.Background()

	cases := []struct {
		keyword string
		tsCode  string
	}{
		{"600519", "600519.SH"},   // bare code
		{"600519.SH", "600519.SH"}, // full code
		{"茅台", "600519.SH"},       // alias
		{"五粮液", "000858.SZ"},      // exact name
		{"宁德", "300750.SZ"},       // partial name
		{"宁王", "300750.SZ"},       // alias
	}
	for _, c := range cases {
		base, err := r.Resolve(ctx, c.keyword)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", c.keyword, err)
		}
		if base.TSCode != c.tsCode {
			t.Fatalf("Resolve(%q) = %s; want %s", c.keyword, base.TSCode, c.tsCode)
		}
	}
}

func TestResolveUnknownKeyword(t *testing.T) {
	r := NewResolver(writeSymbolMap(t, sampleMap), testLogger(t))
	_, err := r.Resolve(context.Background(), "不存在的公司")
	var aggErr *models.AggregationError
	if !errors.As(err, &aggErr) {
		t.Fatalf("expected AggregationError, got %v", err)
	}
	if aggErr.Kind != models.UnresolvableEntity {
		t.Fatalf("expected unresolvable_entity, got %s", aggErr.Kind)
	}
}

func TestResolveCodeOutsideMap(t *testing.T) {
	r := NewResolver(writeSymbolMap(t, sampleMap), testLogger(t))
	base, err := r.Resolve(context.Background(), "601888")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if base.TSCode != "601888.SH" {
		t.Fatalf("expected suffix guess 601888.SH, got %s", base.TSCode)
	}
}

func TestResolveMissingMapFallsBackToGuess(t *testing.T) {
	r := NewResolver(filepath.Join(t.TempDir(), "missing.json"), testLogger(t))
	base, err := r.Resolve(context.Background(), "600519")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if base.TSCode != "600519.SH" {
		t.Fatalf("expected 600519.SH, got %s", base.TSCode)
	}

	if _, err := r.Resolve(context.Background(), "茅台"); err == nil {
		t.Fatalf("expected error when map missing and keyword is not a code")
	}
}
