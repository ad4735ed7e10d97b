package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"AShareLab/internal/domain/models"
	"AShareLab/pkg/logger"
)

// symbolEntry is one row of the local symbol map file.
type symbolEntry struct {
	TSCode   string   `json:"ts_code"`
	Name     string   `json:"name"`
	Industry string   `json:"industry,omitempty"`
	Area     string   `json:"area,omitempty"`
	Aliases  []string `json:"aliases,omitempty"`
}

// Resolver maps free-form user input (name, alias or code) to a stock
// identity using a local symbol map, with a suffix-guessing fallback for
// bare six-digit codes.
type Resolver struct {
	path string
	log  *logger.Logger

	mu      sync.RWMutex
	entries []symbolEntry
	loaded  bool
}

// NewResolver creates a resolver backed by the symbol map at path. The file
// is loaded lazily on first use and cached for the process lifetime.
func NewResolver(path string, log *logger.Logger) *Resolver {
	return &Resolver{path: path, log: log}
}

func (r *Resolver) load() ([]symbolEntry, error) {
	r.mu.RLock()
	if r.loaded {
		defer r.mu.RUnlock()
		return r.entries, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return r.entries, nil
	}
	b, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("load symbol map %s: %w", r.path, err)
	}
	var entries []symbolEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse symbol map %s: %w", r.path, err)
	}
	r.entries = entries
	r.loaded = true
	r.log.Info("symbol map loaded", logger.Int("entries", len(entries)))
	return entries, nil
}

// GuessTSCode maps a bare six-digit code to its exchange-suffixed form by
// code prefix, or returns false for codes it cannot place.
func GuessTSCode(code string) (string, bool) {
	if len(code) != 6 {
		return "", false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	switch {
	case strings.HasPrefix(code, "600"), strings.HasPrefix(code, "601"),
		strings.HasPrefix(code, "603"), strings.HasPrefix(code, "605"),
		strings.HasPrefix(code, "688"):
		return code + ".SH", true
	case strings.HasPrefix(code, "000"), strings.HasPrefix(code, "001"),
		strings.HasPrefix(code, "002"), strings.HasPrefix(code, "003"),
		strings.HasPrefix(code, "300"), strings.HasPrefix(code, "301"):
		return code + ".SZ", true
	case strings.HasPrefix(code, "430"), strings.HasPrefix(code, "83"),
		strings.HasPrefix(code, "87"), strings.HasPrefix(code, "88"):
		return code + ".BJ", true
	}
	return "", false
}

// Resolve finds the best matching stock for a keyword. Match priority is
// code, alias, exact name, then partial name (shorter length difference
// wins). Unknown keywords return an AggregationError with kind
// unresolvable_entity.
func (r *Resolver) Resolve(ctx context.Context, keyword string) (*models.StockBase, error) {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return nil, &models.AggregationError{Kind: models.UnresolvableEntity, Name: keyword}
	}

	entries, err := r.load()
	if err != nil {
		// map unavailable, fall back to suffix guessing for codes
		if ts, ok := GuessTSCode(kw); ok {
			return &models.StockBase{TSCode: ts, Symbol: kw, Name: kw}, nil
		}
		return nil, &models.AggregationError{Kind: models.UnresolvableEntity, Name: kw, Err: err}
	}

	type candidate struct {
		entry symbolEntry
		rank  int
	}
	var best *candidate
	consider := func(e symbolEntry, rank int) {
		if best == nil || rank < best.rank {
			best = &candidate{entry: e, rank: rank}
		}
	}

	for _, e := range entries {
		bare := e.TSCode
		if i := strings.IndexByte(bare, '.'); i > 0 {
			bare = bare[:i]
		}
		switch {
		case kw == e.TSCode || kw == bare:
			consider(e, -1)
		case containsAlias(e.Aliases, kw):
			consider(e, 0)
		case kw == e.Name:
			consider(e, 1)
		case strings.Contains(e.Name, kw) || strings.Contains(kw, e.Name):
			diff := len(e.Name) - len(kw)
			if diff < 0 {
				diff = -diff
			}
			consider(e, 2+diff)
		}
	}

	if best == nil {
		if ts, ok := GuessTSCode(kw); ok {
			return &models.StockBase{TSCode: ts, Symbol: kw, Name: kw}, nil
		}
		return nil, &models.AggregationError{Kind: models.UnresolvableEntity, Name: kw}
	}

	e := best.entry
	symbol := e.TSCode
	if i := strings.IndexByte(symbol, '.'); i > 0 {
		symbol = symbol[:i]
	}
	return &models.StockBase{
		TSCode:   e.TSCode,
		Symbol:   symbol,
		Name:     e.Name,
		Industry: e.Industry,
		Area:     e.Area,
	}, nil
}

func containsAlias(aliases []string, kw string) bool {
	for _, a := range aliases {
		if a == kw {
			return true
		}
	}
	return false
}
