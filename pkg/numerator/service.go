// Package numerator issues gapless document numbers such as V-2026-00001.
// Numbers are drawn inside the caller's transaction, so a rolled back
// document gives its number back.
package numerator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of a pgx connection the numerator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config describes one numbering series.
type Config struct {
	// Prefix added to all numbers (e.g., "V", "D")
	Prefix string

	// PadWidth is the minimum digit width (default 5)
	PadWidth int

	// Yearly restarts the series every calendar year and prints the year.
	Yearly bool
}

// DefaultConfig returns a yearly series with 5 digits.
func DefaultConfig(prefix string) Config {
	return Config{Prefix: prefix, PadWidth: 5, Yearly: true}
}

// Service hands out numbers. The querier is resolved per call so that an
// ambient transaction in ctx is honored.
type Service struct {
	querier func(ctx context.Context) Querier
}

// New creates a numerator that resolves its querier from ctx.
func New(querier func(ctx context.Context) Querier) *Service {
	return &Service{querier: querier}
}

// NewStatic creates a numerator bound to one querier.
func NewStatic(q Querier) *Service {
	return New(func(context.Context) Querier { return q })
}

// Next returns the next formatted number of the series for period.
func (s *Service) Next(ctx context.Context, cfg Config, period time.Time) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	key := Key(cfg, period)

	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", key, err)
	}

	return Format(cfg, period, num), nil
}

// Set forces the last issued value of a series, e.g. after importing history.
func (s *Service) Set(ctx context.Context, cfg Config, period time.Time, value int64) error {
	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, Key(cfg, period), value).Scan(&result)
	return err
}

// Key is the sys_sequences row of a series for period.
func Key(cfg Config, period time.Time) string {
	if cfg.Yearly {
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	}
	return cfg.Prefix
}

// Format renders num in the series layout.
func Format(cfg Config, period time.Time, num int64) string {
	pad := cfg.PadWidth
	if pad == 0 {
		pad = 5
	}
	if cfg.Yearly {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), pad, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, pad, num)
}

// ParseNumber extracts the numeric part of a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	i := strings.LastIndexByte(formatted, '-')
	if i < 0 || i == len(formatted)-1 {
		return -1
	}
	var num int64
	if _, err := fmt.Sscanf(formatted[i+1:], "%d", &num); err != nil {
		return -1
	}
	return num
}
