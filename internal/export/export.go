// Package export writes the stored best-path table to spreadsheet destinations.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/bestpath/internal/domain"
)

// header is the first row of every exported sheet.
var header = []any{"Source", "Target", "Total Cost", "Hops", "Route", "Updated At"}

// Row is one best path as exported.
type Row struct {
	Source    domain.Currency
	Target    domain.Currency
	TotalCost domain.Amount
	Hops      int
	Route     string
	UpdatedAt time.Time
}

// SheetWriter writes path rows to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, rows []Row) error
}

// PathLister lists the persisted best-path table.
type PathLister interface {
	List(ctx context.Context) ([]domain.StoredPath, error)
}

// Service rebuilds the exported table and delegates writing to its writers.
type Service struct {
	paths   PathLister
	writers []SheetWriter
}

// NewService creates a new export Service.
func NewService(paths PathLister, writers ...SheetWriter) *Service {
	return &Service{paths: paths, writers: writers}
}

// Export writes the full stored table to every writer. Implements worker.AfterUpdateHook.
// A failing writer does not stop the others.
func (s *Service) Export(ctx context.Context, changes []domain.PathChange) error {
	stored, err := s.paths.List(ctx)
	if err != nil {
		return fmt.Errorf("listing best paths: %w", err)
	}
	rows := BuildRows(stored)

	var errs []error
	for _, w := range s.writers {
		if err := w.Write(ctx, rows); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	slog.Info("export: best paths written", "rows", len(rows), "changes", len(changes), "writers", len(s.writers))
	return nil
}

// BuildRows converts stored paths to export rows, keeping their order.
func BuildRows(stored []domain.StoredPath) []Row {
	return lo.Map(stored, func(p domain.StoredPath, _ int) Row {
		return Row{
			Source:    p.Pair.Source,
			Target:    p.Pair.Target,
			TotalCost: p.Path.TotalCost,
			Hops:      len(p.Path.Steps),
			Route:     route(p),
			UpdatedAt: p.UpdatedAt,
		}
	})
}

// route renders the currencies visited by a path, e.g. "BTC > ETH > USDT".
// A path without steps renders as its own pair.
func route(p domain.StoredPath) string {
	if len(p.Path.Steps) == 0 {
		return string(p.Pair.Source) + " > " + string(p.Pair.Target)
	}
	hops := make([]string, 0, len(p.Path.Steps)+1)
	hops = append(hops, string(p.Path.Steps[0].Pair.Source))
	for _, s := range p.Path.Steps {
		hops = append(hops, string(s.Pair.Target))
	}
	return strings.Join(hops, " > ")
}

// values renders rows as sheet cells, header first.
func values(rows []Row) [][]any {
	data := make([][]any, 0, len(rows)+1)
	data = append(data, header)
	for _, r := range rows {
		data = append(data, []any{
			string(r.Source),
			string(r.Target),
			toFloat(r.TotalCost),
			r.Hops,
			r.Route,
			r.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return data
}

func toFloat(a domain.Amount) float64 {
	f, _ := a.Decimal().Float64()
	return f
}
