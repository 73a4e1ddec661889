package cli

import (
	"log/slog"

	"github.com/roach88/happyplaces/internal/analysis"
	"github.com/roach88/happyplaces/internal/export"
	"github.com/roach88/happyplaces/internal/ledger"
	"github.com/roach88/happyplaces/internal/model"
	"github.com/roach88/happyplaces/internal/projection"
	"github.com/roach88/happyplaces/internal/store"
)

// services bundles the components every command works against.
type services struct {
	store      *store.Store
	writer     *ledger.Writer
	projection *projection.Engine
	analyzer   *analysis.Analyzer
	exporter   *export.Exporter
}

// openServices opens the database named by opts and wires the components.
// Callers must call close.
func openServices(opts *RootOptions) (*services, error) {
	slog.Debug("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, model.NewStoreError("open database", err)
	}

	var clock model.Clock = model.SystemClock{}
	if opts.Clock != nil {
		clock = opts.Clock
	}
	exportOpts := []export.Option{export.WithClock(clock)}
	if opts.IDGenerator != nil {
		exportOpts = append(exportOpts, export.WithIDGenerator(opts.IDGenerator))
	}

	p := projection.New(st, projection.WithClock(clock))
	a := analysis.New(st, analysis.WithClock(clock))
	return &services{
		store:      st,
		writer:     ledger.NewWriter(st, ledger.WithClock(clock)),
		projection: p,
		analyzer:   a,
		exporter:   export.New(p, a, exportOpts...),
	}, nil
}

func (s *services) close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
