// Package export serializes a full snapshot of the ledger's read side
// (every item's status, the zone registry, distribution patterns and
// attention alerts) into one JSON document.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/roach88/happyplaces/internal/analysis"
	"github.com/roach88/happyplaces/internal/model"
	"github.com/roach88/happyplaces/internal/projection"
)

// Document is the export file layout.
type Document struct {
	ExportID   string                        `json:"export_id"`
	ExportedAt string                        `json:"exported_at"`
	Items      []projection.ItemStatus       `json:"items"`
	Zones      []model.Zone                  `json:"zones"`
	Patterns   analysis.DistributionPatterns `json:"patterns"`
	Attention  analysis.Attention            `json:"attention"`
}

// Exporter builds Documents.
type Exporter struct {
	projection *projection.Engine
	analyzer   *analysis.Analyzer
	clock      model.Clock
	ids        IDGenerator
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock sets the clock used for exported_at.
func WithClock(c model.Clock) Option {
	return func(e *Exporter) {
		e.clock = c
	}
}

// WithIDGenerator sets the export id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Exporter) {
		e.ids = g
	}
}

// New creates an Exporter.
func New(p *projection.Engine, a *analysis.Analyzer, opts ...Option) *Exporter {
	e := &Exporter{
		projection: p,
		analyzer:   a,
		clock:      model.SystemClock{},
		ids:        UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build assembles a snapshot of the current ledger.
func (e *Exporter) Build(ctx context.Context) (Document, error) {
	doc := Document{
		ExportID:   e.ids.Generate(),
		ExportedAt: model.FormatTimestamp(e.clock.Now()),
	}

	var err error
	if doc.Items, err = e.projection.AllStatuses(ctx); err != nil {
		return Document{}, fmt.Errorf("export items: %w", err)
	}
	if doc.Zones, err = e.projection.ListZones(ctx); err != nil {
		return Document{}, fmt.Errorf("export zones: %w", err)
	}
	if doc.Patterns, err = e.analyzer.DistributionPatterns(ctx); err != nil {
		return Document{}, fmt.Errorf("export patterns: %w", err)
	}
	if doc.Attention, err = e.analyzer.ItemsNeedingAttention(ctx); err != nil {
		return Document{}, fmt.Errorf("export attention: %w", err)
	}
	return doc, nil
}

// Encode renders doc as 2-space indented JSON with a trailing newline.
// HTML characters are not escaped.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile builds a snapshot and writes it to path, replacing any
// existing file.
func (e *Exporter) WriteFile(ctx context.Context, path string) (Document, error) {
	doc, err := e.Build(ctx)
	if err != nil {
		return Document{}, err
	}
	data, err := Encode(doc)
	if err != nil {
		return Document{}, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Document{}, fmt.Errorf("write export: %w", err)
	}
	return doc, nil
}
