// Package seed loads declarative fixtures of zones, items and placements
// and replays them through the ledger writer.
//
// Fixtures can be written in YAML, CUE or JSON. The demo data set is
// embedded and available through Demo.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/happyplaces/internal/ledger"
	"github.com/roach88/happyplaces/internal/model"
)

//go:embed demo.yaml
var demoYAML []byte

// Fixture is a declarative data set.
type Fixture struct {
	Zones      []ZoneSpec      `yaml:"zones,omitempty" json:"zones,omitempty"`
	Items      []ItemSpec      `yaml:"items,omitempty" json:"items,omitempty"`
	Placements []PlacementSpec `yaml:"placements,omitempty" json:"placements,omitempty"`
}

// ZoneSpec declares one zone registration.
type ZoneSpec struct {
	ID          string `yaml:"zone_id" json:"zone_id"`
	Name        string `yaml:"zone_name,omitempty" json:"zone_name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// ItemSpec declares one item registration.
type ItemSpec struct {
	ID                    string         `yaml:"item_id" json:"item_id"`
	Label                 string         `yaml:"label" json:"label"`
	Category              string         `yaml:"category" json:"category"`
	PurchaseDate          string         `yaml:"purchase_date,omitempty" json:"purchase_date,omitempty"`
	ExpectedLifespanYears *float64       `yaml:"expected_lifespan_years,omitempty" json:"expected_lifespan_years,omitempty"`
	CurrentQuantity       *int64         `yaml:"current_quantity,omitempty" json:"current_quantity,omitempty"`
	RefillThreshold       *int64         `yaml:"refill_threshold,omitempty" json:"refill_threshold,omitempty"`
	UsageRatePerDay       *float64       `yaml:"usage_rate_per_day,omitempty" json:"usage_rate_per_day,omitempty"`
	Metadata              map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// PlacementSpec declares one placement. An empty Timestamp means "now".
type PlacementSpec struct {
	ItemID           string         `yaml:"item_id" json:"item_id"`
	Zone             string         `yaml:"zone" json:"zone"`
	DistributionType string         `yaml:"distribution_type,omitempty" json:"distribution_type,omitempty"`
	Routine          string         `yaml:"routine,omitempty" json:"routine,omitempty"`
	Motive           string         `yaml:"motive,omitempty" json:"motive,omitempty"`
	SeenWith         []string       `yaml:"seen_with,omitempty" json:"seen_with,omitempty"`
	Timestamp        string         `yaml:"timestamp,omitempty" json:"timestamp,omitempty"`
	Metadata         map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Load reads a fixture file. The format is chosen by extension:
// .yaml/.yml, .cue or .json. Unknown fields are rejected.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var f *Fixture
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		f, err = ParseYAML(data)
	case ".cue":
		f, err = ParseCUE(data, path)
	case ".json":
		f, err = ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported fixture format %q (want .yaml, .yml, .cue or .json)", ext)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ParseYAML decodes and validates a YAML fixture.
func ParseYAML(data []byte) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return validated(&f)
}

// ParseJSON decodes and validates a JSON fixture.
func ParseJSON(data []byte) (*Fixture, error) {
	var f Fixture
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return validated(&f)
}

// ParseCUE compiles a CUE fixture, requires it to be concrete, and decodes
// it through its JSON form. filename is used in error positions.
func ParseCUE(data []byte, filename string) (*Fixture, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", positioned(err))
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE fixture is not concrete: %w", positioned(err))
	}

	data, err := value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to export CUE: %w", err)
	}
	f, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// PositionError is a CUE error pinned to its first source position.
type PositionError struct {
	Message string
	Pos     token.Pos
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
}

// positioned keeps the first of possibly several CUE errors, with its
// position when one is known.
func positioned(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 && positions[0].IsValid() {
		return &PositionError{Message: first.Error(), Pos: positions[0]}
	}
	return first
}

// Demo returns the embedded demo fixture.
func Demo() (*Fixture, error) {
	return ParseYAML(demoYAML)
}

func validated(f *Fixture) (*Fixture, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return f, nil
}

// Validate checks that required keys are present. Enumerations and dates
// are validated by the ledger when the fixture is applied.
func (f *Fixture) Validate() error {
	if len(f.Zones)+len(f.Items)+len(f.Placements) == 0 {
		return fmt.Errorf("fixture is empty")
	}
	for i, z := range f.Zones {
		if strings.TrimSpace(z.ID) == "" {
			return fmt.Errorf("zones[%d]: zone_id is required", i)
		}
	}
	for i, item := range f.Items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("items[%d]: item_id is required", i)
		}
		if item.Category == "" {
			return fmt.Errorf("items[%d] (%s): category is required", i, item.ID)
		}
	}
	for i, p := range f.Placements {
		if strings.TrimSpace(p.ItemID) == "" {
			return fmt.Errorf("placements[%d]: item_id is required", i)
		}
		if strings.TrimSpace(p.Zone) == "" {
			return fmt.Errorf("placements[%d] (%s): zone is required", i, p.ItemID)
		}
	}
	return nil
}

// Summary counts what Apply wrote.
type Summary struct {
	Zones      int `json:"zones"`
	Items      int `json:"items"`
	Placements int `json:"placements"`
}

// Apply registers zones, then items, then records placements in fixture
// order. It stops at the first error; earlier writes stay committed.
func Apply(ctx context.Context, w *ledger.Writer, f *Fixture) (Summary, error) {
	var sum Summary

	for _, z := range f.Zones {
		if _, err := w.RegisterZone(ctx, model.Zone{ID: z.ID, Name: z.Name, Description: z.Description}); err != nil {
			return sum, fmt.Errorf("zone %s: %w", z.ID, err)
		}
		sum.Zones++
	}

	for _, spec := range f.Items {
		meta, err := model.ObjectFromMap(spec.Metadata)
		if err != nil {
			return sum, fmt.Errorf("item %s: %w", spec.ID, model.NewValidationError("metadata", err.Error()))
		}
		item := model.Item{
			ID:                    spec.ID,
			Label:                 spec.Label,
			Category:              model.Category(spec.Category),
			PurchaseDate:          spec.PurchaseDate,
			ExpectedLifespanYears: spec.ExpectedLifespanYears,
			CurrentQuantity:       spec.CurrentQuantity,
			RefillThreshold:       spec.RefillThreshold,
			UsageRatePerDay:       spec.UsageRatePerDay,
			Metadata:              meta,
		}
		if _, err := w.RegisterItem(ctx, item); err != nil {
			return sum, fmt.Errorf("item %s: %w", spec.ID, err)
		}
		sum.Items++
	}

	for i, spec := range f.Placements {
		meta, err := model.ObjectFromMap(spec.Metadata)
		if err != nil {
			return sum, fmt.Errorf("placement %d (%s): %w", i, spec.ItemID, model.NewValidationError("metadata", err.Error()))
		}
		_, err = w.RecordPlacement(ctx, ledger.PlacementInput{
			ItemID:           spec.ItemID,
			Zone:             spec.Zone,
			DistributionType: spec.DistributionType,
			Routine:          spec.Routine,
			Motive:           spec.Motive,
			SeenWith:         spec.SeenWith,
			Timestamp:        spec.Timestamp,
			Metadata:         meta,
		})
		if err != nil {
			return sum, fmt.Errorf("placement %d (%s): %w", i, spec.ItemID, err)
		}
		sum.Placements++
	}

	return sum, nil
}
