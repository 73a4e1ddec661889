package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/happyplaces/internal/model"
	"github.com/roach88/happyplaces/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture>",
		Short: "Load zones, items and placements from a fixture file",
		Long: `Load a fixture file and replay it through the ledger: zones first,
then items, then placements in file order.

The format follows the extension: .yaml/.yml, .cue or .json. Loading
stops at the first rejected entry; earlier entries stay recorded.

Examples:
  happyplaces seed ./household.yaml
  happyplaces seed ./household.cue --db ./home.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			f, err := seed.Load(args[0])
			if err != nil {
				return formatter.Fail("failed to load fixture",
					model.NewValidationError("fixture", err.Error()))
			}
			return applyFixture(rootOpts, f, formatter)
		},
	}
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Load the built-in demo household",
		Long: `Load the built-in demo household: a handful of zones, everyday items
and placements with routines and co-present items.

Try "happyplaces status wallet" or "happyplaces attention" afterwards.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			f, err := seed.Demo()
			if err != nil {
				return formatter.Fail("failed to load demo fixture", err)
			}
			return applyFixture(rootOpts, f, formatter)
		},
	}
}

func applyFixture(opts *RootOptions, f *seed.Fixture, formatter *OutputFormatter) error {
	svc, err := openServices(opts)
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer svc.close()

	sum, err := seed.Apply(context.Background(), svc.writer, f)
	if err != nil {
		return formatter.Fail("failed to apply fixture", err)
	}

	formatter.VerboseLog("Loaded into %s", opts.Database)
	return formatter.Success(sum, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Loaded %d zones, %d items, %d placements\n", sum.Zones, sum.Items, sum.Placements)
	})
}
