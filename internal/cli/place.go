package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/happyplaces/internal/ledger"
	"github.com/roach88/happyplaces/internal/model"
)

// PlaceOptions holds flags for the place command.
type PlaceOptions struct {
	*RootOptions
	DistributionType string
	Routine          string
	Motive           string
	SeenWith         []string
	Timestamp        string
	Metadata         string
}

// NewPlaceCommand creates the place command.
func NewPlaceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlaceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "place <item-id> <zone>",
		Short: "Record where an item was left",
		Long: `Append a placement to the ledger.

Items listed with --seen-with are recorded as co-present in the same zone
at the same time, in both directions. Neither the item nor the zone has
to be registered.

Examples:
  happyplaces place keys entryway --type stack --routine "coming home"
  happyplaces place keys entryway --seen-with wallet --seen-with phone
  happyplaces place soap bathroom --timestamp 2025-05-01T08:00:00Z`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.DistributionType, "type", "t", "placed",
		"distribution type (stack|spread|lose|discard|placed)")
	cmd.Flags().StringVar(&opts.Routine, "routine", "", "routine during which the item was left")
	cmd.Flags().StringVar(&opts.Motive, "motive", "", "why the item was left there")
	cmd.Flags().StringSliceVar(&opts.SeenWith, "seen-with", nil, "other items in the same spot (repeatable)")
	cmd.Flags().StringVar(&opts.Timestamp, "timestamp", "", "when (RFC 3339; default now)")
	cmd.Flags().StringVar(&opts.Metadata, "metadata", "", "metadata as a JSON object")

	return cmd
}

func runPlace(opts *PlaceOptions, itemID, zone string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	meta, err := model.ParseObject([]byte(opts.Metadata))
	if err != nil {
		return formatter.Fail("invalid metadata", err)
	}

	svc, err := openServices(opts.RootOptions)
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer svc.close()

	p, err := svc.writer.RecordPlacement(context.Background(), ledger.PlacementInput{
		ItemID:           itemID,
		Zone:             zone,
		DistributionType: opts.DistributionType,
		Routine:          opts.Routine,
		Motive:           opts.Motive,
		SeenWith:         opts.SeenWith,
		Timestamp:        opts.Timestamp,
		Metadata:         meta,
	})
	if err != nil {
		return formatter.Fail("failed to record placement", err)
	}

	return formatter.Success(p, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s → %s (%s) at %s\n", p.ItemID, p.Zone, p.DistributionType, p.Timestamp)
		if len(opts.SeenWith) > 0 {
			fmt.Fprintf(w, "  seen with: %s\n", strings.Join(opts.SeenWith, ", "))
		}
	})
}
