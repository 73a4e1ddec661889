package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/happyplaces/internal/model"
)

// NewZoneCommand creates the zone command group.
func NewZoneCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zone",
		Short: "Manage and inspect zones",
	}
	cmd.AddCommand(newZoneRegisterCommand(rootOpts))
	cmd.AddCommand(newZoneListCommand(rootOpts))
	cmd.AddCommand(newZoneItemsCommand(rootOpts))
	return cmd
}

func newZoneRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:           "register <zone-id>",
		Short:         "Register or replace a zone",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			svc, err := openServices(rootOpts)
			if err != nil {
				return formatter.Fail("failed to open database", err)
			}
			defer svc.close()

			z, err := svc.writer.RegisterZone(context.Background(), model.Zone{
				ID:          args[0],
				Name:        name,
				Description: description,
			})
			if err != nil {
				return formatter.Fail("failed to register zone", err)
			}
			return formatter.Success(z, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Registered zone %s\n", z.ID)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	return cmd
}

func newZoneListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List registered zones",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			svc, err := openServices(rootOpts)
			if err != nil {
				return formatter.Fail("failed to open database", err)
			}
			defer svc.close()

			zones, err := svc.projection.ListZones(context.Background())
			if err != nil {
				return formatter.Fail("failed to list zones", err)
			}
			return formatter.Success(zones, func(w io.Writer) {
				if len(zones) == 0 {
					fmt.Fprintln(w, "No zones registered")
					return
				}
				for _, z := range zones {
					fmt.Fprintf(w, "%-20s %s\n", z.ID, z.Name)
				}
			})
		},
	}
}

func newZoneItemsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "items <zone>",
		Short: "List items whose latest placement is in a zone",
		Long: `List registered items whose most recent placement is in the zone.

An item that has since moved elsewhere is not listed, even if it was
placed in the zone before.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			svc, err := openServices(rootOpts)
			if err != nil {
				return formatter.Fail("failed to open database", err)
			}
			defer svc.close()

			occupants, err := svc.projection.ItemsInZone(context.Background(), args[0])
			if err != nil {
				return formatter.Fail("failed to list zone items", err)
			}
			return formatter.Success(occupants, func(w io.Writer) {
				if len(occupants) == 0 {
					fmt.Fprintf(w, "Nothing currently in %s\n", args[0])
					return
				}
				fmt.Fprintf(w, "In %s:\n", args[0])
				for _, o := range occupants {
					fmt.Fprintf(w, "  %-20s %-12s %s\n", o.Label, o.DistributionType, o.LastUpdated)
				}
			})
		},
	}
}
