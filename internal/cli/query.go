package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/happyplaces/internal/projection"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <item-id>",
		Short: "Show where an item is and how it is holding up",
		Long: `Show an item's current placement together with its lifecycle
(good_stuff) or refill status (refillable).

Exits with code 1 when the item is not registered.`,
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

			status, err := svc.projection.ItemStatus(context.Background(), args[0])
			if err != nil {
				return formatter.Fail("failed to get item status", err)
			}
			return formatter.Success(status, func(w io.Writer) {
				writeStatusText(w, status)
			})
		},
	}
}

func writeStatusText(w io.Writer, s projection.ItemStatus) {
	fmt.Fprintf(w, "%s (%s) [%s]\n", s.Label, s.ItemID, s.Category)

	if cp := s.CurrentPlacement; cp != nil {
		fmt.Fprintf(w, "  location:  %s (%s) since %s\n", cp.Zone, cp.DistributionType, cp.Timestamp)
		if cp.Routine != "" {
			fmt.Fprintf(w, "  routine:   %s\n", cp.Routine)
		}
		if cp.Motive != "" {
			fmt.Fprintf(w, "  motive:    %s\n", cp.Motive)
		}
	} else {
		fmt.Fprintln(w, "  location:  never placed")
	}

	if lc := s.Lifecycle; lc != nil {
		fmt.Fprintf(w, "  age:       %.1f of %.1f years\n", lc.AgeYears, lc.ExpectedLifespanYears)
		fmt.Fprintf(w, "  health:    %.1f%% (%.1f years left)\n", lc.HealthPercent, lc.RemainingYears)
	}

	if rs := s.RefillStatus; rs != nil {
		fmt.Fprintf(w, "  quantity:  %d (threshold %d)\n", rs.CurrentQuantity, rs.RefillThreshold)
		if rs.DaysRemaining != nil {
			fmt.Fprintf(w, "  runs out:  in %.1f days\n", *rs.DaysRemaining)
		}
		if rs.NeedsRefill {
			fmt.Fprintln(w, "  ⚠ needs refill")
		}
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "history <item-id>",
		Short:         "Show an item's placements, newest first",
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

			history, err := svc.projection.CollectHistory(context.Background(), args[0], limit)
			if err != nil {
				return formatter.Fail("failed to read history", err)
			}
			return formatter.Success(history, func(w io.Writer) {
				if len(history) == 0 {
					fmt.Fprintf(w, "No placements recorded for %s\n", args[0])
					return
				}
				for _, p := range history {
					fmt.Fprintf(w, "%s  %-20s %-8s", p.Timestamp, p.Zone, p.DistributionType)
					if p.Routine != "" {
						fmt.Fprintf(w, " %s", p.Routine)
					}
					fmt.Fprintln(w)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", projection.DefaultHistoryLimit, "maximum placements to show")
	return cmd
}

// NewNeighborsCommand creates the neighbors command.
func NewNeighborsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		limit int
		all   bool
	)

	cmd := &cobra.Command{
		Use:           "neighbors <item-id>",
		Short:         "Show items recently seen together with an item",
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

			if all {
				return runSightings(svc, formatter, args[0])
			}

			neighbors, err := svc.projection.RecentNeighbors(context.Background(), args[0], limit)
			if err != nil {
				return formatter.Fail("failed to read neighbors", err)
			}
			return formatter.Success(neighbors, func(w io.Writer) {
				if len(neighbors) == 0 {
					fmt.Fprintf(w, "%s has not been seen with anything\n", args[0])
					return
				}
				for _, n := range neighbors {
					fmt.Fprintf(w, "%-20s in %-20s at %s\n", n.Label, n.Zone, n.Timestamp)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", projection.DefaultNeighborLimit, "maximum neighbors to show")
	cmd.Flags().BoolVar(&all, "all", false, "list every recorded sighting, oldest first, ignoring --limit")
	return cmd
}

func runSightings(svc *services, formatter *OutputFormatter, id string) error {
	edges, err := svc.projection.Sightings(context.Background(), id)
	if err != nil {
		return formatter.Fail("failed to read sightings", err)
	}
	return formatter.Success(edges, func(w io.Writer) {
		if len(edges) == 0 {
			fmt.Fprintf(w, "%s has not been seen with anything\n", id)
			return
		}
		for _, e := range edges {
			fmt.Fprintf(w, "%s  %-20s in %s\n", e.Timestamp, e.ItemB, e.Zone)
		}
	})
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "Show the status of every item",
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

			statuses, err := svc.projection.AllStatuses(context.Background())
			if err != nil {
				return formatter.Fail("failed to list items", err)
			}
			return formatter.Success(statuses, func(w io.Writer) {
				if len(statuses) == 0 {
					fmt.Fprintln(w, "No items registered")
					return
				}
				for _, s := range statuses {
					zone := "-"
					if s.CurrentPlacement != nil {
						zone = s.CurrentPlacement.Zone
					}
					fmt.Fprintf(w, "%-24s %-12s %s\n", s.Label, s.Category, zone)
				}
			})
		},
	}
}
