package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/happyplaces/internal/analysis"
	"github.com/roach88/happyplaces/internal/model"
)

// NewPatternsCommand creates the patterns command.
func NewPatternsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "patterns",
		Short:         "Count placements by distribution type and zone",
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

			patterns, err := svc.analyzer.DistributionPatterns(context.Background())
			if err != nil {
				return formatter.Fail("failed to analyze patterns", err)
			}
			return formatter.Success(patterns, func(w io.Writer) {
				writePatternsText(w, patterns)
			})
		},
	}
}

func writePatternsText(w io.Writer, p analysis.DistributionPatterns) {
	total := p.Total()
	if total == 0 {
		fmt.Fprintln(w, "No placements recorded")
		return
	}

	fmt.Fprintf(w, "Distribution (%d placements):\n", total)
	for _, dt := range model.DistributionTypes {
		if n := p.OverallCounts[dt]; n > 0 {
			fmt.Fprintf(w, "  %-8s %4d  %5.1f%%\n", dt, n, float64(n)/float64(total)*100)
		}
	}

	fmt.Fprintln(w, "By zone:")
	for _, zd := range p.ByZone {
		fmt.Fprintf(w, "  %-20s %-8s %4d\n", zd.Zone, zd.DistributionType, zd.Count)
	}
}

// NewRoutinesCommand creates the routines command.
func NewRoutinesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "routines",
		Short:         "Group placements by routine and motive",
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

			insights, err := svc.analyzer.RoutineInsights(context.Background())
			if err != nil {
				return formatter.Fail("failed to analyze routines", err)
			}
			return formatter.Success(insights, func(w io.Writer) {
				if len(insights) == 0 {
					fmt.Fprintln(w, "No routines recorded")
					return
				}
				for _, in := range insights {
					label := in.Routine
					if in.Motive != "" {
						label += " / " + in.Motive
					}
					fmt.Fprintf(w, "%-32s x%-3d %s\n", label, in.Frequency, strings.Join(in.Zones, ", "))
				}
			})
		},
	}
}

// NewAttentionCommand creates the attention command.
func NewAttentionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "attention",
		Short: "List items that need a refill or will need replacing soon",
		Long: `List refillables at or below their refill threshold and good_stuff
items with less than a fifth of their expected lifespan left.`,
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

			at, err := svc.analyzer.ItemsNeedingAttention(context.Background())
			if err != nil {
				return formatter.Fail("failed to check items", err)
			}
			return formatter.Success(at, func(w io.Writer) {
				writeAttentionText(w, at)
			})
		},
	}
}

func writeAttentionText(w io.Writer, at analysis.Attention) {
	if at.Empty() {
		fmt.Fprintln(w, "✓ Nothing needs attention")
		return
	}
	if len(at.RefillNeeded) > 0 {
		fmt.Fprintln(w, "Refill needed:")
		for _, r := range at.RefillNeeded {
			fmt.Fprintf(w, "  %-24s %d left (threshold %d)\n", r.Label, r.CurrentQuantity, r.Threshold)
		}
	}
	if len(at.ReplacementSoon) > 0 {
		fmt.Fprintln(w, "Replacement soon:")
		for _, r := range at.ReplacementSoon {
			fmt.Fprintf(w, "  %-24s %.1f years left (%.1f%%)\n", r.Label, r.RemainingYears, r.HealthPercent)
		}
	}
}
