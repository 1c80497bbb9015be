package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/soyeahso/reviewbot/internal/limits"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models [model]",
		Short: "Show token budgets per model family",
		Long: "Without arguments, list the known model families and their token budgets.\n" +
			"With a model name, show the budget it resolves to.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				tl := limits.Resolve(args[0])
				fmt.Fprintf(out, "%s: %s\n", args[0], tl)
				if !limits.Known(args[0]) {
					fmt.Fprintln(out, "(unknown model, using the default budget)")
				}
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FAMILY\tMAX\tREQUEST\tRESPONSE\tCUTOFF")
			for _, tl := range limits.Families() {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n",
					tl.Model, tl.MaxTokens, tl.RequestTokens, tl.ResponseTokens, tl.KnowledgeCutoff)
			}
			return tw.Flush()
		},
	}
}
