package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Show the chunks nearest to a query",
		Long: `Search the index without calling the language model.

The index is built first if it does not exist yet. A -k outside the
number of indexed chunks is clamped into range.

Examples:
  quizrag search "photosynthesis"
  quizrag search -k 5 "light reactions"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			hits, err := a.newRetriever().Hits(cmd.Context(), query, k)
			if err != nil {
				return fmt.Errorf("searching: %w", err)
			}
			if len(hits) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No results for query: %s\n", query)
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "RANK\tDISTANCE\tPDF\tPREVIEW\n")
			for i, h := range hits {
				fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\n", i+1, h.Distance, h.Record.PDF, truncate(oneLine(h.Record.Text), 70))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&k, "top-k", "k", 3, "Number of chunks to return")
	return cmd
}
