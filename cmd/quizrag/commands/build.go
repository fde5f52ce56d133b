package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build [pdf...]",
		Short: "Rebuild the index",
		Long: `Rebuild the vector index and its metadata from scratch.

With no arguments every document matching the configured pattern in the
documents directory is indexed. Documents without extractable text are skipped.

Examples:
  quizrag build
  quizrag build lecture1.pdf lecture2.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := a.store.Build(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("building index: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks from %d documents into %s and %s\n",
				snap.Count(), len(snap.Documents()), a.cfg.Index.Path, a.cfg.Index.MetadataPath)
			return nil
		},
	}
}
