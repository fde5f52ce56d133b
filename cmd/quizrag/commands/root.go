package commands

import (
	"context"

	"github.com/spf13/cobra"

	"quizrag/internal/service"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd creates the quizrag command tree. Without a subcommand it starts the interactive session.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	chat := newChatCmd(opts)
	cmd := &cobra.Command{
		Use:   "quizrag",
		Short: "Quiz yourself on your PDFs",
		Long: `quizrag indexes the PDFs in a directory and answers questions about them.

Each question retrieves the most relevant passages from the index and asks a
language model to turn them into a short quiz or a plain explanation.

Examples:
  quizrag                      # interactive session, builds the index if missing
  quizrag build notes/*.pdf    # rebuild the index from specific files
  quizrag search "mitosis" -k 5
  quizrag quiz "cell division"
  quizrag explain "cell division"`,
		Args:          cobra.NoArgs,
		RunE:          chat.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to YAML config file (defaults to ./config.yaml or ~/.config/quizrag/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		chat,
		newBuildCmd(opts),
		newSearchCmd(opts),
		newAskCmd(opts, service.ModeQuiz),
		newAskCmd(opts, service.ModeExplanation),
	)
	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
