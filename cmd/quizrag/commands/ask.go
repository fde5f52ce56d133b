package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quizrag/internal/service"
)

// newAskCmd creates the one-shot quiz or explain command for mode.
func newAskCmd(opts *rootOptions, mode service.Mode) *cobra.Command {
	use, short := "quiz", "Generate a three-question quiz about a topic"
	if mode == service.ModeExplanation {
		use, short = "explain", "Explain a topic in simple terms"
	}
	return &cobra.Command{
		Use:   use + " <query>",
		Short: short,
		Long: short + ` using the most relevant passages of the indexed documents.

Requires the generator API key (GOOGLE_API_KEY by default, .env is honored).

Example:
  quizrag ` + use + ` "the citric acid cycle"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := a.newSession()
			if err != nil {
				return err
			}
			answer, err := session.Ask(cmd.Context(), mode, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(answer, "\n"))
			return nil
		},
	}
}
