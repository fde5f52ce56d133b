package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"quizrag/internal/service"
	"quizrag/internal/tui"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive quiz/explanation session",
		Long: `Start the interactive session.

Choose quiz or explanation, then enter a query; the answer is shown and the
session asks again. Type exit at either prompt, or press Ctrl+C, to leave.
The index is built from the documents directory first if it does not exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := a.newSession()
			if err != nil {
				return err
			}
			if !a.store.Exists() {
				fmt.Fprintln(cmd.ErrOrStderr(), "No index found. Building from documents...")
			}
			snap, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			sum, err := a.newSummarizer()
			if err != nil {
				return err
			}
			overview, err := service.Summarize(snap, sum, a.cfg.Summarizer.MaxSentences)
			if err != nil {
				a.logger.Warn("corpus summary unavailable", "err", err)
			}

			p := tea.NewProgram(tui.New(cmd.Context(), session, overview.String()),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(tui.Model); ok {
				return m.Err()
			}
			return nil
		},
	}
}
