package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"springboard/model"
)

// NewSearchCommand creates the one-shot search command
func NewSearchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <prompt>...",
		Short: "Describe an API and print the matches without the TUI",
		Long: `Send one search prompt to the backend and print the candidate APIs.
The prompt is not added to the chat history.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return fmt.Errorf("prompt is empty")
			}

			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()

			c, err := ws.client()
			if err != nil {
				return err
			}
			return runSearch(cmd.Context(), cmd, c, prompt)
		},
	}
}

func runSearch(ctx context.Context, cmd *cobra.Command, backend model.Backend, prompt string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	resp, err := backend.Search(ctx, prompt)
	if err != nil {
		return fmt.Errorf("%s: %w", model.SearchErrorText, err)
	}
	if !resp.HasResults() {
		fmt.Fprintln(out, model.NoResultsText)
		return nil
	}

	fmt.Fprintln(out, model.ResultsPreface)
	for _, c := range resp.Candidates {
		fmt.Fprintf(out, "🔹 %s — %s\n", c.APIName, c.Description)
	}
	return nil
}
