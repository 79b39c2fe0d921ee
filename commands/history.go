package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"springboard/config"
	"springboard/storage"
)

// NewHistoryCommand creates the history command and its subcommands
func NewHistoryCommand(opts *rootOptions) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List, search and export saved chats without the TUI",
	}

	historyCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved chats, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()
			return listHistory(cmd, ws.store)
		},
	})

	historyCmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search every saved message for a substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()
			return searchHistory(cmd, ws.store, args[0])
		},
	})

	historyCmd.AddCommand(&cobra.Command{
		Use:   "export <session-id> [path]",
		Short: "Export a chat as JSON",
		Long: `Export a saved chat as JSON.
Without a path the file is written to ~/Downloads with a name derived from the chat title.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open()
			if err != nil {
				return err
			}
			defer ws.Close()

			path := ""
			if len(args) == 2 {
				path = config.ExpandPath(args[1])
			}
			return exportHistory(cmd, ws.store, args[0], path, time.Now())
		},
	})

	return historyCmd
}

func listHistory(cmd *cobra.Command, store *storage.ChatStore) error {
	out := cmd.OutOrStdout()

	sessions := store.ListSessionsByRecency()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No chats found")
		return nil
	}

	current := store.CurrentSessionID()
	for _, s := range sessions {
		marker := " "
		if s.ID == current {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s  %s  %3d msgs  %s\n",
			marker, s.ID, s.LastActivity.Format("2006-01-02 15:04"), s.MessageCount, s.Title)
	}
	return nil
}

func searchHistory(cmd *cobra.Command, store *storage.ChatStore, query string) error {
	out := cmd.OutOrStdout()

	matches := store.SearchMessages(query)
	if len(matches) == 0 {
		fmt.Fprintf(out, "No messages match %q\n", query)
		return nil
	}

	for _, m := range matches {
		fmt.Fprintf(out, "%s  %s  [%s] %s\n", m.SessionID, m.Timestamp.Format("2006-01-02 15:04"), m.Role, m.Preview)
	}
	return nil
}

func exportHistory(cmd *cobra.Command, store *storage.ChatStore, id, path string, now time.Time) error {
	session, err := store.GetSession(id)
	if err != nil {
		return err
	}

	if path == "" {
		path = storage.GenerateExportPath(config.GetDownloadsDir(), session.Title, now)
	}
	if err := store.ExportSession(id, path); err != nil {
		return fmt.Errorf("failed to export chat: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to %s\n", session.Title, path)
	return nil
}
