package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/soyeahso/reviewbot/internal/store"
	"github.com/spf13/cobra"
)

func newTranscriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Inspect recorded exchanges",
	}

	cmd.AddCommand(newTranscriptListCmd())
	return cmd
}

func newTranscriptListCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list [conversation]",
		Short: "List recorded exchanges, oldest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Transcript.Path
			if path == "" {
				path = paths.Transcript
			}
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no transcript at %s (set transcript.enabled to record one)", path)
			}

			db, err := store.Open(path, log)
			if err != nil {
				return err
			}
			defer db.Close()

			var key string
			if len(args) == 1 {
				key = args[0]
			}
			exchanges, err := store.NewTranscript(db).List(cmd.Context(), key, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(exchanges)
			}
			for _, ex := range exchanges {
				fmt.Fprintf(out, "%s  %s  %s/%s  %s\n",
					ex.CreatedAt.Local().Format("2006-01-02 15:04:05"), conversationLabel(ex.Key),
					ex.Provider, ex.Model, ex.Duration.Round(time.Millisecond))
				fmt.Fprintf(out, "  > %s\n  < %s\n", oneLine(ex.Prompt, 100), oneLine(ex.Reply, 100))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of exchanges")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print exchanges as JSON")

	return cmd
}

func conversationLabel(key string) string {
	if key == "" {
		return "(stateless)"
	}
	return key
}

// oneLine collapses whitespace and truncates s to n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
