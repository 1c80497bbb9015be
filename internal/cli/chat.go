package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/soyeahso/reviewbot/internal/bot"
	"github.com/soyeahso/reviewbot/internal/config"
	"github.com/soyeahso/reviewbot/internal/hooks"
	"github.com/soyeahso/reviewbot/internal/limits"
	"github.com/soyeahso/reviewbot/internal/llm"
	"github.com/soyeahso/reviewbot/internal/store"
	"github.com/spf13/cobra"
)

// resumeExchanges bounds how many recorded exchanges seed a resumed
// conversation. The request is trimmed to the model budget afterwards.
const resumeExchanges = 50

func newChatCmd() *cobra.Command {
	var (
		conversationID string
		provider       string
		model          string
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Send a message and print the reply",
		Long: "Send a message and print the reply. Without arguments the message is read\n" +
			"from stdin. The continuation ids are printed to stderr. With transcript.enabled,\n" +
			"a conversation id picks up the exchanges recorded by earlier runs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				message = strings.TrimSpace(string(data))
			}
			if message == "" {
				return errors.New("empty message")
			}

			c := cfg
			if provider != "" {
				c.Provider = strings.ToLower(provider)
				if model == "" && c.Provider == config.ProviderGemini && c.Model == config.DefaultModel {
					c.Model = config.DefaultGeminiModel
				}
			}
			if model != "" {
				c.Model = model
			}
			if issues := config.Validate(&c); len(issues) > 0 {
				return fmt.Errorf("invalid config: %s", issues[0])
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mgr := hooks.NewManager(log)
			options := []bot.Option{bot.WithHooks(mgr)}
			if c.Transcript.Enabled {
				path := c.Transcript.Path
				if path == "" {
					path = paths.Transcript
				}
				db, err := store.Open(path, log)
				if err != nil {
					return err
				}
				defer db.Close()
				tr := store.NewTranscript(db)
				mgr.On(hooks.EventExchangeDone, "transcript", tr.Hook())
				options = append(options, bot.WithHistorySource(func(ctx context.Context, key string) ([]llm.Message, error) {
					return tr.History(ctx, key, resumeExchanges)
				}))
			}

			b, err := bot.New(ctx, bot.OptionsFromConfig(c, config.LoadCredentials()),
				limits.Resolve(c.Model), log, options...)
			if err != nil {
				return err
			}

			text, ids := b.Chat(ctx, message, bot.Ids{ConversationID: conversationID})
			if text == "" {
				return errors.New("no reply, see log for details")
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Text string  `json:"text"`
					Ids  bot.Ids `json:"ids"`
				}{text, ids})
			}

			fmt.Fprintln(out, text)
			fmt.Fprintf(cmd.ErrOrStderr(), "\n[conversation=%s parent=%s]\n", ids.ConversationID, ids.ParentMessageID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "",
		"conversation id; earlier exchanges are resent when transcript.enabled is set")
	cmd.Flags().StringVar(&provider, "provider", "", "provider to use (openai, gemini)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model to use")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reply and ids as JSON")

	return cmd
}
