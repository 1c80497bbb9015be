// Package bot is the session manager: it owns the conversation store,
// selects the provider adapter at construction and exposes Chat, which
// never fails once the Bot exists.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/reviewbot/internal/config"
	"github.com/soyeahso/reviewbot/internal/conversation"
	"github.com/soyeahso/reviewbot/internal/hooks"
	"github.com/soyeahso/reviewbot/internal/limits"
	"github.com/soyeahso/reviewbot/internal/llm"
	"github.com/soyeahso/reviewbot/internal/logging"
	"github.com/soyeahso/reviewbot/internal/retry"
)

// Options configure a Bot.
type Options struct {
	Provider         string
	Model            string
	Language         string
	SystemMessage    string
	Temperature      float64
	Retries          int
	Timeout          time.Duration // per attempt; zero disables
	MaxConversations int
	Endpoint         string // overrides the provider base URL
	Credentials      config.Credentials
}

// OptionsFromConfig maps a loaded Config and credentials onto Options.
func OptionsFromConfig(cfg config.Config, creds config.Credentials) Options {
	opts := Options{
		Provider:         cfg.Provider,
		Model:            cfg.Model,
		Language:         cfg.Language,
		SystemMessage:    cfg.SystemMessage,
		Timeout:          cfg.Timeout(),
		MaxConversations: cfg.MaxConversations,
		Endpoint:         cfg.APIEndpoint,
		Credentials:      creds,
	}
	if cfg.Temperature != nil {
		opts.Temperature = *cfg.Temperature
	}
	if cfg.Retries != nil {
		opts.Retries = *cfg.Retries
	}
	return opts
}

// ConfigurationError reports a Bot that cannot be constructed.
type ConfigurationError struct {
	Provider string
	Variable string // missing environment variable, if any
	Message  string
}

func (e *ConfigurationError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: %s is not set", e.Provider, e.Variable)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Option customizes a Bot beyond its Options.
type Option func(*Bot)

// WithClient replaces the provider client built from Options.
func WithClient(c llm.Client) Option {
	return func(b *Bot) { b.client = c }
}

// WithHooks registers the hook manager notified about each exchange.
func WithHooks(m *hooks.Manager) Option {
	return func(b *Bot) { b.hooks = m }
}

// WithClock overrides the clock used for the current date.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

// WithRetryWait overrides the wait bounds between attempts.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(b *Bot) { b.minWait, b.maxWait = minWait, maxWait }
}

// HistorySource loads earlier user/assistant messages of a conversation
// that is not in memory, oldest first.
type HistorySource func(ctx context.Context, key string) ([]llm.Message, error)

// WithHistorySource seeds conversations started in this process from src,
// so a conversation key can be continued across restarts.
func WithHistorySource(src HistorySource) Option {
	return func(b *Bot) { b.history = src }
}

// Bot is a chat session manager bound to one provider and model.
// Chat is safe for concurrent use.
type Bot struct {
	opts   Options
	limits limits.TokenLimits
	store  *conversation.Store
	hooks  *hooks.Manager
	log    *logging.Logger
	now    func() time.Time

	history          HistorySource
	client           llm.Client
	minWait, maxWait time.Duration
	adapter          adapter
}

// New builds a Bot for opts.Provider. tl is the token budget of the model;
// a zero value is resolved from opts.Model. A missing credential or an
// unusable budget is reported as a *ConfigurationError.
func New(ctx context.Context, opts Options, tl limits.TokenLimits, log *logging.Logger, options ...Option) (*Bot, error) {
	if tl.MaxTokens == 0 {
		tl = limits.Resolve(opts.Model)
	}
	if opts.Language == "" {
		opts.Language = config.DefaultLanguage
	}
	if opts.MaxConversations <= 0 {
		opts.MaxConversations = conversation.DefaultMaxEntries
	}

	b := &Bot{
		opts:   opts,
		limits: tl,
		log:    log.Sub("bot").With("provider", opts.Provider),
		now:    time.Now,
	}
	for _, o := range options {
		o(b)
	}

	if opts.Provider != config.ProviderOpenAI && opts.Provider != config.ProviderGemini {
		return nil, &ConfigurationError{Provider: opts.Provider, Message: "unsupported provider"}
	}
	key, envVar := opts.Credentials.For(opts.Provider)
	if key == "" {
		return nil, &ConfigurationError{Provider: opts.Provider, Variable: envVar}
	}
	if tl.RequestTokens <= 0 {
		return nil, &ConfigurationError{
			Provider: opts.Provider,
			Message:  fmt.Sprintf("model %q leaves no request budget (%s)", opts.Model, tl),
		}
	}

	policy := retry.Policy{
		Retries:        opts.Retries,
		MinWait:        b.minWait,
		MaxWait:        b.maxWait,
		AttemptTimeout: opts.Timeout,
		Log:            b.log,
	}

	switch opts.Provider {
	case config.ProviderOpenAI:
		if b.client == nil {
			b.client = llm.NewOpenAIClient(key, opts.Endpoint, 0)
		}
		b.store = conversation.NewStore(opts.MaxConversations, log)
		b.adapter = &statefulAdapter{
			client:      b.client,
			store:       b.store,
			model:       opts.Model,
			temperature: opts.Temperature,
			limits:      tl,
			policy:      policy,
			log:         b.log,
		}
	case config.ProviderGemini:
		if b.client == nil {
			c, err := llm.NewGeminiClient(ctx, key, opts.Endpoint, nil)
			if err != nil {
				return nil, &ConfigurationError{Provider: opts.Provider, Message: err.Error()}
			}
			b.client = c
		}
		b.adapter = &statelessAdapter{
			client:        b.client,
			model:         opts.Model,
			temperature:   opts.Temperature,
			limits:        tl,
			policy:        policy,
			systemMessage: b.systemMessage,
		}
	}

	evt := b.log.Info().
		Str("client", b.adapter.name()).
		Str("model", opts.Model).
		Stringer("limits", tl).
		Bool("stateful", b.adapter.stateful())
	if b.store != nil {
		evt = evt.Int("max_conversations", b.store.MaxEntries())
	}
	evt.Msg("bot ready")
	return b, nil
}

// Limits returns the token budget in effect.
func (b *Bot) Limits() limits.TokenLimits { return b.limits }

// Provider returns the provider name.
func (b *Bot) Provider() string { return b.opts.Provider }

// Model returns the model name.
func (b *Bot) Model() string { return b.opts.Model }

// Stateful reports whether the provider keeps conversation history.
func (b *Bot) Stateful() bool { return b.adapter.stateful() }

// History returns the stored messages of a conversation. It is always
// empty for the stateless provider.
func (b *Bot) History(conversationID string) ([]llm.Message, bool) {
	if b.store == nil {
		return nil, false
	}
	return b.store.Get(Ids{ConversationID: conversationID}.conversationKey())
}

func (b *Bot) systemMessage() string {
	return buildSystemMessage(b.opts.SystemMessage, b.limits, b.opts.Language, b.now())
}

// Chat sends message and returns the reply with the ids to continue from.
// An empty message returns immediately. Every failure is logged and
// yields an empty reply with empty ids.
func (b *Bot) Chat(ctx context.Context, message string, ids Ids) (text string, next Ids) {
	if message == "" {
		return "", Ids{}
	}

	ex := exchange{message: message, ids: ids}
	if b.adapter.stateful() {
		ex.key = ids.conversationKey()
		var created bool
		ex.history, created = b.store.GetOrCreate(ex.key, b.systemMessage())
		if created {
			ex.history = b.seed(ctx, ex.key, ex.history)
		}
	}

	event := hooks.Exchange{
		Provider: b.opts.Provider,
		Model:    b.opts.Model,
		Key:      ex.key,
		Prompt:   message,
	}
	b.hooks.Emit(ctx, hooks.EventExchangeStart, event)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			b.fail(ctx, event, start, fmt.Errorf("panic: %v", r))
			text, next = "", Ids{}
		}
	}()

	res, err := b.adapter.send(ctx, ex)
	if err != nil {
		b.fail(ctx, event, start, err)
		return "", Ids{}
	}

	event.Reply = res.text
	event.ParentMessageID = res.ids.ParentMessageID
	event.ConversationID = res.ids.ConversationID
	event.Duration = time.Since(start)
	b.log.Debug().
		Str("key", ex.key).
		Dur("duration", event.Duration).
		Int("reply_len", len(res.text)).
		Msg("exchange done")
	b.hooks.Emit(ctx, hooks.EventExchangeDone, event)

	return res.text, res.ids
}

// seed appends previously recorded messages to a conversation that was
// just created. A failing source only costs the older context.
func (b *Bot) seed(ctx context.Context, key string, history []llm.Message) []llm.Message {
	if b.history == nil {
		b.log.Debug().Str("key", key).Msg("conversation started")
		return history
	}

	earlier, err := b.history(ctx, key)
	if err != nil {
		b.log.Warn().Err(err).Str("key", key).Msg("loading conversation history failed")
		return history
	}
	if len(earlier) == 0 {
		b.log.Debug().Str("key", key).Msg("conversation started")
		return history
	}
	if err := b.store.Append(key, earlier...); err != nil {
		b.log.Warn().Err(err).Str("key", key).Msg("seeding conversation failed")
		return history
	}

	b.log.Debug().Str("key", key).Int("messages", len(earlier)).Msg("conversation resumed")
	return append(history, earlier...)
}

func (b *Bot) fail(ctx context.Context, event hooks.Exchange, start time.Time, err error) {
	event.Err = err
	event.Duration = time.Since(start)

	logEvt := b.log.Warn()
	if errors.Is(err, conversation.ErrNotFound) {
		logEvt = b.log.Error()
	}
	logEvt.Err(err).
		Str("client", b.adapter.name()).
		Str("key", event.Key).
		Dur("duration", event.Duration).
		Msg("chat failed")

	b.hooks.Emit(ctx, hooks.EventExchangeFailed, event)
}
