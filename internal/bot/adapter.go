package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/soyeahso/reviewbot/internal/conversation"
	"github.com/soyeahso/reviewbot/internal/limits"
	"github.com/soyeahso/reviewbot/internal/llm"
	"github.com/soyeahso/reviewbot/internal/logging"
	"github.com/soyeahso/reviewbot/internal/retry"
)

// adapter is one provider protocol. The set is closed: statefulAdapter
// and statelessAdapter. The Bot picks one at construction.
type adapter interface {
	name() string
	stateful() bool
	send(ctx context.Context, ex exchange) (reply, error)
}

// exchange is the input of one send.
type exchange struct {
	message string
	ids     Ids

	// Stateful only: the conversation key and the stored history,
	// which always begins with the system message.
	key     string
	history []llm.Message
}

// reply is the normalized result of one send.
type reply struct {
	text string
	ids  Ids
}

// reasoningModel matches model families that reject temperature and
// response size parameters.
var reasoningModel = regexp.MustCompile(`^(o[0-9]|gpt-5)`)

func isReasoningModel(model string) bool {
	model = strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	return reasoningModel.MatchString(model)
}

// complete calls the client under the retry policy.
func complete(ctx context.Context, client llm.Client, policy retry.Policy, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return retry.Do(ctx, policy, func(ctx context.Context) (*llm.CompletionResponse, error) {
		return client.Complete(ctx, req)
	})
}

// statefulAdapter keeps the thread in the Bot's conversation store and
// resends the accumulated history on every call.
type statefulAdapter struct {
	client      llm.Client
	store       *conversation.Store
	model       string
	temperature float64
	limits      limits.TokenLimits
	policy      retry.Policy
	log         *logging.Logger
}

func (a *statefulAdapter) name() string   { return a.client.Name() }
func (a *statefulAdapter) stateful() bool { return true }

func (a *statefulAdapter) request(messages []llm.Message) llm.CompletionRequest {
	req := llm.CompletionRequest{Model: a.model, Messages: messages}
	if !isReasoningModel(a.model) {
		req.Temperature = llm.Float64(a.temperature)
		req.MaxTokens = a.limits.ResponseTokens
	}
	return req
}

// send resends the stored history plus the new user message. The user
// message is not written to the conversation before the call: it is
// appended together with the reply once the provider answered. A failed
// exchange therefore leaves no unanswered user turn, and the history keeps
// strict system, user, assistant, user, assistant order.
func (a *statefulAdapter) send(ctx context.Context, ex exchange) (reply, error) {
	user := llm.Message{Role: llm.RoleUser, Content: ex.message}
	messages, dropped := fitHistory(ex.history, user, a.limits.RequestTokens)
	if dropped > 0 {
		a.log.Debug().
			Str("key", ex.key).
			Int("dropped", dropped).
			Int("sent", len(messages)).
			Int("budget", a.limits.RequestTokens).
			Msg("history trimmed to request budget")
	}

	resp, err := complete(ctx, a.client, a.policy, a.request(messages))
	if err != nil {
		return reply{}, err
	}

	assistant := llm.Message{Role: llm.RoleAssistant, Content: stripArtifact(resp.Content)}
	if err := a.store.Append(ex.key, user, assistant); err != nil {
		return reply{}, fmt.Errorf("conversation %q: %w", ex.key, err)
	}

	return reply{
		text: assistant.Content,
		ids:  Ids{ParentMessageID: uuid.NewString(), ConversationID: ex.key},
	}, nil
}

// statelessAdapter sends one user message per call with an inline system
// instruction and no history.
type statelessAdapter struct {
	client        llm.Client
	model         string
	temperature   float64
	limits        limits.TokenLimits
	policy        retry.Policy
	systemMessage func() string
}

func (a *statelessAdapter) name() string   { return a.client.Name() }
func (a *statelessAdapter) stateful() bool { return false }

func (a *statelessAdapter) send(ctx context.Context, ex exchange) (reply, error) {
	req := llm.CompletionRequest{
		Model:       a.model,
		System:      a.systemMessage(),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: ex.message}},
		MaxTokens:   a.limits.ResponseTokens,
		Temperature: llm.Float64(a.temperature),
	}

	resp, err := complete(ctx, a.client, a.policy, req)
	if err != nil {
		return reply{}, err
	}

	return reply{
		text: stripArtifact(resp.Content),
		ids:  Ids{ParentMessageID: resp.ID},
	}, nil
}
