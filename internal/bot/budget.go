package bot

import "github.com/soyeahso/reviewbot/internal/llm"

const (
	// charsPerToken is a conservative average for English text with code.
	charsPerToken = 4
	// messageOverhead covers role and framing tokens per message.
	messageOverhead = 4
)

func estimateTokens(msgs ...llm.Message) int {
	total := 0
	for _, m := range msgs {
		total += (len(m.Content)+charsPerToken-1)/charsPerToken + messageOverhead
	}
	return total
}

// fitHistory builds the outbound message list for a stateful exchange:
// the leading system message, as many of the newest user/assistant pairs
// as fit in budget tokens, then the new user message. The system message
// and the new user message are always included. dropped is the number of
// stored messages left out.
func fitHistory(history []llm.Message, user llm.Message, budget int) (out []llm.Message, dropped int) {
	var system []llm.Message
	turns := history
	if len(turns) > 0 && turns[0].Role == llm.RoleSystem {
		system, turns = turns[:1], turns[1:]
	}

	remaining := budget - estimateTokens(system...) - estimateTokens(user)
	start := len(turns)
	for start >= 2 {
		cost := estimateTokens(turns[start-2 : start]...)
		if cost > remaining {
			break
		}
		remaining -= cost
		start -= 2
	}

	out = make([]llm.Message, 0, len(system)+len(turns)-start+1)
	out = append(out, system...)
	out = append(out, turns[start:]...)
	return append(out, user), start
}
