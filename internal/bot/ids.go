package bot

// DefaultConversationKey is used when a caller supplies no conversation id.
const DefaultConversationKey = "default"

// Ids are the continuation ids returned after each exchange and passed
// back on the next call.
//
// With the stateful provider ConversationID is the conversation key and
// ParentMessageID identifies the stored assistant reply. With the stateless
// provider ConversationID is always empty and ParentMessageID is the raw
// provider response id; sending them back does not resume anything.
type Ids struct {
	ParentMessageID string `json:"parentMessageId,omitempty"`
	ConversationID  string `json:"conversationId,omitempty"`
}

// conversationKey returns the key a stateful exchange is stored under.
func (ids Ids) conversationKey() string {
	if ids.ConversationID == "" {
		return DefaultConversationKey
	}
	return ids.ConversationID
}
