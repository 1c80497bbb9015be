package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/reviewbot/internal/hooks"
	"github.com/soyeahso/reviewbot/internal/llm"
)

// Exchange is one recorded prompt/reply pair.
type Exchange struct {
	ID              string        `json:"id"`
	Key             string        `json:"key,omitempty"`
	Provider        string        `json:"provider"`
	Model           string        `json:"model"`
	Prompt          string        `json:"prompt"`
	Reply           string        `json:"reply"`
	ParentMessageID string        `json:"parentMessageId,omitempty"`
	Duration        time.Duration `json:"duration"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Transcript records successful exchanges.
type Transcript struct {
	db *DB
}

// NewTranscript creates a transcript using the given database.
func NewTranscript(db *DB) *Transcript {
	return &Transcript{db: db}
}

// Record inserts an exchange, assigning an ID and timestamp when missing.
func (t *Transcript) Record(ctx context.Context, ex Exchange) (*Exchange, error) {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}

	_, err := t.db.sql.ExecContext(ctx,
		`INSERT INTO exchanges (id, conversation_key, provider, model, prompt, reply, parent_message_id, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.Key, ex.Provider, ex.Model, ex.Prompt, ex.Reply, ex.ParentMessageID,
		ex.Duration.Milliseconds(), ex.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("recording exchange: %w", err)
	}
	return &ex, nil
}

// List returns the newest limit exchanges, oldest first. An empty key
// lists every conversation. A limit of 0 defaults to 50.
func (t *Transcript) List(ctx context.Context, key string, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 50
	}

	inner := `SELECT rowid AS seq, id, conversation_key, provider, model, prompt, reply, parent_message_id, duration_ms, created_at
		 FROM exchanges`
	args := []any{}
	if key != "" {
		inner += ` WHERE conversation_key = ?`
		args = append(args, key)
	}
	inner += ` ORDER BY rowid DESC LIMIT ?`
	args = append(args, limit)

	query := `SELECT id, conversation_key, provider, model, prompt, reply, parent_message_id, duration_ms, created_at
		 FROM (` + inner + `) ORDER BY seq`

	rows, err := t.db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var ex Exchange
		var durationMS int64
		var createdAt string
		if err := rows.Scan(&ex.ID, &ex.Key, &ex.Provider, &ex.Model, &ex.Prompt, &ex.Reply,
			&ex.ParentMessageID, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		ex.Duration = time.Duration(durationMS) * time.Millisecond
		if ex.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at of exchange %s: %w", ex.ID, err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// History returns the newest limit exchanges of a conversation as
// alternating user/assistant messages, oldest first.
func (t *Transcript) History(ctx context.Context, key string, limit int) ([]llm.Message, error) {
	exchanges, err := t.List(ctx, key, limit)
	if err != nil {
		return nil, err
	}
	msgs := make([]llm.Message, 0, 2*len(exchanges))
	for _, ex := range exchanges {
		msgs = append(msgs,
			llm.Message{Role: llm.RoleUser, Content: ex.Prompt},
			llm.Message{Role: llm.RoleAssistant, Content: ex.Reply},
		)
	}
	return msgs, nil
}

// Hook returns a handler for hooks.EventExchangeDone that records each
// exchange.
func (t *Transcript) Hook() hooks.Handler {
	return func(ctx context.Context, p hooks.Payload) error {
		_, err := t.Record(ctx, Exchange{
			Key:             p.Exchange.Key,
			Provider:        p.Exchange.Provider,
			Model:           p.Exchange.Model,
			Prompt:          p.Exchange.Prompt,
			Reply:           p.Exchange.Reply,
			ParentMessageID: p.Exchange.ParentMessageID,
			Duration:        p.Exchange.Duration,
		})
		return err
	}
}
