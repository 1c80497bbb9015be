package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/soyeahso/reviewbot/internal/hooks"
	"github.com/soyeahso/reviewbot/internal/llm"
	"github.com/soyeahso/reviewbot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", logging.New(nil, "silent"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsApplied(t *testing.T) {
	db := testDB(t)

	var count int
	require.NoError(t, db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, len(migrations), count)

	require.NoError(t, db.migrate(), "migrate must be idempotent")
	require.NoError(t, db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, len(migrations), count)

	var name string
	require.NoError(t, db.sql.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='exchanges'",
	).Scan(&name))
	assert.Equal(t, "exchanges", name)
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "transcript.db")
	db, err := Open(path, logging.New(nil, "silent"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening an existing database skips applied migrations.
	db, err = Open(path, logging.New(nil, "silent"))
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestTranscriptRecordAndList(t *testing.T) {
	ctx := context.Background()
	tr := NewTranscript(testDB(t))

	first, err := tr.Record(ctx, Exchange{
		Key: "pr-1", Provider: "openai", Model: "gpt-4o",
		Prompt: "review a.go", Reply: "LGTM", ParentMessageID: "m-1",
		Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	_, err = tr.Record(ctx, Exchange{Key: "pr-1", Provider: "openai", Model: "gpt-4o", Prompt: "review b.go", Reply: "nit"})
	require.NoError(t, err)
	_, err = tr.Record(ctx, Exchange{Key: "pr-2", Provider: "gemini", Model: "gemini-2.0-flash", Prompt: "summarize", Reply: "sum"})
	require.NoError(t, err)

	pr1, err := tr.List(ctx, "pr-1", 0)
	require.NoError(t, err)
	require.Len(t, pr1, 2)
	assert.Equal(t, "review a.go", pr1[0].Prompt)
	assert.Equal(t, "m-1", pr1[0].ParentMessageID)
	assert.Equal(t, 1500*time.Millisecond, pr1[0].Duration)
	assert.Equal(t, "review b.go", pr1[1].Prompt)

	all, err := tr.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := tr.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "summarize", limited[0].Prompt, "the limit keeps the newest rows")
}

func TestTranscriptListNewestInOrder(t *testing.T) {
	ctx := context.Background()
	tr := NewTranscript(testDB(t))

	for i := 1; i <= 5; i++ {
		_, err := tr.Record(ctx, Exchange{Key: "pr-3", Provider: "openai", Model: "gpt-4o",
			Prompt: fmt.Sprintf("q%d", i), Reply: fmt.Sprintf("a%d", i)})
		require.NoError(t, err)
	}

	got, err := tr.List(ctx, "pr-3", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q4", got[0].Prompt)
	assert.Equal(t, "q5", got[1].Prompt)
}

func TestTranscriptListBadTimestamp(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	_, err := db.sql.Exec(`INSERT INTO exchanges (id, conversation_key, provider, model, prompt, reply, parent_message_id, duration_ms, created_at)
		VALUES ('x', 'k', 'openai', 'gpt-4o', 'p', 'r', '', 0, 'yesterday')`)
	require.NoError(t, err)

	_, err = NewTranscript(db).List(ctx, "k", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}

func TestTranscriptHistory(t *testing.T) {
	ctx := context.Background()
	tr := NewTranscript(testDB(t))
	for _, p := range []string{"first", "second", "third"} {
		_, err := tr.Record(ctx, Exchange{Key: "pr-4", Provider: "openai", Model: "gpt-4o", Prompt: p, Reply: "re " + p})
		require.NoError(t, err)
	}

	msgs, err := tr.History(ctx, "pr-4", 2)
	require.NoError(t, err)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "second"},
		{Role: llm.RoleAssistant, Content: "re second"},
		{Role: llm.RoleUser, Content: "third"},
		{Role: llm.RoleAssistant, Content: "re third"},
	}, msgs)

	none, err := tr.History(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTranscriptHook(t *testing.T) {
	ctx := context.Background()
	tr := NewTranscript(testDB(t))

	m := hooks.NewManager(logging.New(nil, "silent"))
	m.On(hooks.EventExchangeDone, "transcript", tr.Hook())
	m.Emit(ctx, hooks.EventExchangeDone, hooks.Exchange{
		Provider: "gemini", Model: "gemini-2.0-flash", Prompt: "hi", Reply: "hello", ParentMessageID: "resp-9",
	})

	got, err := tr.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Reply)
	assert.Equal(t, "resp-9", got[0].ParentMessageID)
	assert.Empty(t, got[0].Key)
}
