package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/soyeahso/reviewbot/internal/logging"
	"github.com/stretchr/testify/assert"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestOnAndEmit(t *testing.T) {
	m := testManager()

	var got Payload
	m.On(EventExchangeDone, "capture", func(_ context.Context, p Payload) error {
		got = p
		return nil
	})

	m.Emit(context.Background(), EventExchangeDone, Exchange{Provider: "openai", Key: "pr-7", Reply: "ok"})
	assert.Equal(t, EventExchangeDone, got.Event)
	assert.Equal(t, "pr-7", got.Exchange.Key)
	assert.Equal(t, "ok", got.Exchange.Reply)
}

func TestEmitOrderAndErrorsDoNotStop(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventExchangeFailed, "first", func(_ context.Context, _ Payload) error {
		order = append(order, "first")
		return errors.New("first failed")
	})
	m.On(EventExchangeFailed, "panics", func(_ context.Context, _ Payload) error {
		order = append(order, "panics")
		panic("boom")
	})
	m.On(EventExchangeFailed, "third", func(_ context.Context, _ Payload) error {
		order = append(order, "third")
		return nil
	})

	assert.NotPanics(t, func() {
		m.Emit(context.Background(), EventExchangeFailed, Exchange{Err: errors.New("x")})
	})
	assert.Equal(t, []string{"first", "panics", "third"}, order)
}

func TestEmitNoHandlers(t *testing.T) {
	m := testManager()
	assert.NotPanics(t, func() {
		m.Emit(context.Background(), EventExchangeStart, Exchange{})
	})

	var nilManager *Manager
	assert.NotPanics(t, func() {
		nilManager.Emit(context.Background(), EventExchangeStart, Exchange{})
	})
}

func TestOff(t *testing.T) {
	m := testManager()
	calls := 0
	h := func(_ context.Context, _ Payload) error { calls++; return nil }
	m.On(EventExchangeDone, "a", h)
	m.On(EventExchangeDone, "b", h)
	m.Off(EventExchangeDone, "a")

	assert.Equal(t, 1, m.Count(EventExchangeDone))
	m.Emit(context.Background(), EventExchangeDone, Exchange{})
	assert.Equal(t, 1, calls)
}

func TestEvents(t *testing.T) {
	m := testManager()
	noop := func(_ context.Context, _ Payload) error { return nil }
	m.On(EventExchangeStart, "x", noop)
	m.On(EventExchangeDone, "x", noop)
	m.On(EventExchangeFailed, "x", noop)
	m.Off(EventExchangeFailed, "x")

	assert.Equal(t, []string{EventExchangeDone, EventExchangeStart}, m.Events())
	assert.Len(t, AllEvents, 3)
}
