package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitReachesSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	h.Emit("run-1", StageFinished, map[string]any{"stage": "extract", "written": 2})

	for _, ch := range []chan string{a, b} {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
		require.Equal(t, StageFinished, e.Type)
		require.Equal(t, "run-1", e.RunID)
		require.Equal(t, 1, e.Version)
		require.JSONEq(t, `{"stage":"extract","written":2}`, string(e.Data))
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	for i := 0; i < cap(ch)+5; i++ {
		h.Publish("x")
	}
	require.Len(t, ch, cap(ch))
}

func TestUnsubscribeTwice(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)
	h.Unsubscribe(ch)
	_, open := <-ch
	require.False(t, open)
}

func TestNilHub(t *testing.T) {
	var h *Hub
	h.Emit("run", RunStarted, nil)
	h.Publish("x")
}

func TestMakeEventWithoutData(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(MakeEvent("", RunFinished, nil)), &e))
	require.Equal(t, RunFinished, e.Type)
	require.Empty(t, e.Data)
}
