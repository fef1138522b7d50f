package workspace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishFull(t *testing.T) {
	b := NewBus(1)

	require.NoError(t, b.Publish(SignalSaveProject, nil))
	assert.ErrorIs(t, b.Publish(SignalSaveProject, nil), ErrBusFull)
}

func TestBusRunDeliversInOrder(t *testing.T) {
	b := NewBus(4)
	require.NoError(t, b.Publish(SignalToggleDevMode, nil))
	require.NoError(t, b.Publish(SignalNewProject, Payload{"from": "test"}))

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan Message, 2)
	done := make(chan error, 1)
	go func() {
		done <- b.Run(ctx, func(_ context.Context, m Message) { got <- m })
	}()

	first := <-got
	second := <-got
	assert.Equal(t, SignalToggleDevMode, first.Signal)
	assert.Equal(t, SignalNewProject, second.Signal)
	assert.Equal(t, "test", second.Payload["from"])

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHandleSignalMatchesCommands(t *testing.T) {
	f := newFixture(t)
	p := f.open(t, "a")
	r := newTestRouter(f)
	ctx := context.Background()

	require.NoError(t, r.HandleSignal(ctx, Message{Signal: SignalToggleDevMode}))
	assert.True(t, f.ws.Snapshot().Editor.DevMode)

	require.NoError(t, r.HandleSignal(ctx, Message{Signal: SignalOpenCommandPalette}))
	assert.True(t, f.ws.Snapshot().Editor.ShowCommandPalette)

	require.NoError(t, r.HandleSignal(ctx, Message{Signal: SignalToggleShortcutsHelp}))
	assert.True(t, f.ws.Snapshot().Editor.ShowShortcutsHelp)

	f.ws.Edit("b")
	require.NoError(t, r.HandleSignal(ctx, Message{Signal: SignalSaveProject}))
	assert.Equal(t, []updateCall{{p.ProjectID, "b"}}, f.store.calls())

	require.NoError(t, r.HandleSignal(ctx, Message{Signal: SignalNewProject}))
	assert.Equal(t, ViewTemplatePicker, f.ws.View())

	require.NoError(t, r.HandleSignal(ctx, Message{Signal: "somethingElse"}))
}
