package workspace

import (
	"context"
	"errors"
)

// Signal names a cross-component request that is not tied to a key.
type Signal string

const (
	SignalOpenCommandPalette  Signal = "openCommandPalette"
	SignalToggleDevMode       Signal = "toggleDevMode"
	SignalSaveProject         Signal = "saveProject"
	SignalNewProject          Signal = "newProject"
	SignalToggleShortcutsHelp Signal = "toggleShortcutsHelp"
)

// ErrBusFull is returned by Publish when the bus buffer is full.
var ErrBusFull = errors.New("signal bus full")

// Message is one published signal.
type Message struct {
	Signal  Signal
	Payload Payload
}

// Bus is a bounded, single-consumer signal channel.
type Bus struct {
	ch chan Message
}

// NewBus creates a bus holding up to size undelivered messages.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = 16
	}
	return &Bus{ch: make(chan Message, size)}
}

// Publish enqueues a signal without blocking.
func (b *Bus) Publish(sig Signal, payload Payload) error {
	select {
	case b.ch <- Message{Signal: sig, Payload: payload}:
		return nil
	default:
		return ErrBusFull
	}
}

// Run delivers messages to handle, one at a time, until ctx is done.
func (b *Bus) Run(ctx context.Context, handle func(context.Context, Message)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-b.ch:
			handle(ctx, msg)
		}
	}
}

// HandleSignal routes a bus message to the same operations the palette
// and key bindings use.
func (r *Router) HandleSignal(ctx context.Context, msg Message) error {
	switch msg.Signal {
	case SignalOpenCommandPalette:
		r.ws.SetCommandPalette(true)
		return nil
	case SignalToggleShortcutsHelp:
		r.ws.ToggleShortcutsHelp()
		return nil
	case SignalToggleDevMode:
		return r.Dispatch(ctx, CmdToggleDevMode, msg.Payload)
	case SignalSaveProject:
		return r.Dispatch(ctx, CmdSaveProject, msg.Payload)
	case SignalNewProject:
		return r.Dispatch(ctx, CmdNewProject, msg.Payload)
	default:
		r.logger.Debug("ignoring signal", "signal", string(msg.Signal))
		return nil
	}
}
