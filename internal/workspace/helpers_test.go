package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kindling-io/kindling/internal/clock"
	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/store"
)

var (
	epoch   = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	alice   = &models.Identity{UID: "alice", Email: "alice@example.com"}
	bob     = &models.Identity{UID: "bob", Email: "bob@example.com"}
	errDown = errors.New("backend down")
)

type updateCall struct {
	ID   string
	Code string
}

// recordingStore wraps a Memory store, records code updates and can be
// told to fail or to block.
type recordingStore struct {
	*store.Memory

	mu         sync.Mutex
	updates    []updateCall
	failUpdate error
	failCreate error
	gate       chan struct{} // when set, Update blocks until it is closed or receives
	entered    chan struct{}
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Memory: store.NewMemory(), entered: make(chan struct{}, 16)}
}

func (s *recordingStore) Create(ctx context.Context, opts store.CreateOptions) (*models.Project, error) {
	s.mu.Lock()
	err := s.failCreate
	s.mu.Unlock()
	if err != nil {
		return nil, &store.StoreError{Op: "create", Err: err}
	}
	return s.Memory.Create(ctx, opts)
}

func (s *recordingStore) Update(ctx context.Context, id string, opts store.UpdateOptions) (*models.Project, error) {
	s.mu.Lock()
	if opts.Code != nil {
		s.updates = append(s.updates, updateCall{ID: id, Code: *opts.Code})
	}
	err := s.failUpdate
	gate := s.gate
	s.mu.Unlock()

	select {
	case s.entered <- struct{}{}:
	default:
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, &store.StoreError{Op: "update", ProjectID: id, Err: err}
	}
	return s.Memory.Update(ctx, id, opts)
}

func (s *recordingStore) setFailUpdate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpdate = err
}

func (s *recordingStore) setGate(ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = ch
}

func (s *recordingStore) calls() []updateCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]updateCall, len(s.updates))
	copy(out, s.updates)
	return out
}

func (s *recordingStore) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-s.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("store update was not called")
	}
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fixture struct {
	ws    *Workspace
	store *recordingStore
	clock *clock.Fake
	clip  *fakeClipboard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: newRecordingStore(),
		clock: clock.NewFake(epoch),
		clip:  &fakeClipboard{},
	}
	f.ws = New(Options{
		Store:       f.store,
		Clock:       f.clock,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Debounce:    time.Second,
		ShareOrigin: "https://kindling.test",
		Clipboard:   f.clip,
	})
	t.Cleanup(f.ws.Close)
	return f
}

func (f *fixture) signIn(user *models.Identity) {
	f.ws.SessionChanged(models.AuthState{User: user})
}

// seed creates a stored project owned by owner with the given code.
func (f *fixture) seed(t *testing.T, name, owner, code string) *models.Project {
	t.Helper()
	ctx := context.Background()
	p, err := f.store.Memory.Create(ctx, store.CreateOptions{Name: name, OwnerID: owner})
	require.NoError(t, err)
	p, err = f.store.Memory.Update(ctx, p.ProjectID, store.CodeUpdate(code))
	require.NoError(t, err)
	return p
}

// open signs in as alice and checks out a fresh project.
func (f *fixture) open(t *testing.T, code string) *models.Project {
	t.Helper()
	f.signIn(alice)
	p := f.seed(t, "Demo", alice.UID, code)
	require.NoError(t, f.ws.ChooseProject(p))
	return p
}

// settle advances past the debounce interval and waits for the store call.
func (f *fixture) settle() {
	f.clock.Advance(time.Second)
	f.ws.Wait()
}

func drain(ws *Workspace) []Event {
	var out []Event
	for {
		select {
		case ev := <-ws.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func notices(evs []Event) []string {
	var out []string
	for _, ev := range evs {
		if ev.Kind == EventNotice {
			out = append(out, ev.Message)
		}
	}
	return out
}
