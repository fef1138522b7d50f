package workspace

import (
	"context"

	"github.com/kindling-io/kindling/internal/clock"
	"github.com/kindling-io/kindling/internal/store"
)

// saveSlot is the per-project debounce state. At most one timer is armed
// and at most one store call is in flight for a project at any time.
type saveSlot struct {
	timer *clock.Timer
	gen   uint64 // bumped on every arm and cancel; a firing timer with an older gen is stale

	inflight bool
	// queued is set when a save was requested while one was in flight;
	// queuedCode is the buffer captured at that moment.
	queued     bool
	queuedCode string
	// waiters are explicit saves parked behind the queued follow-up; each
	// receives that save's result.
	waiters []chan error
}

func (w *Workspace) slotLocked(id string) *saveSlot {
	s, ok := w.slots[id]
	if !ok {
		s = &saveSlot{}
		w.slots[id] = s
	}
	return s
}

// Edit replaces the code buffer and marks the status as building. When a
// project is selected and a user is signed in, it (re)arms the debounce
// timer for that project, discarding the previously armed one.
func (w *Workspace) Edit(code string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.editor.CurrentCode = code
	w.save.Status = BuildBuilding
	w.save.Err = nil

	if w.project != nil && w.auth.Authenticated() && !w.closed {
		w.armLocked(w.project.ProjectID)
	}
	w.changed()
}

// ApplySuggestion appends an assistant suggestion to the buffer and
// treats it as an edit.
func (w *Workspace) ApplySuggestion(code string) {
	w.mu.Lock()
	next := w.editor.CurrentCode + "\n\n" + code
	w.mu.Unlock()

	w.Edit(next)
}

// ApplyGeneratedCode replaces the buffer with generator output and saves
// it immediately, bypassing the debounce.
func (w *Workspace) ApplyGeneratedCode(ctx context.Context, code string) error {
	w.mu.Lock()
	w.editor.CurrentCode = code
	w.changed()
	w.mu.Unlock()

	return w.saveImmediate(ctx, false)
}

// SaveNow persists the buffer immediately. It does nothing when no project
// is selected or the buffer already matches the last known stored code.
func (w *Workspace) SaveNow(ctx context.Context) error {
	return w.saveImmediate(ctx, true)
}

func (w *Workspace) saveImmediate(ctx context.Context, announce bool) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.project == nil || !w.auth.Authenticated() {
		w.mu.Unlock()
		return nil
	}
	if w.editor.CurrentCode == w.project.Code {
		// A pending timer would write the same bytes.
		w.cancelTimerLocked(w.project.ProjectID)
		if w.save.Status == BuildBuilding && !w.slotLocked(w.project.ProjectID).inflight {
			w.save.Status = BuildSuccess
			w.changed()
		}
		w.mu.Unlock()
		return nil
	}

	id := w.project.ProjectID
	code := w.editor.CurrentCode
	slot := w.slotLocked(id)
	w.cancelTimerLocked(id)
	w.save.Status = BuildBuilding
	w.save.Err = nil
	w.changed()

	if slot.inflight {
		slot.queued = true
		slot.queuedCode = code
		done := make(chan error, 1)
		slot.waiters = append(slot.waiters, done)
		w.mu.Unlock()

		select {
		case err := <-done:
			if err == nil && announce {
				w.Notify(NoticeSuccess, "Project saved", nil)
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	slot.inflight = true
	w.inflight.Add(1)
	w.mu.Unlock()

	err := w.persist(ctx, id, code)
	if err == nil && announce {
		w.Notify(NoticeSuccess, "Project saved", nil)
	}
	return err
}

// armLocked (re)starts the debounce timer for id.
func (w *Workspace) armLocked(id string) {
	slot := w.slotLocked(id)
	if slot.timer != nil {
		slot.timer.Stop()
	}
	slot.gen++
	gen := slot.gen
	slot.timer = w.clock.AfterFunc(w.debounce, func() { w.fire(id, gen) })
}

func (w *Workspace) cancelTimerLocked(id string) {
	slot, ok := w.slots[id]
	if !ok {
		return
	}
	if slot.timer != nil {
		slot.timer.Stop()
		slot.timer = nil
	}
	slot.gen++
}

func (w *Workspace) cancelAllTimersLocked() {
	for id, slot := range w.slots {
		w.cancelTimerLocked(id)
		// A queued follow-up belongs to the code that is being abandoned.
		slot.queued = false
		slot.queuedCode = ""
		releaseWaiters(slot.waiters, nil)
		slot.waiters = nil
		if !slot.inflight {
			delete(w.slots, id)
		}
	}
}

// fire runs when a debounce timer elapses. The buffer is read now, not
// when the timer was armed.
func (w *Workspace) fire(id string, gen uint64) {
	w.mu.Lock()
	slot, ok := w.slots[id]
	if !ok || slot.gen != gen || w.closed {
		w.mu.Unlock()
		return
	}
	slot.timer = nil
	if w.project == nil || w.project.ProjectID != id {
		w.mu.Unlock()
		return
	}

	code := w.editor.CurrentCode
	if slot.inflight {
		slot.queued = true
		slot.queuedCode = code
		w.mu.Unlock()
		return
	}
	slot.inflight = true
	w.inflight.Add(1)
	w.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
		defer cancel()
		_ = w.persist(ctx, id, code)
	}()
}

// persist performs one store update for id and settles the slot. The
// caller has already set slot.inflight and added to w.inflight.
func (w *Workspace) persist(ctx context.Context, id, code string) error {
	defer w.inflight.Done()

	_, err := w.store.Update(ctx, id, store.CodeUpdate(code))

	w.mu.Lock()
	defer w.mu.Unlock()

	slot := w.slotLocked(id)
	slot.inflight = false
	current := w.project != nil && w.project.ProjectID == id

	var perr error
	if err != nil {
		perr = &PersistenceError{ProjectID: id, Err: err}
		w.logger.Warn("save failed", "project_id", id, "error", err)
	} else {
		w.logger.Debug("project saved", "project_id", id, "bytes", len(code))
		if current {
			w.project.Code = code
		}
	}

	if slot.queued && w.closed {
		slot.queued = false
		slot.queuedCode = ""
		releaseWaiters(slot.waiters, ErrClosed)
		slot.waiters = nil
	}
	if slot.queued {
		next := slot.queuedCode
		waiters := slot.waiters
		slot.queued = false
		slot.queuedCode = ""
		slot.waiters = nil
		slot.inflight = true
		w.inflight.Add(1)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
			defer cancel()
			releaseWaiters(waiters, w.persist(ctx, id, next))
		}()
		return perr
	}

	if !current {
		// Stale result for a project that is no longer selected.
		if slot.timer == nil {
			delete(w.slots, id)
		}
		return perr
	}

	if slot.timer == nil {
		if perr != nil {
			w.save.Status = BuildError
			w.save.Err = perr
		} else {
			w.save.Status = BuildSuccess
			w.save.Err = nil
			w.save.LastSavedAt = w.clock.Now()
		}
		w.changed()
	}
	return perr
}

func releaseWaiters(waiters []chan error, err error) {
	for _, ch := range waiters {
		ch <- err
	}
}

// Wait blocks until no store call started by the pipeline is in flight.
func (w *Workspace) Wait() {
	w.inflight.Wait()
}

// Close disarms every timer and waits for in-flight saves to settle.
// Nothing is persisted after Close returns.
func (w *Workspace) Close() {
	w.mu.Lock()
	w.closed = true
	for id := range w.slots {
		w.cancelTimerLocked(id)
	}
	w.mu.Unlock()

	w.inflight.Wait()
}
