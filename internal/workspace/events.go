package workspace

// EventKind distinguishes state changes from user-facing notices.
type EventKind int

const (
	// EventChanged means Snapshot would return something new.
	EventChanged EventKind = iota
	// EventNotice carries a message for a toast.
	EventNotice
)

// NoticeLevel styles a notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeError
)

// Event is emitted on the channel returned by Workspace.Events.
type Event struct {
	Kind    EventKind
	Level   NoticeLevel
	Message string
	Err     error
}

const eventBuffer = 128

// emit queues ev without blocking; the shell re-reads the snapshot on
// every event, so a dropped EventChanged loses nothing. Caller holds w.mu.
func (w *Workspace) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
		w.logger.Warn("workspace event dropped", "kind", int(ev.Kind), "message", ev.Message)
	}
}

func (w *Workspace) changed() {
	w.emit(Event{Kind: EventChanged})
}

func (w *Workspace) notice(level NoticeLevel, msg string, err error) {
	w.emit(Event{Kind: EventNotice, Level: level, Message: msg, Err: err})
}
