package workspace

import (
	"strings"

	"github.com/atotto/clipboard"
)

// ShareURL composes the public link of a project. The id is appended as is.
func ShareURL(origin, projectID string) string {
	return strings.TrimRight(origin, "/") + "/project/" + projectID
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemClipboard writes to the OS clipboard.
func SystemClipboard() Clipboard { return systemClipboard{} }

// Share copies the selected project's link to the clipboard and returns it.
func (w *Workspace) Share() (string, error) {
	w.mu.Lock()
	if w.project == nil {
		w.notice(NoticeError, "Select a project to share it", ErrNoProject)
		w.mu.Unlock()
		return "", ErrNoProject
	}
	link := ShareURL(w.origin, w.project.ProjectID)
	w.mu.Unlock()

	if err := w.clipboard.WriteAll(link); err != nil {
		w.logger.Warn("clipboard write failed", "error", err)
		w.Notify(NoticeInfo, "Share link: "+link, err)
		return link, nil
	}
	w.Notify(NoticeSuccess, "Share link copied to clipboard", nil)
	return link, nil
}
