package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/kindling-io/kindling/internal/models"
	"github.com/kindling-io/kindling/internal/workspace"
)

// delegate handles the router commands that need the shell: exporting
// to disk and version history.
type delegate struct {
	ws     *workspace.Workspace
	logger *slog.Logger
	dir    string
}

func newDelegate(ws *workspace.Workspace, logger *slog.Logger) *delegate {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return &delegate{ws: ws, logger: logger.With("component", "delegate"), dir: dir}
}

// ExportProject writes code to <name>.html in the working directory, or to
// args["path"] when set.
func (d *delegate) ExportProject(_ context.Context, p *models.Project, code string, args workspace.Payload) error {
	path := filepath.Join(d.dir, exportFileName(p.Name))
	if v, ok := args["path"].(string); ok && v != "" {
		path = v
	}
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		d.ws.Notify(workspace.NoticeError, "Export failed", err)
		return fmt.Errorf("failed to export project: %w", err)
	}
	d.logger.Info("project exported", "project_id", p.ProjectID, "path", path)
	d.ws.Notify(workspace.NoticeSuccess, "Exported to "+path, nil)
	return nil
}

// OpenVersionHistory has no backing history yet.
func (d *delegate) OpenVersionHistory(_ context.Context, _ *models.Project, _ workspace.Payload) error {
	d.ws.Notify(workspace.NoticeInfo, "Version history is not available yet", nil)
	return nil
}

// exportFileName turns a project name into a safe file name.
func exportFileName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = "project"
	}
	return slug + ".html"
}
