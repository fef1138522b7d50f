package auth

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/models"
)

const debounceDelay = 100 * time.Millisecond

// FileProvider follows session.yaml, so a login or logout in another
// shell is picked up by a running TUI.
type FileProvider struct {
	fsWatcher *fsnotify.Watcher
	changes   chan models.AuthState
	done      chan struct{}
	logger    *slog.Logger

	mu    sync.RWMutex
	state models.AuthState

	// reloadMu orders whole reloads, so a read of the file is always
	// published before a later one.
	reloadMu sync.Mutex

	debounce   *time.Timer
	debounceMu sync.Mutex
	stopOnce   sync.Once
}

var _ Provider = (*FileProvider)(nil)

// NewFileProvider creates a provider in the loading state. Call Start to resolve it.
func NewFileProvider(logger *slog.Logger) (*FileProvider, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileProvider{
		fsWatcher: fsWatcher,
		changes:   make(chan models.AuthState, 1),
		done:      make(chan struct{}),
		logger:    logger,
		state:     models.AuthState{Loading: true},
	}, nil
}

// Current returns the latest resolved state.
func (p *FileProvider) Current() models.AuthState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Changes returns the channel of state updates.
func (p *FileProvider) Changes() <-chan models.AuthState {
	return p.changes
}

// Start reads the session once and then watches the global directory.
func (p *FileProvider) Start() error {
	if err := config.EnsureGlobalDir(); err != nil {
		return err
	}
	dir, err := config.GlobalDir()
	if err != nil {
		return err
	}
	if err := p.fsWatcher.Add(dir); err != nil {
		p.logger.Warn("failed to watch global dir", "dir", dir, "error", err)
	}

	p.reload()
	go p.processEvents()
	return nil
}

// Stop stops watching. Changes is not closed.
func (p *FileProvider) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		_ = p.fsWatcher.Close()

		p.debounceMu.Lock()
		if p.debounce != nil {
			p.debounce.Stop()
		}
		p.debounceMu.Unlock()
	})
}

func (p *FileProvider) processEvents() {
	for {
		select {
		case <-p.done:
			return
		case event, ok := <-p.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != config.SessionFileName {
				continue
			}
			// SaveYAML renames a temp file over the target, so Rename and
			// Create matter as much as Write.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			p.scheduleReload()
		case err, ok := <-p.fsWatcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("session watcher error", "error", err)
		}
	}
}

func (p *FileProvider) scheduleReload() {
	p.debounceMu.Lock()
	defer p.debounceMu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(debounceDelay, p.reload)
}

func (p *FileProvider) reload() {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	select {
	case <-p.done:
		return
	default:
	}

	var user *models.Identity
	session, err := config.LoadSession()
	if err != nil {
		// An unreadable session is treated as signed out.
		p.logger.Warn("failed to load session", "error", err)
	} else if session != nil {
		user = session.User
	}

	next := models.AuthState{User: user}

	p.mu.Lock()
	prev := p.state
	p.state = next
	p.mu.Unlock()

	if prev.Loading || !sameUser(prev.User, next.User) {
		p.logger.Debug("session changed", "signed_in", next.User != nil)
		p.publish(next)
	}
}

// publish replaces any undelivered state with next.
func (p *FileProvider) publish(next models.AuthState) {
	for {
		select {
		case p.changes <- next:
			return
		default:
		}
		select {
		case <-p.changes:
		default:
		}
	}
}

func sameUser(a, b *models.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
