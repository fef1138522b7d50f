package store

import (
	"fmt"

	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/models"
)

// Open returns the backend selected by settings.
// The "remote" backend falls back to daemon.yaml when no address is configured.
func Open(s *models.Settings) (Store, error) {
	switch s.Store.Backend {
	case "", models.StoreBackendFile:
		return NewFile(), nil
	case models.StoreBackendMemory:
		return NewMemory(), nil
	case models.StoreBackendSQLite:
		path := s.Store.Path
		if path == "" {
			p, err := config.GlobalDatabaseFile()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return OpenSQLite(path)
	case models.StoreBackendRemote:
		addr := s.Store.Address
		if addr == "" {
			running, info, err := config.IsDaemonRunning()
			if err != nil {
				return nil, fmt.Errorf("failed to load daemon info: %w", err)
			}
			if !running {
				return nil, wrap("dial", "", fmt.Errorf("%w: kindlingd is not running", ErrUnavailable))
			}
			addr = info.Address()
		}
		return Dial(addr)
	default:
		return nil, fmt.Errorf("unknown store backend %q", s.Store.Backend)
	}
}
