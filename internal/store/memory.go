package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kindling-io/kindling/internal/models"
)

// Memory is an in-process Store. Projects are lost on exit.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]*models.Project
	now      func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		projects: make(map[string]*models.Project),
		now:      time.Now,
	}
}

// List returns every project, oldest first.
func (m *Memory) List(ctx context.Context) ([]*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("list", "", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p.Clone())
	}
	sortProjects(out)
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id string) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("get", id, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, wrap("get", id, ErrNotFound)
	}
	return p.Clone(), nil
}

func (m *Memory) Create(ctx context.Context, opts CreateOptions) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("create", "", err)
	}
	if err := validateCreate(opts); err != nil {
		return nil, wrap("create", "", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p := models.NewProject(uuid.New().String(), opts.Name, opts.OwnerID)
	p.Description = opts.Description
	p.CreatedAt = m.now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.projects[p.ProjectID] = p
	return p.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, id string, opts UpdateOptions) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("update", id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, wrap("update", id, ErrNotFound)
	}
	apply(p, opts, m.now())
	return p.Clone(), nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return wrap("delete", id, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return wrap("delete", id, ErrNotFound)
	}
	delete(m.projects, id)
	return nil
}

func (m *Memory) Close() error { return nil }

func sortProjects(ps []*models.Project) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].ProjectID < ps[j].ProjectID
		}
		return ps[i].CreatedAt.Before(ps[j].CreatedAt)
	})
}
