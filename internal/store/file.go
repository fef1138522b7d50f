package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/models"
)

// File stores each project as YAML under the global directory and keeps
// the order in projects.yaml.
type File struct {
	mu sync.Mutex
}

var _ Store = (*File)(nil)

// NewFile returns a store rooted at config.GlobalDir.
func NewFile() *File {
	return &File{}
}

// List returns all indexed projects in index order. Entries whose
// project file is missing or unreadable are skipped.
func (f *File) List(ctx context.Context) ([]*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("list", "", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	index, err := config.LoadProjectsIndex()
	if err != nil {
		return nil, wrap("list", "", err)
	}

	projects := make([]*models.Project, 0, len(index.Projects))
	for _, entry := range index.Projects {
		p, err := config.LoadProject(entry.ProjectID)
		if err != nil || p == nil {
			continue
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (f *File) Get(ctx context.Context, id string) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("get", id, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load("get", id)
}

func (f *File) Create(ctx context.Context, opts CreateOptions) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("create", "", err)
	}
	if err := validateCreate(opts); err != nil {
		return nil, wrap("create", "", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	p := models.NewProject(uuid.New().String(), opts.Name, opts.OwnerID)
	p.Description = opts.Description

	if err := config.SaveProject(p); err != nil {
		return nil, wrap("create", p.ProjectID, err)
	}
	if err := config.RegisterProject(p.ProjectID, p.Name); err != nil {
		return nil, wrap("create", p.ProjectID, err)
	}
	return p, nil
}

func (f *File) Update(ctx context.Context, id string, opts UpdateOptions) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("update", id, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.load("update", id)
	if err != nil {
		return nil, err
	}

	apply(p, opts, time.Now())
	if err := config.SaveProject(p); err != nil {
		return nil, wrap("update", id, err)
	}
	if opts.Name != nil {
		if err := config.RegisterProject(p.ProjectID, p.Name); err != nil {
			return nil, wrap("update", id, err)
		}
	}
	return p, nil
}

func (f *File) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return wrap("delete", id, err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.load("delete", id); err != nil {
		return err
	}
	return wrap("delete", id, config.UnregisterProject(id))
}

func (f *File) Close() error { return nil }

func (f *File) load(op, id string) (*models.Project, error) {
	if id == "" {
		return nil, wrap(op, id, ErrNotFound)
	}
	p, err := config.LoadProject(id)
	if err != nil {
		return nil, wrap(op, id, err)
	}
	if p == nil {
		return nil, wrap(op, id, ErrNotFound)
	}
	return p, nil
}
