// Package store persists projects. Every backend satisfies Store and
// reports failures as *StoreError.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kindling-io/kindling/internal/models"
)

var (
	// ErrNotFound is returned when a project id is unknown to the backend.
	ErrNotFound = errors.New("project not found")
	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
	// ErrInvalid is returned for requests the backend refuses to accept.
	ErrInvalid = errors.New("invalid request")
)

// Store is the project persistence boundary.
type Store interface {
	List(ctx context.Context) ([]*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, opts CreateOptions) (*models.Project, error)
	Update(ctx context.Context, id string, opts UpdateOptions) (*models.Project, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// CreateOptions contains options for creating a project.
type CreateOptions struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
}

// UpdateOptions contains a partial update. Nil fields are left unchanged.
type UpdateOptions struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Code        *string `json:"code,omitempty"`
}

// CodeUpdate is shorthand for an update that only replaces the code.
func CodeUpdate(code string) UpdateOptions {
	return UpdateOptions{Code: &code}
}

// StoreError records the failed operation and project.
type StoreError struct {
	Op        string
	ProjectID string
	Err       error
}

func (e *StoreError) Error() string {
	if e.ProjectID == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.ProjectID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, ProjectID: id, Err: err}
}

func validateCreate(opts CreateOptions) error {
	if strings.TrimSpace(opts.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	return nil
}

// apply copies the set fields of opts onto p and bumps UpdatedAt.
func apply(p *models.Project, opts UpdateOptions, now time.Time) {
	if opts.Name != nil {
		p.Name = *opts.Name
	}
	if opts.Description != nil {
		p.Description = *opts.Description
	}
	if opts.Code != nil {
		p.Code = *opts.Code
	}
	p.UpdatedAt = now.UTC()
}
