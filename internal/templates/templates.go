// Package templates provides the read-only catalog of starter projects:
// a built-in set compiled into the binary plus any YAML files in
// ~/.kindling/templates/.
package templates

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kindling-io/kindling/internal/models"
)

//go:embed catalog.yaml
var builtinCatalog []byte

type catalogFile struct {
	Version   int               `yaml:"version"`
	Templates []models.Template `yaml:"templates"`
}

// Catalog is an ordered list of templates.
type Catalog struct {
	templates []models.Template
}

// Builtin returns the embedded catalog.
func Builtin() (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(builtinCatalog, &f); err != nil {
		return nil, fmt.Errorf("failed to parse built-in templates: %w", err)
	}
	return &Catalog{templates: f.Templates}, nil
}

// Load returns the built-in templates followed by the user templates in dir.
// A missing dir is not an error. Each user file holds a single template.
func Load(dir string) (*Catalog, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return c, nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", path, err)
		}
		var t models.Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
		}
		if t.Name == "" {
			t.Name = strings.TrimSuffix(filepath.Base(path), ".yaml")
		}
		if t.Category == "" {
			t.Category = "custom"
		}
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// All returns a copy of every template in catalog order.
func (c *Catalog) All() []models.Template {
	out := make([]models.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Find returns the first template whose name matches, ignoring case.
func (c *Catalog) Find(name string) (models.Template, bool) {
	for _, t := range c.templates {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return models.Template{}, false
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.templates) }
