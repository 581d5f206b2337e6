// Package catalogsrc loads the template catalog from a YAML file. Any failure
// degrades to the built-in catalog.
package catalogsrc

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/artpar/stackwizard/internal/core/catalog"
	"github.com/artpar/stackwizard/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// File is the on-disk catalog format.
//
//	include_builtin: true
//	templates:
//	  - id: caddy
//	    name: Caddy
//	    category: web
//	    defaults: {name: caddy, image: "caddy:2", ...}
//	compose:
//	  - meta: {id: gitea, name: Gitea, category: stack}
//	    file: gitea.compose.yml
type File struct {
	IncludeBuiltin bool              `yaml:"include_builtin"`
	Templates      []domain.Template `yaml:"templates"`
	Compose        []ComposeEntry    `yaml:"compose"`
}

// ComposeEntry imports a compose document as a template. Exactly one of File
// (relative to the catalog file) or Content is set.
type ComposeEntry struct {
	Meta    catalog.Meta `yaml:"meta"`
	File    string       `yaml:"file,omitempty"`
	Content string       `yaml:"content,omitempty"`
}

// Load returns the catalog described by path. An empty path, or any read,
// parse or validation failure, yields the built-in catalog; failures are
// logged.
func Load(path string, logger *slog.Logger) *catalog.Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "catalog")

	if path == "" {
		return catalog.Builtin()
	}
	c, err := LoadFile(path)
	if err != nil {
		logger.Warn("using built-in catalog", "path", path, "error", err)
		return catalog.Builtin()
	}
	logger.Info("catalog loaded", "path", path, "templates", c.Len())
	return c
}

// LoadFile parses a catalog file strictly.
func LoadFile(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	var templates []domain.Template
	if f.IncludeBuiltin {
		templates = append(templates, catalog.Builtin().List()...)
	}

	for _, t := range f.Templates {
		t = withDefaults(t)
		if err := validateLimits(t); err != nil {
			return nil, fmt.Errorf("template %s: %w", t.ID, err)
		}
		templates = append(templates, t)
	}

	dir := filepath.Dir(path)
	for i, entry := range f.Compose {
		content, err := entry.content(dir)
		if err != nil {
			return nil, fmt.Errorf("compose[%d]: %w", i, err)
		}
		t, err := catalog.FromCompose(entry.Meta, content)
		if err != nil {
			return nil, fmt.Errorf("compose[%d] %s: %w", i, entry.Meta.ID, err)
		}
		templates = append(templates, t)
	}

	if len(templates) == 0 {
		return nil, errors.New("catalog file defines no templates")
	}
	return catalog.New(templates...)
}

func (e ComposeEntry) content(dir string) (string, error) {
	switch {
	case e.File != "" && e.Content != "":
		return "", errors.New("set either file or content, not both")
	case e.Content != "":
		return e.Content, nil
	case e.File != "":
		p := e.File
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", errors.New("file or content is required")
	}
}

// withDefaults fills limits and restart policy left out of the file.
func withDefaults(t domain.Template) domain.Template {
	fill := func(c *domain.ServiceConfig) {
		if c.MemoryGiB == 0 {
			c.MemoryGiB = domain.DefaultMemoryGiB
		}
		if c.CPUCores == 0 {
			c.CPUCores = domain.DefaultCPUCores
		}
		if c.RestartPolicy == "" {
			c.RestartPolicy = domain.DefaultRestartPolicy
		}
	}
	t = t.Clone()
	if t.Defaults != nil {
		fill(t.Defaults)
	}
	for i := range t.Stack {
		fill(&t.Stack[i])
	}
	return t
}

func validateLimits(t domain.Template) error {
	for _, svc := range t.Services() {
		if err := domain.ValidateLimits(svc); err != nil {
			return err
		}
	}
	return nil
}
