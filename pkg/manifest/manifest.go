package manifest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Manifest is a set of decorator declarations keyed by decorator name.
type Manifest struct {
	decorators map[string]Decorator
}

// Decorator declares one presenter definition.
type Decorator struct {
	Name         string            `json:"-" yaml:"-"`
	Source       string            `json:"-" yaml:"-"`
	Model        string            `json:"model" yaml:"model"`
	Version      string            `json:"version,omitempty" yaml:"version,omitempty"`
	Extends      string            `json:"extends,omitempty" yaml:"extends,omitempty"`
	Allow        []string          `json:"allow,omitempty" yaml:"allow,omitempty"`
	Deny         []string          `json:"deny,omitempty" yaml:"deny,omitempty"`
	Associations []string          `json:"associations,omitempty" yaml:"associations,omitempty"`
	Methods      map[string]string `json:"methods,omitempty" yaml:"methods,omitempty"`
	JSON         JSONConfig        `json:"json,omitempty" yaml:"json,omitempty"`
}

// JSONConfig mirrors decorator.JSONOptions. DecoratedInclude is the list form.
type JSONConfig struct {
	Only             []string `json:"only,omitempty" yaml:"only,omitempty"`
	Except           []string `json:"except,omitempty" yaml:"except,omitempty"`
	Methods          []string `json:"methods,omitempty" yaml:"methods,omitempty"`
	DecoratedMethods []string `json:"decoratedMethods,omitempty" yaml:"decoratedMethods,omitempty"`
	DecoratedInclude []string `json:"decoratedInclude,omitempty" yaml:"decoratedInclude,omitempty"`
}

type documentFile struct {
	Decorators map[string]Decorator `json:"decorators" yaml:"decorators"`
}

// LoadFS walks fsys and merges every JSON/YAML manifest it finds. A nil fsys
// yields an empty manifest. Declaring the same decorator twice is an error.
func LoadFS(fsys fs.FS) (*Manifest, error) {
	out := &Manifest{decorators: make(map[string]Decorator)}
	if fsys == nil {
		return out, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isManifestFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("manifest: read %s: %w", path, err)
		}
		doc, err := Parse(data, path)
		if err != nil {
			return err
		}
		return out.merge(doc)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Parse decodes a single manifest document. JSON is tried first, then YAML.
func Parse(data []byte, source string) (*Manifest, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("manifest: file %s is empty", source)
	}

	var doc documentFile
	if err := gojson.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("manifest: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}

	out := &Manifest{decorators: make(map[string]Decorator, len(doc.Decorators))}
	for rawName, decl := range doc.Decorators {
		name := strings.TrimSpace(rawName)
		if name == "" {
			return nil, fmt.Errorf("manifest: file %s declares a decorator without a name", source)
		}
		decl.Name = name
		decl.Source = source
		decl.Model = strings.TrimSpace(decl.Model)
		decl.Version = strings.TrimSpace(decl.Version)
		decl.Extends = strings.TrimSpace(decl.Extends)
		out.decorators[name] = decl
	}
	return out, nil
}

func (m *Manifest) merge(other *Manifest) error {
	for name, decl := range other.decorators {
		if existing, exists := m.decorators[name]; exists {
			return fmt.Errorf("manifest: duplicate decorator %q (files %s and %s)", name, existing.Source, decl.Source)
		}
		m.decorators[name] = decl
	}
	return nil
}

// Decorator returns the named declaration.
func (m *Manifest) Decorator(name string) (Decorator, bool) {
	if m == nil {
		return Decorator{}, false
	}
	decl, ok := m.decorators[name]
	return decl, ok
}

// Names lists the declared decorators, sorted.
func (m *Manifest) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.decorators))
	for name := range m.decorators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the manifest declares nothing.
func (m *Manifest) Empty() bool {
	return m == nil || len(m.decorators) == 0
}

func isManifestFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
