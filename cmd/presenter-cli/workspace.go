package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-presenter/pkg/decorator"
	"github.com/goliatone/go-presenter/pkg/manifest"
	"github.com/goliatone/go-presenter/pkg/model"
)

// typeKey names the model type of nested records in data files.
const typeKey = "_type"

// workspace is a registry built from a manifest plus the model types it
// references.
type workspace struct {
	registry    *decorator.Registry
	manifest    *manifest.Manifest
	types       map[string]*model.Type
	definitions map[string]*decorator.Definition
}

func loadWorkspace(opts *rootOptions) (*workspace, error) {
	m, err := loadManifest(opts.manifest)
	if err != nil {
		return nil, err
	}

	types := make(map[string]*model.Type)
	for _, name := range m.Names() {
		decl, _ := m.Decorator(name)
		if decl.Model != "" && types[decl.Model] == nil {
			types[decl.Model] = model.NewType(decl.Model)
		}
	}

	reg := decorator.NewRegistry(decorator.WithLogger(opts.logger))
	defs, err := m.Define(reg, types)
	if err != nil {
		return nil, err
	}
	opts.logger.Debug("manifest loaded", "path", opts.manifest, "decorators", len(defs))
	return &workspace{registry: reg, manifest: m, types: types, definitions: defs}, nil
}

func loadManifest(path string) (*manifest.Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if info.IsDir() {
		return manifest.LoadFS(os.DirFS(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	return manifest.Parse(data, filepath.Base(path))
}

func (w *workspace) typeFor(name string) *model.Type {
	if t, ok := w.types[name]; ok {
		return t
	}
	t := model.NewType(name)
	w.types[name] = t
	return t
}

// versions lists the versions registered for typeName, sorted.
func (w *workspace) versions(typeName string) []string {
	var out []string
	for _, registration := range w.registry.Registrations() {
		if registration.Model.Name() == typeName {
			out = append(out, registration.Version)
		}
	}
	sort.Strings(out)
	return out
}

// loadRecords reads a YAML or JSON list of attribute maps (or a document
// with a "records" list) into records of typeName. Nested maps carrying a
// "_type" key become associated records; lists of them become record sets.
func (w *workspace) loadRecords(path, typeName string) (*model.RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("data: read %s: %w", path, err)
	}

	var raw any
	if err := gojson.Unmarshal(data, &raw); err != nil {
		raw = nil
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("data: parse %s: invalid JSON or YAML: %w", path, err)
		}
	}
	if doc, ok := raw.(map[string]any); ok {
		raw = doc["records"]
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("data: %s must hold a list of records", path)
	}

	t := w.typeFor(typeName)
	set := model.NewRecordSet(t)
	for i, item := range items {
		attrs, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("data: %s record %d is not a mapping", path, i)
		}
		set.Add(w.record(t, attrs))
	}
	return set, nil
}

func (w *workspace) record(t *model.Type, values map[string]any) *model.Record {
	plain := make(map[string]any, len(values))
	associations := make(map[string]any)
	for key, value := range values {
		if key == typeKey {
			continue
		}
		if assoc, ok := w.association(value); ok {
			associations[key] = assoc
			continue
		}
		plain[key] = value
	}

	rec := model.NewRecord(t, model.AttributesFromMap(plain))
	names := make([]string, 0, len(associations))
	for name := range associations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rec.SetAssociation(name, associations[name])
	}
	return rec
}

func (w *workspace) association(value any) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		name, ok := v[typeKey].(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, false
		}
		return w.record(w.typeFor(name), v), true
	case []any:
		if len(v) == 0 {
			return nil, false
		}
		first, ok := v[0].(map[string]any)
		if !ok {
			return nil, false
		}
		name, ok := first[typeKey].(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, false
		}
		t := w.typeFor(name)
		set := model.NewRecordSet(t)
		for _, item := range v {
			values, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			set.Add(w.record(t, values))
		}
		return set, true
	}
	return nil, false
}
