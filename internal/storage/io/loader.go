package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/bootr/internal/model"
)

// ManifestYAMLRepository loads expected version manifests from YAML files.
type ManifestYAMLRepository struct {
	fs fs.FS
}

// NewManifestYAMLRepository creates a new YAML manifest repository.
func NewManifestYAMLRepository(filesystem fs.FS) *ManifestYAMLRepository {
	return &ManifestYAMLRepository{fs: filesystem}
}

// GetManifest loads an expected versions manifest from a YAML file and returns
// a validated domain model with deterministically sorted components.
func (r *ManifestYAMLRepository) GetManifest(ctx context.Context, path string) (model.Manifest, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.Manifest{}, fmt.Errorf("reading manifest file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Manifest{}, ctx.Err()
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return model.Manifest{}, fmt.Errorf("parsing YAML: %w", err)
	}

	manifest := m.toModel()
	if err := manifest.Validate(); err != nil {
		return model.Manifest{}, fmt.Errorf("invalid manifest: %w", err)
	}

	return manifest, nil
}

// Manifest represents the YAML structure for an expected versions manifest.
type Manifest struct {
	RuntimeVersion string            `yaml:"runtime_version"`
	Components     map[string]string `yaml:"components"`
}

func (m Manifest) toModel() model.Manifest {
	manifest := model.Manifest{
		RuntimeVersion: m.RuntimeVersion,
		Components:     make([]model.ExpectedVersion, 0, len(m.Components)),
	}

	for component, version := range m.Components {
		manifest.Components = append(manifest.Components, model.ExpectedVersion{
			Component: component,
			Version:   version,
		})
	}
	manifest.SortComponents()

	return manifest
}
