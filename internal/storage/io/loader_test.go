package io

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/bootr/internal/model"
)

func TestManifestYAMLRepository_GetManifest(t *testing.T) {
	tests := map[string]struct {
		fs          fstest.MapFS
		path        string
		expManifest model.Manifest
		expErr      bool
		errMsg      string
	}{
		"Valid manifest should load with sorted components": {
			fs: fstest.MapFS{
				"manifest.yaml": &fstest.MapFile{
					Data: []byte(`runtime_version: "3.11"
components:
  widget: 1.0.0
  apache-airflow: 2.9.2
`),
				},
			},
			path: "manifest.yaml",
			expManifest: model.Manifest{
				RuntimeVersion: "3.11",
				Components: []model.ExpectedVersion{
					{Component: "apache-airflow", Version: "2.9.2"},
					{Component: "widget", Version: "1.0.0"},
				},
			},
		},

		"Manifest without runtime version should load": {
			fs: fstest.MapFS{
				"manifest.yaml": &fstest.MapFile{
					Data: []byte(`components:
  widget: 1.0.0
`),
				},
			},
			path: "manifest.yaml",
			expManifest: model.Manifest{
				Components: []model.ExpectedVersion{
					{Component: "widget", Version: "1.0.0"},
				},
			},
		},

		"Empty manifest should load as empty model": {
			fs: fstest.MapFS{
				"empty.yaml": &fstest.MapFile{
					Data: []byte("---\n"),
				},
			},
			path: "empty.yaml",
			expManifest: model.Manifest{
				Components: []model.ExpectedVersion{},
			},
		},

		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading manifest file",
		},

		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"bad.yaml": &fstest.MapFile{
					Data: []byte("components: [not: a: map\n"),
				},
			},
			path:   "bad.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},

		"Empty component version should return error": {
			fs: fstest.MapFS{
				"manifest.yaml": &fstest.MapFile{
					Data: []byte(`components:
  widget: ""
`),
				},
			},
			path:   "manifest.yaml",
			expErr: true,
			errMsg: "invalid manifest",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewManifestYAMLRepository(test.fs)

			got, err := repo.GetManifest(context.Background(), test.path)
			if test.expErr {
				require.Error(t, err)
				if test.errMsg != "" {
					assert.Contains(t, err.Error(), test.errMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expManifest, got)
		})
	}
}
