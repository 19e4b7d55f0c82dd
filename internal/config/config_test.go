package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndisidore/smithy/pkg/decode"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	defaults := Config{
		Paths:    []string{"."},
		Format:   "auto",
		LogLevel: "info",
		Decode:   Decode{MaxDepth: 256},
	}

	tests := []struct {
		name      string
		file      string
		content   string
		overrides map[string]any
		want      Config
	}{
		{
			name: "defaults only",
			want: defaults,
		},
		{
			name:    "yaml file",
			file:    "smithy.yaml",
			content: "paths:\n  - blueprints\n  - extra.kdl\nlog_level: debug\ndecode:\n  max_depth: 64\n",
			want: Config{
				Paths:    []string{"blueprints", "extra.kdl"},
				Format:   "auto",
				LogLevel: "debug",
				Decode:   Decode{MaxDepth: 64},
			},
		},
		{
			name:    "toml file",
			file:    "smithy.toml",
			content: "format = \"json\"\n\n[decode]\nmax_depth = 32\n",
			want: Config{
				Paths:    []string{"."},
				Format:   "json",
				LogLevel: "info",
				Decode:   Decode{MaxDepth: 32},
			},
		},
		{
			name:    "json file",
			file:    "smithy.json",
			content: `{"paths": ["a", "b"], "decode": {"max_depth": 8}}`,
			want: Config{
				Paths:    []string{"a", "b"},
				Format:   "auto",
				LogLevel: "info",
				Decode:   Decode{MaxDepth: 8},
			},
		},
		{
			name:      "overrides win over file",
			file:      "smithy.yml",
			content:   "format: text\nlog_level: debug\n",
			overrides: map[string]any{KeyFormat: "pretty", KeyDecodeMaxDepth: 9},
			want: Config{
				Paths:    []string{"."},
				Format:   "pretty",
				LogLevel: "debug",
				Decode:   Decode{MaxDepth: 9},
			},
		},
		{
			name:      "comma separated paths",
			overrides: map[string]any{KeyPaths: "one,two"},
			want: Config{
				Paths:    []string{"one", "two"},
				Format:   "auto",
				LogLevel: "info",
				Decode:   Decode{MaxDepth: 256},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var path string
			if tt.file != "" {
				path = writeFile(t, tt.file, tt.content)
			}
			got, err := Load(path, tt.overrides)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		file      string
		content   string
		overrides map[string]any
		wantErr   error
		wantMsg   string
	}{
		{
			name:    "unsupported extension",
			file:    "smithy.ini",
			content: "format=json\n",
			wantErr: ErrUnsupportedFile,
		},
		{
			name:    "unknown key",
			file:    "smithy.yaml",
			content: "colour: blue\n",
			wantErr: ErrInvalid,
			wantMsg: "colour",
		},
		{
			name:    "unknown decode key",
			file:    "smithy.yaml",
			content: "decode:\n  strict: true\n",
			wantErr: ErrInvalid,
			wantMsg: "strict",
		},
		{
			name:    "bad format",
			file:    "smithy.yaml",
			content: "format: xml\n",
			wantErr: ErrInvalid,
			wantMsg: `format "xml"`,
		},
		{
			name:      "bad max depth",
			overrides: map[string]any{KeyDecodeMaxDepth: 0},
			wantErr:   ErrInvalid,
			wantMsg:   "decode.max_depth 0",
		},
		{
			name:    "malformed file",
			file:    "smithy.json",
			content: "{not json",
			wantMsg: "loading",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var path string
			if tt.file != "" {
				path = writeFile(t, tt.file, tt.content)
			}
			_, err := Load(path, tt.overrides)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecoder(t *testing.T) {
	t.Parallel()

	cfg := Config{Decode: Decode{MaxDepth: 12}}
	assert.Equal(t, decode.Decoder{MaxDepth: 12}, cfg.Decoder())
}
