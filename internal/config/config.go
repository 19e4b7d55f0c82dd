// Package config layers the smithy CLI settings: built-in defaults, then an
// optional project file, then whatever was set on the command line.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ndisidore/smithy/pkg/decode"
)

// Keys accepted in config files and overrides.
const (
	KeyPaths          = "paths"
	KeyFormat         = "format"
	KeyLogLevel       = "log_level"
	KeyDecodeMaxDepth = "decode.max_depth"
)

// Sentinel errors for configuration loading.
var (
	ErrUnsupportedFile = errors.New("unsupported config file type")
	ErrInvalid         = errors.New("invalid configuration")
)

var _formats = []string{"auto", "pretty", "json", "text"}

// Decode configures the node decoder.
type Decode struct {
	MaxDepth int `koanf:"max_depth"`
}

// Config is the resolved CLI configuration.
type Config struct {
	Paths    []string `koanf:"paths"`
	Format   string   `koanf:"format"`
	LogLevel string   `koanf:"log_level"`
	Decode   Decode   `koanf:"decode"`
}

// Decoder returns the decoder described by c.
func (c Config) Decoder() decode.Decoder {
	return decode.Decoder{MaxDepth: c.Decode.MaxDepth}
}

// Validate reports settings no command could run with.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(_formats, c.Format) {
		errs = append(errs, fmt.Errorf("%s %q: expected one of %s", KeyFormat, c.Format, strings.Join(_formats, ", ")))
	}
	if c.Decode.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("%s %d: must be at least 1", KeyDecodeMaxDepth, c.Decode.MaxDepth))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Defaults returns the built-in settings as koanf keys.
func Defaults() map[string]any {
	return map[string]any{
		KeyPaths:          []string{"."},
		KeyFormat:         "auto",
		KeyLogLevel:       "info",
		KeyDecodeMaxDepth: 256,
	}
}

// Load merges Defaults, the file at path (skipped when path is empty) and
// overrides, in that order. File keys the Config does not know are errors.
func Load(path string, overrides map[string]any) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return Config{}, fmt.Errorf("loading overrides: %w", err)
		}
	}

	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			Result:           &cfg,
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	})
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %s (expected .yaml, .yml, .toml or .json)", ErrUnsupportedFile, path)
	}
}
