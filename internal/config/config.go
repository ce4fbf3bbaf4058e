// Package config loads cryptolight settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kirsle/configdir"
	"github.com/rbaliyan/cryptolight"
	"gopkg.in/yaml.v3"
)

// AppName names the per-user configuration folder.
const AppName = "cryptolight"

// ConfigFileName is the settings file inside the configuration folder.
const ConfigFileName = "config.yaml"

// Log level constants
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Log type constants
const (
	LogTypeConsole = "console"
	LogTypeFile    = "file"
)

// LoggingSettings controls the process logger.
type LoggingSettings struct {
	Level      string `yaml:"level" validate:"required,oneof=debug info warning error"`
	Type       string `yaml:"type" validate:"required,oneof=console file"`
	FilePath   string `yaml:"filePath"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
}

// Validate checks that all fields in LoggingSettings are valid
func (s *LoggingSettings) Validate() error {
	if err := newValidator().Struct(s); err != nil {
		return fmt.Errorf("validation failed for LoggingSettings: %w", err)
	}

	if s.Type == LogTypeFile {
		if s.FilePath == "" {
			return fmt.Errorf("file path is required for file logger")
		}
		if s.MaxSize < 1 || s.MaxSize > 100 {
			return fmt.Errorf("max size must be between 1 and 100 MB")
		}
		if s.MaxBackups < 1 || s.MaxBackups > 10 {
			return fmt.Errorf("max backups must be between 1 and 10")
		}
		if s.MaxAge < 1 || s.MaxAge > 365 {
			return fmt.Errorf("max age must be between 1 and 365 days")
		}
	}
	return nil
}

// Settings is the cryptolight section of the configuration file.
type Settings struct {
	Primitive string          `yaml:"primitive" validate:"required,primitive"`
	KeyFile   string          `yaml:"keyFile" validate:"required"`
	Logging   LoggingSettings `yaml:"logging"`
}

// Validate checks the settings, including the nested logging section.
func (s *Settings) Validate() error {
	if err := newValidator().Struct(s); err != nil {
		return fmt.Errorf("validation failed for Settings: %w", err)
	}
	return s.Logging.Validate()
}

type fileYAML struct {
	Cryptolight Settings `yaml:"cryptolight"`
}

// DefaultDir returns the per-user configuration folder.
func DefaultDir() string {
	return configdir.LocalConfig(AppName)
}

// DefaultConfigPath returns the settings file used when none is given.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), ConfigFileName)
}

// DefaultKeyPath returns the key file used when none is configured.
func DefaultKeyPath() string {
	return filepath.Join(DefaultDir(), cryptolight.DefaultKeyFileName)
}

// Default returns settings for SPECK-128 with the key in the configuration
// folder and console logging at info level.
func Default() *Settings {
	return &Settings{
		Primitive: cryptolight.Speck128.Name(),
		KeyFile:   DefaultKeyPath(),
		Logging: LoggingSettings{
			Level: LogLevelInfo,
			Type:  LogTypeConsole,
		},
	}
}

// Load reads settings from path over the defaults.
// An empty path selects DefaultConfigPath, which may be absent; an explicit
// path must exist.
func Load(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	f := fileYAML{Cryptolight: *Default()}
	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed interpreting config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("failed reading config file: %w", err)
	}

	s := &f.Cryptolight

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Write stores s at path under the cryptolight key, creating the folder.
func Write(path string, s *Settings) error {
	if err := configdir.MakePath(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed creating config folder: %w", err)
	}
	data, err := yaml.Marshal(fileYAML{Cryptolight: *s})
	if err != nil {
		return fmt.Errorf("failed marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed writing config file: %w", err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("primitive", func(fl validator.FieldLevel) bool {
		_, err := cryptolight.PrimitiveByName(fl.Field().String())
		return err == nil
	})
	return v
}
