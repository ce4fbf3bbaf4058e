package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSettingsValidation(t *testing.T) {
	tests := []struct {
		name          string
		settings      *LoggingSettings
		expectedError bool
	}{
		{
			name:          "valid console logger",
			settings:      &LoggingSettings{Level: LogLevelInfo, Type: LogTypeConsole},
			expectedError: false,
		},
		{
			name: "valid file logger with rotation",
			settings: &LoggingSettings{
				Level:      LogLevelDebug,
				Type:       LogTypeFile,
				FilePath:   "/path/to/log/file",
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
			},
			expectedError: false,
		},
		{
			name:          "missing level",
			settings:      &LoggingSettings{Type: LogTypeConsole},
			expectedError: true,
		},
		{
			name:          "invalid level",
			settings:      &LoggingSettings{Level: "critical", Type: LogTypeConsole},
			expectedError: true,
		},
		{
			name:          "invalid type",
			settings:      &LoggingSettings{Level: LogLevelInfo, Type: "syslog"},
			expectedError: true,
		},
		{
			name: "file logger missing file path",
			settings: &LoggingSettings{
				Level:      LogLevelInfo,
				Type:       LogTypeFile,
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
			},
			expectedError: true,
		},
		{
			name: "file logger missing rotation settings",
			settings: &LoggingSettings{
				Level:    LogLevelInfo,
				Type:     LogTypeFile,
				FilePath: "/path/to/log/file",
			},
			expectedError: true,
		},
		{
			name: "file logger max size too large",
			settings: &LoggingSettings{
				Level:      LogLevelInfo,
				Type:       LogTypeFile,
				FilePath:   "/path/to/log/file",
				MaxSize:    101,
				MaxBackups: 3,
				MaxAge:     28,
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsValidation(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	s.Primitive = "SPECK"
	assert.NoError(t, s.Validate(), "primitive names are case-insensitive")

	s.Primitive = "simon"
	assert.Error(t, s.Validate())

	s = Default()
	s.KeyFile = ""
	assert.Error(t, s.Validate())
}

func TestDefaults(t *testing.T) {
	s := Default()
	assert.Equal(t, "speck128", s.Primitive)
	assert.Equal(t, "key.bin", filepath.Base(s.KeyFile))
	assert.Equal(t, DefaultDir(), filepath.Dir(s.KeyFile))
	assert.Equal(t, ConfigFileName, filepath.Base(DefaultConfigPath()))
	assert.Equal(t, LogLevelInfo, s.Logging.Level)
	assert.Equal(t, LogTypeConsole, s.Logging.Type)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := strings.Join([]string{
		"cryptolight:",
		"  primitive: aes128",
		"  keyFile: /var/lib/cryptolight/key.bin",
		"  logging:",
		"    level: debug",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "aes128", s.Primitive)
	assert.Equal(t, "/var/lib/cryptolight/key.bin", s.KeyFile)
	assert.Equal(t, LogLevelDebug, s.Logging.Level)
	assert.Equal(t, LogTypeConsole, s.Logging.Type, "unset fields keep defaults")
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("cryptolight: [not, a, map"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("cryptolight:\n  primitive: rot13\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	want := Default()
	want.Primitive = "aes128"
	want.KeyFile = filepath.Join(t.TempDir(), "key.bin")
	require.NoError(t, Write(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
