package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/anpopa/tkmviewer-sub000/internal/model"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	envPrefix        = "TKMV"
	settingsFileMode = 0o600
	settingsDirMode  = 0o700
	tempFilePattern  = ".settings-*.toml.tmp"

	keyTimeSource   = "data.time_source"
	keyTimeInterval = "data.time_interval"
	keyLogLevel     = "logging.level"
	keyLogFormat    = "logging.format"
	keyLogWriter    = "logging.writer"
	keyLogFile      = "logging.file"
	keyLogMaxSize   = "logging.max_size_mb"
	keyLogBackups   = "logging.max_backups"
)

// File mirrors the on-disk settings document.
type File struct {
	Data    DataConfig    `toml:"data" mapstructure:"data"`
	Logging LoggingConfig `toml:"logging" mapstructure:"logging"`
}

// DataConfig selects how session data is windowed.
type DataConfig struct {
	// Clock used for filtering: system, monotonic or receive.
	TimeSource string `toml:"time_source" mapstructure:"time_source"`

	// Load window width: 10s, 1m, 10m, 1h, 24h or nolimit.
	TimeInterval string `toml:"time_interval" mapstructure:"time_interval"`
}

// LoggingConfig configures the process-wide logger.
type LoggingConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"` // auto, logfmt or json
	Writer string `toml:"writer" mapstructure:"writer"` // stdout or stderr

	// File enables a rotating log file in addition to the console writer.
	File       string `toml:"file" mapstructure:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyTimeSource, model.TimeSourceSystem.String())
	v.SetDefault(keyTimeInterval, model.Interval10S.String())
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "auto")
	v.SetDefault(keyLogWriter, "stderr")
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keyLogMaxSize, 10)
	v.SetDefault(keyLogBackups, 3)
}

// Load reads the settings file at path through v. A missing file is not an
// error; defaults and TKMV_* environment overrides still apply.
func Load(v *viper.Viper, path string) (*File, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read settings %s: %w", path, err)
			}
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &f, nil
}

// Settings builds the live settings handle described by the file.
func (f *File) Settings() (*Settings, error) {
	src, err := model.ParseTimeSource(f.Data.TimeSource)
	if err != nil {
		return nil, err
	}
	iv, err := model.ParseTimeInterval(f.Data.TimeInterval)
	if err != nil {
		return nil, err
	}

	s := NewSettings()
	s.SetTimeSource(src)
	s.SetTimeInterval(iv)
	return s, nil
}

// Save writes the document to path atomically (temp file + rename).
func (f *File) Save(path string) error {
	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, settingsDirMode); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp settings: %w", err)
	}
	if err := tmp.Chmod(settingsFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp settings: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Settings is the live, concurrently readable view of the data settings.
// The UI may change it while the loop goroutine reads it.
type Settings struct {
	timeSource   atomic.Int32
	timeInterval atomic.Int32
}

// NewSettings returns settings with the system clock and a 10s window.
func NewSettings() *Settings {
	s := &Settings{}
	s.timeSource.Store(int32(model.TimeSourceSystem))
	s.timeInterval.Store(int32(model.Interval10S))
	return s
}

func (s *Settings) TimeSource() model.TimeSource {
	return model.TimeSource(s.timeSource.Load())
}

func (s *Settings) SetTimeSource(src model.TimeSource) {
	s.timeSource.Store(int32(src))
}

func (s *Settings) TimeInterval() model.TimeInterval {
	return model.TimeInterval(s.timeInterval.Load())
}

func (s *Settings) SetTimeInterval(iv model.TimeInterval) {
	s.timeInterval.Store(int32(iv))
}

// Store copies the current data settings back into f.
func (s *Settings) Store(f *File) {
	f.Data.TimeSource = s.TimeSource().String()
	f.Data.TimeInterval = s.TimeInterval().String()
}
