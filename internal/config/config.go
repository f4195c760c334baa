// Package config loads config.yaml from the configuration directory and
// resolves the active profile into board and logging settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/corkboard/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// FileName is the configuration file inside the config directory.
	FileName = "config.yaml"

	// EnvPrefix prefixes the environment overrides, e.g. CORKBOARD_LOG_LEVEL.
	EnvPrefix = "CORKBOARD"
)

// Config keys.
const (
	KeyBackend        = "backend"
	KeyDataDir        = "data_dir"
	KeyDBFile         = "db_file"
	KeyLogFile        = "log_file"
	KeyLogLevel       = "log_level"
	KeyDueSoonDays    = "due_soon_days"
	KeyMaxLists       = "max_lists"
	KeyDefaultProfile = "default_profile"
	KeyProfiles       = "profiles"
)

// DefaultLogLevel is used when config.yaml names none.
const DefaultLogLevel = "info"

// ErrUnknownProfile reports a profile name missing from config.yaml.
var ErrUnknownProfile = errors.New("unknown profile")

// Profile overrides the base settings. Empty or nil fields inherit.
type Profile struct {
	Name        string `mapstructure:"name" yaml:"name"`
	DBFile      string `mapstructure:"db_file" yaml:"db_file,omitempty"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file,omitempty"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level,omitempty"`
	DueSoonDays *int   `mapstructure:"due_soon_days" yaml:"due_soon_days,omitempty"`
	MaxLists    *int   `mapstructure:"max_lists" yaml:"max_lists,omitempty"`
}

// File mirrors config.yaml.
type File struct {
	Backend        string    `mapstructure:"backend" yaml:"backend"`
	DataDir        string    `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	DBFile         string    `mapstructure:"db_file" yaml:"db_file"`
	LogFile        string    `mapstructure:"log_file" yaml:"log_file,omitempty"`
	LogLevel       string    `mapstructure:"log_level" yaml:"log_level"`
	DueSoonDays    int       `mapstructure:"due_soon_days" yaml:"due_soon_days"`
	MaxLists       int       `mapstructure:"max_lists" yaml:"max_lists"`
	DefaultProfile string    `mapstructure:"default_profile" yaml:"default_profile,omitempty"`
	Profiles       []Profile `mapstructure:"profiles" yaml:"profiles,omitempty"`
}

// Default returns the settings written to a fresh config.yaml.
func Default() File {
	return File{
		Backend:     types.BackendSQLite,
		DBFile:      types.DefaultDBFile,
		LogFile:     "corkboard.log",
		LogLevel:    DefaultLogLevel,
		DueSoonDays: types.DefaultDueSoonDays,
		MaxLists:    types.DefaultMaxLists,
	}
}

// Settings is the resolved configuration of one run. It is read-only once
// built.
type Settings struct {
	Profile     string // Empty when no profile is active.
	Backend     string
	DataDir     string // As written in config.yaml; callers resolve precedence.
	DBFile      string
	LogFile     string
	LogLevel    string
	DueSoonDays int
	MaxLists    int
}

// BoardConfig builds the backend Config for the resolved data directory.
func (s Settings) BoardConfig(dataDir string) types.Config {
	return types.Config{
		Backend:     s.Backend,
		DataDir:     dataDir,
		DBFile:      s.DBFile,
		DueSoonDays: s.DueSoonDays,
		MaxLists:    s.MaxLists,
	}
}

// Load reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. Environment variables
// with the CORKBOARD_ prefix override log_level, due_soon_days, max_lists
// and default_profile.
func Load(configDir string) (*File, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if _, err := WriteDefault(configDir, ""); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	def := Default()
	v.SetDefault(KeyBackend, def.Backend)
	v.SetDefault(KeyDBFile, def.DBFile)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyDueSoonDays, def.DueSoonDays)
	v.SetDefault(KeyMaxLists, def.MaxLists)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	// CORKBOARD_DATA_DIR ranks below config.yaml; the paths package applies it.
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range []string{KeyLogLevel, KeyDueSoonDays, KeyMaxLists, KeyDefaultProfile} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &f, nil
}

// Resolve merges the named profile over the base settings. An empty name
// selects default_profile, and no profile at all when that is empty too.
func (f *File) Resolve(name string) (Settings, error) {
	s := Settings{
		Backend:     f.Backend,
		DataDir:     f.DataDir,
		DBFile:      f.DBFile,
		LogFile:     f.LogFile,
		LogLevel:    f.LogLevel,
		DueSoonDays: f.DueSoonDays,
		MaxLists:    f.MaxLists,
	}
	if name == "" {
		name = f.DefaultProfile
	}
	if name == "" {
		return s, nil
	}

	p, ok := f.profile(name)
	if !ok {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	s.Profile = p.Name
	if p.DBFile != "" {
		s.DBFile = p.DBFile
	}
	if p.LogFile != "" {
		s.LogFile = p.LogFile
	}
	if p.LogLevel != "" {
		s.LogLevel = p.LogLevel
	}
	if p.DueSoonDays != nil {
		s.DueSoonDays = *p.DueSoonDays
	}
	if p.MaxLists != nil {
		s.MaxLists = *p.MaxLists
	}
	return s, nil
}

func (f *File) profile(name string) (Profile, bool) {
	for _, p := range f.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// WriteDefault writes a default config.yaml into configDir unless one
// exists. A non-empty dataDir is recorded as data_dir. It reports whether
// the file was created.
func WriteDefault(configDir, dataDir string) (bool, error) {
	path := filepath.Join(configDir, FileName)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	f := Default()
	f.DataDir = dataDir

	var node yaml.Node
	if err := node.Encode(&f); err != nil {
		return false, fmt.Errorf("encode config: %w", err)
	}
	node.HeadComment = "# corkboard configuration"

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
