package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/inplace/internal/errors"
	"github.com/vango-dev/inplace/pkg/vdom"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "inplace.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "inplace.yaml"

	// DefaultPort is the default preview server port.
	DefaultPort = 3000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultSnapshotDir is the default local snapshot directory.
	DefaultSnapshotDir = "snapshots"

	// DefaultSnapshotPrefix is the default object key prefix in S3.
	DefaultSnapshotPrefix = "inplace/"
)

// Config represents the complete inplace configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Render contains markup production settings.
	Render RenderConfig `json:"render" yaml:"render"`

	// Runtime contains component runtime settings.
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`

	// Serve contains live preview server settings.
	Serve ServeConfig `json:"serve" yaml:"serve"`

	// Snapshot contains snapshot storage settings.
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RenderConfig contains markup production settings.
type RenderConfig struct {
	// Pretty indents rendered markup. Only used for output, never for
	// mounting.
	Pretty bool `json:"pretty,omitempty" yaml:"pretty,omitempty"`

	// Indent is the indentation unit in pretty mode.
	Indent string `json:"indent,omitempty" yaml:"indent,omitempty"`

	// PlaceholderClass marks child slots in component markup.
	PlaceholderClass string `json:"placeholderClass,omitempty" yaml:"placeholderClass,omitempty"`
}

// RuntimeConfig contains component runtime settings.
type RuntimeConfig struct {
	// StrictSlots fails a mount when placeholders and children disagree.
	StrictSlots bool `json:"strictSlots" yaml:"strictSlots"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// LogFormat is text or json.
	LogFormat string `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
}

// ServeConfig contains live preview server settings.
type ServeConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Metrics exposes /metrics.
	Metrics bool `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing enables spans around mounts and reconciliations.
	Tracing bool `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// SnapshotConfig contains snapshot storage settings. Bucket selects S3;
// otherwise snapshots are written to Dir.
type SnapshotConfig struct {
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Render: RenderConfig{
			Indent:           "  ",
			PlaceholderClass: vdom.PlaceholderClass,
		},
		Runtime: RuntimeConfig{
			StrictSlots: true,
			LogLevel:    "info",
			LogFormat:   "text",
		},
		Serve: ServeConfig{
			Host:    DefaultHost,
			Port:    DefaultPort,
			Metrics: true,
		},
		Snapshot: SnapshotConfig{
			Dir:    DefaultSnapshotDir,
			Prefix: DefaultSnapshotPrefix,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for inplace.json, then inplace.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + dir)
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are parsed as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New(errors.CodeConfigParse).Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfigParse).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML when the
// path ends in .yaml or .yml.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigParse).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigParse).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Render.Indent == "" {
		c.Render.Indent = "  "
	}
	if c.Render.PlaceholderClass == "" {
		c.Render.PlaceholderClass = vdom.PlaceholderClass
	}
	if c.Runtime.LogLevel == "" {
		c.Runtime.LogLevel = "info"
	}
	if c.Runtime.LogFormat == "" {
		c.Runtime.LogFormat = "text"
	}
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
	if c.Snapshot.Prefix == "" {
		c.Snapshot.Prefix = DefaultSnapshotPrefix
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("serve.port must be between 0 and 65535")
	}
	if _, ok := parseLevel(c.Runtime.LogLevel); !ok {
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("runtime.logLevel %q is not one of debug, info, warn, error", c.Runtime.LogLevel)
	}
	if f := c.Runtime.LogFormat; f != "text" && f != "json" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("runtime.logFormat %q is not text or json", f)
	}
	if cls := c.Render.PlaceholderClass; cls == "" || strings.ContainsAny(cls, " \t\n\"'<>") {
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("render.placeholderClass %q must be a single class name", cls)
	}
	if strings.TrimSpace(c.Render.Indent) != "" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("render.indent may only contain whitespace")
	}
	if c.Snapshot.Bucket != "" && c.Snapshot.Region == "" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("snapshot.region is required with snapshot.bucket")
	}
	return nil
}

// Address returns the listen address of the preview server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Serve.Host, strconv.Itoa(c.Serve.Port))
}

// URL returns the preview server URL.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// SnapshotPath returns the absolute path to the local snapshot directory.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Level returns the configured log level. Unknown levels yield Info.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.Runtime.LogLevel)
	return level
}

// Logger builds the logger selected by runtime.logLevel and
// runtime.logFormat, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.Runtime.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigNotFound).
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its nearest parent with a config file. Without one, the
// defaults are returned.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		if errors.Is(err, errors.CodeConfigNotFound) {
			return New(), nil
		}
		return nil, err
	}

	return Load(root)
}
