package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"

	"github.com/vango-dev/rrbuilder/internal/errors"
	"github.com/vango-dev/rrbuilder/internal/logger"
	"github.com/vango-dev/rrbuilder/pkg/routetree"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "rrbuilder.json"

	// TOMLFileName is the name of the TOML configuration file. It is used
	// when no rrbuilder.json exists.
	TOMLFileName = "rrbuilder.toml"

	// DefaultManifest is the default route manifest path.
	DefaultManifest = "routes.yaml"

	// DefaultOutput is the default descriptor output path.
	DefaultOutput = "routes.json"

	// DefaultHost is the default serve host.
	DefaultHost = "localhost"

	// DefaultPort is the default serve port.
	DefaultPort = 4100

	// DefaultInterval is the default manifest poll interval.
	DefaultInterval = "500ms"
)

// Environment overrides.
const (
	EnvManifest  = "RRBUILDER_MANIFEST"
	EnvOutput    = "RRBUILDER_OUTPUT"
	EnvLogLevel  = "RRBUILDER_LOG_LEVEL"
	EnvLogFormat = "RRBUILDER_LOG_FORMAT"
)

// Output layouts.
const (
	FormatFlat = "flat"
	FormatTree = "tree"
)

// Output encodings.
const (
	EncodingJSON = "json"
	EncodingYAML = "yaml"
)

// Config represents the complete rrbuilder configuration.
type Config struct {
	// Manifest is the route manifest location: a file path or s3://bucket/key.
	Manifest string `json:"manifest,omitempty" toml:"manifest,omitempty"`

	// Output is the descriptor output path. "-" writes to stdout.
	Output string `json:"output,omitempty" toml:"output,omitempty"`

	// Format is the descriptor layout: flat or tree.
	Format string `json:"format,omitempty" toml:"format,omitempty"`

	// Encoding is the descriptor encoding: json or yaml.
	Encoding string `json:"encoding,omitempty" toml:"encoding,omitempty"`

	// PathConflict is the duplicate path policy: allow or strict.
	PathConflict string `json:"pathConflict,omitempty" toml:"pathConflict,omitempty"`

	// Logging contains log level and handler settings.
	Logging logger.Config `json:"logging,omitempty" toml:"logging,omitempty"`

	// Serve contains descriptor server settings.
	Serve ServeConfig `json:"serve,omitempty" toml:"serve,omitempty"`

	// S3 contains settings for s3:// manifests.
	S3 S3Config `json:"s3,omitempty" toml:"s3,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServeConfig contains descriptor server settings.
type ServeConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" toml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" toml:"port,omitempty"`

	// Watch rebuilds when the manifest changes.
	Watch *bool `json:"watch,omitempty" toml:"watch,omitempty"`

	// Interval is the manifest poll interval (e.g., "500ms").
	Interval string `json:"interval,omitempty" toml:"interval,omitempty"`
}

// S3Config contains S3 client settings.
type S3Config struct {
	Region       string `json:"region,omitempty" toml:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty" toml:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty" toml:"usePathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory. It looks for
// rrbuilder.json first, then rrbuilder.toml.
func Load(dir string) (*Config, error) {
	if path := filepath.Join(dir, ConfigFileName); fileExists(path) {
		return LoadFile(path)
	}
	if path := filepath.Join(dir, TOMLFileName); fileExists(path) {
		return LoadFile(path)
	}
	return nil, errors.New("C141").
		WithDetail("No " + ConfigFileName + " or " + TOMLFileName + " found in " + dir)
}

// LoadFile reads configuration from the specified file path. Files ending
// in .toml are parsed as TOML, everything else as JSON. Defaults and
// environment overrides are applied and the result is validated.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C141").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("C120").Wrap(err)
	}

	cfg := &Config{}
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("C120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			Wrap(err)
	}

	cfg.configPath = path
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize applies defaults and environment overrides, then validates.
func (c *Config) Finalize() error {
	c.applyDefaults()
	c.applyEnv()
	return c.Validate()
}

// SaveTo writes the configuration to the specified path, encoded by the
// path's extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.New("C120").Wrap(err)
	}
	if !isTOML(path) {
		// Add newline at end of file
		data = append(data, '\n')
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C120").Wrap(err)
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
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = FormatFlat
	}
	c.Encoding = strings.ToLower(c.Encoding)
	if c.Encoding == "" {
		c.Encoding = EncodingJSON
	}
	if c.PathConflict == "" {
		c.PathConflict = string(routetree.PathConflictAllow)
	}
	c.Logging.Normalize()

	// Serve
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.Watch == nil {
		watch := true
		c.Serve.Watch = &watch
	}
	if c.Serve.Interval == "" {
		c.Serve.Interval = DefaultInterval
	}
}

// applyEnv overrides fields from RRBUILDER_* variables.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvManifest); v != "" {
		c.Manifest = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = logger.Level(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = logger.Format(v)
	}
	c.Logging.Normalize()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatFlat, FormatTree:
	default:
		return invalid("format must be flat or tree, got %q", c.Format)
	}
	switch c.Encoding {
	case EncodingJSON, EncodingYAML:
	default:
		return invalid("encoding must be json or yaml, got %q", c.Encoding)
	}
	if _, err := routetree.ParsePathConflictMode(c.PathConflict); err != nil {
		return invalid("pathConflict: %v", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return invalid("logging: %v", err)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return invalid("serve.port must be between 0 and 65535")
	}
	if d, err := time.ParseDuration(c.Serve.Interval); err != nil || d <= 0 {
		return invalid("serve.interval must be a positive duration, got %q", c.Serve.Interval)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New("C121").WithDetail(fmt.Sprintf(format, args...))
}

// PathConflictMode returns the parsed duplicate path policy.
func (c *Config) PathConflictMode() routetree.PathConflictMode {
	mode, err := routetree.ParsePathConflictMode(c.PathConflict)
	if err != nil {
		return routetree.PathConflictAllow
	}
	return mode
}

// WatchEnabled reports whether serve should poll the manifest.
func (c *Config) WatchEnabled() bool {
	return c.Serve.Watch == nil || *c.Serve.Watch
}

// PollInterval returns the parsed serve interval.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Serve.Interval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultInterval)
	}
	return d
}

// ServeAddress returns the address string for the descriptor server.
func (c *Config) ServeAddress() string {
	return c.Serve.Host + ":" + strconv.Itoa(c.Serve.Port)
}

// ServeURL returns the full URL for the descriptor server.
func (c *Config) ServeURL() string {
	return "http://" + c.ServeAddress()
}

// ManifestPath returns the manifest location resolved against the config
// directory. S3 locations are returned unchanged.
func (c *Config) ManifestPath() string {
	return c.resolve(c.Manifest)
}

// OutputPath returns the output path resolved against the config
// directory. "-" is returned unchanged.
func (c *Config) OutputPath() string {
	if c.Output == "-" {
		return c.Output
	}
	return c.resolve(c.Output)
}

func (c *Config) resolve(path string) string {
	if strings.HasPrefix(path, "s3://") || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	return fileExists(filepath.Join(dir, ConfigFileName)) ||
		fileExists(filepath.Join(dir, TOMLFileName))
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing rrbuilder.json or rrbuilder.toml, or an
// error if not found.
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
			return "", errors.New("C141").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent that has one.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
