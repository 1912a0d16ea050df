// Package config provides Config loading and instruction document loading.
// Config is read from testgen.yaml in the project root. A missing file returns
// sane defaults without error. CLI flags (bound via cobra) override config file
// values at the highest precedence by mutating the returned struct after loading.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the optional per-project configuration file.
const FileName = "testgen.yaml"

// Default values for Config fields.
const (
	DefaultAPIURL                = "https://openrouter.ai/api/v1"
	DefaultModel                 = "deepseek/deepseek-r1-0528-qwen3-8b:free"
	DefaultAPIKeyEnv             = "OPENROUTER_API_KEY"
	DefaultMaxRefinements        = 3
	DefaultMaxRetries            = 5
	DefaultInitialBackoffSeconds = 10
	DefaultRequestTimeoutSeconds = 300
	DefaultTestsDir              = "tests"
	DefaultBuildDir              = "build"
	DefaultCoverageDir           = "coverage_report"
	DefaultConfigureCommand      = "cmake"
	DefaultCompileCommand        = "make"
	DefaultLcovCommand           = "lcov"
	DefaultGenhtmlCommand        = "genhtml"
	DefaultStripCodeFences       = true
)

// DefaultExcludedDirs are directory names never descended into during discovery.
// tests is the artifact directory; generated tests are not sources.
var DefaultExcludedDirs = []string{"third_party", "test", "tests", "build", ".venv", ".git"}

// DefaultSourceExtensions are the file extensions collected during discovery.
var DefaultSourceExtensions = []string{".cc", ".cpp"}

// Config holds all configuration for the testgen orchestrator.
type Config struct {
	APIURL                string   `yaml:"api_url"`
	Model                 string   `yaml:"model"`
	APIKeyEnv             string   `yaml:"api_key_env"`
	MaxRefinements        int      `yaml:"max_refinements"`
	MaxRetries            int      `yaml:"max_retries"`
	InitialBackoffSeconds int      `yaml:"initial_backoff_seconds"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
	TestsDir              string   `yaml:"tests_dir"`
	BuildDir              string   `yaml:"build_dir"`
	CoverageDir           string   `yaml:"coverage_dir"`
	ConfigureCommand      string   `yaml:"configure_command"`
	CompileCommand        string   `yaml:"compile_command"`
	LcovCommand           string   `yaml:"lcov_command"`
	GenhtmlCommand        string   `yaml:"genhtml_command"`
	ExcludedDirs          []string `yaml:"excluded_dirs"`
	SourceExtensions      []string `yaml:"source_extensions"`
	StripCodeFences       bool     `yaml:"strip_code_fences"`
}

// InitialBackoff returns InitialBackoffSeconds as a duration.
func (c *Config) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffSeconds) * time.Second
}

// RequestTimeout returns RequestTimeoutSeconds as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Defaults returns a Config populated with sane defaults.
func Defaults() Config {
	return Config{
		APIURL:                DefaultAPIURL,
		Model:                 DefaultModel,
		APIKeyEnv:             DefaultAPIKeyEnv,
		MaxRefinements:        DefaultMaxRefinements,
		MaxRetries:            DefaultMaxRetries,
		InitialBackoffSeconds: DefaultInitialBackoffSeconds,
		RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
		TestsDir:              DefaultTestsDir,
		BuildDir:              DefaultBuildDir,
		CoverageDir:           DefaultCoverageDir,
		ConfigureCommand:      DefaultConfigureCommand,
		CompileCommand:        DefaultCompileCommand,
		LcovCommand:           DefaultLcovCommand,
		GenhtmlCommand:        DefaultGenhtmlCommand,
		ExcludedDirs:          append([]string(nil), DefaultExcludedDirs...),
		SourceExtensions:      append([]string(nil), DefaultSourceExtensions...),
		StripCodeFences:       DefaultStripCodeFences,
	}
}

// partialConfig is used during YAML parsing to distinguish between a field
// being absent (nil pointer) and a field being explicitly set to its zero value.
type partialConfig struct {
	APIURL                *string   `yaml:"api_url"`
	Model                 *string   `yaml:"model"`
	APIKeyEnv             *string   `yaml:"api_key_env"`
	MaxRefinements        *int      `yaml:"max_refinements"`
	MaxRetries            *int      `yaml:"max_retries"`
	InitialBackoffSeconds *int      `yaml:"initial_backoff_seconds"`
	RequestTimeoutSeconds *int      `yaml:"request_timeout_seconds"`
	TestsDir              *string   `yaml:"tests_dir"`
	BuildDir              *string   `yaml:"build_dir"`
	CoverageDir           *string   `yaml:"coverage_dir"`
	ConfigureCommand      *string   `yaml:"configure_command"`
	CompileCommand        *string   `yaml:"compile_command"`
	LcovCommand           *string   `yaml:"lcov_command"`
	GenhtmlCommand        *string   `yaml:"genhtml_command"`
	ExcludedDirs          *[]string `yaml:"excluded_dirs"`
	SourceExtensions      *[]string `yaml:"source_extensions"`
	StripCodeFences       *bool     `yaml:"strip_code_fences"`
}

// LoadConfig reads testgen.yaml at path and returns a Config.
// If the file does not exist, defaults are returned without error.
// Fields absent from the file are filled with their default values.
// Fields present in the file override the corresponding default.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, err
	}

	var partial partialConfig
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	setString(&cfg.APIURL, partial.APIURL)
	setString(&cfg.Model, partial.Model)
	setString(&cfg.APIKeyEnv, partial.APIKeyEnv)
	setInt(&cfg.MaxRefinements, partial.MaxRefinements)
	setInt(&cfg.MaxRetries, partial.MaxRetries)
	setInt(&cfg.InitialBackoffSeconds, partial.InitialBackoffSeconds)
	setInt(&cfg.RequestTimeoutSeconds, partial.RequestTimeoutSeconds)
	setString(&cfg.TestsDir, partial.TestsDir)
	setString(&cfg.BuildDir, partial.BuildDir)
	setString(&cfg.CoverageDir, partial.CoverageDir)
	setString(&cfg.ConfigureCommand, partial.ConfigureCommand)
	setString(&cfg.CompileCommand, partial.CompileCommand)
	setString(&cfg.LcovCommand, partial.LcovCommand)
	setString(&cfg.GenhtmlCommand, partial.GenhtmlCommand)
	if partial.ExcludedDirs != nil {
		cfg.ExcludedDirs = *partial.ExcludedDirs
	}
	if partial.SourceExtensions != nil {
		cfg.SourceExtensions = *partial.SourceExtensions
	}
	if partial.StripCodeFences != nil {
		cfg.StripCodeFences = *partial.StripCodeFences
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the orchestrator cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.MaxRefinements < 1 {
		problems = append(problems, "max_refinements must be at least 1")
	}
	if c.MaxRetries < 1 {
		problems = append(problems, "max_retries must be at least 1")
	}
	if c.InitialBackoffSeconds < 0 {
		problems = append(problems, "initial_backoff_seconds must be non-negative")
	}
	if c.RequestTimeoutSeconds < 0 {
		problems = append(problems, "request_timeout_seconds must be non-negative (0 disables the timeout)")
	}
	if strings.TrimSpace(c.APIKeyEnv) == "" {
		problems = append(problems, "api_key_env must name an environment variable")
	}
	if c.Model == "" {
		problems = append(problems, "model must not be empty")
	}
	if c.APIURL == "" {
		problems = append(problems, "api_url must not be empty")
	}
	if len(c.SourceExtensions) == 0 {
		problems = append(problems, "source_extensions must list at least one extension")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
