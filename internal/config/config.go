// Package config loads the apiforge configuration: input file locations,
// output layout, link rewriting base, and run-store settings. Values resolve
// in three layers: built-in defaults, the YAML config file, then APIFORGE_*
// environment variables (optionally sourced from a .env file).
package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/apiforge/internal/errors"
)

// Config is the full application configuration.
type Config struct {
	Inputs     InputsConfig     `yaml:"inputs"`
	Output     OutputConfig     `yaml:"output"`
	Links      LinksConfig      `yaml:"links"`
	Categories CategoriesConfig `yaml:"categories"`
	RunStore   RunStoreConfig   `yaml:"run_store"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// InputsConfig names the five phase output files consumed by the merge.
type InputsConfig struct {
	TypeListings  string `yaml:"type_listings"`
	TypeDetails   string `yaml:"type_details"`
	MemberDetails string `yaml:"member_details"`
	EnumMembers   string `yaml:"enum_members"`
	Examples      string `yaml:"examples"`
}

// OutputConfig controls where the projections land.
type OutputConfig struct {
	Directory   string `yaml:"directory"`
	XMLDocDir   string `yaml:"xmldoc_dir"`
	GrepTreeDir string `yaml:"greptree_dir"`
	ReportFile  string `yaml:"report_file"`
}

// LinksConfig configures cross-reference rewriting.
type LinksConfig struct {
	// BaseURL absolutizes relative guide-page links.
	BaseURL string `yaml:"base_url"`
}

// CategoriesConfig locates the functional-category side-table.
type CategoriesConfig struct {
	HTMLFile      string `yaml:"html_file"`
	OverridesFile string `yaml:"overrides_file"`
}

// RunStoreConfig controls the run history database.
type RunStoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Inputs: InputsConfig{
			TypeListings:  "input/api_members.xml",
			TypeDetails:   "input/api_types.xml",
			MemberDetails: "input/api_member_details.xml",
			EnumMembers:   "input/enum_members.xml",
			Examples:      "input/examples.xml",
		},
		Output: OutputConfig{
			Directory:   "output",
			XMLDocDir:   "xmldoc",
			GrepTreeDir: "docs",
			ReportFile:  "report.json",
		},
		RunStore: RunStoreConfig{
			Enabled: true,
			Path:    "apiforge_runs.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML config file and applies environment overrides.
// A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return cfg, errors.ConfigInvalid("unreadable config file", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.ConfigInvalid("config file is not valid YAML", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LoadEnvFile sources KEY=VALUE pairs from a .env file without overriding
// variables already present in the process environment.
func LoadEnvFile() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// applyEnv overlays APIFORGE_* environment variables onto the config.
func applyEnv(cfg *Config) {
	overlay := func(target *string, key string) {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
	overlay(&cfg.Output.Directory, "APIFORGE_OUTPUT_DIR")
	overlay(&cfg.Links.BaseURL, "APIFORGE_BASE_URL")
	overlay(&cfg.Logging.Level, "APIFORGE_LOG_LEVEL")
	overlay(&cfg.Logging.Format, "APIFORGE_LOG_FORMAT")
	overlay(&cfg.RunStore.Path, "APIFORGE_RUN_STORE")
	if v := os.Getenv("APIFORGE_RUN_STORE_DISABLED"); v == "1" || v == "true" {
		cfg.RunStore.Enabled = false
	}
}

// WriteDefault writes a starter config file with the built-in defaults.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.ConfigInvalid("config file already exists", nil).WithContext("path", path)
	}
	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return errors.InternalError("default config serialization failed", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WriteFailed(path, err)
	}
	return nil
}
