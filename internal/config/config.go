// Package config loads the publisher configuration from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the publisher configuration.
type Config struct {
	Destination        string      `yaml:"destination"`
	Encoding           string      `yaml:"encoding"`
	Readme             string      `yaml:"readme,omitempty"`
	MainPageTitle      string      `yaml:"mainpagetitle,omitempty"`
	Menu               []MenuItem  `yaml:"menu,omitempty"`
	Repository         Repository  `yaml:"repository,omitempty"`
	UseLongnameInNav   NavNameMode `yaml:"useLongnameInNav,omitempty"`
	ShowInheritedInNav *bool       `yaml:"showInheritedInNav,omitempty"`
	ShowTypedefsInNav  bool        `yaml:"showTypedefsInNav,omitempty"`
	OutputSourceFiles  *bool       `yaml:"outputSourceFiles,omitempty"`
	StaticFiles        StaticFiles `yaml:"staticFiles,omitempty"`
	LayoutFile         string      `yaml:"layoutFile,omitempty"`
	PrismTheme         string      `yaml:"prismTheme,omitempty"`
	Private            bool        `yaml:"private,omitempty"`
	LogFile            string      `yaml:"logFile,omitempty"`
}

// MenuItem is one custom navigation menu entry, rendered before any symbol
// group in the sidebar.
type MenuItem struct {
	Title  string `yaml:"title"`
	Link   string `yaml:"link"`
	Target string `yaml:"target,omitempty"`
}

// Repository describes the source repository pages may link back to.
type Repository struct {
	Link   string `yaml:"link,omitempty"`
	Branch string `yaml:"branch,omitempty"`
	Type   string `yaml:"type,omitempty"`
}

// StaticFiles configures extra static assets copied into the output tree.
// Exclude patterns use gitignore syntax.
type StaticFiles struct {
	Include []string `yaml:"include,omitempty"`
	Paths   []string `yaml:"paths,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// NavNameMode governs sidebar display names: disabled (short names), full
// longnames, or longnames truncated to the last N dot-segments.
type NavNameMode struct {
	Enabled  bool
	Truncate int // 0 = no truncation
}

// UnmarshalYAML accepts either a boolean or a truncation count.
func (m *NavNameMode) UnmarshalYAML(value *yaml.Node) error {
	var b bool
	if err := value.Decode(&b); err == nil {
		m.Enabled = b
		m.Truncate = 0
		return nil
	}
	var n int
	if err := value.Decode(&n); err == nil {
		if n < 0 {
			return fmt.Errorf("useLongnameInNav: negative truncation count %d", n)
		}
		m.Enabled = n > 0
		m.Truncate = n
		return nil
	}
	return fmt.Errorf("useLongnameInNav: expected boolean or integer")
}

// MarshalYAML mirrors UnmarshalYAML.
func (m NavNameMode) MarshalYAML() (any, error) {
	if m.Truncate > 0 {
		return m.Truncate, nil
	}
	return m.Enabled, nil
}

// ShowInherited reports whether inherited entries appear in the navigation
// sidebar (default true).
func (c *Config) ShowInherited() bool {
	return c.ShowInheritedInNav == nil || *c.ShowInheritedInNav
}

// SourceFiles reports whether source listing pages are generated (default
// true).
func (c *Config) SourceFiles() bool {
	return c.OutputSourceFiles == nil || *c.OutputSourceFiles
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		Destination: "./out",
		Encoding:    "utf-8",
	}
}

// Load loads configuration from the specified file. A .env file alongside
// the process, when present, is loaded first and the YAML content is
// environment-expanded before decoding.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Destination == "" {
		cfg.Destination = "./out"
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "utf-8"
	}
	return cfg, nil
}

// loadEnvFile loads a .env file when one exists in the working directory.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}

const exampleConfig = `# docpublish configuration
destination: ./out
encoding: utf-8

# readme: ./README.md
# mainpagetitle: My Project

# menu:
#   - title: Project Home
#     link: https://example.com
#     target: _blank

# repository:
#   link: https://example.com/project.git
#   branch: main
#   type: git

# useLongnameInNav: false   # or a trailing dot-segment count, e.g. 2
# showInheritedInNav: true
# showTypedefsInNav: false
# outputSourceFiles: true

# staticFiles:
#   paths:
#     - ./extra-assets
#   exclude:
#     - "*.scss"

# layoutFile: ./layout.tmpl
# prismTheme: prism-default
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
