package chimera

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned by FindConfig when no config file exists
// between dir and the filesystem root.
var ErrConfigNotFound = errors.New("chimerascript: no config file found")

// Config represents a .chimera.yaml configuration file: the default client
// and its connection settings, plus per-glob overrides. Unknown keys are
// ignored.
type Config struct {
	// BaseURL is the shorthand top-level form of connection.base_url; the
	// nested form wins when both are present.
	BaseURL string `yaml:"base_url"`

	// Client is the default client name for all .chs files (e.g. "http").
	Client string `yaml:"client"`

	// Connection holds connection settings for the default client.
	Connection ClientConfig `yaml:"connection"`

	// Files maps a glob pattern to a client name, overriding Client for
	// matching script paths, e.g. "integration/*.chs": "fake".
	Files map[string]string `yaml:"files,omitempty"`
}

// ResolvedBaseURL returns the connection's base URL, falling back to the
// top-level base_url key.
func (c *Config) ResolvedBaseURL() string {
	if c.Connection.BaseURL != "" {
		return c.Connection.BaseURL
	}

	return c.BaseURL
}

// DefaultConfigNames are the filenames searched for by FindConfig.
var DefaultConfigNames = []string{".chimera.yaml", ".chimera.yml", "chimera.yaml", "chimera.yml"}

// LoadConfig finds and loads the nearest config file walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up
// towards the filesystem root.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for d := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(d, name)

			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(d)
		if parent == d {
			return "", ErrConfigNotFound
		}

		d = parent
	}
}

// LoadConfigFile loads a Config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ClientFor returns the client name to use for a given script path: the
// client of a glob override in Files that matches it, or Client if none
// match. When several patterns match, which one wins is not defined.
func (c *Config) ClientFor(filePath string) string {
	for pattern, name := range c.Files {
		if matched, _ := filepath.Match(pattern, filePath); matched {
			return name
		}
	}

	return c.Client
}
