package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dosanma1/nodrama/internal/release"
)

// FileName is the release profile file looked up from the working directory.
const FileName = "nodrama.yaml"

// ErrNotFound is returned by Find when no profile file exists.
var ErrNotFound = errors.New(FileName + " not found")

// Config represents the nodrama.yaml release profile file.
type Config struct {
	// Build is the default build archive.
	Build string `yaml:"build,omitempty"`
	// ProjectDir is the archive directory injected files go into.
	ProjectDir string `yaml:"project_dir,omitempty"`
	// OutputDir is where releases are written.
	OutputDir string `yaml:"output_dir,omitempty"`
	// Pip overrides pip discovery.
	Pip string `yaml:"pip,omitempty"`
	// ValidateJSON toggles JSON fragment validation; on when unset.
	ValidateJSON *bool `yaml:"validate,omitempty"`

	// Releases maps slugs to their injection inputs.
	Releases map[string]Profile `yaml:"releases,omitempty"`

	dir string
}

// Profile holds the injection inputs of one deployment target.
type Profile struct {
	Build            string `yaml:"build,omitempty"`
	Vars             string `yaml:"vars,omitempty"`
	Paths            string `yaml:"paths,omitempty"`
	RequirementsFile string `yaml:"requirements_file,omitempty"`
	PrependWSGI      string `yaml:"prepend_wsgi,omitempty"`
	AppendWSGI       string `yaml:"append_wsgi,omitempty"`
	ProjectDir       string `yaml:"project_dir,omitempty"`
	OutputDir        string `yaml:"output_dir,omitempty"`
}

// Load reads and parses a profile file. Relative paths in it are resolved
// against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	config.dir = filepath.Dir(absPath)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	config.resolvePaths()
	return &config, nil
}

// Find looks for FileName in dir and its parents.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrNotFound
}

// Validate checks that every release name is a usable slug.
func (c *Config) Validate() error {
	for slug := range c.Releases {
		if err := release.ValidateSlug(slug); err != nil {
			return fmt.Errorf("release %q: %w", slug, err)
		}
	}
	return nil
}

// resolvePaths makes every path absolute relative to the config file.
func (c *Config) resolvePaths() {
	c.Build = c.resolve(c.Build)
	c.OutputDir = c.resolve(c.OutputDir)

	for slug, p := range c.Releases {
		p.Build = c.resolve(p.Build)
		p.Vars = c.resolve(p.Vars)
		p.Paths = c.resolve(p.Paths)
		p.RequirementsFile = c.resolve(p.RequirementsFile)
		p.PrependWSGI = c.resolve(p.PrependWSGI)
		p.AppendWSGI = c.resolve(p.AppendWSGI)
		p.OutputDir = c.resolve(p.OutputDir)
		c.Releases[slug] = p
	}
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Release returns the profile for slug.
func (c *Config) Release(slug string) (Profile, bool) {
	p, ok := c.Releases[slug]
	return p, ok
}

// Slugs returns the configured release names, sorted.
func (c *Config) Slugs() []string {
	slugs := make([]string, 0, len(c.Releases))
	for slug := range c.Releases {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// ValidateFragments reports whether JSON fragments should be validated.
func (c *Config) ValidateFragments() bool {
	return c.ValidateJSON == nil || *c.ValidateJSON
}
