// Package config loads release profiles and resolves release settings with
// precedence handling.
package config

import (
	"github.com/dosanma1/nodrama/internal/release"
)

// Flags are release settings given on the command line. Empty means unset.
type Flags struct {
	Build            string
	Vars             string
	Paths            string
	RequirementsFile string
	PrependWSGI      string
	AppendWSGI       string
	ProjectDir       string
	OutputDir        string
	Pip              string
}

// Resolver handles configuration precedence: CLI flags > release profile >
// file-level defaults.
type Resolver struct {
	config *Config
	slug   string
}

// NewResolver creates a resolver for slug. config may be nil when there is
// no profile file.
func NewResolver(config *Config, slug string) *Resolver {
	if config == nil {
		config = &Config{}
	}
	return &Resolver{
		config: config,
		slug:   slug,
	}
}

// HasProfile reports whether the profile file defines the slug.
func (r *Resolver) HasProfile() bool {
	_, ok := r.config.Release(r.slug)
	return ok
}

// Resolve builds the release config for the resolver's slug.
func (r *Resolver) Resolve(flags Flags) release.Config {
	profile, _ := r.config.Release(r.slug)

	return release.Config{
		BuildZip:          first(flags.Build, profile.Build, r.config.Build),
		Slug:              r.slug,
		Vars:              first(flags.Vars, profile.Vars),
		Paths:             first(flags.Paths, profile.Paths),
		RequirementsFile:  first(flags.RequirementsFile, profile.RequirementsFile),
		PrependWSGI:       first(flags.PrependWSGI, profile.PrependWSGI),
		AppendWSGI:        first(flags.AppendWSGI, profile.AppendWSGI),
		ProjectDir:        first(flags.ProjectDir, profile.ProjectDir, r.config.ProjectDir, release.DefaultProjectDir),
		OutputDir:         first(flags.OutputDir, profile.OutputDir, r.config.OutputDir),
		ValidateFragments: r.config.ValidateFragments(),
	}
}

// ResolvePip returns the pip override: CLI flag > file-level setting.
func (r *Resolver) ResolvePip(flags Flags) string {
	return first(flags.Pip, r.config.Pip)
}

// first returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
