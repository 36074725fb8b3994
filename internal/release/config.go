package release

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultProjectDir is the directory inside the archive that receives
// injected files.
const DefaultProjectDir = "sample_proj"

// Config describes one release of a build archive. Empty optional paths mean
// the input is absent and nothing is injected for it.
type Config struct {
	// BuildZip is the path of the build archive. Required.
	BuildZip string
	// Slug names the deployment target and is embedded in the output name.
	Slug string

	Vars             string
	Paths            string
	RequirementsFile string
	PrependWSGI      string
	AppendWSGI       string

	// ProjectDir is the archive directory injected files go into.
	ProjectDir string
	// OutputDir is where the release is written; the working directory when empty.
	OutputDir string
	// NoClobber makes an existing release archive an error instead of
	// replacing it.
	NoClobber bool
	// ValidateFragments checks the vars and paths files against their schemas.
	ValidateFragments bool
}

// Validate checks that the required fields are present and well formed.
func (c *Config) Validate() error {
	if c.BuildZip == "" {
		return errors.New("build archive path is required")
	}
	if err := ValidateSlug(c.Slug); err != nil {
		return err
	}
	if c.ProjectDir != "" {
		if _, err := cleanProjectDir(c.ProjectDir); err != nil {
			return err
		}
	}
	return nil
}

// cleanProjectDir returns dir as a clean, slash-separated archive path that
// stays below the archive root.
func cleanProjectDir(dir string) (string, error) {
	clean := path.Clean(filepath.ToSlash(dir))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") ||
		path.IsAbs(clean) || filepath.VolumeName(dir) != "" {
		return "", fmt.Errorf("invalid project directory %q: must be a relative path inside the archive", dir)
	}
	return clean, nil
}

// ValidateSlug checks that slug can be embedded in a file name.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}
	if slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`+"\x00") {
		return fmt.Errorf("invalid slug %q: must not contain path separators", slug)
	}
	return nil
}

// OutputName returns the release file name for a build archive and slug:
// <build-basename>_release-<slug>.zip.
func OutputName(buildZip, slug string) string {
	base := filepath.Base(buildZip)
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".zip") {
		base = strings.TrimSuffix(base, ext)
	}
	return fmt.Sprintf("%s_release-%s.zip", base, slug)
}

// OutputPath returns the absolute path the release will be written to.
func (c *Config) OutputPath() (string, error) {
	dir := c.OutputDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}
	return filepath.Abs(filepath.Join(dir, OutputName(c.BuildZip, c.Slug)))
}

func (c *Config) projectDir() string {
	if c.ProjectDir == "" {
		return DefaultProjectDir
	}
	// Validate has already rejected anything cleanProjectDir refuses.
	clean, _ := cleanProjectDir(c.ProjectDir)
	return clean
}
