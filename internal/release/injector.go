// Package release builds release archives: a copy of a build archive with
// environment-specific configuration injected at fixed paths.
package release

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/dosanma1/nodrama/internal/fragment"
	"github.com/dosanma1/nodrama/internal/wheel"
	"github.com/dosanma1/nodrama/pkg/xos"
)

// Archive paths relative to the project directory.
const (
	EnvironmentEntry = "environment.json"
	PathsEntry       = "paths.d/1_custom.json"
	WheelsDir        = "wheels"
	PreWSGIEntry     = "pre-wsgi.py-fragment"
	PostWSGIEntry    = "post-wsgi.py-fragment"
)

// ErrReleaseExists is returned when NoClobber is set and the release archive
// is already present.
var ErrReleaseExists = errors.New("release archive already exists")

// Progress receives one Add per entry written. Finish is called once the
// release is in place; Exit when the release fails.
type Progress interface {
	Add(n int) error
	Finish() error
	Exit() error
}

type nopProgress struct{}

func (nopProgress) Add(int) error { return nil }
func (nopProgress) Finish() error { return nil }
func (nopProgress) Exit() error   { return nil }

// Result describes a written release.
type Result struct {
	// Path is the absolute path of the release archive.
	Path string
	// Copied lists the build entries copied unchanged, in archive order.
	Copied []string
	// Injected lists the injected entry names, in write order.
	Injected []string
	// Shadowed lists build entries replaced by an injected entry.
	Shadowed []string
}

// Injector writes release archives.
type Injector struct {
	wheels      wheel.Builder
	logger      *log.Logger
	newProgress func(total int) Progress
}

// Option configures an Injector.
type Option func(*Injector)

// WithWheelBuilder sets the builder used for requirements files. Without it a
// pip builder is created on first use.
func WithWheelBuilder(b wheel.Builder) Option {
	return func(i *Injector) { i.wheels = b }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(i *Injector) { i.logger = l }
}

// WithProgress sets a factory for per-release progress reporting.
func WithProgress(fn func(total int) Progress) Option {
	return func(i *Injector) { i.newProgress = fn }
}

// NewInjector creates an injector.
func NewInjector(opts ...Option) *Injector {
	i := &Injector{
		logger:      log.New(io.Discard),
		newProgress: func(int) Progress { return nopProgress{} },
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// InjectConfiguration writes the release described by cfg with a default
// injector.
func InjectConfiguration(ctx context.Context, cfg Config) (*Result, error) {
	return NewInjector().Inject(ctx, cfg)
}

// injection is a file to add to the release.
type injection struct {
	name   string
	source string
}

// Inject copies every entry of the build archive into a new release archive
// and adds an entry for each optional input set in cfg. The release is
// renamed into place only once complete; on error nothing is left behind and
// an existing release is untouched.
func (i *Injector) Inject(ctx context.Context, cfg Config) (result *Result, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid release config: %w", err)
	}

	outPath, err := cfg.OutputPath()
	if err != nil {
		return nil, err
	}
	if cfg.NoClobber && xos.Exists(outPath) {
		return nil, fmt.Errorf("%w: %s", ErrReleaseExists, outPath)
	}

	zr, err := zip.OpenReader(cfg.BuildZip)
	if err != nil {
		return nil, fmt.Errorf("failed to open build archive: %w", err)
	}
	defer zr.Close()

	injections, cleanup, err := i.collect(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	pending, err := xos.NewPendingFile(outPath, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create release archive: %w", err)
	}
	defer pending.Cleanup()

	i.logger.Debug("writing release", "build", cfg.BuildZip, "output", outPath, "entries", len(zr.File), "injections", len(injections))

	shadow := make(map[string]bool, len(injections))
	for _, inj := range injections {
		shadow[inj.name] = true
	}

	result = &Result{Path: outPath}
	progress := i.newProgress(len(zr.File) + len(injections))
	defer func() {
		if err != nil {
			_ = progress.Exit()
		}
	}()

	zw := zip.NewWriter(pending)
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("release interrupted: %w", err)
		}
		if shadow[f.Name] {
			i.logger.Warn("build entry replaced by injected file", "entry", f.Name)
			result.Shadowed = append(result.Shadowed, f.Name)
			_ = progress.Add(1)
			continue
		}
		if err := zw.Copy(f); err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", f.Name, err)
		}
		result.Copied = append(result.Copied, f.Name)
		_ = progress.Add(1)
	}

	for _, inj := range injections {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("release interrupted: %w", err)
		}
		if err := addFile(zw, inj.name, inj.source); err != nil {
			return nil, fmt.Errorf("failed to inject %s: %w", inj.name, err)
		}
		i.logger.Debug("injected", "entry", inj.name, "source", inj.source)
		result.Injected = append(result.Injected, inj.name)
		_ = progress.Add(1)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize release archive: %w", err)
	}
	if err := pending.CloseAtomically(); err != nil {
		return nil, fmt.Errorf("failed to write release archive: %w", err)
	}
	if err := progress.Finish(); err != nil {
		i.logger.Debug("failed to finish progress", "error", err)
	}

	i.logger.Info("release written", "path", outPath, "copied", len(result.Copied), "injected", len(result.Injected))
	return result, nil
}

// collect resolves every supplied input to archive entries before anything is
// written. The returned cleanup removes built wheels.
func (i *Injector) collect(ctx context.Context, cfg *Config) ([]injection, func(), error) {
	project := cfg.projectDir()
	cleanup := func() {}

	var injections []injection
	add := func(label, source, name string, kind fragment.Kind) error {
		if source == "" {
			return nil
		}
		if err := checkFile(source); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
		if kind != "" && cfg.ValidateFragments {
			if err := fragment.Validate(kind, source); err != nil {
				return err
			}
		}
		injections = append(injections, injection{name: path.Join(project, name), source: source})
		return nil
	}

	if err := add("vars file", cfg.Vars, EnvironmentEntry, fragment.KindEnvironment); err != nil {
		return nil, cleanup, err
	}
	if err := add("paths file", cfg.Paths, PathsEntry, fragment.KindPaths); err != nil {
		return nil, cleanup, err
	}
	if err := add("prepend wsgi fragment", cfg.PrependWSGI, PreWSGIEntry, ""); err != nil {
		return nil, cleanup, err
	}
	if err := add("append wsgi fragment", cfg.AppendWSGI, PostWSGIEntry, ""); err != nil {
		return nil, cleanup, err
	}

	if cfg.RequirementsFile != "" {
		if err := checkFile(cfg.RequirementsFile); err != nil {
			return nil, cleanup, fmt.Errorf("requirements file: %w", err)
		}

		wheelDir, err := os.MkdirTemp("", "nodrama-wheels-*")
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to create wheel directory: %w", err)
		}
		cleanup = func() { _ = os.RemoveAll(wheelDir) }

		builder, err := i.wheelBuilder()
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}

		wheels, err := builder.Build(ctx, cfg.RequirementsFile, wheelDir)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to build wheels: %w", err)
		}
		for _, w := range wheels {
			injections = append(injections, injection{
				name:   path.Join(project, WheelsDir, filepath.Base(w)),
				source: w,
			})
		}
	}

	return injections, cleanup, nil
}

func (i *Injector) wheelBuilder() (wheel.Builder, error) {
	if i.wheels != nil {
		return i.wheels, nil
	}
	b, err := wheel.NewPipBuilder("", i.logger)
	if err != nil {
		return nil, err
	}
	i.wheels = b
	return b, nil
}

// checkFile fails unless path is an existing regular file.
func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	return nil
}

// addFile writes the file at source into zw as name.
func addFile(zw *zip.Writer, name, source string) (err error) {
	f, err := os.Open(source)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// Namelist returns the entry names of the archive at path, in archive order.
func Namelist(archive string) ([]string, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}
