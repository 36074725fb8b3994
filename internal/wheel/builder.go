// Package wheel turns a pip requirements file into wheel artifacts.
package wheel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrNoWheels is returned when pip succeeds but leaves no wheel behind for a
// non-empty requirements file.
var ErrNoWheels = errors.New("pip produced no wheels")

// Builder builds wheels for the requirements listed in a file.
type Builder interface {
	// Build writes wheels into destDir and returns their paths, sorted.
	Build(ctx context.Context, requirementsFile, destDir string) ([]string, error)
}

// PipBuilder builds wheels by running `pip wheel`.
type PipBuilder struct {
	pipCmd     []string
	logger     *log.Logger
	translator *ErrorTranslator
}

// NewPipBuilder creates a builder. pipPath overrides pip discovery when set.
func NewPipBuilder(pipPath string, logger *log.Logger) (*PipBuilder, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	pipCmd, err := findPip(pipPath)
	if err != nil {
		return nil, fmt.Errorf("pip not found: %w (install pip or pass --pip)", err)
	}

	return &PipBuilder{
		pipCmd:     pipCmd,
		logger:     logger,
		translator: NewErrorTranslator(),
	}, nil
}

// Build runs pip wheel for requirementsFile, writing wheels into destDir.
// A requirements file without requirement lines yields no wheels and does
// not invoke pip.
func (b *PipBuilder) Build(ctx context.Context, requirementsFile, destDir string) ([]string, error) {
	absReq, err := filepath.Abs(requirementsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve requirements file: %w", err)
	}

	reqs, err := ParseRequirements(absReq)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		b.logger.Debug("requirements file is empty, skipping pip", "file", absReq)
		return nil, nil
	}

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve wheel directory: %w", err)
	}
	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create wheel directory: %w", err)
	}

	args := append([]string{}, b.pipCmd[1:]...)
	args = append(args, "wheel", "--no-cache-dir", "-r", absReq, "-w", absDest)

	b.logger.Info("building wheels", "requirements", len(reqs), "file", absReq)
	b.logger.Debug("running pip", "cmd", b.pipCmd[0], "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.pipCmd[0], args...)
	// Relative paths inside the requirements file resolve against its directory.
	cmd.Dir = filepath.Dir(absReq)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("pip wheel interrupted: %w", ctxErr)
		}
		b.logger.Debug("pip output", "stdout", stdout.String(), "stderr", stderr.String())
		return nil, fmt.Errorf("pip wheel failed: %s: %w", b.translator.Translate(stderr.String()), err)
	}

	wheels, err := listWheels(absDest)
	if err != nil {
		return nil, err
	}
	if len(wheels) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoWheels, absReq)
	}

	b.logger.Debug("built wheels", "count", len(wheels))
	return wheels, nil
}

// listWheels returns the .whl files directly inside dir, sorted.
func listWheels(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.whl"))
	if err != nil {
		return nil, fmt.Errorf("failed to list wheels: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// findPip locates pip3, pip, or falls back to `python3 -m pip`.
func findPip(override string) ([]string, error) {
	if override != "" {
		path, err := exec.LookPath(override)
		if err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	for _, name := range []string{"pip3", "pip"} {
		if path, err := exec.LookPath(name); err == nil {
			return []string{path}, nil
		}
	}

	if path, err := exec.LookPath("python3"); err == nil {
		return []string{path, "-m", "pip"}, nil
	}

	return nil, fmt.Errorf("none of pip3, pip or python3 found in PATH")
}
