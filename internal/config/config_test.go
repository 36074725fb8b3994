package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dosanma1/nodrama/internal/release"
)

const sampleConfig = `build: dist/archive.zip
output_dir: releases
releases:
  staging:
    vars: env/staging.json
    paths: env/paths.json
    requirements_file: extra-requirements.txt
    prepend_wsgi: wsgi/pre.py
    append_wsgi: /abs/post.py
  production:
    build: dist/archive-prod.zip
    vars: env/production.json
    project_dir: mysite
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeConfig(t, dir, sampleConfig))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Build != filepath.Join(dir, "dist", "archive.zip") {
		t.Errorf("Build = %q, want it resolved against the config dir", cfg.Build)
	}
	if cfg.OutputDir != filepath.Join(dir, "releases") {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}

	staging, ok := cfg.Release("staging")
	if !ok {
		t.Fatal("staging release missing")
	}
	if staging.Vars != filepath.Join(dir, "env", "staging.json") {
		t.Errorf("staging.Vars = %q", staging.Vars)
	}
	if staging.AppendWSGI != "/abs/post.py" {
		t.Errorf("absolute path rewritten: %q", staging.AppendWSGI)
	}

	production, _ := cfg.Release("production")
	if production.ProjectDir != "mysite" {
		t.Errorf("production.ProjectDir = %q, archive paths must not be resolved", production.ProjectDir)
	}

	if got := cfg.Slugs(); !reflect.DeepEqual(got, []string{"production", "staging"}) {
		t.Errorf("Slugs() = %v", got)
	}
	if !cfg.ValidateFragments() {
		t.Error("fragment validation should default to on")
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), FileName))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Load() error = %v, want not-exist", err)
		}
	})

	t.Run("bad yaml", func(t *testing.T) {
		if _, err := Load(writeConfig(t, t.TempDir(), "releases: [")); err == nil {
			t.Error("Load() should fail on malformed YAML")
		}
	})

	t.Run("bad slug", func(t *testing.T) {
		if _, err := Load(writeConfig(t, t.TempDir(), "releases:\n  a/b:\n    vars: x.json\n")); err == nil {
			t.Error("Load() should reject a release name with a path separator")
		}
	})
}

func TestLoad_ValidateDisabled(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "validate: false\n"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.ValidateFragments() {
		t.Error("validate: false should disable fragment validation")
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if got != want {
		t.Errorf("Find() = %q, want %q", got, want)
	}
}

func TestFind_NotFound(t *testing.T) {
	// The temp dir's parents are not expected to hold a nodrama.yaml.
	if _, err := Find(t.TempDir()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find() error = %v, want ErrNotFound", err)
	}
}

func TestResolver_Resolve(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeConfig(t, dir, sampleConfig))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	t.Run("profile values", func(t *testing.T) {
		got := NewResolver(cfg, "staging").Resolve(Flags{})
		want := release.Config{
			BuildZip:          filepath.Join(dir, "dist", "archive.zip"),
			Slug:              "staging",
			Vars:              filepath.Join(dir, "env", "staging.json"),
			Paths:             filepath.Join(dir, "env", "paths.json"),
			RequirementsFile:  filepath.Join(dir, "extra-requirements.txt"),
			PrependWSGI:       filepath.Join(dir, "wsgi", "pre.py"),
			AppendWSGI:        "/abs/post.py",
			ProjectDir:        release.DefaultProjectDir,
			OutputDir:         filepath.Join(dir, "releases"),
			ValidateFragments: true,
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Resolve() = %+v\nwant %+v", got, want)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		got := NewResolver(cfg, "staging").Resolve(Flags{
			Build:      "other.zip",
			Vars:       "cli.json",
			ProjectDir: "cliproj",
			OutputDir:  "out",
		})
		if got.BuildZip != "other.zip" || got.Vars != "cli.json" || got.ProjectDir != "cliproj" || got.OutputDir != "out" {
			t.Errorf("flags did not take precedence: %+v", got)
		}
		if got.Paths != filepath.Join(dir, "env", "paths.json") {
			t.Errorf("unset flag should fall back to profile: %q", got.Paths)
		}
	})

	t.Run("profile overrides file level", func(t *testing.T) {
		got := NewResolver(cfg, "production").Resolve(Flags{})
		if got.BuildZip != filepath.Join(dir, "dist", "archive-prod.zip") {
			t.Errorf("BuildZip = %q, want profile build", got.BuildZip)
		}
		if got.ProjectDir != "mysite" {
			t.Errorf("ProjectDir = %q, want mysite", got.ProjectDir)
		}
		if got.Paths != "" {
			t.Errorf("Paths = %q, want unset", got.Paths)
		}
	})

	t.Run("unknown slug uses file level", func(t *testing.T) {
		r := NewResolver(cfg, "qa")
		if r.HasProfile() {
			t.Error("HasProfile() = true for unknown slug")
		}
		got := r.Resolve(Flags{})
		if got.BuildZip != filepath.Join(dir, "dist", "archive.zip") || got.Vars != "" {
			t.Errorf("Resolve() = %+v", got)
		}
	})
}

func TestResolver_NilConfig(t *testing.T) {
	r := NewResolver(nil, "testing")
	got := r.Resolve(Flags{Build: "archive.zip", Vars: "env.json"})
	want := release.Config{
		BuildZip:          "archive.zip",
		Slug:              "testing",
		Vars:              "env.json",
		ProjectDir:        release.DefaultProjectDir,
		ValidateFragments: true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
	if got := r.ResolvePip(Flags{}); got != "" {
		t.Errorf("ResolvePip() = %q, want empty", got)
	}
	if got := r.ResolvePip(Flags{Pip: "/usr/bin/pip3"}); got != "/usr/bin/pip3" {
		t.Errorf("ResolvePip() = %q, want /usr/bin/pip3", got)
	}
}

func TestResolver_ResolvePip(t *testing.T) {
	r := NewResolver(&Config{Pip: "/opt/venv/bin/pip"}, "staging")

	if got := r.ResolvePip(Flags{}); got != "/opt/venv/bin/pip" {
		t.Errorf("ResolvePip() = %q, want file-level pip", got)
	}
	if got := r.ResolvePip(Flags{Pip: "pip3"}); got != "pip3" {
		t.Errorf("ResolvePip() = %q, want flag to win", got)
	}
}
