package release

import (
	"path/filepath"
	"testing"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		build string
		slug  string
		want  string
	}{
		{"archive.zip", "testing", "archive_release-testing.zip"},
		{"/builds/archive.zip", "staging", "archive_release-staging.zip"},
		{"dist/site-1.2.ZIP", "prod", "site-1.2_release-prod.zip"},
		{"bundle", "qa", "bundle_release-qa.zip"},
		{"my.app.tar", "qa", "my.app.tar_release-qa.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.build, func(t *testing.T) {
			if got := OutputName(tt.build, tt.slug); got != tt.want {
				t.Errorf("OutputName(%q, %q) = %q, want %q", tt.build, tt.slug, got, tt.want)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	valid := []string{"testing", "release-testing", "prod_eu.1"}
	for _, slug := range valid {
		if err := ValidateSlug(slug); err != nil {
			t.Errorf("ValidateSlug(%q) = %v, want nil", slug, err)
		}
	}

	invalid := []string{"", ".", "..", "a/b", `a\b`, "a\x00b"}
	for _, slug := range invalid {
		if err := ValidateSlug(slug); err == nil {
			t.Errorf("ValidateSlug(%q) should fail", slug)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"minimal", Config{BuildZip: "a.zip", Slug: "s"}, false},
		{"missing build", Config{Slug: "s"}, true},
		{"missing slug", Config{BuildZip: "a.zip"}, true},
		{"project dir", Config{BuildZip: "a.zip", Slug: "s", ProjectDir: "mysite"}, false},
		{"project dir escapes", Config{BuildZip: "a.zip", Slug: "s", ProjectDir: "../x"}, true},
		{"project dir root", Config{BuildZip: "a.zip", Slug: "s", ProjectDir: "/"}, true},
		{"project dir absolute", Config{BuildZip: "a.zip", Slug: "s", ProjectDir: "/mysite"}, true},
		{"project dir escapes after clean", Config{BuildZip: "a.zip", Slug: "s", ProjectDir: "a/../../x"}, true},
		{"project dir cleans to root", Config{BuildZip: "a.zip", Slug: "s", ProjectDir: "a/.."}, true},
		{"project dir dot", Config{BuildZip: "a.zip", Slug: "s", ProjectDir: "./"}, true},
		{"project dir nested", Config{BuildZip: "a.zip", Slug: "s", ProjectDir: "src/./mysite/"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_OutputPath(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{BuildZip: "dist/archive.zip", Slug: "testing", OutputDir: dir}

	got, err := cfg.OutputPath()
	if err != nil {
		t.Fatalf("OutputPath() failed: %v", err)
	}
	if want := filepath.Join(dir, "archive_release-testing.zip"); got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}
}

func TestConfig_ProjectDir(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"", DefaultProjectDir},
		{"mysite", "mysite"},
		{"mysite/", "mysite"},
		{"src/./mysite", "src/mysite"},
		{"src/old/../mysite", "src/mysite"},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			cfg := Config{ProjectDir: tt.dir}
			if got := cfg.projectDir(); got != tt.want {
				t.Errorf("projectDir() = %q, want %q", got, tt.want)
			}
		})
	}
}
