package wheel

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseRequirements(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "single pin",
			content: "wagtail==1.13.4\n",
			want:    []string{"wagtail==1.13.4"},
		},
		{
			name:    "comments and blanks",
			content: "# extra deps\n\nwagtail==1.13.4  # cms\n   \nrequests\n",
			want:    []string{"wagtail==1.13.4", "requests"},
		},
		{
			name:    "url fragment kept",
			content: "git+https://example.com/repo.git#egg=pkg\n",
			want:    []string{"git+https://example.com/repo.git#egg=pkg"},
		},
		{
			name:    "continuation lines",
			content: "wagtail==1.13.4 \\\n    --hash=sha256:abc\nrequests\n",
			want:    []string{"wagtail==1.13.4 --hash=sha256:abc", "requests"},
		},
		{
			name:    "crlf endings",
			content: "a\r\nb\r\n",
			want:    []string{"a", "b"},
		},
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "requirements.txt")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			got, err := ParseRequirements(path)
			if err != nil {
				t.Fatalf("ParseRequirements() failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRequirements() = %q, want %q", got, tt.want)
			}
		})
	}
}
