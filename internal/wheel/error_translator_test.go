package wheel

import (
	"strings"
	"testing"
)

func TestErrorTranslator_Translate(t *testing.T) {
	translator := NewErrorTranslator()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "no matching distribution",
			input:  "ERROR: No matching distribution found for wagtial==1.13.4",
			expect: "no matching distribution for 'wagtial==1.13.4'",
		},
		{
			name:   "no satisfying version",
			input:  "ERROR: Could not find a version that satisfies the requirement wagtail==99 (from versions: 1.0)",
			expect: "no version of 'wagtail==99' satisfies the requirement",
		},
		{
			name:   "failed wheel build",
			input:  "  Failed building wheel for psycopg2\nERROR: Failed to build one or more wheels",
			expect: "failed building wheel for 'psycopg2'",
		},
		{
			name:   "unreadable requirements",
			input:  "ERROR: Could not open requirements file: [Errno 2] No such file or directory: 'x.txt'",
			expect: "could not open requirements file: [Errno 2]",
		},
		{
			name:   "network failure",
			input:  "WARNING: Retrying ... Failed to establish a new connection: [Errno -2] Name or service not known",
			expect: "could not reach the package index",
		},
		{
			name:   "generic error lines",
			input:  "noise\nERROR: something odd\nmore noise",
			expect: "something odd",
		},
		{
			name:   "no output",
			input:  "",
			expect: "no output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translator.Translate(tt.input)
			if !strings.Contains(got, tt.expect) {
				t.Errorf("Translate() = %q, want it to contain %q", got, tt.expect)
			}
		})
	}
}

func TestErrorTranslator_TruncatesLongOutput(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString("ERROR: line\n")
	}

	got := NewErrorTranslator().Translate(b.String())
	lines := strings.Split(got, "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6", len(lines))
	}
	if !strings.Contains(lines[5], "--verbose") {
		t.Errorf("last line = %q, want truncation hint", lines[5])
	}
}
