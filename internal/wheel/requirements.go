package wheel

import (
	"fmt"
	"os"
	"strings"
)

// ParseRequirements returns the requirement lines of a pip requirements
// file. Comments and blank lines are dropped and backslash continuations
// are joined.
func ParseRequirements(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements file: %w", err)
	}

	var (
		reqs    []string
		pending string
	)
	for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		if idx := commentIndex(line); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)

		if strings.HasSuffix(line, "\\") {
			pending += strings.TrimSpace(strings.TrimSuffix(line, "\\")) + " "
			continue
		}

		line = strings.TrimSpace(pending + line)
		pending = ""
		if line != "" {
			reqs = append(reqs, line)
		}
	}
	if p := strings.TrimSpace(pending); p != "" {
		reqs = append(reqs, p)
	}

	return reqs, nil
}

// commentIndex returns the start of a comment: a '#' at line start or
// preceded by whitespace. URL fragments like `#egg=` are not comments.
func commentIndex(line string) int {
	for i, r := range line {
		if r != '#' {
			continue
		}
		if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
			return i
		}
	}
	return -1
}
