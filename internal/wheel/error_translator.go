package wheel

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	noDistributionPattern = regexp.MustCompile(`No matching distribution found for ([^\s]+)`)
	noVersionPattern      = regexp.MustCompile(`Could not find a version that satisfies the requirement ([^\s]+)`)
	failedWheelPattern    = regexp.MustCompile(`Failed building wheel for ([^\s]+)`)
	requirementsPattern   = regexp.MustCompile(`Could not open requirements file: (.*)`)
)

// ErrorTranslator converts pip output to short user-facing messages.
type ErrorTranslator struct{}

// NewErrorTranslator creates a new error translator.
func NewErrorTranslator() *ErrorTranslator {
	return &ErrorTranslator{}
}

// Translate converts pip stderr to a user-friendly message.
func (t *ErrorTranslator) Translate(pipError string) string {
	if m := noDistributionPattern.FindStringSubmatch(pipError); len(m) > 1 {
		return fmt.Sprintf("no matching distribution for '%s' (check the package name and version pin)", m[1])
	}

	if m := noVersionPattern.FindStringSubmatch(pipError); len(m) > 1 {
		return fmt.Sprintf("no version of '%s' satisfies the requirement", m[1])
	}

	if m := failedWheelPattern.FindStringSubmatch(pipError); len(m) > 1 {
		return fmt.Sprintf("failed building wheel for '%s'", m[1])
	}

	if m := requirementsPattern.FindStringSubmatch(pipError); len(m) > 1 {
		return fmt.Sprintf("could not open requirements file: %s", strings.TrimSpace(m[1]))
	}

	if strings.Contains(pipError, "Failed to establish a new connection") ||
		strings.Contains(pipError, "Temporary failure in name resolution") ||
		strings.Contains(pipError, "ConnectionError") {
		return "could not reach the package index (check network access or the index URL)"
	}

	return t.extractErrorDetail(pipError)
}

// extractErrorDetail keeps the ERROR lines of pip output, at most five.
func (t *ErrorTranslator) extractErrorDetail(pipError string) string {
	var relevant []string
	for _, line := range strings.Split(pipError, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			relevant = append(relevant, strings.TrimSpace(strings.TrimPrefix(line, "ERROR:")))
		}
	}

	if len(relevant) == 0 {
		trimmed := strings.TrimSpace(pipError)
		if trimmed == "" {
			return "pip exited with an error and no output"
		}
		return trimmed
	}

	if len(relevant) > 5 {
		relevant = relevant[:5]
		relevant = append(relevant, "... (run with --verbose for full output)")
	}
	return strings.Join(relevant, "\n")
}
