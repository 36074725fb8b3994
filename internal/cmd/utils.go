package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/dosanma1/nodrama/internal/config"
)

// loadProfiles loads the release profile file. An explicit path must exist;
// otherwise nodrama.yaml is searched from the working directory upwards and
// a missing file yields a nil config.
func loadProfiles(explicit string) (*config.Config, error) {
	if explicit != "" {
		return config.Load(explicit)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	path, err := config.Find(cwd)
	if errors.Is(err, config.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("using release profiles", "path", path)
	return config.Load(path)
}
