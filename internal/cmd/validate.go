package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dosanma1/nodrama/internal/config"
	"github.com/dosanma1/nodrama/internal/fragment"
	"github.com/dosanma1/nodrama/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate environment and paths JSON fragments",
	Long: `Validates the JSON fragments injected into a release against their schemas:

  environment  a flat object of environment variable names to scalar values
  paths        an object of names to non-empty path strings

Fragments come from --vars/--paths or from the release profile named by --slug.`,
	RunE: runValidate,
}

var (
	validateVars   string
	validatePaths  string
	validateSlug   string
	validateConfig string
)

func init() {
	validateCmd.Flags().StringVar(&validateVars, "vars", "", "Environment variables JSON file")
	validateCmd.Flags().StringVar(&validatePaths, "paths", "", "Path mappings JSON file")
	validateCmd.Flags().StringVarP(&validateSlug, "slug", "s", "", "Validate the fragments of this release profile")
	validateCmd.Flags().StringVarP(&validateConfig, "config", "c", "", "Release profile file (default: nearest nodrama.yaml)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	vars, paths := validateVars, validatePaths
	if validateSlug != "" {
		profiles, err := loadProfiles(validateConfig)
		if err != nil {
			return err
		}
		resolver := config.NewResolver(profiles, validateSlug)
		if !resolver.HasProfile() {
			return fmt.Errorf("no release profile named %q", validateSlug)
		}
		cfg := resolver.Resolve(config.Flags{Vars: vars, Paths: paths})
		vars, paths = cfg.Vars, cfg.Paths
	}

	targets := []struct {
		kind fragment.Kind
		path string
	}{
		{fragment.KindEnvironment, vars},
		{fragment.KindPaths, paths},
	}

	checked, failures := 0, 0
	for _, target := range targets {
		if target.path == "" {
			continue
		}
		checked++

		fmt.Fprintf(out, "%s Validating %s...\n", ui.IconSearch, target.path)
		err := fragment.Validate(target.kind, target.path)
		if err == nil {
			fmt.Fprintf(out, "%s %s is a valid %s fragment\n", ui.IconSuccess, target.path, target.kind)
			continue
		}

		var verr *fragment.ValidationError
		if !errors.As(err, &verr) {
			return err
		}

		failures += len(verr.Problems)
		fmt.Fprintf(out, "\n%s %s\n\n", ui.IconError, ui.ErrorStyle.Render("Validation failed with the following errors:"))
		for i, p := range verr.Problems {
			fmt.Fprintf(out, "%d. %s\n", i+1, p.Description)
			fmt.Fprintf(out, "   Field: %s\n\n", p.Field)
		}
	}

	if checked == 0 {
		return fmt.Errorf("nothing to validate (pass --vars, --paths or --slug)")
	}
	if failures > 0 {
		return fmt.Errorf("validation failed with %d errors", failures)
	}
	return nil
}
