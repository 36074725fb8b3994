package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dosanma1/nodrama/internal/config"
	"github.com/dosanma1/nodrama/internal/release"
	"github.com/dosanma1/nodrama/internal/ui"
	"github.com/dosanma1/nodrama/internal/watch"
	"github.com/dosanma1/nodrama/internal/wheel"
	"github.com/dosanma1/nodrama/pkg/xos"
)

var (
	releaseSlug         string
	releaseVars         string
	releasePaths        string
	releaseRequirements string
	releasePrependWSGI  string
	releaseAppendWSGI   string
	releaseProjectDir   string
	releaseOutputDir    string
	releaseConfigFile   string
	releasePip          string
	releaseNoClobber    bool
	releaseForce        bool
	releaseNoValidate   bool
	releaseWatch        bool
)

var releaseCmd = &cobra.Command{
	Use:   "release [build.zip]",
	Short: "Create a release archive from a build archive",
	Long: `Create <build>_release-<slug>.zip: every entry of the build archive plus the
configuration given for the slug, injected under the project directory:

  --vars               -> <project>/environment.json
  --paths              -> <project>/paths.d/1_custom.json
  --requirements-file  -> <project>/wheels/*.whl (built with pip wheel)
  --prepend-wsgi       -> <project>/pre-wsgi.py-fragment
  --append-wsgi        -> <project>/post-wsgi.py-fragment

Inputs not given are not injected. Settings can also come from a nodrama.yaml
release profile; flags take precedence over the profile.

An existing release is replaced atomically. Use --no-clobber to fail instead.

Examples:
  nodrama release dist/archive.zip --slug staging --vars env/staging.json
  nodrama release --slug production                 # inputs from nodrama.yaml
  nodrama release --slug staging --watch            # rebuild when inputs change`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRelease,
}

func init() {
	rootCmd.AddCommand(releaseCmd)
	releaseCmd.Flags().StringVarP(&releaseSlug, "slug", "s", "", "Deployment target name embedded in the release file name")
	releaseCmd.Flags().StringVar(&releaseVars, "vars", "", "Environment variables JSON file")
	releaseCmd.Flags().StringVar(&releasePaths, "paths", "", "Path mappings JSON file")
	releaseCmd.Flags().StringVarP(&releaseRequirements, "requirements-file", "r", "", "Extra pip requirements to ship as wheels")
	releaseCmd.Flags().StringVar(&releasePrependWSGI, "prepend-wsgi", "", "Python fragment run before the WSGI application is created")
	releaseCmd.Flags().StringVar(&releaseAppendWSGI, "append-wsgi", "", "Python fragment run after the WSGI application is created")
	releaseCmd.Flags().StringVar(&releaseProjectDir, "project-dir", "", "Archive directory to inject into (default \"sample_proj\")")
	releaseCmd.Flags().StringVarP(&releaseOutputDir, "output-dir", "o", "", "Directory to write the release to (default: current directory)")
	releaseCmd.Flags().StringVarP(&releaseConfigFile, "config", "c", "", "Release profile file (default: nearest nodrama.yaml)")
	releaseCmd.Flags().StringVar(&releasePip, "pip", "", "pip executable used to build wheels")
	releaseCmd.Flags().BoolVar(&releaseNoClobber, "no-clobber", false, "Fail if the release archive already exists")
	releaseCmd.Flags().BoolVarP(&releaseForce, "force", "f", false, "Replace an existing release without asking")
	releaseCmd.Flags().BoolVar(&releaseNoValidate, "no-validate", false, "Skip JSON schema validation of --vars and --paths")
	releaseCmd.Flags().BoolVarP(&releaseWatch, "watch", "w", false, "Rebuild the release whenever an input changes")
	releaseCmd.MarkFlagsMutuallyExclusive("no-clobber", "force")
}

func runRelease(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	profiles, err := loadProfiles(releaseConfigFile)
	if err != nil {
		return err
	}

	slug, err := resolveSlug(profiles)
	if err != nil {
		return err
	}

	flags := config.Flags{
		Vars:             releaseVars,
		Paths:            releasePaths,
		RequirementsFile: releaseRequirements,
		PrependWSGI:      releasePrependWSGI,
		AppendWSGI:       releaseAppendWSGI,
		ProjectDir:       releaseProjectDir,
		OutputDir:        releaseOutputDir,
		Pip:              releasePip,
	}
	if len(args) > 0 {
		flags.Build = args[0]
	}

	resolver := config.NewResolver(profiles, slug)
	if profiles != nil && !resolver.HasProfile() {
		logger.Warn("no release profile for slug, using flags only", "slug", slug)
	}

	cfg := resolver.Resolve(flags)
	cfg.NoClobber = releaseNoClobber
	if releaseNoValidate {
		cfg.ValidateFragments = false
	}
	if cfg.BuildZip == "" {
		return fmt.Errorf("no build archive given (pass it as an argument or set 'build' in %s)", config.FileName)
	}

	if err := confirmOverwrite(&cfg); err != nil {
		return err
	}

	injector, err := newInjector(cmd, cfg, resolver.ResolvePip(flags))
	if err != nil {
		return err
	}

	if !releaseWatch {
		return runOnce(ctx, out, injector, cfg)
	}
	return watchRelease(ctx, out, injector, cfg)
}

// resolveSlug returns --slug, or asks for one of the profile's releases when
// running interactively.
func resolveSlug(profiles *config.Config) (string, error) {
	if releaseSlug != "" {
		return releaseSlug, nil
	}

	if profiles != nil && len(profiles.Slugs()) > 0 && ui.IsInteractive(os.Stdin) {
		_, slug, err := ui.AskSelect("Release", profiles.Slugs())
		if err != nil {
			return "", err
		}
		return slug, nil
	}

	return "", fmt.Errorf("--slug is required")
}

// confirmOverwrite asks before replacing an existing release when stdin is a
// terminal and neither --force nor --no-clobber decided it already.
func confirmOverwrite(cfg *release.Config) error {
	if releaseForce || cfg.NoClobber || !ui.IsInteractive(os.Stdin) {
		return nil
	}

	outPath, err := cfg.OutputPath()
	if err != nil {
		return err
	}
	if !xos.Exists(outPath) {
		return nil
	}

	ok, err := ui.AskConfirm(fmt.Sprintf("%s exists. Replace it", outPath), false)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s (use --force to replace)", release.ErrReleaseExists, outPath)
	}
	return nil
}

func newInjector(cmd *cobra.Command, cfg release.Config, pip string) (*release.Injector, error) {
	errOut := cmd.ErrOrStderr()
	showProgress := !quiet && isTerminal(errOut)

	opts := []release.Option{
		release.WithLogger(logger),
		release.WithProgress(func(total int) release.Progress {
			return ui.NewProgressBar(total, errOut, ui.IconPackage+" packing", showProgress)
		}),
	}

	if cfg.RequirementsFile != "" {
		builder, err := wheel.NewPipBuilder(pip, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, release.WithWheelBuilder(builder))
	}

	return release.NewInjector(opts...), nil
}

func runOnce(ctx context.Context, out io.Writer, injector *release.Injector, cfg release.Config) error {
	result, err := injector.Inject(ctx, cfg)
	if err != nil {
		return err
	}
	printResult(out, result)
	return nil
}

// watchRelease builds once, then rebuilds on every change to the build
// archive or an injection input until interrupted. Rebuild failures are
// reported and watching continues.
func watchRelease(ctx context.Context, out io.Writer, injector *release.Injector, cfg release.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := runOnce(ctx, out, injector, cfg); err != nil {
		fmt.Fprintf(out, "%s %s\n", ui.IconError, ui.ErrorStyle.Render(err.Error()))
	}

	files := []string{cfg.BuildZip}
	for _, f := range []string{cfg.Vars, cfg.Paths, cfg.RequirementsFile, cfg.PrependWSGI, cfg.AppendWSGI} {
		if f != "" {
			files = append(files, f)
		}
	}

	w, err := watch.New(watch.DefaultConfig(files...), logger)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	// Replacing the release between runs is the point of watching.
	cfg.NoClobber = false

	fmt.Fprintf(out, "%s Watching %d files, press Ctrl+C to stop\n", ui.IconWatch, len(files))
	return w.Run(ctx, func(ctx context.Context, events []watch.Event) {
		logger.Info("inputs changed, rebuilding", "path", events[len(events)-1].Path, "events", len(events))
		if err := runOnce(ctx, out, injector, cfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintf(out, "%s %s\n", ui.IconError, ui.ErrorStyle.Render(err.Error()))
		}
	})
}

func printResult(out io.Writer, result *release.Result) {
	fmt.Fprintf(out, "%s Release written: %s\n", ui.IconSuccess, ui.SuccessStyle.Render(result.Path))
	fmt.Fprintf(out, "   %d entries copied from build\n", len(result.Copied))
	for _, name := range result.Injected {
		fmt.Fprintln(out, ui.InjectedStyle.Render("+ "+name))
	}
	for _, name := range result.Shadowed {
		fmt.Fprintf(out, "%s %s\n", ui.IconWarning, ui.WarningStyle.Render("replaced build entry "+name))
	}
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsInteractive(f)
}
