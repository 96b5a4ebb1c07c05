package main

import (
	"fmt"
	"io"
	"os"

	"github.com/avrforge/sketchforge/internal/application/dto"
	apperrors "github.com/avrforge/sketchforge/internal/application/errors"
	"github.com/avrforge/sketchforge/internal/domain/build"
	"github.com/avrforge/sketchforge/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BuildOptions are the flags of the build command.
type BuildOptions struct {
	CommonOptions

	BuildConfig    string
	RedactPatterns []string
	Jobs           int
	Parallel       bool
	Strict         bool
	NoRedact       bool
	RedactHash     bool
}

var buildOpts = BuildOptions{CommonOptions: DefaultCommonOptions()}

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <sketch>",
	Short: "Compile a sketch into flash and EEPROM images",
	Long: `Build a sketch (a .ino file or a directory containing <dir>.ino).

The build config is read from --build-config, or from sketchforge.yaml next
to the sketch or in the current directory. Without one, the avr-gcc
defaults for an ATmega328P at 16MHz are used.

Individual values can be overridden with flags, with keys in the CLI config
file, or with SKETCHFORGE_* environment variables:
  --mcu            board.mcu            SKETCHFORGE_BOARD_MCU
  --f-cpu          board.f_cpu          SKETCHFORGE_BOARD_F_CPU
  --toolchain-dir  toolchain.dir        SKETCHFORGE_TOOLCHAIN_DIR
  --work-dir       paths.work_dir       SKETCHFORGE_PATHS_WORK_DIR
  --library-root   paths.library_root   SKETCHFORGE_PATHS_LIBRARY_ROOT
  --timeout        timeout              SKETCHFORGE_TIMEOUT`,
	Example: `  sketchforge build Blink
  sketchforge build Servo/Servo.ino --library-root ~/Arduino/libraries --parallel
  sketchforge build Blink --format sarif -o build.sarif`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(runBuild),
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildOpts.RegisterFlags(buildCmd, buildFormats())

	flags := buildCmd.Flags()
	flags.StringVarP(&buildOpts.BuildConfig, "build-config", "c", "", "Build config file (default: sketchforge.yaml if present)")
	flags.BoolVar(&buildOpts.Parallel, "parallel", false, "Compile the units of a stage in parallel")
	flags.IntVarP(&buildOpts.Jobs, "jobs", "j", 0, "Maximum parallel compilations (0 = number of CPUs)")
	flags.BoolVar(&buildOpts.Strict, "strict", false, "Fail when the working directory cannot be created")
	flags.BoolVar(&buildOpts.NoRedact, "no-redact", false, "Record tool output without scrubbing secrets")
	flags.StringSliceVar(&buildOpts.RedactPatterns, "redact-pattern", nil, "Extra regular expression to redact from tool output (repeatable)")
	flags.BoolVar(&buildOpts.RedactHash, "redact-hash", false, "Replace secrets with a salted hash (salt from redaction.salt or SKETCHFORGE_REDACTION_SALT)")

	// Config overrides
	flags.String("mcu", "", "Target microcontroller, e.g. atmega2560")
	flags.Uint64("f-cpu", 0, "CPU frequency in Hz")
	flags.String("toolchain-dir", "", "Directory containing the toolchain executables")
	flags.String("work-dir", "", "Working directory for generated files")
	flags.String("library-root", "", "Directory holding one sub-directory per library")
	flags.Duration("timeout", 0, "Timeout for each toolchain invocation")

	bindOverrideFlags(buildCmd, map[string]string{
		config.KeyMCU:          "mcu",
		config.KeyCPUFrequency: "f-cpu",
		config.KeyToolchainDir: "toolchain-dir",
		config.KeyWorkDir:      "work-dir",
		config.KeyLibraryRoot:  "library-root",
		config.KeyTimeout:      "timeout",
	})
}

// bindOverrideFlags binds each flag to its viper key so flags, the CLI
// config file and the environment resolve through one lookup.
func bindOverrideFlags(cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}

func buildFormats() []string {
	return []string{"text", "json", "yaml", "junit", "sarif"}
}

func runBuild(cc *CommandContext, _ *cobra.Command, args []string) error {
	if err := buildOpts.ValidateFlags(buildFormats()); err != nil {
		return err
	}
	if buildOpts.Jobs < 0 {
		return fmt.Errorf("--jobs cannot be negative")
	}

	ctx, cancel := buildOpts.ApplyToContext(cc.Context)
	defer cancel()

	sketchPath := args[0]
	fs := cc.Container.Fs()

	req := dto.BuildSketchRequest{
		SketchPath: sketchPath,
		ConfigPath: findBuildConfig(fs, buildOpts.BuildConfig, sketchPath),
		Overrides:  config.OverridesFromViper(viper.GetViper()),
		Execution: dto.ExecutionOptions{
			Parallel:           buildOpts.Parallel,
			MaxConcurrentUnits: buildOpts.Jobs,
			StrictPreparation:  buildOpts.Strict,
			Redaction: dto.RedactionOptions{
				Disabled: buildOpts.NoRedact,
				Patterns: buildOpts.RedactPatterns,
				HashMode: buildOpts.RedactHash,
				Salt:     viper.GetString(config.KeyRedactionSalt),
			},
		},
		Metadata: dto.RequestMetadata{RequestID: uuid.NewString()},
	}
	cc.Logger.Debug("build requested", "request_id", req.Metadata.RequestID, "config", req.ConfigPath)

	resp, err := cc.Container.BuildSketchUseCase().Execute(ctx, req, newConsoleSink(os.Stderr, buildOpts.Quiet))
	if err != nil {
		return err
	}
	report := resp.Report

	w, closeOutput, err := openOutput(fs, buildOpts.OutputFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	formatter, err := cc.Container.Formatters().Create(buildOpts.Format, w, dto.OutputOptions{
		Verbose:    verbose,
		SketchPath: sketchPath,
		Indent:     true,
		NoColor:    buildOpts.NoColor || buildOpts.OutputFile != "",
	})
	if err != nil {
		return err
	}
	if err := formatter.Format(report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if !report.Succeeded() {
		return apperrors.NewBuildFailedError(report.Sketch, len(report.Errors))
	}
	return nil
}

// consoleSink prints build progress as it happens.
type consoleSink struct {
	w     io.Writer
	quiet bool
}

var _ build.Sink = (*consoleSink)(nil)

func newConsoleSink(w io.Writer, quiet bool) *consoleSink {
	return &consoleSink{w: w, quiet: quiet}
}

func (s *consoleSink) OnMessage(text string) {
	if s.quiet {
		return
	}
	fmt.Fprintln(s.w, text) //nolint:errcheck // Best-effort terminal output
}

func (s *consoleSink) OnError(text string) {
	fmt.Fprintln(s.w, "error: "+text) //nolint:errcheck // Best-effort terminal output
}

// OnSuccess is a no-op; the finished message follows immediately.
func (s *consoleSink) OnSuccess() {}
