package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// DefaultBuildConfigName is looked up next to the sketch, then in the
// current directory, when --build-config is not given.
const DefaultBuildConfigName = "sketchforge.yaml"

// CommonOptions contains flags shared across commands that produce a report.
type CommonOptions struct {
	// Output
	Format     string
	OutputFile string

	// Deadline bounds the whole command; per-tool limits come from the build config.
	Deadline time.Duration

	Quiet   bool
	NoColor bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Format: "text",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command, formats []string) {
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		fmt.Sprintf("Output format: %v", formats))
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().DurationVar(&opts.Deadline, "deadline", opts.Deadline,
		"Timeout for the entire command (0 to disable)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false,
		"Only print errors while running")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false,
		"Disable colored output")
}

// ApplyToContext applies the deadline to ctx.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Deadline > 0 {
		return context.WithTimeout(ctx, opts.Deadline)
	}
	return ctx, func() {}
}

// ValidateFlags validates common options against the formats a command supports.
func (opts *CommonOptions) ValidateFlags(formats []string) error {
	if opts.Quiet && verbose {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}
	if !slices.Contains(formats, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %v)", opts.Format, formats)
	}
	if opts.Deadline < 0 {
		return fmt.Errorf("--deadline cannot be negative")
	}
	return nil
}

// openOutput returns stdout or a created file, and a close func that is
// always safe to call.
func openOutput(fs afero.Fs, path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := fs.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() {
		_ = f.Close() // Best-effort cleanup
	}, nil
}

// findBuildConfig returns explicit when set, otherwise the first
// DefaultBuildConfigName found next to the sketch or in the working
// directory. An empty result selects the built-in defaults.
func findBuildConfig(fs afero.Fs, explicit, sketchPath string) string {
	if explicit != "" {
		return explicit
	}

	sketchDir := sketchPath
	if info, err := fs.Stat(sketchPath); err != nil || !info.IsDir() {
		sketchDir = filepath.Dir(sketchPath)
	}

	for _, candidate := range []string{
		filepath.Join(sketchDir, DefaultBuildConfigName),
		DefaultBuildConfigName,
	} {
		if ok, _ := afero.Exists(fs, candidate); ok {
			return candidate
		}
	}
	return ""
}
