package main

import (
	"fmt"
	"path/filepath"

	"github.com/avrforge/sketchforge/internal/templates"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	newIncludes []string
	newBlink    bool
	newDir      string
)

// newCmd scaffolds a sketch directory.
var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new sketch directory",
	Example: `  sketchforge new Blink --blink
  sketchforge new Sweep --include Servo.h`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(runNew),
}

func init() {
	newCmd.Flags().StringSliceVar(&newIncludes, "include", nil, "Library headers to include (comma-separated)")
	newCmd.Flags().BoolVar(&newBlink, "blink", false, "Start from the LED blink example")
	newCmd.Flags().StringVar(&newDir, "dir", ".", "Parent directory of the new sketch")

	rootCmd.AddCommand(newCmd)
}

func runNew(cc *CommandContext, cmd *cobra.Command, args []string) error {
	dir, err := scaffoldSketch(cc.Container.Fs(), newDir, templates.SketchData{
		Name:     args[0],
		Includes: newIncludes,
		Blink:    newBlink,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Sketch created in %s\n", dir) //nolint:errcheck // Best-effort terminal output
	return nil
}

// scaffoldSketch renders a sketch into parent/<name> and returns that directory.
func scaffoldSketch(fs afero.Fs, parent string, data templates.SketchData) (string, error) {
	files, err := templates.RenderSketch(data)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(parent, data.Name)
	if exists, _ := afero.Exists(fs, dir); exists {
		return "", fmt.Errorf("%s already exists", dir)
	}
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create sketch directory: %w", err)
	}

	for _, f := range files {
		if err := afero.WriteFile(fs, filepath.Join(dir, f.Path), f.Content, 0o644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
	}
	return dir, nil
}
