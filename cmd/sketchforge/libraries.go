package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/avrforge/sketchforge/internal/application/dto"
	"github.com/avrforge/sketchforge/internal/infrastructure/config"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	librariesOpts        = DefaultCommonOptions()
	librariesBuildConfig string
)

// librariesCmd lists what a build would pull from the library root.
var librariesCmd = &cobra.Command{
	Use:     "libraries <sketch>",
	Aliases: []string{"libs"},
	Short:   "Show which libraries a sketch depends on",
	Long: `Extract the #include dependencies of a sketch and match them against the
library root without running the toolchain. Dependencies that no library
provides (for example core headers such as avr/io.h) are listed as unmatched.`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(runLibraries),
}

func init() {
	rootCmd.AddCommand(librariesCmd)

	librariesOpts.RegisterFlags(librariesCmd, librariesFormats())
	librariesCmd.Flags().StringVarP(&librariesBuildConfig, "build-config", "c", "", "Build config file (default: sketchforge.yaml if present)")
	librariesCmd.Flags().String("library-root", "", "Directory holding one sub-directory per library")
}

func librariesFormats() []string {
	return []string{"text", "json", "yaml"}
}

func runLibraries(cc *CommandContext, cmd *cobra.Command, args []string) error {
	if err := librariesOpts.ValidateFlags(librariesFormats()); err != nil {
		return err
	}

	ctx, cancel := librariesOpts.ApplyToContext(cc.Context)
	defer cancel()

	root, _ := cmd.Flags().GetString("library-root")
	if root == "" {
		root = viper.GetString(config.KeyLibraryRoot)
	}

	fs := cc.Container.Fs()
	resp, err := cc.Container.ResolveLibrariesUseCase().Execute(ctx, dto.ResolveLibrariesRequest{
		SketchPath:  args[0],
		ConfigPath:  findBuildConfig(fs, librariesBuildConfig, args[0]),
		LibraryRoot: root,
	})
	if err != nil {
		return err
	}

	w, closeOutput, err := openOutput(fs, librariesOpts.OutputFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	return writeLibraries(w, librariesOpts.Format, resp)
}

// librariesDocument is the serialized form of a resolution.
type librariesDocument struct {
	Dependencies []string          `json:"dependencies" yaml:"dependencies"`
	Libraries    []dto.LibraryInfo `json:"libraries" yaml:"libraries"`
	Unmatched    []string          `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
}

func writeLibraries(w io.Writer, format string, resp *dto.ResolveLibrariesResponse) error {
	doc := librariesDocument{
		Dependencies: resp.Dependencies,
		Libraries:    resp.Libraries,
		Unmatched:    resp.Unmatched,
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		return yaml.NewEncoder(w, yaml.Indent(2)).Encode(doc)
	case "text":
		writeLibrariesText(w, doc)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

//nolint:errcheck // Best-effort terminal output
func writeLibrariesText(w io.Writer, doc librariesDocument) {
	if len(doc.Dependencies) == 0 {
		fmt.Fprintln(w, "No #include dependencies found")
		return
	}

	fmt.Fprintf(w, "Dependencies: %s\n", strings.Join(doc.Dependencies, ", "))

	if len(doc.Libraries) == 0 {
		fmt.Fprintln(w, "\nNo matching libraries")
	} else {
		fmt.Fprintln(w, "\nLibraries:")
		for _, lib := range doc.Libraries {
			name := lib.Name
			if lib.Version != "" {
				name += " " + lib.Version
			}
			fmt.Fprintf(w, "  %s (%s)\n", name, lib.Dir)
			fmt.Fprintf(w, "    matched by: %s\n", strings.Join(lib.MatchedBy, ", "))
			for _, unit := range lib.Units {
				fmt.Fprintf(w, "    - %s\n", unit)
			}
		}
	}

	if len(doc.Unmatched) > 0 {
		fmt.Fprintf(w, "\nUnmatched: %s\n", strings.Join(doc.Unmatched, ", "))
	}
}
