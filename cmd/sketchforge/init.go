package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/avrforge/sketchforge/internal/domain/entities"
	"github.com/avrforge/sketchforge/internal/infrastructure/config"
	"github.com/charmbracelet/huh"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// BoardPreset is a known board and its defaults.
type BoardPreset struct {
	Name         string
	Title        string
	MCU          string
	CPUFrequency uint64
	Variant      string
}

// boardPresets are offered by init. "custom" keeps whatever the flags say.
var boardPresets = []BoardPreset{
	{Name: "uno", Title: "Arduino Uno (ATmega328P, 16MHz)", MCU: "atmega328p", CPUFrequency: 16000000, Variant: "standard"},
	{Name: "nano", Title: "Arduino Nano (ATmega328P, 16MHz)", MCU: "atmega328p", CPUFrequency: 16000000, Variant: "eightanaloginputs"},
	{Name: "mega", Title: "Arduino Mega 2560 (ATmega2560, 16MHz)", MCU: "atmega2560", CPUFrequency: 16000000, Variant: "mega"},
	{Name: "leonardo", Title: "Arduino Leonardo (ATmega32U4, 16MHz)", MCU: "atmega32u4", CPUFrequency: 16000000, Variant: "leonardo"},
	{Name: "lilypad", Title: "LilyPad (ATmega328P, 8MHz)", MCU: "atmega328p", CPUFrequency: 8000000, Variant: "standard"},
	{Name: "custom", Title: "Custom"},
}

func findPreset(name string) (BoardPreset, bool) {
	for _, p := range boardPresets {
		if p.Name == name {
			return p, true
		}
	}
	return BoardPreset{}, false
}

// InitOptions are the answers used to generate a build config.
type InitOptions struct {
	Board        string
	MCU          string
	CPUFrequency uint64
	ToolchainDir string
	// ArduinoDir is an installation root holding cores/arduino and variants/.
	ArduinoDir    string
	LibraryRoot   string
	OutputPath    string
	Force         bool
	NoInteractive bool
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a build config for a board",
	Long: `Generate a sketchforge.yaml for a board. Without --no-interactive the
missing answers are asked for interactively.

When --arduino-dir is set, the core, variant and include directories are
derived from it (<dir>/cores/arduino and <dir>/variants/<variant>).`,
	Example: `  sketchforge init
  sketchforge init --board mega --arduino-dir /usr/share/arduino/hardware/arduino/avr --no-interactive`,
	Args: cobra.NoArgs,
	RunE: withContainer(runInit),
}

func init() {
	flags := initCmd.Flags()
	flags.StringVar(&initOpts.Board, "board", "", "Board preset: uno, nano, mega, leonardo, lilypad, custom")
	flags.StringVar(&initOpts.MCU, "mcu", "", "Target microcontroller (overrides the preset)")
	flags.Uint64Var(&initOpts.CPUFrequency, "f-cpu", 0, "CPU frequency in Hz (overrides the preset)")
	flags.StringVar(&initOpts.ToolchainDir, "toolchain-dir", "", "Directory containing the toolchain executables")
	flags.StringVar(&initOpts.ArduinoDir, "arduino-dir", "", "Arduino AVR installation directory")
	flags.StringVar(&initOpts.LibraryRoot, "library-root", "", "Directory holding one sub-directory per library")
	flags.StringVarP(&initOpts.OutputPath, "output", "o", DefaultBuildConfigName, "Output file path")
	flags.BoolVar(&initOpts.Force, "force", false, "Overwrite an existing file")
	flags.BoolVar(&initOpts.NoInteractive, "no-interactive", false, "Disable interactive prompts")

	rootCmd.AddCommand(initCmd)
}

func runInit(cc *CommandContext, cmd *cobra.Command, _ []string) error {
	fs := cc.Container.Fs()
	opts := initOpts

	if !opts.Force {
		if exists, _ := afero.Exists(fs, opts.OutputPath); exists {
			return fmt.Errorf("%s already exists (use --force to overwrite)", opts.OutputPath)
		}
	}

	if !opts.NoInteractive {
		if err := promptInit(&opts); err != nil {
			return err
		}
	}

	cfg, err := generateConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(fs, opts.OutputPath, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Build config saved to %s\n", opts.OutputPath) //nolint:errcheck // Best-effort terminal output
	return nil
}

// promptInit asks for every answer not already given on the command line.
func promptInit(opts *InitOptions) error {
	if opts.Board == "" {
		options := make([]huh.Option[string], 0, len(boardPresets))
		for _, p := range boardPresets {
			options = append(options, huh.NewOption(p.Title, p.Name))
		}
		err := huh.NewSelect[string]().
			Title("Select board").
			Options(options...).
			Value(&opts.Board).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.Board == "custom" {
		freq := ""
		if opts.CPUFrequency != 0 {
			freq = strconv.FormatUint(opts.CPUFrequency, 10)
		}
		err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Microcontroller").
				Placeholder("atmega328p").
				Value(&opts.MCU),
			huh.NewInput().
				Title("CPU frequency (Hz)").
				Placeholder("16000000").
				Validate(validateFrequency).
				Value(&freq),
		)).Run()
		if err != nil {
			return err
		}
		if opts.CPUFrequency, err = parseFrequency(freq); err != nil {
			return err
		}
	}

	if opts.ArduinoDir == "" {
		err := huh.NewInput().
			Title("Arduino AVR installation directory (optional)").
			Placeholder("/usr/share/arduino/hardware/arduino/avr").
			Value(&opts.ArduinoDir).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.LibraryRoot == "" {
		err := huh.NewInput().
			Title("Library root (optional)").
			Placeholder("~/Arduino/libraries").
			Value(&opts.LibraryRoot).
			Run()
		if err != nil {
			return err
		}
	}

	return nil
}

func validateFrequency(s string) error {
	_, err := parseFrequency(s)
	return err
}

func parseFrequency(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseUint(s, 10, 64)
	if err != nil || f == 0 {
		return 0, fmt.Errorf("frequency must be a positive integer in Hz")
	}
	return f, nil
}

// generateConfig applies the answers on top of the default config.
func generateConfig(opts InitOptions) (*entities.BuildConfig, error) {
	cfg := config.DefaultConfig()

	board := opts.Board
	if board == "" {
		board = cfg.Board.Name
	}
	preset, ok := findPreset(board)
	if !ok {
		return nil, fmt.Errorf("unknown board: %s", board)
	}

	if preset.Name != "custom" {
		cfg.Board.Name = preset.Name
		cfg.Board.MCU = preset.MCU
		cfg.Board.CPUFrequency = preset.CPUFrequency
	} else {
		cfg.Board.Name = ""
	}
	if opts.MCU != "" {
		cfg.Board.MCU = opts.MCU
	}
	if opts.CPUFrequency != 0 {
		cfg.Board.CPUFrequency = opts.CPUFrequency
	}

	cfg.Toolchain.Dir = opts.ToolchainDir
	cfg.Paths.LibraryRoot = opts.LibraryRoot

	if opts.ArduinoDir != "" {
		cfg.Paths.CoreDir = filepath.Join(opts.ArduinoDir, "cores", "arduino")
		cfg.Paths.IncludeDirs = []string{cfg.Paths.CoreDir}
		if preset.Variant != "" {
			cfg.Paths.VariantDir = filepath.Join(opts.ArduinoDir, "variants", preset.Variant)
		}
	}

	return cfg, nil
}
