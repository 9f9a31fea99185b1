// Command l200geom resolves the LEGEND-200 geometry configuration into the
// ordered placement list consumed by the GDML export layer, and optionally
// writes the remage detector and visualization macro files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	l200geom "github.com/tdixon97/legend-pygeom-l200"
)

var (
	flagAssemblies   []string
	flagFiberModules string
	flagPMTConfig    string
	flagPublicGeom   bool
	flagConfigFile   string
	flagMetadataFile string
	flagCheckOverlap bool
	flagVisMacroFile string
	flagDetMacroFile string
	flagVerbose      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "l200geom [output-file]",
	Short: "Build the parameterized LEGEND-200 geometry placement list",
	Long: `l200geom merges the geometry defaults, an optional YAML/JSON/TOML config
file and command line overrides, resolves the selected assemblies, and emits
the resulting placement records for the GDML export layer.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if flagVerbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	f := rootCmd.Flags()
	f.StringSliceVar(&flagAssemblies, "assemblies", nil,
		"assemblies to generate; explicit list or +/- modifiers against the default set")
	f.StringVar(&flagFiberModules, "fiber-modules", "",
		"fiber shroud model: segmented or detailed")
	f.StringVar(&flagPMTConfig, "pmt-config", "",
		"watertank PMT population: LEGEND200 or GERDA")
	f.BoolVar(&flagPublicGeom, "public-geom", false,
		"build with the public sample metadata instead of hardware metadata")
	f.StringVar(&flagConfigFile, "config", "",
		"geometry config file (YAML, JSON or TOML)")
	f.StringVar(&flagMetadataFile, "metadata", "",
		"hardware metadata file (YAML or JSON)")
	f.BoolVar(&flagCheckOverlap, "check-overlaps", false,
		"request a full overlap check in the downstream Geant4 stage")
	f.StringVar(&flagVisMacroFile, "vis-macro-file", "",
		"write a Geant4 macro file with visualization attributes")
	f.StringVar(&flagDetMacroFile, "det-macro-file", "",
		"write a Geant4 macro file registering active detectors (for remage)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"increase the program verbosity")
}

func run(cmd *cobra.Command, args []string) error {
	outputFile := ""
	if len(args) == 1 {
		outputFile = args[0]
	}
	if outputFile == "" {
		return errors.New("no output file specified")
	}

	var fileCfg *l200geom.FileConfig
	if flagConfigFile != "" {
		var err error
		fileCfg, err = l200geom.LoadConfigFile(flagConfigFile)
		if err != nil {
			return err
		}
	}

	cli := l200geom.CLIOverrides{
		FiberModules: flagFiberModules,
		PMTConfig:    flagPMTConfig,
	}
	if cmd.Flags().Changed("assemblies") {
		cli.Assemblies = flagAssemblies
	}
	if cmd.Flags().Changed("public-geom") {
		cli.PublicGeom = &flagPublicGeom
	}

	cfg, err := l200geom.Merge(l200geom.DefaultConfig(), fileCfg, cli)
	if err != nil {
		return err
	}

	meta, err := loadMetadata(cfg)
	if err != nil {
		return err
	}

	volumes, err := l200geom.Build(cfg, meta, l200geom.WithLogger(logger))
	if err != nil {
		return err
	}

	if flagCheckOverlap {
		// Only structural dimension checks run here; full spatial overlap
		// checking happens in the Geant4/remage stage.
		logger.Warn("overlap checking is delegated to the downstream Geant4 stage")
	}

	if err := writePlacements(volumes, outputFile); err != nil {
		return err
	}
	logger.Info("wrote placement list",
		zap.String("file", outputFile),
		zap.Int("volumes", len(volumes)))

	if flagDetMacroFile != "" {
		if err := l200geom.WriteDetectorMacroFile(volumes, flagDetMacroFile); err != nil {
			return err
		}
		logger.Info("wrote detector macro", zap.String("file", flagDetMacroFile))
	}
	if flagVisMacroFile != "" {
		if err := l200geom.WriteVisMacroFile(volumes, flagVisMacroFile); err != nil {
			return err
		}
		logger.Info("wrote visualization macro", zap.String("file", flagVisMacroFile))
	}

	return nil
}

// loadMetadata reads the hardware metadata file, or falls back to the
// embedded sample metadata for public geometry builds.
func loadMetadata(cfg *l200geom.Config) (*l200geom.Metadata, error) {
	if cfg.PublicGeom || flagMetadataFile == "" {
		return l200geom.SampleMetadata(), nil
	}
	data, err := os.ReadFile(flagMetadataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file %q: %w", flagMetadataFile, err)
	}
	var meta l200geom.Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file %q: %w", flagMetadataFile, err)
	}
	return &meta, nil
}

// writePlacements dumps the ordered placement records as a YAML stream; the
// GDML writer consumes this boundary format.
func writePlacements(volumes []l200geom.PlacedVolume, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	if err := enc.Encode(volumes); err != nil {
		return fmt.Errorf("failed to encode placements: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
