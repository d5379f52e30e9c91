package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/tenon/pkg/config"
	"github.com/chazu/tenon/pkg/engine"
	"github.com/chazu/tenon/pkg/kernel"
	"github.com/chazu/tenon/pkg/kernel/sdfx"
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tenon",
	Short: "Parametric CAD from Lisp scripts",
	Long: `Tenon evaluates Lisp model scripts into solid parts and exports
them as triangle meshes. See the eval, validate and formats subcommands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "tenon.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.SetErr(os.Stderr)
}

// newKernel builds the geometry kernel from the loaded config.
func newKernel() kernel.Kernel {
	return sdfx.NewWithCells(cfg.Kernel.MeshCells)
}

// newEngine builds an evaluation engine backed by the configured
// kernel, timeout, and cylinder resolution.
func newEngine() *engine.Engine {
	return engine.NewEngineWithConfig(newKernel(), cfg.EvalTimeout(), cfg.Kernel.Segments)
}
