package main

import (
	"fmt"
	"os"

	"github.com/gorustyt/gonavmesh/common/logger"
	"github.com/gorustyt/gonavmesh/config"
	"github.com/gorustyt/gonavmesh/navmesh"
	"github.com/gorustyt/gonavmesh/recast"
	"github.com/spf13/cobra"
)

var VERSION = "0.1.0"

func main() {
	err := newRootCmd().Execute()
	logger.CloseLogger()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "navmesh",
		Short:        "navigation mesh builder",
		Version:      VERSION,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "yaml config file")
	rootCmd.PersistentFlags().String("obj", "", "input geometry in Wavefront OBJ form")
	_ = rootCmd.MarkPersistentFlagRequired("obj")
	rootCmd.AddCommand(
		BuildCmd(),
		PathCmd(),
	)
	return rootCmd
}

// setup loads the config, starts the logger and builds the mesh named by
// the persistent flags.
func setup(cmd *cobra.Command) (*navmesh.NavMeshManager, error) {
	configFile, _ := cmd.Flags().GetString("config")
	objFile, _ := cmd.Flags().GetString("obj")

	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}
	if err := logger.InitLogger(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	geom, err := recast.LoadObj(objFile)
	if err != nil {
		return nil, err
	}
	m, err := navmesh.NewNavMeshManager(cfg)
	if err != nil {
		return nil, err
	}
	if err := m.Build(geom); err != nil {
		return nil, err
	}
	return m, nil
}
