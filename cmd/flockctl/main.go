package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/internal/logging"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "flockctl",
		Short: "Headless driver for the boids flocking simulation",
		Long: `flockctl runs the flocking engine without a display.

It is meant for benchmarking, reproducing runs from a seed, and validating
configuration files before handing them to the GUI.`,
	}

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newCheckCmd(),
		newRunCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("flockctl version %s\n", version)
		},
	}
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a config file against the schema and the engine invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			schemaFile, _ := cmd.Flags().GetString("schema")
			cfg, err := flock.LoadConfig(configFile, schemaFile)
			if err != nil {
				return err
			}
			fmt.Printf("%s: ok (%d boids, %d groups, %gx%g)\n",
				configFile, cfg.NumBoids, cfg.NumGroups, cfg.ScreenWidth, cfg.ScreenHeight)
			return nil
		},
	}
	cmd.Flags().String("config", "config.sample.json", "config file to validate")
	cmd.Flags().String("schema", "config.schema.json", "JSON schema file")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation for a fixed number of ticks",
		RunE: func(cmd *cobra.Command, args []string) error {
			levelName, _ := cmd.Flags().GetString("log-level")
			logger := logging.New(os.Stderr, logging.ParseLevel(levelName))

			cfg, err := loadRunConfig(cmd)
			if err != nil {
				return err
			}

			world, err := flock.NewWorld(cfg)
			if err != nil {
				return err
			}

			if err := applyToggles(cmd, world); err != nil {
				return err
			}

			ticks, _ := cmd.Flags().GetInt("ticks")
			logger.Info("starting run",
				"boids", cfg.NumBoids, "groups", cfg.NumGroups,
				"ticks", ticks, "seed", cfg.Seed, "workers", cfg.Workers)

			start := time.Now()
			lastLog := start
			lastTicks := uint64(0)
			for i := 0; i < ticks; i++ {
				world.Tick()
				if time.Since(lastLog) >= time.Second {
					done := world.Ticks()
					logger.Info("progress",
						"ticks", done,
						"ticksPerSec", done-lastTicks,
						"avgSpeed", fmt.Sprintf("%.2f", averageSpeed(world)))
					lastTicks = done
					lastLog = time.Now()
				}
			}

			elapsed := time.Since(start)
			logger.Info("run complete",
				"ticks", world.Ticks(),
				"elapsed", elapsed.Round(time.Millisecond).String(),
				"ticksPerSec", fmt.Sprintf("%.0f", float64(ticks)/elapsed.Seconds()),
				"avgSpeed", fmt.Sprintf("%.2f", averageSpeed(world)))
			return nil
		},
	}

	cmd.Flags().String("config", "", "JSON config file (defaults apply when empty)")
	cmd.Flags().String("schema", "config.schema.json", "JSON schema file")
	cmd.Flags().Int("ticks", 600, "number of ticks to run")
	cmd.Flags().Int("boids", 0, "override boid count")
	cmd.Flags().Uint64("seed", 0, "override RNG seed")
	cmd.Flags().Int("workers", 0, "override evaluation worker count")
	cmd.Flags().String("target", "", "set a flock target, as \"x,y\"")
	cmd.Flags().Bool("leader", false, "enable leader mode")
	cmd.Flags().Bool("no-walls", false, "disable wall evasion (positions wrap)")
	return cmd
}

// loadRunConfig assembles the effective config from file, defaults and flags.
func loadRunConfig(cmd *cobra.Command) (*flock.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	schemaFile, _ := cmd.Flags().GetString("schema")

	cfg := flock.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = flock.LoadConfig(configFile, schemaFile)
		if err != nil {
			return nil, err
		}
	}
	if n, _ := cmd.Flags().GetInt("boids"); n > 0 {
		cfg.NumBoids = n
	}
	if seed, _ := cmd.Flags().GetUint64("seed"); seed != 0 {
		cfg.Seed = seed
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Workers = workers
	}
	return cfg, nil
}

// applyToggles queues the global toggles requested on the command line.
// They take effect at the first tick boundary, like any interactive event.
func applyToggles(cmd *cobra.Command, world *flock.World) error {
	if raw, _ := cmd.Flags().GetString("target"); raw != "" {
		var x, y float64
		if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%f,%f", &x, &y); err != nil {
			return fmt.Errorf("invalid --target %q: %w", raw, err)
		}
		world.SetTarget(geometry.NewVector(x, y))
	}
	if leader, _ := cmd.Flags().GetBool("leader"); leader {
		world.ToggleLeader()
	}
	if noWalls, _ := cmd.Flags().GetBool("no-walls"); noWalls {
		world.ToggleWallEvasion()
	}
	return nil
}

func averageSpeed(world *flock.World) float64 {
	snap := world.Snapshot(nil)
	if len(snap) == 0 {
		return 0
	}
	sum := 0.0
	for i := range snap {
		sum += snap[i].Vel.Len()
	}
	return sum / float64(len(snap))
}
