package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rsbar/rsbar/pkg/api"
	"github.com/rsbar/rsbar/pkg/config"
	"github.com/rsbar/rsbar/pkg/contexts"
	"github.com/rsbar/rsbar/pkg/log"
	"github.com/rsbar/rsbar/pkg/metrics"
	"github.com/rsbar/rsbar/pkg/scheduler"
	"github.com/rsbar/rsbar/pkg/server"
	"github.com/rsbar/rsbar/pkg/wire"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rsbard",
	Short: "rsbard - Status bar daemon",
	Long: `rsbard aggregates system state (audio volume, screen brightness,
battery, workspace, clock) and serves it to status bar clients over two
local Unix sockets: an RPC socket for calls and an event socket for
topic subscriptions.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"rsbard version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: search rsbar.yaml, ~/.config/rsbar, /etc/rsbar)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	// Initialize logging before command execution
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(subscribeCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	if err := log.Setup(logLevel, logJSON, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	// Flags win over the config file; the file wins over built-in defaults
	logLevel, _ := cmd.Flags().GetString("log-level")
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		logLevel = cfg.LogLevel
	}
	logJSON, _ := cmd.Flags().GetBool("log-json")
	if !cmd.Flags().Changed("log-json") {
		logJSON = cfg.LogJSON
	}
	if err := log.Setup(logLevel, logJSON, nil); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the status bar daemon",
	Long: `Run the rsbar daemon in the foreground.

The daemon registers all contexts, binds the call and event sockets and
polls for state changes until terminated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		hyprCfg, err := contexts.HyprlandConfigFromEnv()
		if err != nil {
			return err
		}

		runner := contexts.NewRunner()
		workspace := contexts.NewWorkspaceContext(hyprCfg)

		srv := server.New()
		srv.Register(contexts.VolumeName, contexts.NewVolumeContext(runner, cfg.MixerCommand))
		srv.Register(contexts.BrightnessName, contexts.NewBrightnessContext(runner, cfg.BacklightCommand))
		srv.Register(contexts.WorkspaceName, workspace)
		srv.Register(contexts.TimeName, contexts.NewTimeContext())
		srv.Register(contexts.BatteryName, contexts.NewBatteryContext(cfg.PowerSupplyDir))

		if err := srv.Init(); err != nil {
			return fmt.Errorf("initialize contexts: %w", err)
		}

		listeners := api.NewListeners(srv, cfg.CallSocket, cfg.EventSocket)
		if err := listeners.Start(); err != nil {
			return err
		}

		sched := scheduler.New(srv, cfg.PollInterval)
		sched.Start()

		metrics.SetVersion(Version)
		metrics.RegisterComponent("scheduler", true, "")

		if cfg.MetricsAddr != "" {
			go func() {
				if err := metrics.StartServer(cfg.MetricsAddr); err != nil {
					log.Logger.Error().Err(err).Msg("Metrics server failed")
				}
			}()
			log.Logger.Info().Str("addr", cfg.MetricsAddr).Msg("Metrics server started")
		}

		log.Logger.Info().Msg("rsbar daemon started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		log.Logger.Info().Str("signal", sig.String()).Msg("Shutting down")

		sched.Stop()
		listeners.Stop()
		workspace.Close()

		return nil
	},
}

var callCmd = &cobra.Command{
	Use:   "call <context>/<procedure>/<arg>",
	Short: "Send one call request to a running daemon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		conn, err := net.Dial("unix", cfg.CallSocket)
		if err != nil {
			return fmt.Errorf("connect to daemon: %w", err)
		}
		defer conn.Close()

		return wire.NewWriter(conn).WriteMessage(args[0])
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <context>/<parameter> [...]",
	Short: "Subscribe to topics and print events as they arrive",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		conn, err := net.Dial("unix", cfg.EventSocket)
		if err != nil {
			return fmt.Errorf("connect to daemon: %w", err)
		}
		defer conn.Close()

		writer := wire.NewWriter(conn)
		for _, topic := range args {
			if err := writer.WriteMessage(topic); err != nil {
				return err
			}
		}

		reader := wire.NewReader(conn)
		for {
			event, err := reader.ReadMessage()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			fmt.Println(event)
		}
	},
}
