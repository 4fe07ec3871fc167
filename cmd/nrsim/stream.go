package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nrsim/internal/admin"
	"nrsim/internal/config"
	"nrsim/internal/logging"
	"nrsim/internal/sim"
)

var (
	streamConfigPath string
	streamSchemaPath string
	streamPrintOnly  bool
	streamTUI        bool
	streamTick       time.Duration
	streamLogFile    string
	streamAdminAddr  string
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Run the simulator in real time",
	Long:  "stream emits one telemetry sample per tick, serves the admin UI for casualty injection and can mirror output to GreptimeDB, a JSONL log or a terminal UI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.RunConfig
		if streamConfigPath != "" {
			loaded, err := config.Load(streamConfigPath, streamSchemaPath)
			if err != nil {
				return err
			}
			cfg = loaded
		} else {
			cfg = config.Default()
		}
		if cfg.RunID == "" {
			cfg.RunID = uuid.New().String()
		}

		tickInterval := streamTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		writer, eventWriter, stateWriter, cleanup, err := newWriters(cfg.RunID, streamPrintOnly, streamTUI, streamLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		log := logging.New()
		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		simulator := sim.New(cfg, writer, eventWriter, stateWriter, tickInterval)

		srv := admin.NewServer(simulator)
		go func() {
			log.Info("admin UI listening", "addr", streamAdminAddr)
			if err := srv.Start(ctx, streamAdminAddr); err != nil && err != http.ErrServerClosed {
				log.Error("admin server failed", "err", err)
			}
		}()

		done := make(chan struct{})
		go func() {
			simulator.Run(ctx)
			close(done)
		}()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigs:
		case <-done:
		}

		cancel()
		log.Info("simulation stopped", "run_id", cfg.RunID)
		return nil
	},
}

func init() {
	streamCmd.Flags().StringVar(&streamConfigPath, "config", "", "Path to simulation configuration YAML")
	streamCmd.Flags().StringVar(&streamSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	streamCmd.Flags().BoolVar(&streamPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	streamCmd.Flags().BoolVar(&streamTUI, "tui", false, "Render telemetry in a terminal UI")
	streamCmd.Flags().DurationVar(&streamTick, "tick", time.Second, "Telemetry tick interval (e.g. 500ms, 2s)")
	streamCmd.Flags().StringVar(&streamLogFile, "log-file", "", "Path to export telemetry/event logs (JSONL)")
	streamCmd.Flags().StringVar(&streamAdminAddr, "admin-addr", ":8080", "Admin UI listen address")
}
