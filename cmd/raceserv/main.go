// File: cmd/raceserv/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// RaceTrack demo server: bounded TCP connection manager with welcome/quit
// broadcasts and a fixed reply to every guess.

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/momentics/hioload-tcp/control"
	"github.com/momentics/hioload-tcp/server"
	"github.com/momentics/hioload-tcp/transport/tcp"
)

func main() {
	var (
		configPath  string
		host        string
		port        int
		capacity    int
		metricsAddr string
	)

	rootCmd := &cobra.Command{
		Use:   "raceserv",
		Short: "Bounded TCP game server for the RaceTrack demo",
		Long: `raceserv runs the event-driven TCP connection manager with the
RaceTrack demo application on top: every new player is welcomed with a
broadcast, every quit is announced, and every guess is answered.

Config file values are overridden by flags that are set explicitly.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("capacity") {
				cfg.Capacity = capacity
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			return run(cfg)
		},
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().StringVar(&host, "host", "0.0.0.0", "listen host")
	rootCmd.Flags().IntVar(&port, "port", 7000, "listen port")
	rootCmd.Flags().IntVar(&capacity, "capacity", 5, "maximum concurrent players")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus endpoint address, e.g. :9090 (disabled if empty)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg fileConfig) error {
	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sub, err := tcp.New(tcp.WithLogger(log))
	if err != nil {
		return fmt.Errorf("substrate: %w", err)
	}
	defer sub.Shutdown()

	metrics := control.NewMetrics(control.MetricsConfig{Namespace: "raceserv"})
	probes := control.NewDebugProbes()
	probes.RegisterProbe("buffer_pool", func() any { return sub.Pool().Stats() })
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/debug/state", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(probes.DumpState())
		})
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error("metrics endpoint failed", "err", err)
			}
		}()
		log.Info("metrics endpoint up", "addr", cfg.MetricsAddr)
	}

	var srv *server.Server
	hooks := server.Hooks{
		OnConnect: func(c *server.Conn, total int) {
			log.Info("new player", "id", c.ID(), "total", total)
			srv.Broadcast([]byte("Welcome player\n"))
		},
		OnDisconnect: func(c *server.Conn, total int) {
			log.Info("player quit", "id", c.ID(), "total", total)
			srv.Broadcast([]byte("Player quit :(\n"))
		},
		OnMessage: func(m *server.Message, respond server.Responder) {
			log.Info("got guess", "id", m.Conn().ID(), "msg", string(m.Bytes()))
			if err := respond(m, []byte("RaceTrack: WRONG")); err != nil {
				log.Warn("respond failed", "err", err)
			}
		},
	}

	srv, err = server.NewServer(sub, &server.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Capacity: cfg.Capacity,
		Logger:   log,
		Metrics:  metrics,
	}, hooks)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
	return srv.Shutdown()
}
