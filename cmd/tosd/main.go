package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/tos-desktop/tos/pkg/config"
	"github.com/tos-desktop/tos/pkg/daemon"
	"github.com/tos-desktop/tos/pkg/sectorcontainer"
)

var (
	socketPath string
	logLevel   string
)

const defaultSocketPath = "/run/tos/control.sock"

func main() {
	rootCmd := &cobra.Command{
		Use:   "tosd",
		Short: "tosd is the TOS spatial desktop session daemon",
		Long: `tosd owns the session arena, the viewport and surface managers,
the tactical/system reset state machines, the sector container lifecycle,
semantic input routing, and the collaboration sync listener. tosctl talks
to it over a control socket.`,
		Run: run,
	}

	rootCmd.Flags().StringVar(&socketPath, "socket", defaultSocketPath, "Path to tosd control socket")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("failed to execute command")
	}
}

func run(cmd *cobra.Command, args []string) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.LoadDaemonConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if logLevel == "info" && cfg.Log.Level != "" {
		if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}

	log.Info().
		Str("socket", socketPath).
		Str("docker_host", cfg.Container.DockerHost).
		Str("sync_listen_addr", cfg.Sync.ListenAddr).
		Msg("starting tosd")

	runtime, err := sectorcontainer.NewDockerAdapter(cfg.Container.DockerHost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to container runtime")
	}

	d := daemon.New(cfg, runtime, daemon.HostHooks{
		RestartCompositor: func() error {
			log.Warn().Msg("compositor restart requested")
			return nil
		},
		LogOut: func() error {
			log.Warn().Msg("log out requested")
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	control := daemon.NewControlServer(socketPath, d)
	serveErrs := make(chan error, 1)

	var wg conc.WaitGroup
	wg.Go(func() { serveErrs <- control.Serve(ctx) })

	syncSrv := daemon.NewSyncServer(cfg.Sync.ListenAddr, cfg.Sync.SharedSecret, d.Sync)
	wg.Go(func() {
		if err := syncSrv.ListenAndServe(ctx); err != nil {
			log.Error().Err(err).Msg("sync listener stopped")
		}
	})

	wg.Go(func() { d.Run(ctx) })

	<-ctx.Done()

	log.Info().Msg("shutting down tosd")

	if err := <-serveErrs; err != nil {
		log.Error().Err(err).Msg("control server stopped with error")
	}

	if rec := wg.WaitAndRecover(); rec != nil {
		log.Error().Interface("recovered", rec).Msg("a supervised tosd goroutine panicked")
	}

	_ = d.Hooks.Close()

	log.Info().Msg("tosd stopped")
}
