package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/shiftboard/internal/api"
	"github.com/zulandar/shiftboard/internal/auth"
	"github.com/zulandar/shiftboard/internal/db"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the shiftboard API server",
		Long: `Starts the REST API for admins, planners and team leaders. When
digest.schedule is set, the daily digest is posted on that schedule too.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to shiftboard config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	authn, err := auth.New(gormDB, cfg.Auth.Secret)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	if cfg.Digest.Schedule != "" {
		go func() {
			if err := runDigestSchedule(ctx, cfg, gormDB); err != nil {
				log.Printf("serve: digest scheduler: %v", err)
			}
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Digest scheduled: %s (UTC)\n", cfg.Digest.Schedule)
	}

	return api.Start(ctx, api.StartOpts{
		DB:          gormDB,
		Auth:        authn,
		Port:        port,
		CORSOrigins: cfg.Server.CORSOrigins,
		Out:         cmd.OutOrStdout(),
	})
}
