package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/ombrelle/switchboard/internal/api"
	"github.com/ombrelle/switchboard/internal/janitor"
	"github.com/ombrelle/switchboard/internal/notify"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		noJanitor  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Switchboard API server",
		Long: `Starts the HTTP API plus the background janitor that closes idle
sessions and audits message segmentation on a cron schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, noJanitor)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "switchboard.yaml", "path to Switchboard config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	cmd.Flags().BoolVar(&noJanitor, "no-janitor", false, "disable the background sweep")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, noJanitor bool) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
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
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	if !noJanitor {
		notifier := notify.New(notify.Opts{
			WebhookURL: cfg.Slack.WebhookURL,
			Channel:    cfg.Slack.Channel,
		})
		j, err := janitor.New(janitor.Opts{
			DB:          gormDB,
			Notifier:    notifier,
			IdleTimeout: time.Duration(cfg.Janitor.IdleMinutes) * time.Minute,
		})
		if err != nil {
			return err
		}
		c, err := j.Start(cfg.Janitor.Schedule)
		if err != nil {
			return err
		}
		defer c.Stop()
		fmt.Fprintf(out, "Janitor running on schedule %q\n", cfg.Janitor.Schedule)
	}

	return api.Start(ctx, api.StartOpts{
		DB:   gormDB,
		Port: port,
		Out:  out,
	})
}
