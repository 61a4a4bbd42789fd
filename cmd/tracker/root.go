package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rapidaid/livetracker/internal/client"
	"github.com/rapidaid/livetracker/internal/pkg/config"
	"github.com/rapidaid/livetracker/pkg/logger"
)

type globalFlags struct {
	server   string
	token    string
	logLevel string
	timeout  time.Duration
}

type app struct {
	flags globalFlags
	cfg   *config.TrackerConfig
	log   zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "tracker",
		Short:        "Follow emergencies live from the terminal",
		SilenceUsage: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.init(cmd.Context(), cmd)
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.server, "server", "", "API base URL (env TRACKER_SERVER_URL)")
	pf.StringVar(&a.flags.token, "token", "", "bearer token (env TRACKER_TOKEN)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "trace, debug, info, warn or error (env LOG_LEVEL)")
	pf.DurationVar(&a.flags.timeout, "http-timeout", 0, "per-request timeout (env TRACKER_HTTP_TIMEOUT)")

	root.AddCommand(
		newWatchCmd(a),
		newActiveCmd(a),
		newAcceptCmd(a),
		newLoginCmd(a),
		newReportCmd(a),
	)
	return root
}

func (a *app) init(ctx context.Context, cmd *cobra.Command) error {
	config.LoadDotEnv()
	cfg, err := config.LoadTracker(ctx)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("server") {
		cfg.ServerURL = a.flags.server
	}
	if cmd.Flags().Changed("token") {
		cfg.Token = a.flags.token
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if cmd.Flags().Changed("http-timeout") {
		cfg.HTTPTimeout = a.flags.timeout
	}
	a.cfg = cfg

	a.log = logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr})
	return nil
}

func (a *app) client() (*client.Client, error) {
	return client.New(a.cfg.ServerURL,
		client.WithToken(a.cfg.Token),
		client.WithTimeout(a.cfg.HTTPTimeout),
	)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid emergency id %q", s)
	}
	return id, nil
}
