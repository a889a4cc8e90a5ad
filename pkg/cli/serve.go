package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/common/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scrubbed/scrubbed/pkg/config"
	"github.com/scrubbed/scrubbed/pkg/forward"
	"github.com/scrubbed/scrubbed/pkg/jobs"
	"github.com/scrubbed/scrubbed/pkg/metrics"
	"github.com/scrubbed/scrubbed/pkg/server"
	"github.com/scrubbed/scrubbed/pkg/utils"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook relay",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	closer, err := utils.ConfigureLogging(log.StandardLogger(), cfg.Logging())
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer closer.Close()

	log.WithFields(log.Fields{"version": version.Info(), "build": version.BuildContext(), "level": log.GetLevel().String()}).Info("Starting scrubbed")
	log.WithFields(log.Fields{
		"alertLabels":       cfg.AlertLabels,
		"alertAnnotations":  cfg.AlertAnnotations,
		"groupLabels":       cfg.GroupLabels,
		"commonLabels":      cfg.CommonLabels,
		"commonAnnotations": cfg.CommonAnnotations,
	}).Info("Whitelists loaded")

	if cfg.MetricsEnable {
		metrics.MustRegister()
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.StatsEnabled() {
		c, err := jobs.Schedule(cfg.StatsSchedule, jobs.NewSummaryJob())
		if err != nil {
			return fmt.Errorf("invalid SCRUBBED_STATS_SCHEDULE %q: %w", cfg.StatsSchedule, err)
		}
		c.Start()
		defer c.Stop()
		log.WithFields(log.Fields{"schedule": cfg.StatsSchedule}).Info("SummaryJob - Scheduled")
	}

	s := server.New(cfg, forward.NewForwarder(cfg.DestinationURL, cfg.DestinationTimeout))
	if err := s.Run(ctx); err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Error("Server failed")
		return err
	}
	return nil
}
