package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"livecal/internal/clock"
	"livecal/internal/config"
	"livecal/internal/feed"
	"livecal/internal/ics"
	appLog "livecal/internal/log"
	"livecal/internal/metrics"
	"livecal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	level, ok := appLog.ParseLevel(conf.LogLevel)
	if !ok {
		appLog.Warn("unknown log level, using info", "log_level", conf.LogLevel)
	}
	appLog.SetLevel(level)

	appLog.Info("livecal starting",
		"version", "0.1.0",
		"listen", conf.Listen,
		"feed_id", conf.Feed.ID,
		"refresh", conf.RefreshCron,
		"upcoming_only", *conf.UpcomingOnly,
		"once", flags.once,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := feed.NewService(
		ics.NewFetcher(conf.CacheDir, nil),
		clock.NewSystem(),
		metrics.New(reg),
		feed.Options{
			Source:       ics.Source{ID: conf.Feed.ID, URL: conf.Feed.URL},
			UpcomingOnly: *conf.UpcomingOnly,
		},
	)

	if flags.once {
		os.Exit(runOnce(ctx, svc))
	}

	// Warm the snapshot; a failure here is not fatal, the API retries on demand.
	_, _ = svc.Refresh(ctx)

	sched, err := feed.StartScheduler(ctx, svc, conf.RefreshCron)
	if err != nil {
		appLog.Error("failed to start scheduler", err)
		os.Exit(1)
	}
	defer sched.Stop()

	if err := web.NewServer(conf, svc, reg).ListenAndServe(ctx); err != nil {
		appLog.Error("http server failed", err)
		sched.Stop()
		os.Exit(1)
	}
	appLog.Info("livecal exiting")
}

// runOnce refreshes a single time and writes the concerts to stdout.
func runOnce(ctx context.Context, svc *feed.Service) int {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	snap, err := svc.Refresh(ctx)
	if err != nil {
		return 1
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap.Concerts); err != nil {
		appLog.Error("failed to write concerts", err)
		return 1
	}
	return 0
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/livecal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Refresh the feed once, print concerts as JSON and exit")

	flag.Parse()

	return cfg
}
