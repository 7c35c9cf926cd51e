package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/use-agent/jobscout/api"
	"github.com/use-agent/jobscout/browser"
	"github.com/use-agent/jobscout/config"
	"github.com/use-agent/jobscout/crawler"
	"github.com/use-agent/jobscout/models"
	"github.com/use-agent/jobscout/monitoring"
	"github.com/use-agent/jobscout/report"
	"github.com/use-agent/jobscout/sink"
	"github.com/use-agent/jobscout/webhook"
)

func main() {
	if err := run(); err != nil {
		slog.Error("jobscout failed", "code", models.CodeOf(err), "error", err)
		os.Exit(models.ExitCode(err))
	}
}

func run() error {
	startTime := time.Now()

	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	runID := uuid.NewString()
	log := slog.Default().With("run_id", runID)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := crawler.CheckSelectors(); err != nil {
		return err
	}
	log.Info("jobscout starting",
		"home", cfg.Site.HomeURL,
		"maxLists", cfg.Site.MaxLists,
		"sink", cfg.Sink.Kind,
		"headless", cfg.Browser.Headless,
	)

	// ── 3. Single-instance lock ─────────────────────────────────────
	lock := flock.New(cfg.Lock.Path)
	locked, err := lock.TryLock()
	if err != nil {
		return models.NewCrawlError(models.ErrCodeLocked, "failed to acquire "+cfg.Lock.Path, err)
	}
	if !locked {
		return models.NewCrawlError(models.ErrCodeLocked, "another run holds "+cfg.Lock.Path, nil)
	}
	defer lock.Unlock()

	// ── 4. Credentials ──────────────────────────────────────────────
	if err := cfg.Credentials.ResolvePassword(); err != nil {
		return err
	}

	// ── 5. Cancel on SIGINT/SIGTERM ─────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 6. Metrics ──────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(reg)

	st := crawler.NewState()

	// ── 7. Status server ────────────────────────────────────────────
	if cfg.Status.Addr != "" {
		srv := &http.Server{
			Addr:    cfg.Status.Addr,
			Handler: api.NewRouter(cfg.Status, runID, st.Progress, reg, startTime),
		}
		go func() {
			log.Info("status server listening", "addr", cfg.Status.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("status server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("status server forced shutdown", "error", err)
			}
		}()
	}

	// ── 8. Launch browser ───────────────────────────────────────────
	b, err := browser.Launch(cfg.Browser)
	if err != nil {
		return err
	}
	defer b.Close()

	page, err := b.NewPage(ctx)
	if err != nil {
		return err
	}
	defer page.Close()

	// ── 9. Sink ─────────────────────────────────────────────────────
	out, err := newSink(ctx, cfg.Sink)
	if err != nil {
		return err
	}
	loc, _ := time.LoadLocation(cfg.Sink.TimestampZone) // checked by Validate

	// ── 10. Crawl ───────────────────────────────────────────────────
	c := crawler.New(page, crawler.Options{
		Site:    cfg.Site,
		Timing:  cfg.Timing,
		Metrics: metrics,
		Logger:  log,
		Sink:    out,
		Layout: sink.Layout{
			JobsSheet:       cfg.Sink.JobsSheet,
			CandidatesSheet: cfg.Sink.CandidatesSheet,
			TimestampColumn: cfg.Sink.TimestampColumn,
			Location:        loc,
		},
	})
	runErr := c.Run(ctx, cfg.Credentials, st)

	// ── 11. Report ──────────────────────────────────────────────────
	report.Render(os.Stdout, report.Summarize(st.Jobs, st.Candidates))

	// ── 12. Webhook ─────────────────────────────────────────────────
	if cfg.Webhook.URL != "" {
		ev := webhook.NewEvent(runID, webhook.RunData{
			Jobs:          len(st.Jobs),
			Candidates:    len(st.Candidates),
			ProcessedJobs: st.Processed.Len(),
			DurationSecs:  time.Since(startTime).Seconds(),
		}, runErr, time.Now())

		whCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		if err := webhook.Deliver(whCtx, cfg.Webhook.URL, cfg.Webhook.Secret, ev); err != nil {
			log.Warn("webhook delivery failed", "url", cfg.Webhook.URL, "error", err)
		} else {
			log.Info("webhook delivered", "url", cfg.Webhook.URL, "event", ev.Type)
		}
		cancel()
	}

	// ── 13. Exit status ─────────────────────────────────────────────
	if runErr != nil {
		return runErr
	}
	log.Info("jobscout finished",
		"jobs", len(st.Jobs),
		"candidates", len(st.Candidates),
		"elapsed", time.Since(startTime).Round(time.Second).String(),
	)
	return nil
}

func newSink(ctx context.Context, cfg config.SinkConfig) (sink.Sink, error) {
	switch cfg.Kind {
	case "xlsx":
		return sink.NewXLSX(cfg.XLSXPath), nil
	case "sheets":
		s, err := sink.NewSheets(ctx, cfg.SpreadsheetID, cfg.CredentialsFile)
		if err != nil {
			return nil, models.NewCrawlError(models.ErrCodeSink, "failed to open spreadsheet", err)
		}
		return s, nil
	default:
		return nil, models.NewCrawlError(models.ErrCodeConfigInvalid, fmt.Sprintf("unknown sink %q", cfg.Kind), nil)
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	// Stdout carries the report tables; logs go to stderr.
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
