package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"calwidget/internal/capture"
	"calwidget/internal/config"
	"calwidget/internal/ics"
	appLog "calwidget/internal/log"
	"calwidget/internal/model"
	"calwidget/internal/session"
	"calwidget/internal/store"
	"calwidget/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	snapshot   bool
	debug      bool
}

func main() {
	appLog.Info("calwidget starting", "version", "0.1.0")

	// Optional .env so credentials and the listen address can come from the
	// environment. A missing file is not an error.
	_ = godotenv.Load()

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	applyEnvOverrides(conf)

	// CLI -listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"view", conf.View,
		"seed_count", len(conf.Seeds),
		"snapshot_cron", conf.Snapshot.Cron,
		"mirror_path", conf.MirrorPath,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Seed the initial event collection from the configured ICS sources.
	seeded := loadSeeds(ctx, conf)

	// The store's hooks mirror every committed mutation: structured logs
	// always, plus an ICS snapshot file when mirror_path is configured.
	var st *store.Store
	hooks := store.Hooks{
		OnCreate: func(ev model.Event) {
			appLog.Info("event created", "id", ev.ID, "title", ev.Title)
			mirror(conf, st)
		},
		OnUpdate: func(ev model.Event) {
			appLog.Info("event updated", "id", ev.ID, "title", ev.Title)
			mirror(conf, st)
		},
		OnDelete: func(id string) {
			appLog.Info("event deleted", "id", id)
			mirror(conf, st)
		},
	}
	st = store.New(seeded,
		store.WithHooks(hooks),
		store.WithDefaultColor(conf.DefaultColor),
	)

	// The session clock runs in the configured timezone so the starting
	// reference date agrees with the zone handlers parse dates in.
	loc := conf.Location()
	sess := session.New(time.Time{}, model.ViewMode(conf.View),
		session.WithNow(func() time.Time { return time.Now().In(loc) }))

	srv := &http.Server{
		Addr:    conf.Listen,
		Handler: web.NewServer(conf, st, sess).Handler(),
	}

	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("HTTP server failed", err)
			cancel()
		}
	}()

	// Periodic preview capture on the configured cron schedule.
	var scheduler *cron.Cron
	if conf.Snapshot.Cron != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(conf.Snapshot.Cron, func() {
			runSnapshot(ctx, conf)
		})
		if err != nil {
			appLog.Error("invalid snapshot cron expression", err, "cron", conf.Snapshot.Cron)
		} else {
			scheduler.Start()
			appLog.Info("snapshot scheduler started", "cron", conf.Snapshot.Cron)
		}
	}

	if flags.snapshot {
		// One-shot capture after the server has had a moment to come up.
		go func() {
			time.Sleep(500 * time.Millisecond)
			runSnapshot(ctx, conf)
		}()
	}

	<-ctx.Done()

	if scheduler != nil {
		scheduler.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP server shutdown failed", err)
	}
	appLog.Info("calwidget exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./calwidget.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.snapshot, "snapshot", false, "Capture one preview snapshot after startup")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

// applyEnvOverrides lets deployment environments override file-based
// settings without editing the config.
func applyEnvOverrides(conf *config.Config) {
	if v := os.Getenv("CALWIDGET_LISTEN"); v != "" {
		conf.Listen = v
	}
	user := os.Getenv("CALWIDGET_BASIC_AUTH_USER")
	pass := os.Getenv("CALWIDGET_BASIC_AUTH_PASS")
	if user != "" && pass != "" {
		conf.BasicAuth = &config.BasicAuthConfig{Username: user, Password: pass}
	}
}

// loadSeeds builds the initial event collection from the configured ICS
// sources. Individual seed failures are logged and skipped; an empty
// collection is a perfectly fine starting state.
func loadSeeds(ctx context.Context, conf *config.Config) []model.Event {
	events := make([]model.Event, 0)
	fetcher := ics.NewFetcher("./cache/seed-cache")

	for _, seed := range conf.Seeds {
		src := ics.Source{ID: seed.ID, URL: seed.URL}
		if src.ID == "" {
			src.ID = seed.URL + seed.Path
		}

		var body []byte
		switch {
		case seed.URL != "":
			res, err := fetcher.FetchOne(ctx, src)
			if err != nil {
				appLog.Error("seed fetch failed", err, "id", src.ID)
				continue
			}
			body = res.Body
		case seed.Path != "":
			data, err := os.ReadFile(seed.Path)
			if err != nil {
				appLog.Error("seed file read failed", err, "id", src.ID, "path", seed.Path)
				continue
			}
			body = data
		default:
			continue
		}

		parsed, err := ics.ParseEvents(src, body)
		if err != nil {
			appLog.Error("seed parse failed", err, "id", src.ID)
			continue
		}
		events = append(events, parsed...)
	}

	appLog.Info("seed load completed", "event_count", len(events))
	return events
}

// mirror writes an ICS snapshot of the whole collection to the configured
// mirror path, if any.
func mirror(conf *config.Config, st *store.Store) {
	if conf.MirrorPath == "" || st == nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(conf.MirrorPath), 0o700); err != nil {
		appLog.Error("mirror dir create failed", err, "path", conf.MirrorPath)
		return
	}
	if err := os.WriteFile(conf.MirrorPath, ics.Export(st.List()), 0o600); err != nil {
		appLog.Error("mirror write failed", err, "path", conf.MirrorPath)
	}
}

// runSnapshot captures the widget page into the configured preview path.
func runSnapshot(ctx context.Context, conf *config.Config) {
	if err := os.MkdirAll(filepath.Dir(conf.Snapshot.Path), 0o700); err != nil {
		appLog.Error("snapshot dir create failed", err, "path", conf.Snapshot.Path)
		return
	}
	err := capture.SnapshotPNG(ctx, capture.Options{
		URL:        "http://" + conf.Listen + "/",
		OutputPath: conf.Snapshot.Path,
		Width:      conf.Snapshot.Width,
		Height:     conf.Snapshot.Height,
	})
	if err != nil {
		appLog.Error("snapshot capture failed", err)
		return
	}
	appLog.Info("snapshot captured", "path", conf.Snapshot.Path)
}
