package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/retroterm/app"
	"github.com/pthm-cable/retroterm/arcade"
	"github.com/pthm-cable/retroterm/config"
	"github.com/pthm-cable/retroterm/neural"
	"github.com/pthm-cable/retroterm/storage"
	"github.com/pthm-cable/retroterm/telemetry"
	"github.com/pthm-cable/retroterm/trainer"
	"github.com/pthm-cable/retroterm/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Train without a display")
	term := flag.Bool("term", false, "Draw in the terminal instead of a window")
	mode := flag.String("mode", "demo", "Initial display: demo or pong")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	storeKind := flag.String("store", "", "Champion store: memory, file or sqlite (empty = use config)")
	storePath := flag.String("store-path", "", "Champion store path (empty = use config)")
	maxGenerations := flag.Int("max-generations", -1, "Stop after N generations (0 = unlimited, -1 = use config)")
	seed := flag.Int64("seed", 0, "Trainer RNG seed (0 = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}
	if *storeKind != "" {
		cfg.Storage.Backend = *storeKind
	}
	if *storePath != "" {
		cfg.Storage.Path = *storePath
	}
	if *maxGenerations >= 0 {
		cfg.Evolution.MaxGenerations = *maxGenerations
	}
	if *seed != 0 {
		cfg.Evolution.Seed = *seed
	}

	startMode, err := app.ParseMode(*mode)
	if err != nil {
		slog.Error("bad -mode", "error", err)
		os.Exit(2)
	}

	// Headless runs log JSON to stdout. The terminal view owns stdout, so
	// it logs to a file in the output directory or nowhere.
	var logOut io.Writer = os.Stderr
	switch {
	case *headless:
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	case *term:
		logOut = io.Discard
		if cfg.Telemetry.OutputDir != "" {
			if err := os.MkdirAll(cfg.Telemetry.OutputDir, 0o755); err == nil {
				if f, err := os.Create(filepath.Join(cfg.Telemetry.OutputDir, "retroterm.log")); err == nil {
					defer f.Close()
					logOut = f
				}
			}
		}
		fallthrough
	default:
		slog.SetDefault(slog.New(slog.NewTextHandler(logOut, nil)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *headless, *term, startMode); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, headless, term bool, mode app.Mode) error {
	store, err := storage.NewStore(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	defer storage.CloseIfSupported(store)

	om, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	tr, err := newTrainer(ctx, cfg, store)
	if err != nil {
		return err
	}
	wireTelemetry(cfg, tr, store, om)

	slog.Info("starting trainer",
		"population", cfg.Evolution.Population,
		"topology", cfg.Derived.Topology.Sizes(),
		"seed", cfg.Evolution.Seed,
		"store", cfg.Storage.Backend,
		"max_generations", cfg.Evolution.MaxGenerations,
	)

	if headless {
		return tr.Run(ctx)
	}

	tr.Start(ctx)
	a := app.New(cfg, tr)
	a.SetMode(mode)

	if term {
		scr, err := tcell.NewScreen()
		if err != nil {
			tr.Stop()
			return errors.Join(err, tr.Wait())
		}
		if err := scr.Init(); err != nil {
			tr.Stop()
			return errors.Join(err, tr.Wait())
		}
		err = app.NewTerminalView(a, scr, cfg.Screen.TargetFPS).Run(ctx)
		scr.Fini()
		tr.Stop()
		return errors.Join(err, tr.Wait())
	}

	ui.NewWindow(a, cfg, tr).Run(ctx)
	tr.Stop()
	return tr.Wait()
}

// newTrainer builds the Pong trainer and resumes from the stored champion
// when its shape still fits.
func newTrainer(ctx context.Context, cfg *config.Config, store storage.Store) (*trainer.Trainer, error) {
	topo := cfg.Derived.Topology
	factory := arcade.PongFactory{Config: cfg.Pong}
	arcade.MustValidateEncoder(factory, topo)

	tr, err := trainer.New(factory, trainer.OptionsFromConfig(cfg),
		trainer.BrainFactory(topo, cfg.Brain.MutationSigma, cfg.Brain.NudgeSigma))
	if err != nil {
		return nil, err
	}

	rec, ok, err := store.LoadBrain(ctx, cfg.Storage.Name)
	if err != nil {
		slog.Warn("failed to read stored champion", "name", cfg.Storage.Name, "error", err)
		return tr, nil
	}
	if !ok {
		return tr, nil
	}

	brain, err := neural.LoadBrain(rec.Data)
	if err != nil {
		slog.Warn("stored champion unreadable, starting fresh", "name", rec.Name, "error", err)
		return tr, nil
	}
	brain.SetNoise(cfg.Brain.MutationSigma, cfg.Brain.NudgeSigma)
	if err := tr.Seed(brain, rec.Rating, rec.Generation); err != nil {
		slog.Warn("stored champion does not fit, starting fresh", "name", rec.Name, "error", err)
		return tr, nil
	}
	slog.Info("resumed champion", "name", rec.Name, "rating", rec.Rating, "generation", rec.Generation)
	return tr, nil
}

// wireTelemetry persists champions and writes per-generation output. Both
// callbacks run on the trainer goroutine.
func wireTelemetry(cfg *config.Config, tr *trainer.Trainer, store storage.Store, om *telemetry.OutputManager) {
	hof := telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize)
	if om != nil {
		path := filepath.Join(om.Dir(), "hall_of_fame.json")
		loaded, err := telemetry.LoadHallOfFameFromFile(path, cfg.Telemetry.HallOfFameSize)
		switch {
		case err == nil:
			hof = loaded
		case !errors.Is(err, fs.ErrNotExist):
			slog.Warn("ignoring hall of fame", "path", path, "error", err)
		}
	}

	bookmarks := telemetry.NewBookmarkDetector(cfg.Telemetry.PerfWindow)
	bookmarks.PlateauGenerations = cfg.Telemetry.PlateauGenerations

	tr.OnChampion(func(ctx context.Context, c trainer.Champion) error {
		slog.Info("new champion", "generation", c.Generation, "rating", c.Rating)

		hof.Consider(telemetry.HallEntry{
			Generation: c.Generation,
			Rating:     c.Rating,
			Game:       "pong",
			Stats:      c.Stats,
			SavedAt:    c.Found,
			Brain:      c.Data,
		})
		if err := om.WriteHallOfFame(hof); err != nil {
			slog.Warn("failed to write hall of fame", "error", err)
		}

		// Finish the save even if shutdown has started.
		return store.SaveBrain(context.WithoutCancel(ctx), storage.Record{
			Name:       cfg.Storage.Name,
			Generation: c.Generation,
			Rating:     c.Rating,
			SavedAt:    c.Found,
			Data:       c.Data,
		})
	})

	tr.OnReport(func(r trainer.Report) {
		if err := om.WriteGeneration(r.GenerationStats); err != nil {
			slog.Warn("failed to write generation", "error", err)
		}
		perf := tr.Perf().Stats()
		if err := om.WritePerf(perf, r.Generation); err != nil {
			slog.Warn("failed to write perf", "error", err)
		}

		for _, bm := range bookmarks.Check(r.GenerationStats) {
			bm.LogBookmark()
			if err := om.WriteBookmark(bm); err != nil {
				slog.Warn("failed to write bookmark", "error", err)
			}
		}

		if every := cfg.Telemetry.LogEvery; every > 0 && r.Generation%every == 0 {
			slog.Info("generation", "report", r, "perf", perf)
		}
	})
}
