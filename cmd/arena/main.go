package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lastdescent/actorsim/internal/config"
	"github.com/lastdescent/actorsim/internal/data"
	"github.com/lastdescent/actorsim/internal/debugview"
	"github.com/lastdescent/actorsim/internal/input"
	"github.com/lastdescent/actorsim/internal/scripting"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(scenario string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              actorsim arena               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mscenario:\033[0m %s\n\n", scenario)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main arena logic ──────────────────────────────────────────────

func run() (err error) {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Data.Scenario)

	// 3. Load definitions
	printSection("data")
	catalog, err := data.LoadCatalog(cfg.Data.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	profiles, abilities, actors, scenarios := catalog.Counts()
	printStat("attribute profiles", profiles)
	printStat("abilities", abilities)
	printStat("actors", actors)
	printStat("scenarios", scenarios)

	scenario, err := catalog.Scenario(cfg.Data.Scenario)
	if err != nil {
		return fmt.Errorf("scenario (have %s): %w", strings.Join(catalog.ScenarioNames(), ", "), err)
	}

	// 4. Lua behaviors
	scripts, err := scripting.NewEngine(cfg.AI.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer scripts.Close()
	printStat("ai scripts", len(scripts.Names()))
	fmt.Println()

	// 5. Player command source
	player, closeSource, err := playerSource(cfg.Replay, scenario, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeSource()) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 6. Optional debug viewer
	var hub *debugview.Hub
	if cfg.Debug.Enabled {
		hub = debugview.NewHub(log.Named("debugview"), cfg.Debug.Buffer)
		shutdown, err := serveDebug(ctx, cfg.Debug.BindAddress, hub, log)
		if err != nil {
			return fmt.Errorf("debug viewer: %w", err)
		}
		defer shutdown()
	}

	// 7. Build the arena
	a, err := newArena(cfg, catalog, scripts, scenario, player, hub, log)
	if err != nil {
		return err
	}
	defer a.world.Shutdown()

	printSection("ready")
	printReady(fmt.Sprintf("%d actors spawned", a.world.Len()))
	printReady(fmt.Sprintf("fixed step %s, frame %s", cfg.Simulation.FixedStep, cfg.Simulation.TickRate))
	if hub != nil {
		printReady(fmt.Sprintf("debug viewer ws://%s/ws", cfg.Debug.BindAddress))
	}
	fmt.Println()

	// 8. Simulation loop
	steps, reason := a.loop(ctx)
	log.Info("simulation stopped",
		zap.Uint64("steps", steps),
		zap.String("reason", reason),
		zap.Float64("sim_time", a.clock.Now()),
		zap.Int("actors_left", a.world.Len()))
	a.report()
	return nil
}

// playerSource returns the command source of the scenario's player and a
// close func that flushes any recording.
func playerSource(cfg config.ReplayConfig, sc *data.Scenario, log *zap.Logger) (input.Producer, func() error, error) {
	noop := func() error { return nil }
	name := playerName(sc)
	switch {
	case cfg.PlayPath != "":
		rp, err := input.LoadReplay(cfg.PlayPath)
		if err != nil {
			return nil, noop, fmt.Errorf("load replay: %w", err)
		}
		if rp.Actor != name {
			log.Warn("replay was recorded for another actor",
				zap.String("recorded", rp.Actor), zap.String("player", name))
		}
		log.Info("replaying", zap.String("id", rp.ID.String()), zap.Int("frames", rp.Len()))
		return rp, noop, nil
	case cfg.RecordPath != "":
		rec, err := input.NewRecorder(cfg.RecordPath, name, input.Null{})
		if err != nil {
			return nil, noop, fmt.Errorf("start recording: %w", err)
		}
		log.Info("recording player commands", zap.String("id", rec.ID().String()), zap.String("path", cfg.RecordPath))
		return rec, func() error {
			return multierr.Append(rec.Err(), rec.Close())
		}, nil
	}
	return input.Null{}, noop, nil
}

func playerName(sc *data.Scenario) string {
	for _, s := range sc.Spawns {
		if s.Control == data.ControlPlayer && s.Actor != nil {
			return s.Actor.Name
		}
	}
	return ""
}

func serveDebug(ctx context.Context, addr string, hub *debugview.Hub, log *zap.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	hubCtx, cancel := context.WithCancel(ctx)
	go hub.Run(hubCtx)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("debug viewer stopped", zap.Error(err))
		}
	}()
	return func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
