package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/l1jgo/accretion/internal/config"
	"github.com/l1jgo/accretion/internal/data"
	"github.com/l1jgo/accretion/internal/scripting"
	"github.com/l1jgo/accretion/internal/sim"
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

func printBanner(scene string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              roller  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       rolling accretion simulation        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mscene:\033[0m %s\n\n", scene)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value string) {
	dotsLen := 42 - len(label) - len(value)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), value)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Simulation ────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/roller.toml"
	if p := os.Getenv("ROLLER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, notes, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	for _, n := range notes {
		log.Warn("config adjusted", zap.String("note", n))
	}

	printBanner(cfg.Simulation.Scene)

	// 3. Scene and scripts
	printSection("data")
	sf, err := data.LoadScene(cfg.Simulation.Scene)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	printStat("collectibles", fmt.Sprintf("%d", sf.Count()))
	printStat("track entries", fmt.Sprintf("%d", len(sf.Track)))

	lua, err := scripting.NewEngine(cfg.Readout.ScriptDir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	if lua.HasHook("size_readout") {
		printOK("lua size_readout hook loaded")
	}

	// 4. Assemble
	s, err := sim.Build(cfg, sf, lua, log)
	if err != nil {
		return fmt.Errorf("build simulation: %w", err)
	}
	printStat("spawned", fmt.Sprintf("%d", s.Spawned))
	printStat("initial size", fmt.Sprintf("%.2f", s.Engine.GetCurrentSize()))
	fmt.Println()

	// 5. Loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	dt := cfg.Simulation.TickRate
	printSection("running")
	printReady(fmt.Sprintf("tick %s, limit %s, realtime %t", dt, cfg.Simulation.Duration, cfg.Simulation.Realtime))
	fmt.Println()

	var ticker *time.Ticker
	if cfg.Simulation.Realtime {
		ticker = time.NewTicker(dt)
		defer ticker.Stop()
	}

	lastText := ""
loop:
	for {
		if cfg.Simulation.Duration > 0 && s.Runner.Elapsed() >= cfg.Simulation.Duration {
			break
		}
		if ticker != nil {
			select {
			case <-ticker.C:
			case sig := <-shutdownCh:
				log.Info("received shutdown signal", zap.String("signal", sig.String()))
				break loop
			}
		} else {
			select {
			case sig := <-shutdownCh:
				log.Info("received shutdown signal", zap.String("signal", sig.String()))
				break loop
			default:
			}
		}

		s.Step(dt)

		if t := s.Readout.Text(); t != lastText {
			lastText = t
			log.Debug("readout", zap.String("text", t), zap.Duration("at", s.Runner.Elapsed()))
		}
	}

	st := s.Engine.Stats()
	log.Info("simulation stopped",
		zap.Uint64("ticks", s.Runner.Ticks()),
		zap.Duration("elapsed", s.Runner.Elapsed()),
		zap.Float64("size", s.Engine.GetCurrentSize()),
		zap.String("readout", s.Readout.Text()),
		zap.Int("attached", s.Engine.Attached()),
		zap.Int("accepted", st.Accepted),
		zap.Int("rejected", st.Rejected),
		zap.Int("evicted", st.Evicted),
		zap.Int("aborted", st.Aborted),
	)
	return nil
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
