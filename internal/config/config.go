package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Accretion  AccretionConfig  `toml:"accretion"`
	Controller ControllerConfig `toml:"controller"`
	Camera     CameraConfig     `toml:"camera"`
	Readout    ReadoutConfig    `toml:"readout"`
	Logging    LoggingConfig    `toml:"logging"`
	Debug      DebugConfig      `toml:"debug"`
}

type SimulationConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	Duration time.Duration `toml:"duration"` // 0 = run until interrupted
	Scene    string        `toml:"scene"`
	Realtime bool          `toml:"realtime"` // pace ticks against the wall clock
}

// AccretionConfig tunes the collection engine.
type AccretionConfig struct {
	InitialSize          float64       `toml:"initial_size"`
	GrowthRate           float64       `toml:"growth_rate"`            // size added per collection
	SizeThresholdPercent float64       `toml:"size_threshold_percent"` // 1-100, of current size
	Offset               float64       `toml:"offset"`                 // clearance above the surface
	MaxAttachedObjects   int           `toml:"max_attached_objects"`   // 1-100
	DetachDelay          time.Duration `toml:"detach_delay"`           // detach → grow
	GrowDelay            time.Duration `toml:"grow_delay"`             // grow → reattach
	Reorganize           bool          `toml:"reorganize"`             // re-place attachments after every ledger change
	RetryWhileTouching   bool          `toml:"retry_while_touching"`
}

type ControllerConfig struct {
	TorqueForce           float64 `toml:"torque_force"`
	ForwardForce          float64 `toml:"forward_force"`
	RollSensitivity       float64 `toml:"roll_sensitivity"` // max angular speed, rad/s
	MovementRotationAngle float64 `toml:"movement_rotation_angle"`
	RollingRotationAngle  float64 `toml:"rolling_rotation_angle"`
	EnableMovementForce   bool    `toml:"enable_movement_force"`
	EnableRolling         bool    `toml:"enable_rolling"`
	Mass                  float64 `toml:"mass"`
	LinearDamping         float64 `toml:"linear_damping"`
}

type CameraConfig struct {
	PivotSpeed float64    `toml:"pivot_speed"` // degrees per second
	Offset     [3]float64 `toml:"offset"`
}

type ReadoutConfig struct {
	SizeMultiplier       float64 `toml:"size_multiplier"`
	StartingDisplayValue float64 `toml:"starting_display_value"`
	ScriptDir            string  `toml:"script_dir"` // empty = no Lua hook
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	ManualGrow bool `toml:"manual_grow"` // honour "grow" input commands
}

// Load reads path over the defaults and clamps out-of-range values. The
// returned notes describe every adjustment so the caller can log them.
func Load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Clamp(), nil
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate: 20 * time.Millisecond,
			Duration: 30 * time.Second,
			Scene:    "data/scene.yaml",
			Realtime: false,
		},
		Accretion: AccretionConfig{
			InitialSize:          1.0,
			GrowthRate:           0.05,
			SizeThresholdPercent: 40,
			Offset:               0.1,
			MaxAttachedObjects:   60,
			DetachDelay:          100 * time.Millisecond,
			GrowDelay:            100 * time.Millisecond,
			Reorganize:           true,
			RetryWhileTouching:   false,
		},
		Controller: ControllerConfig{
			TorqueForce:           10,
			ForwardForce:          10,
			RollSensitivity:       0.5,
			MovementRotationAngle: 90,
			RollingRotationAngle:  90,
			EnableMovementForce:   true,
			EnableRolling:         true,
			Mass:                  1,
			LinearDamping:         0.5,
		},
		Camera: CameraConfig{
			PivotSpeed: 200,
			Offset:     [3]float64{0, 3, -6},
		},
		Readout: ReadoutConfig{
			SizeMultiplier:       100,
			StartingDisplayValue: 0,
			ScriptDir:            "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Clamp forces every tunable into its supported range and reports what changed.
func (c *Config) Clamp() []string {
	var notes []string
	note := func(format string, args ...any) {
		notes = append(notes, fmt.Sprintf(format, args...))
	}

	a := &c.Accretion
	if a.SizeThresholdPercent < 1 || a.SizeThresholdPercent > 100 {
		v := clampF(a.SizeThresholdPercent, 1, 100)
		note("accretion.size_threshold_percent %.2f clamped to %.2f", a.SizeThresholdPercent, v)
		a.SizeThresholdPercent = v
	}
	if a.MaxAttachedObjects < 1 || a.MaxAttachedObjects > 100 {
		v := a.MaxAttachedObjects
		if v < 1 {
			v = 1
		} else {
			v = 100
		}
		note("accretion.max_attached_objects %d clamped to %d", a.MaxAttachedObjects, v)
		a.MaxAttachedObjects = v
	}
	if a.GrowthRate < 0 {
		note("accretion.growth_rate %.3f clamped to 0", a.GrowthRate)
		a.GrowthRate = 0
	}
	if a.InitialSize <= 0 {
		note("accretion.initial_size %.3f reset to 1", a.InitialSize)
		a.InitialSize = 1
	}
	if a.Offset < 0 {
		note("accretion.offset %.3f clamped to 0", a.Offset)
		a.Offset = 0
	}
	if a.DetachDelay < 0 {
		note("accretion.detach_delay %s clamped to 0", a.DetachDelay)
		a.DetachDelay = 0
	}
	if a.GrowDelay < 0 {
		note("accretion.grow_delay %s clamped to 0", a.GrowDelay)
		a.GrowDelay = 0
	}
	if c.Simulation.TickRate <= 0 {
		note("simulation.tick_rate %s reset to 20ms", c.Simulation.TickRate)
		c.Simulation.TickRate = 20 * time.Millisecond
	}
	if c.Controller.Mass <= 0 {
		note("controller.mass %.3f reset to 1", c.Controller.Mass)
		c.Controller.Mass = 1
	}
	if c.Controller.RollSensitivity < 0 {
		note("controller.roll_sensitivity %.3f clamped to 0", c.Controller.RollSensitivity)
		c.Controller.RollSensitivity = 0
	}
	return notes
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
