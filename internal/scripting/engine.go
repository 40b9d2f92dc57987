package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for presentation hooks.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under scriptsDir/readout.
// A missing directory yields an engine with no hooks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if scriptsDir == "" {
		return e, nil
	}
	if err := e.loadDir(filepath.Join(scriptsDir, "readout")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load readout scripts: %w", err)
	}
	return e, nil
}

// LoadString runs a chunk of Lua source, for tests and ad-hoc hooks.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// ReadoutContext is what the size readout hooks see.
type ReadoutContext struct {
	Size     float64 // aggregate size
	Value    float64 // size × multiplier + starting value
	Attached int
	Evicted  int
}

// HasHook reports whether a global Lua function name is defined.
func (e *Engine) HasHook(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// SizeReadout calls size_readout(ctx) if a script defines it. ok is false
// when there is no hook or it failed, and the caller formats the text itself.
func (e *Engine) SizeReadout(ctx ReadoutContext) (text string, ok bool) {
	fn, isFn := e.vm.GetGlobal("size_readout").(*lua.LFunction)
	if !isFn {
		return "", false
	}

	t := e.vm.NewTable()
	t.RawSetString("size", lua.LNumber(ctx.Size))
	t.RawSetString("value", lua.LNumber(ctx.Value))
	t.RawSetString("attached", lua.LNumber(ctx.Attached))
	t.RawSetString("evicted", lua.LNumber(ctx.Evicted))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua size_readout error", zap.Error(err))
		return "", false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	s, isStr := result.(lua.LString)
	if !isStr {
		e.log.Error("lua size_readout returned non-string", zap.String("type", result.Type().String()))
		return "", false
	}
	return string(s), true
}

// DisplayValue calls display_value(size) if defined, returning fallback otherwise.
func (e *Engine) DisplayValue(size, fallback float64) float64 {
	fn, isFn := e.vm.GetGlobal("display_value").(*lua.LFunction)
	if !isFn {
		return fallback
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(size)); err != nil {
		e.log.Error("lua display_value error", zap.Error(err))
		return fallback
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, isNum := result.(lua.LNumber)
	if !isNum {
		return fallback
	}
	return float64(n)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
