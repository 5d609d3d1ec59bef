package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrUnknownScript is returned for behaviors that were never loaded.
var ErrUnknownScript = errors.New("unknown behavior script")

const decideMovement = "decide_movement"

// Engine wraps a single gopher-lua VM for AI movement behaviors.
// Single-goroutine access only (simulation loop).
//
// Every script runs in its own environment that falls back to the globals,
// so two scripts may both define decide_movement.
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	scripts map[string]*lua.LFunction
}

// NewEngine creates a Lua engine and loads every .lua file in scriptsDir.
// A missing directory yields an engine with no scripts.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, scripts: make(map[string]*lua.LFunction)}
	if scriptsDir == "" {
		return e, nil
	}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load ai scripts: %w", err)
	}
	return e, nil
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
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := e.LoadString(entry.Name(), string(src)); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString compiles a behavior script under name. The script must define
// decide_movement(ctx).
func (e *Engine) LoadString(name, src string) error {
	fn, err := e.vm.Load(strings.NewReader(src), name)
	if err != nil {
		return err
	}
	env := e.vm.NewTable()
	mt := e.vm.NewTable()
	mt.RawSetString("__index", e.vm.G.Global)
	e.vm.SetMetatable(env, mt)
	fn.Env = env

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		return err
	}
	decide, ok := env.RawGetString(decideMovement).(*lua.LFunction)
	if !ok {
		return fmt.Errorf("%s does not define %s", name, decideMovement)
	}
	e.scripts[name] = decide
	return nil
}

// Has reports whether a script was loaded under name.
func (e *Engine) Has(name string) bool {
	_, ok := e.scripts[name]
	return ok
}

// Names lists loaded scripts in sorted order.
func (e *Engine) Names() []string {
	out := make([]string, 0, len(e.scripts))
	for n := range e.scripts {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MovementContext holds pre-packed data for one movement decision.
type MovementContext struct {
	Distance   float64
	DirX, DirY float64
	HasAbility bool
	AbilityID  string
	Range      float64
	Cooldown   float64
	Shape      string
}

// DecideMovement calls the script's decide_movement(ctx) and returns the
// move vector it produced. The script returns either a table {x=, y=} or
// two numbers.
func (e *Engine) DecideMovement(script string, ctx MovementContext) (x, y float64, err error) {
	fn, ok := e.scripts[script]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnknownScript, script)
	}

	t := e.vm.NewTable()
	t.RawSetString("distance", lua.LNumber(ctx.Distance))
	dir := e.vm.NewTable()
	dir.RawSetString("x", lua.LNumber(ctx.DirX))
	dir.RawSetString("y", lua.LNumber(ctx.DirY))
	t.RawSetString("dir", dir)
	if ctx.HasAbility {
		ab := e.vm.NewTable()
		ab.RawSetString("id", lua.LString(ctx.AbilityID))
		ab.RawSetString("range", lua.LNumber(ctx.Range))
		ab.RawSetString("cooldown", lua.LNumber(ctx.Cooldown))
		ab.RawSetString("shape", lua.LString(ctx.Shape))
		t.RawSetString("ability", ab)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    2,
		Protect: true,
	}, t); err != nil {
		return 0, 0, err
	}
	second := e.vm.Get(-1)
	first := e.vm.Get(-2)
	e.vm.Pop(2)

	if rt, ok := first.(*lua.LTable); ok {
		return lNum(rt, "x"), lNum(rt, "y"), nil
	}
	fx, okx := first.(lua.LNumber)
	fy, oky := second.(lua.LNumber)
	if !okx || !oky {
		return 0, 0, fmt.Errorf("%s: %s returned %s, %s", script, decideMovement, first.Type(), second.Type())
	}
	return float64(fx), float64(fy), nil
}

func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

func (e *Engine) Close() {
	e.vm.Close()
}
