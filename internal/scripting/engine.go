package scripting

import (
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/rollstat/rollstat/internal/roll"
)

// Engine loads scenario scripts into sandboxed Lua VMs. A scenario script
// builds a roll expression with the registered "roll" module and returns
// it; the resulting Scenario keeps its VM alive so tag-rule callbacks
// written in Lua stay callable during evaluation.
type Engine struct {
	evaluator *roll.Evaluator
	dice      map[string]roll.Roll
	instLimit int
	logger    *zap.Logger
	div       func(a, b roll.Roll) roll.Roll
}

// NewEngine creates an Engine.
//
// Precondition: evaluator must be non-nil. customDice may be nil; its
// entries appear in the scripts' "dice" table next to the standard
// catalog. instLimit <= 0 uses DefaultInstructionLimit; a nil logger
// disables logging.
func NewEngine(evaluator *roll.Evaluator, customDice map[string]roll.Roll, instLimit int, logger *zap.Logger) *Engine {
	if evaluator == nil {
		panic("scripting: NewEngine called with nil evaluator")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		evaluator: evaluator,
		dice:      customDice,
		instLimit: instLimit,
		logger:    logger,
		div:       roll.DivRound,
	}
}

// UseFloorDivision switches the scripts' "/" operator and roll.div from
// round-to-nearest to floor division. roll.div_floor is always available
// regardless.
func (e *Engine) UseFloorDivision() {
	e.div = roll.DivFloor
}

// Scenario is a loaded script's resulting roll expression together with
// the VM that produced it. Close releases the VM; after Close, a scenario
// whose expression contains Lua tag-rule callbacks must not be evaluated.
type Scenario struct {
	Roll roll.Roll

	engine *Engine
	state  *lua.LState
}

// LoadFile executes the script at path in a fresh sandboxed VM and
// returns its scenario. The script must return a roll value.
//
// Postcondition: Returns a Scenario owning an open VM, or an error on
// load failure, opcode-budget exhaustion, or a missing/mistyped return
// value.
func (e *Engine) LoadFile(path string) (*Scenario, error) {
	start := time.Now()
	L := NewSandboxedState(e.instLimit)
	e.registerModules(L)

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: running %q: %w", path, err)
	}

	scenario, err := e.takeResult(L)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: %q: %w", path, err)
	}

	e.logger.Debug("scenario loaded",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)),
	)
	return scenario, nil
}

// LoadString is LoadFile for an in-memory script, used by tests and the
// CLI's inline expression mode.
func (e *Engine) LoadString(src string) (*Scenario, error) {
	L := NewSandboxedState(e.instLimit)
	e.registerModules(L)

	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: running script: %w", err)
	}

	scenario, err := e.takeResult(L)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: %w", err)
	}
	return scenario, nil
}

// takeResult pops the script's return value and wraps it in a Scenario.
func (e *Engine) takeResult(L *lua.LState) (*Scenario, error) {
	if L.GetTop() == 0 {
		return nil, fmt.Errorf("script must return a roll")
	}
	ud, ok := L.Get(-1).(*lua.LUserData)
	if !ok {
		return nil, fmt.Errorf("script must return a roll, got %s", L.Get(-1).Type())
	}
	r, ok := ud.Value.(roll.Roll)
	if !ok {
		return nil, fmt.Errorf("script must return a roll")
	}
	L.SetTop(0)
	return &Scenario{Roll: r, engine: e, state: L}, nil
}

// Distribution evaluates the scenario's expression. Errors raised by Lua
// tag-rule callbacks surface here as ordinary errors.
func (s *Scenario) Distribution() (roll.Distribution, error) {
	return s.engine.evalDistribution(s.Roll)
}

// Simulate evaluates the scenario and draws one outcome using src.
func (s *Scenario) Simulate(src roll.Source) (roll.Outcome, error) {
	dist, err := s.Distribution()
	if err != nil {
		return roll.Outcome{}, err
	}
	return roll.Sample(dist, src)
}

// Close releases the scenario's VM.
func (s *Scenario) Close() {
	if s.state != nil {
		s.state.Close()
		s.state = nil
	}
}

// callbackError carries a Lua callback failure out of a pure combinator,
// which has no error channel of its own, up to the evaluation entry
// point.
type callbackError struct {
	err error
}

// evalDistribution runs the evaluator and converts callback panics back
// into errors.
func (e *Engine) evalDistribution(r roll.Roll) (dist roll.Distribution, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cb, ok := rec.(callbackError)
			if !ok {
				panic(rec)
			}
			dist, err = nil, cb.err
		}
	}()
	return e.evaluator.Distribution(r)
}
