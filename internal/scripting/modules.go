package scripting

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/rollstat/rollstat/internal/dice"
	"github.com/rollstat/rollstat/internal/roll"
)

// rollTypeName is the metatable name for roll userdata values.
const rollTypeName = "roll"

// registerModules registers the "roll" module, the "dice" table of named
// dice, and the roll metatable (operator sugar) into L.
//
// Precondition: L must be from NewSandboxedState.
func (e *Engine) registerModules(L *lua.LState) {
	mt := L.NewTypeMetatable(rollTypeName)
	L.SetField(mt, "__add", L.NewFunction(e.binaryFn(roll.Add)))
	L.SetField(mt, "__sub", L.NewFunction(e.binaryFn(roll.Sub)))
	L.SetField(mt, "__mul", L.NewFunction(e.luaMulSugar))
	L.SetField(mt, "__div", L.NewFunction(e.binaryFn(e.div)))
	L.SetField(mt, "__mod", L.NewFunction(e.binaryFn(roll.Mod)))
	L.SetField(mt, "__pow", L.NewFunction(e.binaryFn(roll.Pow)))
	L.SetField(mt, "__unm", L.NewFunction(e.luaNeg))

	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"die":            e.luaDie,
		"constant":       e.luaConstant,
		"parse":          e.luaParse,
		"add":            e.binaryFn(roll.Add),
		"sub":            e.binaryFn(roll.Sub),
		"mul":            e.binaryFn(roll.Mul),
		"div":            e.binaryFn(e.div),
		"div_floor":      e.binaryFn(roll.DivFloor),
		"pow":            e.binaryFn(roll.Pow),
		"mod":            e.binaryFn(roll.Mod),
		"neg":            e.luaNeg,
		"lt":             e.binaryFn(roll.Lt),
		"le":             e.binaryFn(roll.Le),
		"eq":             e.binaryFn(roll.Eq),
		"ne":             e.binaryFn(roll.Ne),
		"gt":             e.binaryFn(roll.Gt),
		"ge":             e.binaryFn(roll.Ge),
		"max":            e.variadicFn(roll.Max),
		"min":            e.variadicFn(roll.Min),
		"repeat_sum":     e.luaRepeat,
		"keep_highest":   e.luaKeepHighest,
		"apply_tag_rule": e.luaApplyTagRule,
		"remove_tags":    e.luaRemoveTags,
		"distribution":   e.luaDistribution,
		"simulate":       e.luaSimulate,
	})
	L.SetGlobal("roll", mod)

	catalog := L.NewTable()
	for _, name := range []string{"d2", "d3", "d4", "d6", "d8", "d10", "d12", "d20", "d100"} {
		d, _ := dice.Named(name)
		L.SetField(catalog, name, e.wrapRoll(L, d))
	}
	L.SetField(catalog, "d20_crit", e.wrapRoll(L, dice.D20Crit()))
	for name, d := range e.dice {
		L.SetField(catalog, name, e.wrapRoll(L, d))
	}
	L.SetGlobal("dice", catalog)
}

// wrapRoll boxes r as roll userdata.
func (e *Engine) wrapRoll(L *lua.LState, r roll.Roll) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = r
	L.SetMetatable(ud, L.GetTypeMetatable(rollTypeName))
	return ud
}

func (e *Engine) pushRoll(L *lua.LState, r roll.Roll) int {
	L.Push(e.wrapRoll(L, r))
	return 1
}

// checkOperand coerces the value at pos: roll userdata passes through, an
// integer becomes a constant, anything else raises a Lua error. This is
// the scripts' EnsureRoll boundary.
func (e *Engine) checkOperand(L *lua.LState, pos int) roll.Roll {
	switch v := L.Get(pos).(type) {
	case *lua.LUserData:
		if r, ok := v.Value.(roll.Roll); ok {
			return r
		}
	case lua.LNumber:
		return roll.Constant(checkInt(L, v, pos))
	}
	L.ArgError(pos, "expected a roll or an integer")
	return nil
}

// checkInt rejects fractional numbers; roll values are integers.
func checkInt(L *lua.LState, n lua.LNumber, pos int) int {
	f := float64(n)
	if f != math.Trunc(f) {
		L.ArgError(pos, fmt.Sprintf("expected an integer, got %v", f))
	}
	return int(f)
}

func (e *Engine) binaryFn(build func(a, b roll.Roll) roll.Roll) lua.LGFunction {
	return func(L *lua.LState) int {
		a := e.checkOperand(L, 1)
		b := e.checkOperand(L, 2)
		return e.pushRoll(L, build(a, b))
	}
}

func (e *Engine) variadicFn(build func(rolls ...roll.Roll) (roll.Roll, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		n := L.GetTop()
		operands := make([]roll.Roll, n)
		for i := 1; i <= n; i++ {
			operands[i-1] = e.checkOperand(L, i)
		}
		r, err := build(operands...)
		if err != nil {
			L.RaiseError("%v", err)
		}
		return e.pushRoll(L, r)
	}
}

// luaMulSugar implements the * metamethod with the repetition convention:
// an integer literal on the left of a roll sums that many independent
// copies; a roll times an integer (or another roll) multiplies values.
func (e *Engine) luaMulSugar(L *lua.LState) int {
	if n, ok := L.Get(1).(lua.LNumber); ok {
		count := checkInt(L, n, 1)
		right := e.checkOperand(L, 2)
		repeated, err := roll.Repeat(count, right)
		if err != nil {
			L.RaiseError("%v", err)
		}
		return e.pushRoll(L, repeated)
	}
	return e.binaryFn(roll.Mul)(L)
}

func (e *Engine) luaNeg(L *lua.LState) int {
	return e.pushRoll(L, roll.Neg(e.checkOperand(L, 1)))
}

// luaDie builds a die: roll.die(sides [, tags]) where tags maps a tag name
// to a face value or a list of face values.
func (e *Engine) luaDie(L *lua.LState) int {
	sides := L.CheckInt(1)

	var assign roll.TagAssignment
	if L.GetTop() >= 2 {
		assign = e.checkAssignment(L, 2)
	}

	d, err := roll.Die(sides, assign)
	if err != nil {
		L.RaiseError("%v", err)
	}
	return e.pushRoll(L, d)
}

func (e *Engine) checkAssignment(L *lua.LState, pos int) roll.TagAssignment {
	tbl := L.CheckTable(pos)
	assign := make(roll.TagAssignment)
	tbl.ForEach(func(key, value lua.LValue) {
		name, ok := key.(lua.LString)
		if !ok {
			L.ArgError(pos, "tag names must be strings")
		}
		switch v := value.(type) {
		case lua.LNumber:
			assign[string(name)] = []int{checkInt(L, v, pos)}
		case *lua.LTable:
			var faces []int
			v.ForEach(func(_, face lua.LValue) {
				n, ok := face.(lua.LNumber)
				if !ok {
					L.ArgError(pos, "tag faces must be integers")
				}
				faces = append(faces, checkInt(L, n, pos))
			})
			assign[string(name)] = faces
		default:
			L.ArgError(pos, "tag faces must be an integer or a list")
		}
	})
	return assign
}

// luaConstant builds a constant: roll.constant(value [, tag, ...]).
func (e *Engine) luaConstant(L *lua.LState) int {
	value := L.CheckInt(1)
	var tags []string
	for i := 2; i <= L.GetTop(); i++ {
		tags = append(tags, L.CheckString(i))
	}
	return e.pushRoll(L, roll.Constant(value, tags...))
}

// luaParse builds a roll from a compact dice expression: roll.parse("2d6+3").
func (e *Engine) luaParse(L *lua.LState) int {
	r, err := dice.Parse(L.CheckString(1))
	if err != nil {
		L.RaiseError("%v", err)
	}
	return e.pushRoll(L, r)
}

func (e *Engine) luaRepeat(L *lua.LState) int {
	n := L.CheckInt(1)
	r := e.checkOperand(L, 2)
	repeated, err := roll.Repeat(n, r)
	if err != nil {
		L.RaiseError("%v", err)
	}
	return e.pushRoll(L, repeated)
}

func (e *Engine) luaKeepHighest(L *lua.LState) int {
	keep := L.CheckInt(1)
	operands := make([]roll.Roll, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		operands = append(operands, e.checkOperand(L, i))
	}
	r, err := roll.KeepHighest(keep, operands...)
	if err != nil {
		L.RaiseError("%v", err)
	}
	return e.pushRoll(L, r)
}

// luaApplyTagRule wires Lua functions into a tag-rule node:
// roll.apply_tag_rule(r, transform, predicate). transform receives the
// outcome value and returns the new value; predicate receives the tags
// table and returns a boolean. The callbacks run during evaluation, so
// the scenario's VM must stay open until the distribution is computed.
func (e *Engine) luaApplyTagRule(L *lua.LState) int {
	r := e.checkOperand(L, 1)
	transform := L.CheckFunction(2)
	predicate := L.CheckFunction(3)

	node := roll.ApplyTagRule(r,
		func(value int) int {
			if err := L.CallByParam(lua.P{Fn: transform, NRet: 1, Protect: true}, lua.LNumber(value)); err != nil {
				panic(callbackError{err: fmt.Errorf("scripting: tag-rule transform: %w", err)})
			}
			ret := L.Get(-1)
			L.Pop(1)
			n, ok := ret.(lua.LNumber)
			if !ok {
				panic(callbackError{err: fmt.Errorf("scripting: tag-rule transform must return a number, got %s", ret.Type())})
			}
			return int(n)
		},
		func(tags roll.TagSet) bool {
			if err := L.CallByParam(lua.P{Fn: predicate, NRet: 1, Protect: true}, tagsToTable(L, tags)); err != nil {
				panic(callbackError{err: fmt.Errorf("scripting: tag-rule predicate: %w", err)})
			}
			ret := L.Get(-1)
			L.Pop(1)
			return lua.LVAsBool(ret)
		},
	)
	return e.pushRoll(L, node)
}

func (e *Engine) luaRemoveTags(L *lua.LState) int {
	r := e.checkOperand(L, 1)
	names := make([]string, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		names = append(names, L.CheckString(i))
	}
	return e.pushRoll(L, roll.RemoveTags(r, names...))
}

// luaDistribution evaluates a roll into an array of
// {value, probability, tags} tables.
func (e *Engine) luaDistribution(L *lua.LState) int {
	r := e.checkOperand(L, 1)
	dist, err := e.evalDistribution(r)
	if err != nil {
		L.RaiseError("%v", err)
	}

	out := L.NewTable()
	for _, o := range dist {
		entry := L.NewTable()
		L.SetField(entry, "value", lua.LNumber(o.Value))
		L.SetField(entry, "probability", lua.LNumber(o.Probability))
		L.SetField(entry, "tags", tagsToTable(L, o.Tags))
		out.Append(entry)
	}
	L.Push(out)
	return 1
}

// luaSimulate draws one outcome: roll.simulate(r [, seed]). With a seed
// the draw is deterministic; without one it uses the crypto source.
func (e *Engine) luaSimulate(L *lua.LState) int {
	r := e.checkOperand(L, 1)

	var src roll.Source
	if L.GetTop() >= 2 {
		src = roll.NewSeededSource(int64(L.CheckInt(2)))
	} else {
		src = roll.NewCryptoSource()
	}

	dist, err := e.evalDistribution(r)
	if err != nil {
		L.RaiseError("%v", err)
	}
	o, err := roll.Sample(dist, src)
	if err != nil {
		L.RaiseError("%v", err)
	}

	entry := L.NewTable()
	L.SetField(entry, "value", lua.LNumber(o.Value))
	L.SetField(entry, "probability", lua.LNumber(o.Probability))
	L.SetField(entry, "tags", tagsToTable(L, o.Tags))
	L.Push(entry)
	return 1
}

func tagsToTable(L *lua.LState, tags roll.TagSet) *lua.LTable {
	tbl := L.NewTable()
	for name, count := range tags {
		L.SetField(tbl, name, lua.LNumber(count))
	}
	return tbl
}
