package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollstat/rollstat/internal/roll"
	"github.com/rollstat/rollstat/internal/scripting"
)

func TestSandbox_InstructionLimit(t *testing.T) {
	e := scripting.NewEngine(roll.NewEvaluator(0, nil), nil, 500, nil)
	_, err := e.LoadString(`while true do end`)
	assert.Error(t, err)
}

func TestSandbox_WithinLimit(t *testing.T) {
	e := scripting.NewEngine(roll.NewEvaluator(0, nil), nil, 500, nil)
	s, err := e.LoadString(`return roll.constant(1)`)
	require.NoError(t, err)
	s.Close()
}

func TestSandbox_StripsDangerousGlobals(t *testing.T) {
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require", "os", "io"} {
		s := loadScenario(t, newEngine(t, nil),
			`return roll.constant(`+name+` == nil and 1 or 0)`)

		dist, err := s.Distribution()
		require.NoError(t, err, name)
		assert.Equal(t, 1, dist[0].Value, name)
	}
}

func TestSandbox_SafeLibrariesAvailable(t *testing.T) {
	s := loadScenario(t, newEngine(t, nil), `
local parts = {}
table.insert(parts, string.format("d%d", math.max(4, 6)))
return roll.parse(table.concat(parts))`)

	dist, err := s.Distribution()
	require.NoError(t, err)
	assert.Len(t, dist, 6)
}
