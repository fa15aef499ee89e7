package dice_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/arjun-christopher/Functopus/internal/game/dice"
)

// fixedSource returns a scripted sequence of values, cycling when exhausted.
type fixedSource struct {
	values []int
	idx    int
}

func (f *fixedSource) Intn(n int) int {
	v := f.values[f.idx%len(f.values)]
	f.idx++
	return v % n
}

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
	}
	assert.Equal(t, 12, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
	}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestParse_ValidForms(t *testing.T) {
	cases := []struct {
		in    string
		count int
		sides int
		mod   int
	}{
		{"d20", 1, 20, 0},
		{"2d6", 2, 6, 0},
		{"2d6+3", 2, 6, 3},
		{"4d8-2", 4, 8, -2},
		{"100d1000", 100, 1000, 0},
	}
	for _, tc := range cases {
		e, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.count, e.Count, tc.in)
		assert.Equal(t, tc.sides, e.Sides, tc.in)
		assert.Equal(t, tc.mod, e.Modifier, tc.in)
	}
}

func TestParse_RejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "20", "0d6", "-1d6", "2d1", "2d", "dd", "101d6", "2d1001"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expression %q", in)
	}
}

func TestRollExpr_WithinBounds(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		expr := fmt.Sprintf("%dd%d", count, sides)

		r, err := dice.RollExpr(expr, src)
		require.NoError(rt, err)
		require.Len(rt, r.Dice, count)
		for _, d := range r.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
		}
	})
}

func TestFormatRoll(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "🎲 2d6+3: [4, 5] +3 = **12**", dice.FormatRoll(r))

	r = dice.RollResult{Expression: "d20", Dice: []int{17}}
	assert.Equal(t, "🎲 d20: [17] = **17**", dice.FormatRoll(r))
}

func TestFlip(t *testing.T) {
	assert.Equal(t, "Heads", dice.Flip(&fixedSource{values: []int{0}}))
	assert.Equal(t, "Tails", dice.Flip(&fixedSource{values: []int{1}}))
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 200; i++ {
		v := src.Intn(6)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}
