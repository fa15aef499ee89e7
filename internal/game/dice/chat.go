package dice

import (
	"fmt"
	"strings"
)

// FormatRoll renders a roll result for chat display, e.g.
// "🎲 2d6+3: [4, 5] +3 = **12**". The modifier segment is omitted when zero.
func FormatRoll(r RollResult) string {
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = fmt.Sprintf("%d", d)
	}
	diceStr := "[" + strings.Join(parts, ", ") + "]"
	if r.Modifier == 0 {
		return fmt.Sprintf("🎲 %s: %s = **%d**", r.Expression, diceStr, r.Total())
	}
	return fmt.Sprintf("🎲 %s: %s %+d = **%d**", r.Expression, diceStr, r.Modifier, r.Total())
}

// Flip performs a coin flip using src and returns "Heads" or "Tails".
func Flip(src Source) string {
	if src.Intn(2) == 0 {
		return "Heads"
	}
	return "Tails"
}
