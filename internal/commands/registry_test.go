package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_ResolvesNamesAndAliases(t *testing.T) {
	reg, err := NewRegistry([]Command{
		{Name: "roll", Category: CategoryFun},
		{Name: "flip", Aliases: []string{"coin"}, Category: CategoryFun},
	})
	require.NoError(t, err)

	cmd, ok := reg.Resolve("roll")
	require.True(t, ok)
	assert.Equal(t, "roll", cmd.Name)

	cmd, ok = reg.Resolve("coin")
	require.True(t, ok)
	assert.Equal(t, "flip", cmd.Name)

	_, ok = reg.Resolve("missing")
	assert.False(t, ok)
}

func TestNewRegistry_RejectsCollisions(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Name: "roll"},
		{Name: "roll"},
	})
	assert.ErrorContains(t, err, "duplicate command name")

	_, err = NewRegistry([]Command{
		{Name: "flip", Aliases: []string{"coin"}},
		{Name: "toss", Aliases: []string{"coin"}},
	})
	assert.ErrorContains(t, err, "duplicate alias")

	_, err = NewRegistry([]Command{
		{Name: "flip", Aliases: []string{"coin"}},
		{Name: "coin"},
	})
	assert.Error(t, err)
}

func TestCommandsByCategory(t *testing.T) {
	reg, err := NewRegistry([]Command{
		{Name: "roll", Category: CategoryFun},
		{Name: "flip", Category: CategoryFun},
		{Name: "hangman", Category: CategoryGames},
	})
	require.NoError(t, err)

	byCat := reg.CommandsByCategory()
	assert.Len(t, byCat[CategoryFun], 2)
	assert.Len(t, byCat[CategoryGames], 1)
	assert.Len(t, reg.Commands(), 3)
}
