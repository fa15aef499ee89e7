package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/arjun-christopher/Functopus/internal/platform"
)

var categoryOrder = []string{CategoryGames, CategoryFun, CategoryAI, CategorySystem}

func (h *Handlers) cmdHelp(ctx context.Context, inv Invocation, reg *Registry) error {
	byCategory := reg.CommandsByCategory()

	embed := platform.Embed{
		Title:       "Functopus commands",
		Description: fmt.Sprintf("Prefix every command with `%s`.", h.deps.Prefix),
		Color:       embedColor,
	}
	for _, category := range categoryOrder {
		cmds := byCategory[category]
		if len(cmds) == 0 {
			continue
		}
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

		var b strings.Builder
		for _, cmd := range cmds {
			name := cmd.Name
			if len(cmd.Aliases) > 0 {
				name = fmt.Sprintf("%s (%s)", cmd.Name, strings.Join(cmd.Aliases, ", "))
			}
			fmt.Fprintf(&b, "`%s` - %s\n", name, cmd.Help)
		}
		embed.Fields = append(embed.Fields, platform.EmbedField{
			Name:  strings.ToUpper(category[:1]) + category[1:],
			Value: b.String(),
		})
	}

	_, err := h.deps.Messenger.SendEmbed(ctx, inv.Channel, embed)
	return err
}
