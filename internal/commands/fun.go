package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/game/dice"
	"github.com/arjun-christopher/Functopus/internal/platform"
)

const (
	reactionHave  = "🙋"
	reactionNever = "🙈"
)

func (h *Handlers) cmdRoll(ctx context.Context, inv Invocation) error {
	expr := "d6"
	if len(inv.Args) > 0 {
		expr = inv.Args[0]
	}

	result, err := h.deps.Roller.RollExpr(expr)
	if err != nil {
		return h.reply(ctx, inv, fmt.Sprintf("I can't roll `%s`. Try something like `2d6+3`.", expr))
	}
	return h.reply(ctx, inv, dice.FormatRoll(result))
}

func (h *Handlers) cmdFlip(ctx context.Context, inv Invocation) error {
	return h.reply(ctx, inv, fmt.Sprintf("🪙 %s!", dice.Flip(h.deps.Rand)))
}

func (h *Handlers) cmdNeverHaveIEver(ctx context.Context, inv Invocation) error {
	statement, err := h.deps.Content.NeverHaveIEver(ctx)
	if err != nil {
		h.deps.Logger.Warn("fetching nhie statement", zap.Error(err))
		return h.reply(ctx, inv, "Couldn't come up with anything. Try again!")
	}

	ref, err := h.deps.Messenger.SendEmbed(ctx, inv.Channel, platform.Embed{
		Title:       "Never have I ever...",
		Description: statement,
		Color:       embedColor,
		Footer:      fmt.Sprintf("%s = I have, %s = never. You have %s.", reactionHave, reactionNever, h.deps.ReactionWindow),
	})
	if err != nil {
		return err
	}
	for _, emoji := range []string{reactionHave, reactionNever} {
		if err := h.deps.Messenger.AddReaction(ctx, ref, emoji); err != nil {
			h.deps.Logger.Warn("seeding reaction", zap.Error(err))
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(h.deps.ReactionWindow):
	}

	have, err := h.deps.Messenger.ReactionUsers(ctx, ref, reactionHave)
	if err != nil {
		return fmt.Errorf("tallying reactions: %w", err)
	}
	never, err := h.deps.Messenger.ReactionUsers(ctx, ref, reactionNever)
	if err != nil {
		return fmt.Errorf("tallying reactions: %w", err)
	}
	return h.reply(ctx, inv, fmt.Sprintf(
		"Time's up! %s %d have, %s %d never.",
		reactionHave, len(have), reactionNever, len(never)))
}

func (h *Handlers) cmdMeme(ctx context.Context, inv Invocation) error {
	url, err := h.deps.Content.Meme(ctx)
	if err != nil {
		h.deps.Logger.Warn("fetching meme", zap.Error(err))
		return h.reply(ctx, inv, "The meme pipeline is clogged. Try again later!")
	}
	_, err = h.deps.Messenger.SendEmbed(ctx, inv.Channel, platform.Embed{
		Title:    "Here you go",
		Color:    embedColor,
		ImageURL: url,
	})
	return err
}

func (h *Handlers) cmdJoke(ctx context.Context, inv Invocation) error {
	joke, err := h.deps.Content.Joke(ctx)
	if err != nil {
		h.deps.Logger.Warn("fetching joke", zap.Error(err))
		return h.reply(ctx, inv, "I forgot the punchline. Try again!")
	}
	return h.reply(ctx, inv, joke)
}

func (h *Handlers) cmdFact(ctx context.Context, inv Invocation) error {
	fact, err := h.deps.Content.UselessFact(ctx)
	if err != nil {
		h.deps.Logger.Warn("fetching fact", zap.Error(err))
		return h.reply(ctx, inv, "My fact supply ran dry. Try again!")
	}
	return h.reply(ctx, inv, fmt.Sprintf("💡 %s", fact))
}

func (h *Handlers) cmdCompliment(ctx context.Context, inv Invocation) error {
	targets, err := h.targets(ctx, inv)
	if err != nil {
		return err
	}
	for _, target := range targets {
		compliment, err := h.deps.Content.Compliment(ctx)
		if err != nil {
			h.deps.Logger.Warn("fetching compliment", zap.Error(err))
			return h.reply(ctx, inv, "I'm speechless. Try again!")
		}
		if err := h.reply(ctx, inv, fmt.Sprintf("%s %s", h.deps.Messenger.Mention(target), compliment)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) cmdRoast(ctx context.Context, inv Invocation) error {
	if err := h.reply(ctx, inv, "You asked for it. 🔥"); err != nil {
		return err
	}

	targets, err := h.targets(ctx, inv)
	if err != nil {
		return err
	}
	for _, target := range targets {
		if inv.MentionsEveryone && h.deps.RoastExcludeInvoker && target == inv.Author {
			continue
		}
		insult, err := h.deps.Content.Insult(ctx)
		if err != nil {
			h.deps.Logger.Warn("fetching insult", zap.Error(err))
			if inv.MentionsEveryone {
				continue
			}
			return h.reply(ctx, inv, "You got lucky, I can't think of anything mean right now.")
		}
		if err := h.reply(ctx, inv, fmt.Sprintf("%s %s", h.deps.Messenger.Mention(target), insult)); err != nil {
			return err
		}
	}
	return nil
}

// targets resolves who a compliment or roast is aimed at: the whole channel
// on @everyone, every mentioned user otherwise, the author as a last resort.
func (h *Handlers) targets(ctx context.Context, inv Invocation) ([]platform.UserID, error) {
	if inv.MentionsEveryone {
		members, err := h.deps.Messenger.ChannelMembers(ctx, inv.Channel)
		if err != nil {
			return nil, fmt.Errorf("listing channel members: %w", err)
		}
		return members, nil
	}
	if len(inv.Mentions) > 0 {
		return inv.Mentions, nil
	}
	return []platform.UserID{inv.Author}, nil
}

func (h *Handlers) cmdGIF(ctx context.Context, inv Invocation) error {
	if inv.RawArgs == "" {
		return h.reply(ctx, inv, fmt.Sprintf("Usage: %sgif <search terms>", h.deps.Prefix))
	}

	url, err := h.deps.Content.SearchGIF(ctx, inv.RawArgs)
	if err != nil {
		h.deps.Logger.Warn("searching gif", zap.Error(err))
		return h.reply(ctx, inv, fmt.Sprintf("No GIFs found for `%s`.", inv.RawArgs))
	}
	_, err = h.deps.Messenger.SendEmbed(ctx, inv.Channel, platform.Embed{
		Color:    embedColor,
		ImageURL: url,
	})
	return err
}

func (h *Handlers) cmdAsk(ctx context.Context, inv Invocation) error {
	if h.deps.AI == nil {
		return h.reply(ctx, inv, "The AI isn't configured on this bot.")
	}
	if inv.RawArgs == "" {
		return h.reply(ctx, inv, fmt.Sprintf("Usage: %sask <question>", h.deps.Prefix))
	}

	reply, err := h.deps.AI.Ask(ctx, inv.RawArgs)
	if err != nil {
		h.deps.Logger.Warn("ai completion", zap.Error(err))
		return h.reply(ctx, inv, "My brain froze. Try asking again!")
	}
	for _, chunk := range chunkMessage(reply, messageLimit) {
		if err := h.reply(ctx, inv, chunk); err != nil {
			return err
		}
	}
	return nil
}
