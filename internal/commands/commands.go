// Package commands provides the chat command registry, parser, and built-in
// command handlers.
package commands

import (
	"context"

	"github.com/arjun-christopher/Functopus/internal/platform"
)

// Categories for organizing commands.
const (
	CategoryGames  = "games"
	CategoryFun    = "fun"
	CategoryAI     = "ai"
	CategorySystem = "system"
)

// Invocation carries one parsed command invocation from chat.
type Invocation struct {
	// Channel is where the command was issued.
	Channel platform.ChannelID
	// Author is the invoking user.
	Author platform.UserID
	// AuthorName is the invoker's display name.
	AuthorName string
	// Args are the whitespace-split arguments after the command word.
	Args []string
	// RawArgs is the raw text after the command (preserving spacing).
	RawArgs string
	// Mentions lists the users mentioned in the message, in order.
	Mentions []platform.UserID
	// MentionsEveryone reports whether the message mentioned the whole
	// channel.
	MentionsEveryone bool
}

// Command defines a user-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to users.
	Help string
	// Category groups the command (games, fun, ai, system).
	Category string
	// Run executes the command.
	Run func(ctx context.Context, inv Invocation) error
}
