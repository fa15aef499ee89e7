// Package platform defines the chat-platform abstraction the bot is built
// against. Game logic and command handlers speak to a Messenger rather than
// to a concrete Discord session, which keeps them testable offline.
package platform

import (
	"context"
	"errors"
	"time"
)

// ChannelID identifies a chat channel.
type ChannelID string

// UserID identifies a platform user.
type UserID string

// MessageRef identifies a message that was previously sent, so it can be
// edited or deleted later.
type MessageRef struct {
	Channel ChannelID
	ID      string
}

// EmbedField is a single labelled field within an Embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich message with a title, body and optional fields.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
	ImageURL    string
}

// ChoiceOption is one selectable option on a choice prompt.
type ChoiceOption struct {
	Label string
	Value string
}

// ChoicePrompt is a message carrying interactive options. Selections made by
// the addressed user arrive on Choices as option values. The channel is
// closed when the prompt is torn down.
type ChoicePrompt struct {
	Ref     MessageRef
	Choices <-chan string
}

// ErrTimeout reports that a wait elapsed without the awaited event.
var ErrTimeout = errors.New("wait timed out")

// Messenger is the outbound surface to the chat platform.
type Messenger interface {
	// SendText sends a plain text message to a channel.
	SendText(ctx context.Context, ch ChannelID, text string) error

	// SendEmbed sends a rich embed and returns a reference to the sent
	// message.
	SendEmbed(ctx context.Context, ch ChannelID, embed Embed) (MessageRef, error)

	// SendChoicePrompt sends a message with selectable options addressed to
	// a single user. Selections by other users are rejected without
	// affecting the prompt.
	SendChoicePrompt(ctx context.Context, ch ChannelID, user UserID, text string, options []ChoiceOption) (ChoicePrompt, error)

	// AwaitSignal waits until the given user sends a message in the channel
	// for which match returns true, or until the timeout elapses. It reports
	// whether the signal arrived. The matched message is removed from the
	// channel when the platform permits.
	AwaitSignal(ctx context.Context, ch ChannelID, user UserID, match func(content string) bool, timeout time.Duration) (bool, error)

	// AddReaction adds the bot's own reaction to a message, seeding the
	// option for other users.
	AddReaction(ctx context.Context, ref MessageRef, emoji string) error

	// ReactionUsers returns the users who reacted to a message with the
	// given emoji.
	ReactionUsers(ctx context.Context, ref MessageRef, emoji string) ([]UserID, error)

	// ChannelMembers returns the non-bot members able to see a channel.
	ChannelMembers(ctx context.Context, ch ChannelID) ([]UserID, error)

	// DeleteMessage removes a previously sent message. Deleting a message
	// that is already gone is not an error.
	DeleteMessage(ctx context.Context, ref MessageRef) error

	// Mention renders a user reference that the platform displays as a
	// mention.
	Mention(user UserID) string
}

// Permissions answers authorization questions about users.
type Permissions interface {
	// IsModerator reports whether the user can moderate the channel.
	IsModerator(ctx context.Context, ch ChannelID, user UserID) (bool, error)
}
