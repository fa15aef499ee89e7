// Package discord adapts the bot's platform abstraction to Discord using
// discordgo.
package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/platform"
)

// customIDPrefix namespaces the bot's interactive components.
const customIDPrefix = "functopus-choice"

// choiceWaiter tracks one outstanding choice prompt.
type choiceWaiter struct {
	user      platform.UserID
	channelID string
	messageID string
	choices   chan string
	once      sync.Once
}

func (w *choiceWaiter) deliver(value string) {
	w.once.Do(func() {
		w.choices <- value
		close(w.choices)
	})
}

func (w *choiceWaiter) abandon() {
	w.once.Do(func() { close(w.choices) })
}

// signalWaiter tracks one outstanding AwaitSignal call.
type signalWaiter struct {
	user  platform.UserID
	match func(content string) bool
	hit   chan string // carries the matched message ID
}

// Messenger implements platform.Messenger and platform.Permissions over a
// Discord session.
type Messenger struct {
	session *discordgo.Session
	logger  *zap.Logger

	mu            sync.Mutex
	choiceWaiters map[string]*choiceWaiter   // prompt ID → waiter
	signalWaiters map[string][]*signalWaiter // channel ID → waiters
}

// NewMessenger creates a Messenger over an open or soon-to-be-opened session.
//
// Precondition: session and logger must be non-nil.
func NewMessenger(session *discordgo.Session, logger *zap.Logger) *Messenger {
	return &Messenger{
		session:       session,
		logger:        logger,
		choiceWaiters: make(map[string]*choiceWaiter),
		signalWaiters: make(map[string][]*signalWaiter),
	}
}

// SendText sends a plain text message.
func (m *Messenger) SendText(_ context.Context, ch platform.ChannelID, text string) error {
	if _, err := m.session.ChannelMessageSend(string(ch), text); err != nil {
		return fmt.Errorf("sending message to %s: %w", ch, err)
	}
	return nil
}

// SendEmbed sends a rich embed.
func (m *Messenger) SendEmbed(_ context.Context, ch platform.ChannelID, embed platform.Embed) (platform.MessageRef, error) {
	msg, err := m.session.ChannelMessageSendEmbed(string(ch), toDiscordEmbed(embed))
	if err != nil {
		return platform.MessageRef{}, fmt.Errorf("sending embed to %s: %w", ch, err)
	}
	return platform.MessageRef{Channel: ch, ID: msg.ID}, nil
}

func toDiscordEmbed(embed platform.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       embed.Color,
	}
	for _, f := range embed.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if embed.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: embed.Footer}
	}
	if embed.ImageURL != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: embed.ImageURL}
	}
	return out
}

// SendChoicePrompt sends a message with one button per option, addressed to
// a single user. Presses by other users get an ephemeral rebuff.
func (m *Messenger) SendChoicePrompt(_ context.Context, ch platform.ChannelID, user platform.UserID, text string, options []platform.ChoiceOption) (platform.ChoicePrompt, error) {
	promptID := uuid.NewString()

	buttons := make([]discordgo.MessageComponent, 0, len(options))
	for _, opt := range options {
		buttons = append(buttons, discordgo.Button{
			Label:    opt.Label,
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("%s:%s:%s", customIDPrefix, promptID, opt.Value),
		})
	}

	msg, err := m.session.ChannelMessageSendComplex(string(ch), &discordgo.MessageSend{
		Content: text,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: buttons},
		},
	})
	if err != nil {
		return platform.ChoicePrompt{}, fmt.Errorf("sending choice prompt to %s: %w", ch, err)
	}

	waiter := &choiceWaiter{
		user:      user,
		channelID: string(ch),
		messageID: msg.ID,
		choices:   make(chan string, 1),
	}
	m.mu.Lock()
	m.choiceWaiters[promptID] = waiter
	m.mu.Unlock()

	return platform.ChoicePrompt{
		Ref:     platform.MessageRef{Channel: ch, ID: msg.ID},
		Choices: waiter.choices,
	}, nil
}

// HandleInteraction routes component presses to their prompt. It is meant to
// be registered as a discordgo InteractionCreate handler.
func (m *Messenger) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix {
		return
	}
	promptID, value := parts[1], parts[2]

	presser := interactionUser(i)
	if presser == "" {
		return
	}

	m.mu.Lock()
	waiter, ok := m.choiceWaiters[promptID]
	m.mu.Unlock()
	if !ok {
		// Stale button from an earlier turn.
		m.respondEphemeral(i, "That prompt has expired.")
		return
	}

	if platform.UserID(presser) != waiter.user {
		m.respondEphemeral(i, "It's not your turn!")
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		m.logger.Warn("acknowledging interaction", zap.Error(err))
	}

	m.mu.Lock()
	delete(m.choiceWaiters, promptID)
	m.mu.Unlock()
	waiter.deliver(value)
}

func interactionUser(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (m *Messenger) respondEphemeral(i *discordgo.InteractionCreate, text string) {
	err := m.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		m.logger.Warn("sending ephemeral response", zap.Error(err))
	}
}

// AwaitSignal waits for the user to send a matching message in the channel.
// The matched message is deleted so it does not clutter the game channel.
func (m *Messenger) AwaitSignal(ctx context.Context, ch platform.ChannelID, user platform.UserID, match func(content string) bool, timeout time.Duration) (bool, error) {
	waiter := &signalWaiter{
		user:  user,
		match: match,
		hit:   make(chan string, 1),
	}
	m.mu.Lock()
	m.signalWaiters[string(ch)] = append(m.signalWaiters[string(ch)], waiter)
	m.mu.Unlock()
	defer m.removeSignalWaiter(string(ch), waiter)

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(timeout):
		return false, nil
	case messageID := <-waiter.hit:
		if err := m.session.ChannelMessageDelete(string(ch), messageID); err != nil {
			m.logger.Warn("deleting signal message", zap.Error(err))
		}
		return true, nil
	}
}

func (m *Messenger) removeSignalWaiter(channelID string, waiter *signalWaiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	waiters := m.signalWaiters[channelID]
	for i, w := range waiters {
		if w == waiter {
			m.signalWaiters[channelID] = append(waiters[:i], waiters[i+1:]...)
			break
		}
	}
	if len(m.signalWaiters[channelID]) == 0 {
		delete(m.signalWaiters, channelID)
	}
}

// ConsumeSignal offers an incoming message to the channel's signal waiters
// and reports whether one claimed it. Claimed messages must not be treated
// as commands.
func (m *Messenger) ConsumeSignal(channelID, authorID, content, messageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.signalWaiters[channelID] {
		if w.user == platform.UserID(authorID) && w.match(content) {
			select {
			case w.hit <- messageID:
				return true
			default:
			}
		}
	}
	return false
}

// AddReaction adds the bot's own reaction to a message.
func (m *Messenger) AddReaction(_ context.Context, ref platform.MessageRef, emoji string) error {
	if err := m.session.MessageReactionAdd(string(ref.Channel), ref.ID, emoji); err != nil {
		return fmt.Errorf("adding reaction: %w", err)
	}
	return nil
}

// ReactionUsers returns the non-bot users who reacted with the emoji.
func (m *Messenger) ReactionUsers(_ context.Context, ref platform.MessageRef, emoji string) ([]platform.UserID, error) {
	users, err := m.session.MessageReactions(string(ref.Channel), ref.ID, emoji, 100, "", "")
	if err != nil {
		return nil, fmt.Errorf("listing reactions: %w", err)
	}
	out := make([]platform.UserID, 0, len(users))
	for _, u := range users {
		if u.Bot {
			continue
		}
		out = append(out, platform.UserID(u.ID))
	}
	return out, nil
}

// ChannelMembers returns the non-bot members of the channel's guild.
func (m *Messenger) ChannelMembers(_ context.Context, ch platform.ChannelID) ([]platform.UserID, error) {
	channel, err := m.channel(string(ch))
	if err != nil {
		return nil, err
	}

	guild, err := m.session.State.Guild(channel.GuildID)
	var members []*discordgo.Member
	if err == nil && len(guild.Members) > 0 {
		members = guild.Members
	} else {
		members, err = m.session.GuildMembers(channel.GuildID, "", 1000)
		if err != nil {
			return nil, fmt.Errorf("listing guild members: %w", err)
		}
	}

	out := make([]platform.UserID, 0, len(members))
	for _, member := range members {
		if member.User == nil || member.User.Bot {
			continue
		}
		out = append(out, platform.UserID(member.User.ID))
	}
	return out, nil
}

func (m *Messenger) channel(channelID string) (*discordgo.Channel, error) {
	if channel, err := m.session.State.Channel(channelID); err == nil {
		return channel, nil
	}
	channel, err := m.session.Channel(channelID)
	if err != nil {
		return nil, fmt.Errorf("resolving channel %s: %w", channelID, err)
	}
	return channel, nil
}

// DeleteMessage removes a message and tears down any choice prompt attached
// to it.
func (m *Messenger) DeleteMessage(_ context.Context, ref platform.MessageRef) error {
	m.mu.Lock()
	for promptID, waiter := range m.choiceWaiters {
		if waiter.messageID == ref.ID {
			delete(m.choiceWaiters, promptID)
			waiter.abandon()
		}
	}
	m.mu.Unlock()

	if err := m.session.ChannelMessageDelete(string(ref.Channel), ref.ID); err != nil {
		if isUnknownMessage(err) {
			return nil
		}
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}

func isUnknownMessage(err error) bool {
	restErr, ok := err.(*discordgo.RESTError)
	return ok && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage
}

// Mention renders a Discord user mention.
func (m *Messenger) Mention(user platform.UserID) string {
	return fmt.Sprintf("<@%s>", user)
}

// IsModerator reports whether the user can manage messages in the channel.
func (m *Messenger) IsModerator(_ context.Context, ch platform.ChannelID, user platform.UserID) (bool, error) {
	perms, err := m.session.UserChannelPermissions(string(user), string(ch))
	if err != nil {
		return false, fmt.Errorf("resolving permissions: %w", err)
	}
	return perms&discordgo.PermissionManageMessages != 0, nil
}
