package platform

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Recorder is an in-memory Messenger and Permissions implementation for
// tests. It records everything sent and lets tests script interactive
// behavior through ChoiceFn and SignalFn.
type Recorder struct {
	mu      sync.Mutex
	nextID  int
	Texts   []RecordedText
	Embeds  []RecordedEmbed
	Prompts []RecordedPrompt
	Deleted []MessageRef

	// ChoiceFn, when set, supplies the selection for a choice prompt. A nil
	// ChoiceFn leaves every prompt unanswered.
	ChoiceFn func(ch ChannelID, user UserID, options []ChoiceOption) (string, bool)

	// SignalFn, when set, decides whether an awaited signal arrives. A nil
	// SignalFn times every wait out.
	SignalFn func(ch ChannelID, user UserID) bool

	// SignalText is the message content handed to the caller's match
	// predicate when SignalFn fires. Empty means the predicate is taken as
	// matched.
	SignalText string

	// Reactions maps message ID and emoji to reacting users.
	Reactions map[string]map[string][]UserID

	// Seeded maps message ID to emojis added through AddReaction.
	Seeded map[string][]string

	// Members lists channel members returned by ChannelMembers.
	Members map[ChannelID][]UserID

	// Moderators marks users for whom IsModerator returns true.
	Moderators map[UserID]bool
}

// RecordedText is a captured SendText call.
type RecordedText struct {
	Channel ChannelID
	Text    string
}

// RecordedEmbed is a captured SendEmbed call.
type RecordedEmbed struct {
	Channel ChannelID
	Embed   Embed
	Ref     MessageRef
}

// RecordedPrompt is a captured SendChoicePrompt call.
type RecordedPrompt struct {
	Channel ChannelID
	User    UserID
	Text    string
	Options []ChoiceOption
}

// NewRecorder creates a Recorder with empty scripted behavior.
func NewRecorder() *Recorder {
	return &Recorder{
		Reactions:  make(map[string]map[string][]UserID),
		Seeded:     make(map[string][]string),
		Members:    make(map[ChannelID][]UserID),
		Moderators: make(map[UserID]bool),
	}
}

func (r *Recorder) ref(ch ChannelID) MessageRef {
	r.nextID++
	return MessageRef{Channel: ch, ID: "msg-" + strconv.Itoa(r.nextID)}
}

// SendText records the message.
func (r *Recorder) SendText(_ context.Context, ch ChannelID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Texts = append(r.Texts, RecordedText{Channel: ch, Text: text})
	return nil
}

// SendEmbed records the embed and returns a synthetic reference.
func (r *Recorder) SendEmbed(_ context.Context, ch ChannelID, embed Embed) (MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref := r.ref(ch)
	r.Embeds = append(r.Embeds, RecordedEmbed{Channel: ch, Embed: embed, Ref: ref})
	return ref, nil
}

// SendChoicePrompt records the prompt. If ChoiceFn supplies a selection it is
// delivered on the returned channel, otherwise the prompt never resolves.
func (r *Recorder) SendChoicePrompt(_ context.Context, ch ChannelID, user UserID, text string, options []ChoiceOption) (ChoicePrompt, error) {
	r.mu.Lock()
	r.Prompts = append(r.Prompts, RecordedPrompt{Channel: ch, User: user, Text: text, Options: options})
	ref := r.ref(ch)
	fn := r.ChoiceFn
	r.mu.Unlock()

	choices := make(chan string, 1)
	if fn != nil {
		if value, ok := fn(ch, user, options); ok {
			choices <- value
		}
	}
	return ChoicePrompt{Ref: ref, Choices: choices}, nil
}

// AwaitSignal consults SignalFn. Without one, it blocks for the full timeout
// and reports no signal. When SignalText is set the caller's match predicate
// decides whether the scripted message counts.
func (r *Recorder) AwaitSignal(ctx context.Context, ch ChannelID, user UserID, match func(string) bool, timeout time.Duration) (bool, error) {
	r.mu.Lock()
	fn := r.SignalFn
	text := r.SignalText
	r.mu.Unlock()
	if fn != nil && fn(ch, user) {
		if text != "" {
			return match(text), nil
		}
		return true, nil
	}
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(timeout):
		return false, nil
	}
}

// AddReaction records the seeded emoji. Seeds never show up in
// ReactionUsers, matching a reaction listing that drops bot accounts.
func (r *Recorder) AddReaction(_ context.Context, ref MessageRef, emoji string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Seeded[ref.ID] = append(r.Seeded[ref.ID], emoji)
	return nil
}

// ReactionUsers returns the scripted reactions for a message.
func (r *Recorder) ReactionUsers(_ context.Context, ref MessageRef, emoji string) ([]UserID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Reactions[ref.ID][emoji], nil
}

// ChannelMembers returns the scripted member list for a channel.
func (r *Recorder) ChannelMembers(_ context.Context, ch ChannelID) ([]UserID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Members[ch], nil
}

// DeleteMessage records the deletion.
func (r *Recorder) DeleteMessage(_ context.Context, ref MessageRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deleted = append(r.Deleted, ref)
	return nil
}

// Mention renders a plain mention marker.
func (r *Recorder) Mention(user UserID) string {
	return "@" + string(user)
}

// IsModerator reports whether the user was registered in Moderators.
func (r *Recorder) IsModerator(_ context.Context, _ ChannelID, user UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Moderators[user], nil
}

// TextCount returns the number of recorded text messages.
func (r *Recorder) TextCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Texts)
}

// PromptCount returns the number of recorded choice prompts.
func (r *Recorder) PromptCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Prompts)
}

// TextsSnapshot returns a copy of the recorded text messages.
func (r *Recorder) TextsSnapshot() []RecordedText {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedText, len(r.Texts))
	copy(out, r.Texts)
	return out
}

// WaitForPrompts polls until at least n choice prompts have been recorded or
// the deadline passes. It reports whether the count was reached.
func (r *Recorder) WaitForPrompts(n int, deadline time.Duration) bool {
	return r.waitFor(func() bool { return r.PromptCount() >= n }, deadline)
}

// WaitForTexts polls until at least n text messages have been recorded or
// the deadline passes. It reports whether the count was reached.
func (r *Recorder) WaitForTexts(n int, deadline time.Duration) bool {
	return r.waitFor(func() bool { return r.TextCount() >= n }, deadline)
}

func (r *Recorder) waitFor(cond func() bool, deadline time.Duration) bool {
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
