package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/commands"
	"github.com/arjun-christopher/Functopus/internal/config"
	"github.com/arjun-christopher/Functopus/internal/platform"
)

// Service connects to the Discord gateway and dispatches chat commands. It
// satisfies the server.Service interface.
type Service struct {
	session  *discordgo.Session
	msgr     *Messenger
	registry *commands.Registry
	cfg      config.DiscordConfig
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates a configured but unopened Discord session.
//
// Precondition: token must be non-empty.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent
	return session, nil
}

// NewService wires the gateway handlers to the command registry.
//
// Precondition: All arguments must be non-nil. baseCtx bounds background
// work spawned by commands.
func NewService(baseCtx context.Context, session *discordgo.Session, msgr *Messenger, registry *commands.Registry, cfg config.DiscordConfig, logger *zap.Logger) *Service {
	ctx, cancel := context.WithCancel(baseCtx)
	s := &Service{
		session:  session,
		msgr:     msgr,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	session.AddHandler(s.onReady)
	session.AddHandler(s.onMessageCreate)
	session.AddHandler(msgr.HandleInteraction)
	session.AddHandler(s.onGuildMemberAdd)
	session.AddHandler(s.onGuildCreate)
	return s
}

// Context returns the service's lifetime context. Background game loops run
// on it so they stop with the gateway connection.
func (s *Service) Context() context.Context {
	return s.ctx
}

// Start opens the gateway connection and blocks until Stop is called.
//
// Postcondition: The gateway connection is closed when Start returns.
func (s *Service) Start() error {
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	s.logger.Info("discord gateway connected")

	<-s.done

	if err := s.session.Close(); err != nil {
		return fmt.Errorf("closing discord gateway: %w", err)
	}
	return nil
}

// Stop cancels background work and unblocks Start.
func (s *Service) Stop() {
	s.cancel()
	close(s.done)
}

func (s *Service) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	s.logger.Info("discord session ready",
		zap.String("username", r.User.Username),
		zap.Int("guilds", len(r.Guilds)),
	)
}

func (s *Service) onMessageCreate(sess *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if sess.State.User != nil && m.Author.ID == sess.State.User.ID {
		return
	}

	content := strings.TrimSpace(m.Content)

	// Completion signals (e.g. "!done") are claimed by whoever is waiting
	// for them and never reach the command registry.
	if s.msgr.ConsumeSignal(m.ChannelID, m.Author.ID, content, m.ID) {
		return
	}

	if !strings.HasPrefix(content, s.cfg.Prefix) {
		return
	}
	parsed := commands.Parse(strings.TrimPrefix(content, s.cfg.Prefix))
	if parsed.Command == "" {
		return
	}

	cmd, ok := s.registry.Resolve(parsed.Command)
	if !ok {
		s.logger.Debug("unknown command", zap.String("command", parsed.Command))
		return
	}

	inv := commands.Invocation{
		Channel:          platform.ChannelID(m.ChannelID),
		Author:           platform.UserID(m.Author.ID),
		AuthorName:       displayName(m),
		Args:             parsed.Args,
		RawArgs:          parsed.RawArgs,
		Mentions:         mentionIDs(m),
		MentionsEveryone: m.MentionEveryone,
	}

	// Commands run off the gateway goroutine so a slow handler never stalls
	// event delivery.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("command panicked",
					zap.String("command", cmd.Name),
					zap.Any("panic", r),
				)
			}
		}()
		if err := cmd.Run(s.ctx, inv); err != nil {
			s.logger.Error("command failed",
				zap.String("command", cmd.Name),
				zap.String("channel", m.ChannelID),
				zap.Error(err),
			)
		}
	}()
}

func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}

func mentionIDs(m *discordgo.MessageCreate) []platform.UserID {
	out := make([]platform.UserID, 0, len(m.Mentions))
	for _, u := range m.Mentions {
		if u.Bot {
			continue
		}
		out = append(out, platform.UserID(u.ID))
	}
	return out
}
