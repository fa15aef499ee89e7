package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (s *Service) onGuildMemberAdd(sess *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}

	channelID := s.welcomeChannel(sess, m.GuildID)
	if channelID == "" {
		s.logger.Warn("no welcome channel available", zap.String("guild", m.GuildID))
		return
	}

	_, err := sess.ChannelMessageSend(channelID, fmt.Sprintf(
		"Welcome aboard, <@%s>! 🐙 Type `%shelp` to see what I can do.",
		m.User.ID, s.cfg.Prefix))
	if err != nil {
		s.logger.Warn("sending welcome message", zap.Error(err))
	}
}

func (s *Service) onGuildCreate(sess *discordgo.Session, g *discordgo.GuildCreate) {
	s.logger.Info("joined guild",
		zap.String("guild", g.ID),
		zap.String("name", g.Name),
	)

	channelID := s.welcomeChannel(sess, g.ID)
	if channelID == "" {
		return
	}

	_, err := sess.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title: "Functopus is here! 🐙",
		Description: fmt.Sprintf(
			"Games, memes, dice and more. Type `%shelp` to get started.", s.cfg.Prefix),
	})
	if err != nil {
		s.logger.Warn("sending introduction", zap.Error(err))
	}
}

// welcomeChannel picks the configured welcome channel by name, falling back
// to the guild's system channel and then to the first text channel the bot
// can speak in.
func (s *Service) welcomeChannel(sess *discordgo.Session, guildID string) string {
	guild, err := sess.State.Guild(guildID)
	if err != nil {
		guild, err = sess.Guild(guildID)
		if err != nil {
			s.logger.Warn("resolving guild", zap.String("guild", guildID), zap.Error(err))
			return ""
		}
	}

	channels := guild.Channels
	if len(channels) == 0 {
		channels, err = sess.GuildChannels(guildID)
		if err != nil {
			s.logger.Warn("listing guild channels", zap.String("guild", guildID), zap.Error(err))
			return ""
		}
	}

	var fallback string
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if !s.canSend(sess, ch.ID) {
			continue
		}
		if ch.Name == s.cfg.WelcomeChannel {
			return ch.ID
		}
		if fallback == "" {
			fallback = ch.ID
		}
	}

	if guild.SystemChannelID != "" && s.canSend(sess, guild.SystemChannelID) {
		return guild.SystemChannelID
	}
	return fallback
}

func (s *Service) canSend(sess *discordgo.Session, channelID string) bool {
	if sess.State.User == nil {
		return true
	}
	perms, err := sess.UserChannelPermissions(sess.State.User.ID, channelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionSendMessages != 0
}
