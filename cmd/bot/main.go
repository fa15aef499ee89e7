// Package main provides the Functopus Discord bot binary.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/ai"
	"github.com/arjun-christopher/Functopus/internal/commands"
	"github.com/arjun-christopher/Functopus/internal/config"
	"github.com/arjun-christopher/Functopus/internal/content"
	"github.com/arjun-christopher/Functopus/internal/discord"
	"github.com/arjun-christopher/Functopus/internal/game/dice"
	"github.com/arjun-christopher/Functopus/internal/game/registry"
	"github.com/arjun-christopher/Functopus/internal/game/tod"
	"github.com/arjun-christopher/Functopus/internal/game/words"
	"github.com/arjun-christopher/Functopus/internal/observability"
	"github.com/arjun-christopher/Functopus/internal/server"
	"github.com/arjun-christopher/Functopus/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cryptoSrc := dice.NewCryptoSource()
	diceRoller := dice.NewLoggedRoller(cryptoSrc, logger)

	contentClient := content.NewClient(cfg.Content, logger)

	// The AI tier is optional; without a key the bot still runs, the word
	// chain just starts at the lookup tier and !ask answers with a notice.
	var asker commands.Asker
	var generative words.Provider
	if cfg.AI.APIKey != "" {
		aiClient, err := ai.NewClient(cfg.AI, logger)
		if err != nil {
			logger.Fatal("creating ai client", zap.Error(err))
		}
		asker = aiClient
		generative = aiClient
	} else {
		logger.Warn("no ai api key configured, ai features disabled")
	}

	wordList := words.DefaultList()
	if cfg.Words.ListPath != "" {
		if loaded, err := words.LoadList(cfg.Words.ListPath); err != nil {
			logger.Warn("loading word list, using built-in words", zap.Error(err))
		} else {
			wordList = loaded
		}
	}
	wordSource := words.NewSource(
		generative,
		content.NewWordClient(contentClient),
		wordList,
		cryptoSrc,
		cfg.Words,
		logger,
	)

	// The database is optional; without it game results are not persisted
	// and the leaderboard command answers with a notice.
	var pool *postgres.Pool
	var stats commands.GameStats
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		stats = postgres.NewLeaderboardRepository(pool.DB())
	}

	session, err := discord.NewSession(cfg.Discord.Token)
	if err != nil {
		logger.Fatal("creating discord session", zap.Error(err))
	}
	messenger := discord.NewMessenger(session, logger)
	sessions := registry.New()

	scheduler := tod.NewScheduler(sessions, messenger, contentClient, tod.Config{
		ChoiceTimeout:     cfg.Games.ChoiceTimeout,
		CompletionTimeout: cfg.Games.CompletionTimeout,
		TurnDelay:         cfg.Games.TurnDelay,
		DoneCommand:       cfg.Discord.Prefix + "done",
	}, logger)

	botCtx, cancelBot := context.WithCancel(ctx)
	defer cancelBot()

	cmdRegistry, err := commands.New(commands.Deps{
		Sessions:            sessions,
		Messenger:           messenger,
		Permissions:         messenger,
		Words:               wordSource,
		Content:             contentClient,
		AI:                  asker,
		Stats:               stats,
		Roller:              diceRoller,
		Rand:                cryptoSrc,
		Turns:               scheduler,
		BaseCtx:             botCtx,
		ReactionWindow:      cfg.Games.ReactionWindow,
		RoastExcludeInvoker: cfg.Fun.RoastExcludeInvoker,
		Prefix:              cfg.Discord.Prefix,
		Logger:              logger,
	})
	if err != nil {
		logger.Fatal("building command registry", zap.Error(err))
	}

	botService := discord.NewService(botCtx, session, messenger, cmdRegistry, cfg.Discord, logger)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("discord", botService)

	if pool != nil {
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				for {
					time.Sleep(30 * time.Second)
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			},
			StopFn: func() {
				pool.Close()
			},
		})
	}

	logger.Info("bot initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("prefix", cfg.Discord.Prefix),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("bot error", zap.Error(err))
	}
}
