package main

import (
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stake-plus/sentinel/src/api/webserver"
	"github.com/stake-plus/sentinel/src/data"
	"github.com/stake-plus/sentinel/src/discordbot"
)

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and the Discord bot when configured)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, log := g.cfg, g.log

			var rdb *redis.Client
			if cfg.RedisURL != "" {
				var err error
				rdb, err = data.ConnectRedis(ctx, cfg.RedisURL)
				if err != nil {
					return err
				}
				defer rdb.Close()
				log.Info("rate limiting and search cache backed by redis")
			}

			a, err := buildApp(cfg, log, rdb)
			if err != nil {
				return err
			}

			deps := webserver.Deps{
				Checker:  a.checker,
				Debate:   a.debate,
				Metrics:  a.metrics,
				Gatherer: a.registry,
				Redis:    rdb,
				Log:      log.Named("http"),
			}
			if a.media != nil {
				deps.Media = a.media
			}
			router := webserver.New(cfg, deps)

			grp, ctx := errgroup.WithContext(ctx)
			grp.Go(func() error {
				return webserver.Serve(ctx, cfg, router, log.Named("http"))
			})
			if cfg.Discord.Enabled() {
				bot, err := discordbot.New(cfg.Discord.Token, cfg.Discord.GuildID, a.checker, cfg.Pipeline.CallTimeout*10, log.Named("discord"))
				if err != nil {
					return err
				}
				grp.Go(func() error { return bot.Run(ctx) })
			} else {
				log.Debug("discord bot disabled")
			}
			err = grp.Wait()
			log.Info("sentinel stopped", zap.Error(err))
			return err
		},
	}
}
