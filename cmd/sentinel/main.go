package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/stake-plus/sentinel/src/ai/providers"
	"github.com/stake-plus/sentinel/src/config"
	"github.com/stake-plus/sentinel/src/data"
	"github.com/stake-plus/sentinel/src/logging"
)

type globals struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "sentinel",
		Short:         "Claim extraction, evidence-backed verification and debate judging",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.load(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if g.log != nil {
				_ = g.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file (overrides SENTINEL_CONFIG)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(g),
		newCheckCmd(g),
		newClaimCmd(g),
		newJudgeCmd(g),
		newSmoketestCmd(g),
	)
	return root
}

// load resolves configuration. When MYSQL_DSN is set the settings table
// overrides the environment.
func (g *globals) load(ctx context.Context) error {
	config.LoadDotEnv()
	if g.configPath != "" {
		if err := os.Setenv("SENTINEL_CONFIG", g.configPath); err != nil {
			return err
		}
	}

	boot, err := logging.New(firstNonEmpty(g.logLevel, os.Getenv("LOG_LEVEL"), "info"), firstNonEmpty(os.Getenv("LOG_FORMAT"), "json"))
	if err != nil {
		return err
	}

	var settings config.SettingsSource
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		db, err := data.ConnectMySQL(dsn, boot)
		if err != nil {
			return fmt.Errorf("mysql: %w", err)
		}
		s, err := data.LoadSettings(db)
		if err != nil {
			boot.Warn("settings table unavailable, using environment", zap.Error(err))
		} else {
			boot.Info("settings loaded", zap.Int("count", s.Len()))
			settings = s
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	cfg, err := config.Load(settings)
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	g.cfg, g.log = cfg, log
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
