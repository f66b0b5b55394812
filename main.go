package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	llmx "github.com/tanpawarit/luna-hotel-concierge/agent/llm"
	"github.com/tanpawarit/luna-hotel-concierge/agent/state"
	"github.com/tanpawarit/luna-hotel-concierge/app"
	configx "github.com/tanpawarit/luna-hotel-concierge/pkg/config"
	logx "github.com/tanpawarit/luna-hotel-concierge/pkg/logger"
	_ "github.com/tanpawarit/luna-hotel-concierge/pkg/logger/autoload"
	postgresx "github.com/tanpawarit/luna-hotel-concierge/pkg/postgres"
	qstashx "github.com/tanpawarit/luna-hotel-concierge/pkg/qstash"
	twiliox "github.com/tanpawarit/luna-hotel-concierge/pkg/twilio"
	"github.com/tanpawarit/luna-hotel-concierge/reminder"
	httpx "github.com/tanpawarit/luna-hotel-concierge/transport/http"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "luna",
		Short:         "Hotel WhatsApp concierge and check-in reminders",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configx.SetEnvFile(envFile)
			logCfg, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return err
			}
			logx.Init(*logCfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file")

	root.AddCommand(newServeCmd(), newRemindCmd(), newScheduleCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook and reminder HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			httpCfg := configx.MustNew[httpx.Config]("HTTP")
			llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
			booking := configx.MustNew[app.BookingConfig]("BOOKING")
			redisCfg := configx.MustNew[state.UpstashRedisConfig]("UPSTASH_REDIS")
			qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			app.ProbeModel(ctx, *llmCfg)

			orch, err := app.NewOrchestrator(ctx, store.Repos, *llmCfg, *booking, *redisCfg)
			if err != nil {
				return err
			}
			dispatcher, err := newDispatcher(store)
			if err != nil {
				return err
			}

			router, err := app.NewRouter(orch, dispatcher, *httpCfg, *qstashCfg)
			if err != nil {
				return err
			}
			return httpx.Serve(ctx, router, *httpCfg)
		},
	}
}

func newRemindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send tomorrow's check-in reminders once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			dispatcher, err := newDispatcher(store)
			if err != nil {
				return err
			}
			res, err := dispatcher.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.StatusLine())
			return nil
		},
	}
}

func newScheduleCmd() *cobra.Command {
	var cron string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Register the daily reminder schedule with QStash",
		RunE: func(cmd *cobra.Command, args []string) error {
			httpCfg := configx.MustNew[httpx.Config]("HTTP")
			qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")

			destination, err := app.ReminderDestination(*httpCfg, *qstashCfg)
			if err != nil {
				return err
			}
			if cron == "" {
				cron = qstashCfg.Cron
			}

			client, err := qstashx.NewClient(*qstashCfg)
			if err != nil {
				return err
			}
			id, err := client.EnsureSchedule(cmd.Context(), destination, cron)
			if err != nil {
				return err
			}
			log.Info().Str("component", "reminder").Str("schedule_id", id).Str("cron", cron).Str("destination", destination).Msg("reminder schedule registered")
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&cron, "cron", "", "cron expression (defaults to QSTASH_CRON)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return err
			}
			log.Info().Str("component", "storage").Msg("schema is up to date")
			return nil
		},
	}
}

func openStore(ctx context.Context) (*app.Store, error) {
	dbCfg := configx.MustNew[postgresx.Config]("DATABASE")
	return app.OpenStore(ctx, *dbCfg)
}

func newDispatcher(store *app.Store) (*reminder.Dispatcher, error) {
	twilioCfg := configx.MustNew[twiliox.Config]("TWILIO")
	reminderCfg := configx.MustNew[reminder.Config]("REMINDER")
	return app.NewReminderDispatcher(store.Repos, *twilioCfg, *reminderCfg)
}
