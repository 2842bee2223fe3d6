package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentspace/config"
	"rentspace/jobs"
	"rentspace/routes"
	"rentspace/services"
	"rentspace/services/logger"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// @title                      Rentspace API
// @version                    1.0
// @description                Apartment rental marketplace with wallet payments in SPY.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:           "rentspace",
		Short:         "Apartment rental marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	jobsCmd := &cobra.Command{Use: "jobs", Short: "Background job commands"}
	jobsCmd.AddCommand(jobsRunCmd())

	rootCmd.AddCommand(serveCmd(), migrateCmd(), jobsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by every command.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	db  *gorm.DB
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  logger.Format(cfg.Log.Format),
		Service: "rentspace",
	})
	db, err := config.ConnectDB(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) services(ctx context.Context) (*services.Services, func(), error) {
	var cache services.Cache = services.NopCache{}
	closeFn := func() {}
	rdb, err := config.ConnectRedis(ctx, a.cfg.Redis, a.log)
	if err != nil {
		return nil, nil, err
	}
	if rdb != nil {
		cache = services.NewRedisCache(rdb)
		closeFn = func() { _ = rdb.Close() }
	}
	return services.New(services.Options{
		DB:        a.db,
		Cache:     cache,
		Logger:    a.log,
		JWTSecret: a.cfg.Auth.JWTSecret,
		TokenTTL:  a.cfg.Auth.TokenTTL,
		Clock:     clockwork.NewRealClock(),
	}), closeFn, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the cron scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			svc, closeCache, err := a.services(ctx)
			if err != nil {
				return err
			}
			defer closeCache()

			router, err := config.InitApp(a.cfg, a.log)
			if err != nil {
				return err
			}
			routes.SetupRoutes(router, svc, a.log)

			if a.cfg.Jobs.Enabled {
				c := cron.New()
				defaultJobs := jobs.DefaultJobs(svc.Bookings, svc.Applications, jobs.Schedules{
					Complete: a.cfg.Jobs.CompleteSchedule,
					Expire:   a.cfg.Jobs.ExpireSchedule,
				})
				if err := jobs.InitCronJobs(c, a.log, defaultJobs...); err != nil {
					return err
				}
				c.Start()
				defer func() { <-c.Stop().Done() }()
			}

			srv := &http.Server{
				Addr:         ":" + a.cfg.Server.Port,
				Handler:      router,
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}
			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("port", a.cfg.Server.Port).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			a.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			if err := config.Migrate(a.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			a.log.Info().Msg("migration complete")
			return nil
		},
	}
}

func jobsRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every batch pass once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			svc, closeCache, err := a.services(ctx)
			if err != nil {
				return err
			}
			defer closeCache()
			return jobs.RunAll(ctx, a.log, jobs.DefaultJobs(svc.Bookings, svc.Applications, jobs.Schedules{
				Complete: a.cfg.Jobs.CompleteSchedule,
				Expire:   a.cfg.Jobs.ExpireSchedule,
			})...)
		},
	}
}
