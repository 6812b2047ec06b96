package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	router "github.com/dkeye/Meet/internal/adapters/http"
	"github.com/dkeye/Meet/internal/adapters/rtc"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/config"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and signaling server",
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("port", 0, "listen port (overrides config)")
	cmd.Flags().Bool("no-migrate", false, "skip schema migration on start")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile, func(v *viper.Viper) {
		if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
			_ = v.BindPFlag("port", f)
		}
	})
	if err != nil {
		return err
	}
	setupLogger(cfg.Mode, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	st, closeStore, err := openStore(ctx, cfg.Store, !noMigrate)
	if err != nil {
		return err
	}
	defer closeStore()

	auth, err := app.NewAuthService(st, cfg.JWTSecret, cfg.JWTExpiry, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	dir := app.NewDirectory(st, bcrypt.DefaultCost)
	relay := app.NewRelay(app.NewRegistry(), dir, app.PolicyByName(cfg.Backpressure))

	ice, err := rtc.FromConfig(cfg.ICEServers)
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Auth:      auth,
		Directory: dir,
		Relay:     relay,
		Redis:     rdb,
		ICE:       ice,
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Meet server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Int("rooms", relay.Registry.RoomCount()).Msg("Server exited gracefully")
	return nil
}
