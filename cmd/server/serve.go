package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-extras/cobraflags"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/admin"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/auth"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/cache"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/cart"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/catalog"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/checkout"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/config"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/db"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/httpapi"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/logging"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/notify"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/orders"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/storage"
)

const (
	portFlag        = "port"
	skipMigrateFlag = "skip-migrate"
)

var skipMigrate bool

var serveFlags = map[string]cobraflags.Flag{
	portFlag: &cobraflags.StringFlag{
		Name:  portFlag,
		Value: "",
		Usage: "Port to listen on (overrides APP_PORT)",
	},
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  serveCommand,
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	cmd.Flags().BoolVar(&skipMigrate, skipMigrateFlag, false, "Do not run migrations before serving")
	return cmd
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if port := serveFlags[portFlag].GetString(); port != "" {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return serve(cmd.Context(), cfg, logger, !skipMigrate)
}

func newCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cache.Cache, io.Closer, error) {
	if cfg.RedisAddr == "" {
		mem := cache.NewMemory(time.Minute)
		return mem, mem, nil
	}
	rdb, err := cache.DialRedis(ctx, cfg.RedisAddr, "ravic")
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis cache")
	return rdb, rdb, nil
}

func newStore(cfg *config.Config) storage.Store {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3(storage.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
		})
	}
	return storage.NewLocal(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
}

// newNotifier fans events out to every configured sink.
func newNotifier(cfg *config.Config, logger zerolog.Logger) (notify.Notifier, []io.Closer) {
	var (
		sinks   notify.Multi
		closers []io.Closer
	)
	if cfg.OrderWebhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.OrderWebhookURL, cfg.WebhookSecret))
	}
	if len(cfg.KafkaBrokers) > 0 {
		w := notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, notify.NewKafka(w))
		closers = append(closers, w)
	}
	if len(sinks) == 0 {
		logger.Warn().Msg("no ORDER_WEBHOOK_URL or KAFKA_BROKERS configured, events are discarded")
		return notify.Nop{}, nil
	}
	return sinks, closers
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger, migrate bool) error {
	gdb, err := db.Open(cfg.DatabaseDSN, logging.Component(logger, "db"))
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if migrate {
		if err := db.Migrate(gdb, cfg.OrderTables...); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	kv, kvCloser, err := newCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer kvCloser.Close()

	notifier, closers := newNotifier(cfg, logger)
	for _, c := range closers {
		defer c.Close()
	}
	dispatcher := notify.NewDispatcher(notifier, 15*time.Second, logging.Component(logger, "notify"))

	store := newStore(cfg)
	orderStore := orders.NewStore(gdb, cfg.OrderTables, logging.Component(logger, "orders"))
	cat := catalog.NewService(gdb, kv, cfg.CacheTTL, logging.Component(logger, "catalog"))
	carts := cart.NewService(gdb, logging.Component(logger, "cart"))
	authSvc := auth.NewService(gdb,
		auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		auth.NewLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst),
		logging.Component(logger, "auth"))

	deps := httpapi.Deps{
		DB:       gdb,
		Catalog:  cat,
		Carts:    carts,
		Checkout: checkout.NewService(carts, orderStore, kv, cat, dispatcher, logging.Component(logger, "checkout")),
		Admin: admin.NewService(admin.Options{
			DB:            gdb,
			Store:         store,
			Orders:        orderStore,
			Catalog:       cat,
			Dispatcher:    dispatcher,
			MaxUploadSize: cfg.MaxUploadSize,
			Logger:        logging.Component(logger, "admin"),
		}),
		Auth:          authSvc,
		Dispatcher:    dispatcher,
		Logger:        logger,
		SessionSecret: cfg.SessionSecret,
		SecureCookies: strings.HasPrefix(cfg.PublicBaseURL, "https://"),
		CORSOrigins:   cfg.CORSOrigins,
		MaxUploadSize: cfg.MaxUploadSize,

		TrustedProxies: cfg.TrustedProxies,
	}
	if cfg.StorageDriver == "local" {
		deps.UploadDir = cfg.UploadDir
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := httpapi.NewRouter(deps)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("pending events were not delivered")
	}
	return nil
}
