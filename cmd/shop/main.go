package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"MiniShop/internal/auth"
	"MiniShop/internal/cart"
	"MiniShop/internal/catalog"
	"MiniShop/internal/config"
	"MiniShop/internal/shop"
	"MiniShop/internal/view"
	"MiniShop/pkg/kit"
)

func main() {
	service := "shop"

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log, err := kit.NewLogger(service, cfg.Log.Level)
	if err != nil {
		_, _ = os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log.Debug("config loaded", zap.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	products := catalog.NewManager(
		catalog.NewFileStore(cfg.Catalog.Path, cfg.Catalog.ArchivePath, log),
		log,
		catalog.WithMetrics(catalog.NewMetrics(reg)),
	)
	if err := products.Init(ctx); err != nil {
		log.Fatal("load catalog failed", zap.Error(err), zap.String("path", cfg.Catalog.Path))
	}

	users, closeUsers := openUserStore(ctx, cfg, log)
	defer closeUsers()
	seedAdmin(ctx, cfg, users, log)

	carts, closeCarts := openCartStore(ctx, cfg, log)
	defer closeCarts()

	engine, err := view.NewEngine()
	if err != nil {
		log.Fatal("parse templates failed", zap.Error(err))
	}

	h, err := shop.NewHandler(
		shop.Deps{
			Catalog: products,
			Users:   users,
			Carts:   cart.NewService(carts, products, log),
			JWT:     auth.NewTokenMaker(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
			Views:   engine,
		},
		shop.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.Metrics.Enabled,
			MetricsToken:   cfg.Metrics.Token,
			Production:     cfg.HTTP.Production,
		},
	)
	if err != nil {
		log.Fatal("init shop handler failed", zap.Error(err))
	}

	if err := kit.RunHTTPServer(ctx, cfg.HTTP.Addr, h, log, kit.ServerOptions{
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
	}); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
	log.Info("bye")
}

// openUserStore uses Postgres when database.url is set and memory otherwise.
func openUserStore(ctx context.Context, cfg config.Config, log *zap.Logger) (auth.UserStore, func()) {
	if cfg.Database.URL == "" {
		log.Warn("database.url not set, users are kept in memory")
		return auth.NewMemStore(), func() {}
	}

	db, err := auth.OpenPostgres(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal("connect postgres failed", zap.Error(err))
	}
	store := auth.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		log.Fatal("create users table failed", zap.Error(err))
	}
	return store, func() { _ = db.Close() }
}

func seedAdmin(ctx context.Context, cfg config.Config, users auth.UserStore, log *zap.Logger) {
	if cfg.Auth.AdminEmail == "" {
		log.Warn("auth.adminEmail not set, nobody can edit the catalog over HTTP")
		return
	}
	created, err := auth.EnsureAdmin(ctx, users, "u_"+uuid.NewString(), cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	if err != nil {
		log.Fatal("seed admin failed", zap.Error(err))
	}
	if created {
		log.Info("admin account created", zap.String("email", cfg.Auth.AdminEmail))
	}
}

// openCartStore uses Redis when redis.addr is set and memory otherwise.
func openCartStore(ctx context.Context, cfg config.Config, log *zap.Logger) (cart.Store, func()) {
	if cfg.Redis.Addr == "" {
		log.Warn("redis.addr not set, carts are kept in memory")
		return cart.NewMemStore(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := cart.NewRedisStore(rdb)
	if err := store.Ping(ctx); err != nil {
		_ = rdb.Close()
		log.Fatal("connect redis failed", zap.Error(err))
	}
	return store, func() { _ = rdb.Close() }
}
