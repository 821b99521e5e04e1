package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/cake-orders/internal/adapter/client"
	"github.com/rl1809/cake-orders/internal/adapter/handler"
	"github.com/rl1809/cake-orders/internal/adapter/storage"
	"github.com/rl1809/cake-orders/internal/config"
	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/core/pricing"
	"github.com/rl1809/cake-orders/internal/core/rush"
	"github.com/rl1809/cake-orders/internal/core/service"
	"github.com/rl1809/cake-orders/internal/port"
)

const (
	healthInterval  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := openDraftStore(ctx, cfg.Drafts)
	defer closeStore()

	sysClock := clockwork.NewRealClock()
	policy := rush.NewPolicy(sysClock,
		rush.WithLocation(cfg.Schedule.Location),
		rush.WithMinNoticeDays(cfg.Schedule.MinNoticeDays),
		rush.WithPickupBuffer(cfg.Schedule.PickupBuffer),
	)
	engine := pricing.NewEngine(domain.DefaultCatalog())
	bakery := client.NewBakeryClient(cfg.Bakery.BaseURL, client.WithTimeout(cfg.Bakery.RequestTimeout))

	sessions := service.NewSessions(cfg.Drafts.Key, func(key string) (*service.Wizard, *service.CustomerSearch) {
		w := service.NewWizard(service.WizardConfig{
			Drafts:           service.NewDraftKeeper(store, sysClock, key, cfg.Drafts.TTL),
			Orders:           bakery,
			Pricing:          engine,
			Rush:             policy,
			Clock:            sysClock,
			AutosaveInterval: cfg.Drafts.AutosaveInterval,
		})
		return w, service.NewCustomerSearch(bakery, sysClock, cfg.Bakery.SearchDebounce)
	})
	defer sessions.CloseAll()
	log.Printf("wizard drafts keyed under %q, valid for %s", cfg.Drafts.Key, cfg.Drafts.TTL)

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	health := handler.NewHealthReporter(store, healthInterval)
	health.Register(grpcServer)
	go health.Run(ctx, sysClock)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(sessions, service.NewCustomerService(bakery), engine, cfg.Bakery.RequestTimeout*3)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	log.Println("HTTP server stopped")

	cancel()
	grpcServer.GracefulStop()
	log.Println("gRPC server stopped")

	// flush every open draft before the store goes away
	sessions.SaveAll(shutdownCtx)
}

func openDraftStore(ctx context.Context, cfg config.DraftConfig) (port.DraftStore, func()) {
	switch cfg.Backend {
	case config.BackendMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("failed to ping mysql: %v", err)
		}
		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			log.Fatalf("failed to create drafts table: %v", err)
		}
		log.Println("drafts stored in mysql")
		return mysqlAdapter, func() { db.Close() }

	case config.BackendMemory:
		log.Println("drafts stored in memory; they will not survive a restart")
		return storage.NewMemoryAdapter(), func() {}

	default:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		log.Println("drafts stored in redis")
		// redis expiry trails the freshness window so a draft at exactly the limit still loads
		return storage.NewRedisAdapter(rdb, cfg.TTL+time.Hour), func() { rdb.Close() }
	}
}
