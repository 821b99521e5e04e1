package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/cake-orders/internal/adapter/storage"
	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/core/pricing"
	"github.com/rl1809/cake-orders/internal/core/rush"
	"github.com/rl1809/cake-orders/internal/port"
)

type integrationEnv struct {
	stores  map[string]port.DraftStore
	cleanup func()
}

func setupIntegrationEnv(t *testing.T) *integrationEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/cakeorders?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	mysqlStore := storage.NewMySQLAdapter(db)
	if err := mysqlStore.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate drafts table: %v", err)
	}

	return &integrationEnv{
		stores: map[string]port.DraftStore{
			"redis": storage.NewRedisAdapter(rdb, 25*time.Hour),
			"mysql": mysqlStore,
		},
		cleanup: func() {
			rdb.Close()
			db.Close()
		},
	}
}

func newIntegrationWizard(store port.DraftStore, fc *clockwork.FakeClock, key string, orders port.OrderGateway) *Wizard {
	return NewWizard(WizardConfig{
		Drafts:  NewDraftKeeper(store, fc, key, DefaultDraftTTL),
		Orders:  orders,
		Pricing: pricing.NewEngine(domain.DefaultCatalog()),
		Rush:    rush.NewPolicy(fc, rush.WithLocation(shop)),
		Clock:   fc,
	})
}

func TestIntegration_DraftSurvivesRestart(t *testing.T) {
	env := setupIntegrationEnv(t)
	defer env.cleanup()

	for name, store := range env.stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			fc := clockwork.NewFakeClockAt(testNow)
			key := "integration:" + uuid.NewString()
			defer store.Delete(ctx, key)

			first := newIntegrationWizard(store, fc, key, &mockOrderGateway{})
			first.Start(ctx)
			fillDraft(first)
			if err := first.GoNext(ctx); err != nil {
				t.Fatalf("advance: %v", err)
			}
			first.Close()

			fc.Advance(23 * time.Hour)
			second := newIntegrationWizard(store, fc, key, &mockOrderGateway{})
			second.Start(ctx)
			defer second.Close()

			if second.CurrentStep() != domain.StepCakeType {
				t.Errorf("expected resumed step %s, got %s", domain.StepCakeType, second.CurrentStep())
			}
			if c := second.FormData().Customer; c == nil || c.Name != "Sam Lee" {
				t.Errorf("expected resumed customer Sam Lee, got %+v", c)
			}
		})
	}
}

func TestIntegration_StaleDraftDiscarded(t *testing.T) {
	env := setupIntegrationEnv(t)
	defer env.cleanup()

	for name, store := range env.stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			fc := clockwork.NewFakeClockAt(testNow)
			key := "integration:" + uuid.NewString()
			defer store.Delete(ctx, key)

			keeper := NewDraftKeeper(store, fc, key, DefaultDraftTTL)
			if err := keeper.Save(ctx, domain.NewDraft("old"), domain.StepPickup); err != nil {
				t.Fatalf("save: %v", err)
			}

			fc.Advance(25 * time.Hour)
			saved, err := keeper.Load(ctx)
			if err != nil || saved != nil {
				t.Fatalf("expected stale draft to be discarded, got %+v, %v", saved, err)
			}
			if _, err := store.Load(ctx, key); !errors.Is(err, port.ErrDraftNotFound) {
				t.Errorf("expected stale draft removed from %s, got %v", name, err)
			}
		})
	}
}

func TestIntegration_ConcurrentSubmitCreatesOneOrder(t *testing.T) {
	env := setupIntegrationEnv(t)
	defer env.cleanup()

	ctx := context.Background()
	store := env.stores["redis"]
	fc := clockwork.NewFakeClockAt(testNow)
	key := "integration:" + uuid.NewString()
	defer store.Delete(ctx, key)

	orders := &mockOrderGateway{block: make(chan struct{}), started: make(chan struct{})}
	w := newIntegrationWizard(store, fc, key, orders)
	fillDraft(w)
	for w.CurrentStep() < domain.LastStep {
		if err := w.GoNext(ctx); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	var successCount, inProgressCount atomic.Int32
	var wg sync.WaitGroup
	totalRequests := 20

	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := w.Submit(ctx); err == nil {
			successCount.Add(1)
		}
	}()
	<-orders.started

	for i := 0; i < totalRequests-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := w.Submit(ctx); errors.Is(err, ErrSubmitInProgress) {
				inProgressCount.Add(1)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(orders.block)
	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected 1 successful submit, got %d", successCount.Load())
	}
	if orders.calls() != 1 {
		t.Errorf("expected 1 order request, got %d", orders.calls())
	}
	if _, err := store.Load(ctx, key); !errors.Is(err, port.ErrDraftNotFound) {
		t.Errorf("expected draft cleared after submit, got %v", err)
	}
	t.Logf("%d concurrent submits rejected as in progress", inProgressCount.Load())
}
