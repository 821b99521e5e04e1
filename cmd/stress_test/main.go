package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/cake-orders/internal/adapter/storage"
	"github.com/rl1809/cake-orders/internal/core/domain"
	"github.com/rl1809/cake-orders/internal/core/pricing"
	"github.com/rl1809/cake-orders/internal/core/rush"
	"github.com/rl1809/cake-orders/internal/core/service"
)

const (
	redisAddr     = "localhost:6379"
	draftKey      = "stress-test-draft"
	totalRequests = 50
	backendDelay  = 200 * time.Millisecond
)

// slowGateway stands in for the bakery backend and counts order creations.
type slowGateway struct {
	created atomic.Int32
}

func (g *slowGateway) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	time.Sleep(backendDelay)
	n := g.created.Add(1)
	return &domain.OrderConfirmation{OrderID: fmt.Sprintf("stress-%d", n)}, nil
}

func main() {
	ctx := context.Background()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	store := storage.NewRedisAdapter(rdb, 25*time.Hour)
	if err := store.Delete(ctx, draftKey); err != nil {
		log.Fatalf("failed to clear previous draft: %v", err)
	}

	sysClock := clockwork.NewRealClock()
	policy := rush.NewPolicy(sysClock)
	gateway := &slowGateway{}
	wizard := service.NewWizard(service.WizardConfig{
		Drafts:  service.NewDraftKeeper(store, sysClock, draftKey, service.DefaultDraftTTL),
		Orders:  gateway,
		Pricing: pricing.NewEngine(domain.DefaultCatalog()),
		Rush:    policy,
		Clock:   sysClock,
	})

	fillReadyDraft(wizard, policy.Now())
	for wizard.CurrentStep() < domain.LastStep {
		if err := wizard.GoNext(ctx); err != nil {
			log.Fatalf("draft not ready: %v", err)
		}
	}

	// Counters
	var successCount, inProgressCount, otherCount atomic.Int32

	// Spawn concurrent submits
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := wizard.Submit(ctx)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrSubmitInProgress):
				inProgressCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Submits:    %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("In Progress:      %d\n", inProgressCount.Load())
	fmt.Printf("Other (reset):    %d\n", otherCount.Load())
	fmt.Printf("Orders Created:   %d\n", gateway.created.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if successCount.Load() == 1 && gateway.created.Load() == 1 {
		fmt.Println("PASS: Exactly 1 order created")
	} else {
		fmt.Printf("FAIL: Expected 1 order, got %d successful submits and %d orders\n",
			successCount.Load(), gateway.created.Load())
	}

	// Verify the draft is gone from Redis
	if _, err := store.Load(ctx, draftKey); err != nil {
		fmt.Println("PASS: Draft cleared after submit")
	} else {
		fmt.Println("FAIL: Draft still stored after submit")
	}
}

func fillReadyDraft(w *service.Wizard, now time.Time) {
	eventDate := now.AddDate(0, 0, 7).Format(domain.DateLayout)
	size, status, pickup := "8-round", domain.PaymentStatusPartial, "11:00"
	layers := []domain.Layer{
		{ID: "layer-1", Flavor: "vanilla", Icing: "buttercream", Fillings: []string{}},
		{ID: "layer-2", Flavor: "chocolate", Icing: "ganache", Fillings: []string{"raspberry"}},
	}

	patch := domain.DraftPatch{
		Layers:        &layers,
		CakeSize:      &size,
		PaymentStatus: &status,
		EventDate:     &eventDate,
		PickupTime:    &pickup,
	}
	patch.SetCustomer(&domain.Customer{ID: "stress-customer", Name: "Stress Test", Email: "stress@example.com"})
	if err := w.UpdateFormData(patch); err != nil {
		log.Fatalf("failed to fill draft: %v", err)
	}
}
