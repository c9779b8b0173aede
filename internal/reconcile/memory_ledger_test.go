package reconcile

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnpgate/internal/models"
)

func TestMemoryLedgerFindMissing(t *testing.T) {
	ledger := NewMemoryLedger()
	order, err := ledger.FindByReference(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestMemoryLedgerReturnsCopies(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put(&models.Order{OrderID: "A", Status: models.OrderStatusPending})

	first, err := ledger.FindByReference(context.Background(), "A")
	require.NoError(t, err)
	first.Status = models.OrderStatusCompleted

	second, err := ledger.FindByReference(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, second.Status, "callers must not mutate stored state")
}

func TestMemoryLedgerTransitionIfPending(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put(&models.Order{OrderID: "A", Status: models.OrderStatusPending})

	applied, err := ledger.TransitionIfPending(context.Background(), "A", models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = ledger.TransitionIfPending(context.Background(), "A", models.OrderStatusFailed)
	require.NoError(t, err)
	assert.False(t, applied, "completed is not pending anymore")

	applied, err = ledger.TransitionIfPending(context.Background(), "MISSING", models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestMemoryLedgerTransitionMutualExclusion(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Put(&models.Order{OrderID: "A", Status: models.OrderStatusPending})

	const workers = 64
	results := make([]bool, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			applied, err := ledger.TransitionIfPending(context.Background(), "A", models.OrderStatusCompleted)
			assert.NoError(t, err)
			results[i] = applied
		}(i)
	}
	wg.Wait()

	applied := 0
	for _, ok := range results {
		if ok {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
}
