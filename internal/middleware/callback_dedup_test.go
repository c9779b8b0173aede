package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeduperSeenAndForget(t *testing.T) {
	d := newMemoryCallbackDeduper(time.Minute)
	ctx := context.Background()

	dup, err := d.Seen(ctx, "hash-a")
	require.NoError(t, err)
	assert.False(t, dup)

	dup, err = d.Seen(ctx, "hash-a")
	require.NoError(t, err)
	assert.True(t, dup)

	require.NoError(t, d.Forget(ctx, "hash-a"))
	dup, err = d.Seen(ctx, "hash-a")
	require.NoError(t, err)
	assert.False(t, dup, "forgotten keys are fresh again")
}

func TestMemoryDeduperExpires(t *testing.T) {
	d := newMemoryCallbackDeduper(10 * time.Millisecond)
	ctx := context.Background()

	_, err := d.Seen(ctx, "hash-a")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	dup, err := d.Seen(ctx, "hash-a")
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestCallbackDedupShedsDuplicates(t *testing.T) {
	deduper := newMemoryCallbackDeduper(time.Minute)
	e := echo.New()

	calls := 0
	next := func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	}
	mw := CallbackDedup(deduper)(next)

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ipn?vnp_SecureHash=abc123&vnp_TxnRef=ORDER1", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, mw(e.NewContext(req, rec)))
		return rec
	}

	do()
	assert.Equal(t, 1, calls)

	rec := do()
	assert.Equal(t, 1, calls, "duplicate must not reach the handler")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "02", body["RspCode"])
}

func TestCallbackDedupPassesThroughWithoutHash(t *testing.T) {
	deduper := newMemoryCallbackDeduper(time.Minute)
	e := echo.New()

	calls := 0
	next := func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	}
	mw := CallbackDedup(deduper)(next)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ipn?vnp_TxnRef=ORDER1", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, mw(e.NewContext(req, rec)))
	}
	assert.Equal(t, 3, calls, "hashless deliveries are the engine's problem")
}
