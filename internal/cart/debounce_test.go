package cart_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sourcemart/storefront-api/internal/cart"
)

type flushRecorder struct {
	mu     sync.Mutex
	writes []flushWrite
}

type flushWrite struct {
	account string
	product string
	qty     int
}

func (f *flushRecorder) flush(account, product string, qty int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, flushWrite{account: account, product: product, qty: qty})
}

func (f *flushRecorder) snapshot() []flushWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]flushWrite, len(f.writes))
	copy(out, f.writes)
	return out
}

func TestDebouncerCoalescesRapidEdits(t *testing.T) {
	rec := &flushRecorder{}
	d := cart.NewDebouncer(30*time.Millisecond, rec.flush)
	defer d.Close()

	// Simulates rapid increment clicks: 2, 3, ... 7 within the window.
	for qty := 2; qty <= 7; qty++ {
		d.Queue("acct", "p1", qty)
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	writes := rec.snapshot()
	require.Equal(t, 7, writes[0].qty, "only the final quantity is written")

	time.Sleep(60 * time.Millisecond)
	require.Len(t, rec.snapshot(), 1, "no trailing extra flush")
}

func TestDebouncerIndependentTimersPerItem(t *testing.T) {
	rec := &flushRecorder{}
	d := cart.NewDebouncer(25*time.Millisecond, rec.flush)
	defer d.Close()

	d.Queue("acct", "p1", 5)
	time.Sleep(15 * time.Millisecond)
	// Editing p2 must not reset p1's timer.
	d.Queue("acct", "p2", 9)

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	writes := rec.snapshot()
	require.Equal(t, "p1", writes[0].product)
	require.Equal(t, 5, writes[0].qty)
	require.Equal(t, "p2", writes[1].product)
	require.Equal(t, 9, writes[1].qty)
}

func TestDebouncerPendingOverlay(t *testing.T) {
	rec := &flushRecorder{}
	d := cart.NewDebouncer(time.Hour, rec.flush)
	defer d.Close()

	d.Queue("acct", "p1", 12)
	qty, ok := d.Pending("acct", "p1")
	require.True(t, ok)
	require.Equal(t, 12, qty)

	_, ok = d.Pending("acct", "p2")
	require.False(t, ok)
}

func TestDebouncerCancelDropsOnlyThatItem(t *testing.T) {
	rec := &flushRecorder{}
	d := cart.NewDebouncer(20*time.Millisecond, rec.flush)
	defer d.Close()

	d.Queue("acct", "p1", 4)
	d.Queue("acct", "p2", 8)
	d.Cancel("acct", "p1")

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "p2", rec.snapshot()[0].product)

	_, ok := d.Pending("acct", "p1")
	require.False(t, ok)
}

func TestDebouncerCancelAccount(t *testing.T) {
	rec := &flushRecorder{}
	d := cart.NewDebouncer(20*time.Millisecond, rec.flush)
	defer d.Close()

	d.Queue("a1", "p1", 4)
	d.Queue("a1", "p2", 5)
	d.Queue("a2", "p1", 6)
	d.CancelAccount("a1")

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "a2", rec.snapshot()[0].account)
}

func TestDebouncerCloseDropsEverything(t *testing.T) {
	rec := &flushRecorder{}
	d := cart.NewDebouncer(10*time.Millisecond, rec.flush)

	d.Queue("acct", "p1", 4)
	d.Close()
	d.Queue("acct", "p2", 5)

	time.Sleep(40 * time.Millisecond)
	require.Empty(t, rec.snapshot())
}
