package cart

import (
	"sync"
	"time"
)

// FlushFunc commits a debounced quantity write to the authoritative store.
type FlushFunc func(accountKey, productID string, qty int)

type debounceKey struct {
	account string
	product string
}

// Debouncer coalesces rapid quantity edits into a single authoritative
// write per line item. Each (account, product) pair carries its own timer
// so edits to one item never delay edits to another. Pending quantities
// stay readable until the flush fires so reads can overlay them.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	flush   FlushFunc
	timers  map[debounceKey]*time.Timer
	pending map[debounceKey]int
	closed  bool
}

// NewDebouncer constructs a debouncer with the given window.
func NewDebouncer(window time.Duration, flush FlushFunc) *Debouncer {
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	return &Debouncer{
		window:  window,
		flush:   flush,
		timers:  make(map[debounceKey]*time.Timer),
		pending: make(map[debounceKey]int),
	}
}

// Queue records the latest desired quantity for a line item and restarts
// its flush timer. The flush fires once, with the final quantity, after
// the window elapses with no further edits.
func (d *Debouncer) Queue(accountKey, productID string, qty int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	key := debounceKey{account: accountKey, product: productID}
	d.pending[key] = qty
	if timer, ok := d.timers[key]; ok {
		timer.Reset(d.window)
		return
	}
	d.timers[key] = time.AfterFunc(d.window, func() { d.fire(key) })
}

func (d *Debouncer) fire(key debounceKey) {
	d.mu.Lock()
	qty, ok := d.pending[key]
	delete(d.pending, key)
	delete(d.timers, key)
	flush := d.flush
	d.mu.Unlock()
	if !ok || flush == nil {
		return
	}
	flush(key.account, key.product, qty)
}

// Pending returns the not-yet-flushed quantity for a line item, if any.
func (d *Debouncer) Pending(accountKey, productID string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	qty, ok := d.pending[debounceKey{account: accountKey, product: productID}]
	return qty, ok
}

// Cancel drops any pending write for a single line item. Timers for other
// items are untouched.
func (d *Debouncer) Cancel(accountKey, productID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked(debounceKey{account: accountKey, product: productID})
}

// CancelAccount drops every pending write for an account. Used when the
// cart is cleared at order placement.
func (d *Debouncer) CancelAccount(accountKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.pending {
		if key.account == accountKey {
			d.cancelLocked(key)
		}
	}
}

// Close cancels all pending timers. Queued edits after Close are dropped.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for key := range d.timers {
		d.cancelLocked(key)
	}
}

func (d *Debouncer) cancelLocked(key debounceKey) {
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
	delete(d.pending, key)
}
