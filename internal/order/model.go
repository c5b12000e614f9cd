package order

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sourcemart/storefront-api/internal/cart"
	"github.com/sourcemart/storefront-api/internal/pricing"
)

// Status values for an order's lifecycle.
const (
	StatusCreated = "created"
	StatusPaid    = "paid"
)

// Recipient is the validated delivery contact for an order.
type Recipient struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Phone   string `json:"phone" validate:"required,min=8,max=16"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required,min=5"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required,numeric,len=6"`
}

// Input is the checkout request body.
type Input struct {
	Recipient
	Source string `json:"source" validate:"required"`
}

// Order is a placed order: a priced snapshot of the cart at checkout time.
type Order struct {
	ID         string          `json:"id"`
	AccountKey string          `json:"-"`
	Recipient  Recipient       `json:"recipient"`
	Source     pricing.Source  `json:"source"`
	Items      []cart.LineItem `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Store holds placed orders in memory, keyed by order id.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*Order
}

// NewStore constructs an empty order store.
func NewStore() *Store {
	return &Store{orders: make(map[string]*Order)}
}

// Put saves an order.
func (s *Store) Put(o *Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

// Get returns the order for id, or nil when unknown.
func (s *Store) Get(id string) *Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders[id]
}

// SetStatus updates an order's status, reporting whether it existed.
func (s *Store) SetStatus(id, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return false
	}
	o.Status = status
	return true
}

// newObjectID generates a Mongo-style object id: a 4-byte timestamp
// prefix plus 8 random bytes, hex encoded. The upstream order service the
// storefront talks to issues ids in this format.
func newObjectID(now time.Time) string {
	var raw [12]byte
	binary.BigEndian.PutUint32(raw[:4], uint32(now.Unix()))
	if _, err := rand.Read(raw[4:]); err != nil {
		// crypto/rand failing is unrecoverable
		panic(err)
	}
	return hex.EncodeToString(raw[:])
}
