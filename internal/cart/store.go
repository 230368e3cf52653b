package cart

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Skotchmaster/min_commerce/internal/models"
)

// Line is one product/quantity pair in a cart. Quantity is at least 1;
// a line that would drop below 1 is removed instead.
type Line struct {
	Product  models.Product `json:"product"`
	Quantity uint           `json:"quantity"`
}

// Store owns the cart state for a single shopper. It is not safe for
// concurrent use: mutations come from discrete user actions, one at a
// time, and every successful mutation is fully persisted before the
// store is read again.
//
// The store trusts callers on stock: the only authoritative stock check
// happens at order placement.
type Store struct {
	storage Storage
	log     *slog.Logger
	lines   []Line
	open    bool
}

// NewStore hydrates a cart from storage. A missing or corrupt payload
// yields an empty cart; corruption is logged and discarded, never
// returned to the caller.
func NewStore(ctx context.Context, storage Storage, log *slog.Logger) *Store {
	s := &Store{storage: storage, log: log}
	if log == nil {
		s.log = slog.Default()
	}

	data, err := storage.Load(ctx)
	if err != nil {
		if err != ErrNotFound {
			s.log.Warn("cart_load_failed", "error", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.lines); err != nil {
		s.log.Warn("cart_payload_corrupt", "error", err)
		s.lines = nil
	}
	return s
}

// AddItem merges into the existing line for the product, or appends a
// new one. Adding always opens the cart.
func (s *Store) AddItem(ctx context.Context, product models.Product, quantity uint) {
	if quantity < 1 {
		quantity = 1
	}
	merged := false
	for i := range s.lines {
		if s.lines[i].Product.ID == product.ID {
			s.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, Line{Product: product, Quantity: quantity})
	}
	s.open = true
	s.persist(ctx)
}

func (s *Store) RemoveItem(ctx context.Context, productID uint) {
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// UpdateQuantity sets the line's quantity directly. Zero or negative
// removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID uint, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID)
		return
	}
	for i := range s.lines {
		if s.lines[i].Product.ID == productID {
			s.lines[i].Quantity = uint(quantity)
			s.persist(ctx)
			return
		}
	}
}

func (s *Store) Clear(ctx context.Context) {
	s.lines = nil
	s.persist(ctx)
}

func (s *Store) TotalItems() uint {
	var total uint
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

func (s *Store) TotalPrice() float64 {
	var total float64
	for _, l := range s.lines {
		total += l.Product.Price * float64(l.Quantity)
	}
	return total
}

func (s *Store) Contains(productID uint) bool {
	for _, l := range s.lines {
		if l.Product.ID == productID {
			return true
		}
	}
	return false
}

// Items returns a copy of the current lines.
func (s *Store) Items() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) OpenCart()    { s.open = true }
func (s *Store) CloseCart()   { s.open = false }
func (s *Store) IsOpen() bool { return s.open }

// persist writes the full line list under the fixed key. A write failure
// keeps the in-memory state and is only logged: the cart is a local
// cache, losing durability must not break the shopper's session.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.lines)
	if err != nil {
		s.log.Error("cart_marshal_failed", "error", err)
		return
	}
	if err := s.storage.Save(ctx, data); err != nil {
		s.log.Warn("cart_save_failed", "error", err)
	}
}
