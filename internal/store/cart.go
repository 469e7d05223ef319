package store

import (
	"log/slog"
	"math"
	"strings"
	"sync"

	domainErrors "github.com/polkiloo/marketclient/internal/domain/errors"
	"github.com/polkiloo/marketclient/internal/domain/model"
	"github.com/polkiloo/marketclient/internal/pkg/observer"
)

// CartStore holds the lines of the active order session.
type CartStore struct {
	logger *slog.Logger
	hub    *observer.Hub[model.Cart]

	mu    sync.Mutex
	lines []model.CartLine
}

// NewCartStore creates an empty cart.
func NewCartStore(logger *slog.Logger) *CartStore {
	return &CartStore{
		logger: logger,
		hub:    observer.NewHub[model.Cart](),
	}
}

// AddOne adds a single unit of the product.
func (c *CartStore) AddOne(productID string, unitPrice int64, metadata model.Metadata) error {
	return c.AddItem(productID, unitPrice, 1, metadata)
}

// AddItem appends a line or, if the product is present, increases its quantity.
// The unit price and non-nil metadata of an existing line are replaced.
func (c *CartStore) AddItem(productID string, unitPrice int64, quantity int, metadata model.Metadata) error {
	const op = "cart.add_item"

	productID = strings.TrimSpace(productID)
	switch {
	case productID == "":
		return domainErrors.NewStateError(op, domainErrors.ErrInvalidProduct)
	case quantity <= 0:
		return domainErrors.NewStateError(op, domainErrors.ErrInvalidQuantity)
	case unitPrice < 0:
		return domainErrors.NewStateError(op, domainErrors.ErrInvalidPrice)
	}

	c.mu.Lock()
	i := c.indexLocked(productID)
	line := model.CartLine{ProductID: productID, UnitPrice: unitPrice, Quantity: quantity, Metadata: copyMetadata(metadata)}
	if i >= 0 {
		existing := c.lines[i]
		if existing.Quantity > math.MaxInt-quantity {
			c.mu.Unlock()
			return domainErrors.NewStateError(op, domainErrors.ErrCartOverflow)
		}
		line.Quantity += existing.Quantity
		if metadata == nil {
			line.Metadata = existing.Metadata
		}
	}
	if !c.fitsLocked(i, line) {
		c.mu.Unlock()
		return domainErrors.NewStateError(op, domainErrors.ErrCartOverflow)
	}
	if i >= 0 {
		c.lines[i] = line
	} else {
		c.lines = append(c.lines, line)
	}
	c.publishLocked()
	return nil
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
// It reports whether the cart changed.
func (c *CartStore) UpdateQuantity(productID string, quantity int) (bool, error) {
	const op = "cart.update_quantity"

	productID = strings.TrimSpace(productID)
	if quantity <= 0 {
		return c.RemoveItem(productID), nil
	}

	c.mu.Lock()
	i := c.indexLocked(productID)
	if i < 0 {
		c.mu.Unlock()
		return false, domainErrors.NewStateError(op, domainErrors.ErrLineNotFound)
	}
	if c.lines[i].Quantity == quantity {
		c.mu.Unlock()
		return false, nil
	}
	line := c.lines[i]
	line.Quantity = quantity
	if !c.fitsLocked(i, line) {
		c.mu.Unlock()
		return false, domainErrors.NewStateError(op, domainErrors.ErrCartOverflow)
	}
	c.lines[i].Quantity = quantity
	c.publishLocked()
	return true, nil
}

// RemoveItem drops the line for productID and reports whether one was present.
func (c *CartStore) RemoveItem(productID string) bool {
	productID = strings.TrimSpace(productID)

	c.mu.Lock()
	i := c.indexLocked(productID)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
	c.publishLocked()
	return true
}

// Clear removes every line and reports whether the cart held any.
func (c *CartStore) Clear() bool {
	c.mu.Lock()
	if len(c.lines) == 0 {
		c.mu.Unlock()
		return false
	}
	c.lines = nil
	c.publishLocked()
	c.logger.Info("cart cleared")
	return true
}

// Snapshot returns a copy of the cart.
func (c *CartStore) Snapshot() model.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.Cart{Lines: c.lines}.Clone()
}

// Count returns the total number of units.
func (c *CartStore) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.Cart{Lines: c.lines}.Count()
}

// Total returns the cart total in minor units.
func (c *CartStore) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.Cart{Lines: c.lines}.Total()
}

// Subscribe registers fn for every cart change.
func (c *CartStore) Subscribe(fn func(model.Cart)) (unsubscribe func()) {
	return c.hub.Subscribe(fn)
}

func (c *CartStore) indexLocked(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// fitsLocked reports whether the cart stays in range with line stored at
// index i, or appended when i is negative.
func (c *CartStore) fitsLocked(i int, line model.CartLine) bool {
	lines := make([]model.CartLine, len(c.lines), len(c.lines)+1)
	copy(lines, c.lines)
	if i < 0 {
		lines = append(lines, line)
	} else {
		lines[i] = line
	}
	return model.Cart{Lines: lines}.InRange()
}

// publishLocked queues the new state, releases c.mu and delivers it.
func (c *CartStore) publishLocked() {
	c.hub.Enqueue(model.Cart{Lines: c.lines}.Clone())
	c.mu.Unlock()
	c.hub.Drain()
}

func copyMetadata(m model.Metadata) model.Metadata {
	if m == nil {
		return nil
	}
	out := make(model.Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
