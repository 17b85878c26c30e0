package domain

import "errors"

// Line is a cart line: one product and how many of it. Quantity is always
// at least 1; a quantity reduced to 0 removes the line.
type Line struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Validation errors surfaced to callers. Invalid input never mutates the
// cart.
var (
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	ErrLineNotFound     = errors.New("product not in cart")
)

// CartStore is the mutation and read surface of the shopper's cart.
// Mutations are synchronous: the derived reads reflect them before the call
// returns. Updates from other processes sharing the slot arrive eventually;
// concurrent read-modify-write across processes is last-write-wins by
// explicit policy.
type CartStore interface {
	Add(productID uint, quantity int) error
	SetQuantity(productID uint, quantity int) error
	Remove(productID uint) error
	Clear() error

	Items() []Line
	ItemCount() int
	IsEmpty() bool

	// Hydrated reports whether the initial load from the slot has finished.
	// An unknown cart must not be mistaken for an empty one.
	Hydrated() bool

	// Subscribe registers fn for cart changes, local and remote.
	Subscribe(fn func()) (unsubscribe func())
}
