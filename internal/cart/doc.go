// Package cart holds the shopper's cart: a persisted product-to-quantity
// mapping with synchronous mutations and cross-context change propagation.
package cart
