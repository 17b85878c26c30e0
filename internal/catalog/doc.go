// Package catalog holds the product catalog backing the shop listing, the
// cart and the favorites snapshots.
package catalog
