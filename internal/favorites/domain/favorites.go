package domain

// Entry is a favorited product with a denormalized display snapshot, so the
// favorites view renders without a catalog join.
type Entry struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// FavoritesStore is a persisted set of product references. Toggle is the
// single mutation: applying it twice returns the store to its prior state.
// Enumeration order is stable for the lifetime of the in-memory snapshot;
// nothing more is guaranteed.
type FavoritesStore interface {
	Toggle(entry Entry) error

	Items() []Entry
	Count() int
	Contains(productID uint) bool

	Subscribe(fn func()) (unsubscribe func())
}
