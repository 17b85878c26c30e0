package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	cartdomain "github.com/tair/storefront/internal/cart/domain"
	"github.com/tair/storefront/internal/checkout/domain"
	"github.com/tair/storefront/kafka"
	"github.com/tair/storefront/pkg/logger"
)

// Route targets produced by the machine.
const (
	ProductListingPath = "/shop/products"
	ShippingPath       = "/checkout/shipping"
	ReviewPath         = "/checkout/review"
	PaymentPath        = "/checkout/payment"
)

// OrderPublisher emits the order placed event when a checkout completes.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, event kafka.OrderPlacedEvent) error
}

// Machine enforces the checkout step order. The machine, not the URL, is the
// single source of truth for whether a step may render: the delivery layer
// must ask Resolve before showing any step, so skipping ahead by typing a
// path is impossible.
type Machine struct {
	cart      cartdomain.CartStore
	publisher OrderPublisher

	mu      sync.Mutex
	session *domain.Session
}

// NewMachine creates a checkout machine over the cart. publisher may be nil;
// completion then skips event emission.
func NewMachine(cart cartdomain.CartStore, publisher OrderPublisher) *Machine {
	return &Machine{cart: cart, publisher: publisher}
}

// Enter dispatches the checkout root. An empty cart goes back to the product
// listing; otherwise a checkout session starts at the shipping step. The
// decision waits for cart hydration first: an unknown cart is not an empty
// cart.
func (m *Machine) Enter() domain.Decision {
	if !m.cart.Hydrated() {
		return domain.Decision{Kind: domain.Wait}
	}
	if m.cart.IsEmpty() {
		m.discard()
		return domain.Decision{Kind: domain.Redirect, Target: ProductListingPath}
	}

	m.mu.Lock()
	m.ensureSessionLocked()
	m.mu.Unlock()

	return domain.Decision{Kind: domain.Redirect, Target: ShippingPath}
}

// Resolve decides whether the given step may render right now. Every step
// re-checks the cart, so emptying it mid-flow absorbs the whole checkout
// into a redirect back to the listing.
func (m *Machine) Resolve(step domain.Step) domain.Decision {
	if !m.cart.Hydrated() {
		return domain.Decision{Kind: domain.Wait}
	}
	if m.cart.IsEmpty() {
		m.discard()
		return domain.Decision{Kind: domain.Redirect, Target: ProductListingPath}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureSessionLocked()

	switch step {
	case domain.StepShipping:
		return domain.Decision{Kind: domain.Proceed}
	case domain.StepReview:
		if m.session.Shipping == nil {
			return domain.Decision{Kind: domain.Redirect, Target: ShippingPath}
		}
		return domain.Decision{Kind: domain.Proceed}
	case domain.StepPayment:
		if m.session.Shipping == nil {
			return domain.Decision{Kind: domain.Redirect, Target: ShippingPath}
		}
		if !m.session.Reviewed {
			return domain.Decision{Kind: domain.Redirect, Target: ReviewPath}
		}
		return domain.Decision{Kind: domain.Proceed}
	default:
		return domain.Decision{Kind: domain.Redirect, Target: ShippingPath}
	}
}

// SubmitShipping stores validated shipping data and advances to review.
// Invalid input is rejected with no partial mutation.
func (m *Machine) SubmitShipping(info domain.ShippingInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	if !m.cart.Hydrated() {
		return domain.ErrCartNotHydrated
	}
	if m.cart.IsEmpty() {
		return domain.ErrCartEmpty
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureSessionLocked()
	m.session.Shipping = &info
	m.session.Reviewed = false
	m.session.Step = domain.StepReview
	return nil
}

// ConfirmReview records the explicit review confirmation and advances to
// payment.
func (m *Machine) ConfirmReview() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || m.session.Shipping == nil {
		return domain.ErrShippingRequired
	}
	m.session.Reviewed = true
	m.session.Step = domain.StepPayment
	return nil
}

// CompletePayment finishes the checkout after the external payment
// collaborator has confirmed. The cart is cleared, the order placed event is
// published, and the checkout session is discarded. The order id is
// returned.
func (m *Machine) CompletePayment(ctx context.Context, userID uint) (string, error) {
	m.mu.Lock()
	if m.session == nil || m.session.Shipping == nil {
		m.mu.Unlock()
		return "", domain.ErrShippingRequired
	}
	if !m.session.Reviewed {
		m.mu.Unlock()
		return "", domain.ErrReviewRequired
	}
	m.session.Step = domain.StepCompleted
	m.mu.Unlock()

	items := m.cart.Items()
	if len(items) == 0 {
		return "", domain.ErrCartEmpty
	}

	orderID := uuid.NewString()
	lines := make([]kafka.OrderLine, 0, len(items))
	count := 0
	for _, item := range items {
		lines = append(lines, kafka.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
		count += item.Quantity
	}

	if m.publisher != nil {
		event := kafka.OrderPlacedEvent{
			OrderID:   orderID,
			UserID:    userID,
			Lines:     lines,
			ItemCount: count,
		}
		if err := m.publisher.PublishOrderPlaced(ctx, event); err != nil {
			// The order itself succeeded; downstream consumers catch up
			// from the next event.
			logger.Error(ctx).Err(err).Str("order_id", orderID).Msg("Failed to publish order placed event")
		}
	}

	if err := m.cart.Clear(); err != nil {
		return "", fmt.Errorf("failed to clear cart: %w", err)
	}

	m.discard()
	return orderID, nil
}

// Leave discards the checkout session when the shopper navigates away.
func (m *Machine) Leave() {
	m.discard()
}

// Session returns a copy of the current checkout session, or nil when no
// checkout is in progress.
func (m *Machine) Session() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil
	}
	cp := *m.session
	if m.session.Shipping != nil {
		shipping := *m.session.Shipping
		cp.Shipping = &shipping
	}
	return &cp
}

func (m *Machine) ensureSessionLocked() {
	if m.session == nil {
		m.session = &domain.Session{
			ID:   uuid.NewString(),
			Step: domain.StepShipping,
		}
	}
}

func (m *Machine) discard() {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
}
