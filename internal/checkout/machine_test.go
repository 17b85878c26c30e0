package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/tair/storefront/internal/cart/domain"
	cartrepo "github.com/tair/storefront/internal/cart/repository"
	"github.com/tair/storefront/internal/checkout"
	"github.com/tair/storefront/internal/checkout/domain"
	storagerepo "github.com/tair/storefront/internal/storage/repository"
	"github.com/tair/storefront/kafka"
)

// recordingPublisher captures order placed events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.OrderPlacedEvent
	fail   error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, event kafka.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []kafka.OrderPlacedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]kafka.OrderPlacedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// unhydratedCart reports an initial load that never finishes.
type unhydratedCart struct {
	cartdomain.CartStore
}

func (unhydratedCart) Hydrated() bool { return false }

func newCheckoutCart(t *testing.T) *cartrepo.SlotStore {
	t.Helper()

	store := storagerepo.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	cart := cartrepo.NewSlotStore(context.Background(), store)
	t.Cleanup(cart.Close)
	return cart
}

func validShipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		FullName:   "Ada Lovelace",
		Address:    "12 Analytical Way",
		City:       "London",
		PostalCode: "N1 9GU",
		Country:    "UK",
	}
}

// TestMachineEnter covers the checkout root dispatch: unknown carts wait,
// empty carts bounce to the listing, non-empty carts start at shipping.
func TestMachineEnter(t *testing.T) {
	t.Parallel()

	t.Run("waits for cart hydration", func(t *testing.T) {
		t.Parallel()

		m := checkout.NewMachine(unhydratedCart{}, nil)
		decision := m.Enter()
		assert.Equal(t, domain.Wait, decision.Kind)
		assert.Nil(t, m.Session())
	})

	t.Run("empty cart redirects to the product listing", func(t *testing.T) {
		t.Parallel()

		cart := newCheckoutCart(t)
		m := checkout.NewMachine(cart, nil)

		decision := m.Enter()
		assert.Equal(t, domain.Redirect, decision.Kind)
		assert.Equal(t, checkout.ProductListingPath, decision.Target)
		assert.Nil(t, m.Session())
	})

	t.Run("non-empty cart starts a session at shipping", func(t *testing.T) {
		t.Parallel()

		cart := newCheckoutCart(t)
		require.NoError(t, cart.Add(7, 2))
		m := checkout.NewMachine(cart, nil)

		decision := m.Enter()
		assert.Equal(t, domain.Redirect, decision.Kind)
		assert.Equal(t, checkout.ShippingPath, decision.Target)

		sess := m.Session()
		require.NotNil(t, sess)
		assert.NotEmpty(t, sess.ID)
		assert.Equal(t, domain.StepShipping, sess.Step)
	})
}

// TestMachineResolveBlocksStepSkipping verifies that asking for a later step
// directly bounces back to the earliest unmet prerequisite.
func TestMachineResolveBlocksStepSkipping(t *testing.T) {
	t.Parallel()

	cart := newCheckoutCart(t)
	require.NoError(t, cart.Add(7, 2))
	m := checkout.NewMachine(cart, nil)
	m.Enter()

	// No shipping yet: review and payment both bounce to shipping.
	decision := m.Resolve(domain.StepReview)
	assert.Equal(t, domain.Redirect, decision.Kind)
	assert.Equal(t, checkout.ShippingPath, decision.Target)

	decision = m.Resolve(domain.StepPayment)
	assert.Equal(t, domain.Redirect, decision.Kind)
	assert.Equal(t, checkout.ShippingPath, decision.Target)

	assert.Equal(t, domain.Proceed, m.Resolve(domain.StepShipping).Kind)

	// Shipping submitted but not reviewed: payment bounces to review.
	require.NoError(t, m.SubmitShipping(validShipping()))

	assert.Equal(t, domain.Proceed, m.Resolve(domain.StepReview).Kind)

	decision = m.Resolve(domain.StepPayment)
	assert.Equal(t, domain.Redirect, decision.Kind)
	assert.Equal(t, checkout.ReviewPath, decision.Target)

	require.NoError(t, m.ConfirmReview())
	assert.Equal(t, domain.Proceed, m.Resolve(domain.StepPayment).Kind)
}

// TestMachineResolveEmptiedCart verifies emptying the cart mid-flow absorbs
// every step into a redirect back to the listing and discards the session.
func TestMachineResolveEmptiedCart(t *testing.T) {
	t.Parallel()

	cart := newCheckoutCart(t)
	require.NoError(t, cart.Add(7, 2))
	m := checkout.NewMachine(cart, nil)
	m.Enter()
	require.NoError(t, m.SubmitShipping(validShipping()))

	require.NoError(t, cart.Clear())

	decision := m.Resolve(domain.StepReview)
	assert.Equal(t, domain.Redirect, decision.Kind)
	assert.Equal(t, checkout.ProductListingPath, decision.Target)
	assert.Nil(t, m.Session())
}

// TestMachineSubmitShipping covers validation and guard failures around the
// shipping step.
func TestMachineSubmitShipping(t *testing.T) {
	t.Parallel()

	t.Run("rejects incomplete forms without mutating the session", func(t *testing.T) {
		t.Parallel()

		cart := newCheckoutCart(t)
		require.NoError(t, cart.Add(7, 2))
		m := checkout.NewMachine(cart, nil)
		m.Enter()

		info := validShipping()
		info.City = ""
		require.Error(t, m.SubmitShipping(info))

		sess := m.Session()
		require.NotNil(t, sess)
		assert.Nil(t, sess.Shipping)
		assert.Equal(t, domain.StepShipping, sess.Step)
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		t.Parallel()

		cart := newCheckoutCart(t)
		m := checkout.NewMachine(cart, nil)

		err := m.SubmitShipping(validShipping())
		require.ErrorIs(t, err, domain.ErrCartEmpty)
	})

	t.Run("advances to review and resets the review flag", func(t *testing.T) {
		t.Parallel()

		cart := newCheckoutCart(t)
		require.NoError(t, cart.Add(7, 2))
		m := checkout.NewMachine(cart, nil)
		m.Enter()

		require.NoError(t, m.SubmitShipping(validShipping()))
		require.NoError(t, m.ConfirmReview())

		// Changing the address invalidates the earlier confirmation.
		require.NoError(t, m.SubmitShipping(validShipping()))

		sess := m.Session()
		require.NotNil(t, sess)
		assert.Equal(t, domain.StepReview, sess.Step)
		assert.False(t, sess.Reviewed)
	})
}

// TestMachineConfirmReviewRequiresShipping verifies review cannot be
// confirmed before shipping exists.
func TestMachineConfirmReviewRequiresShipping(t *testing.T) {
	t.Parallel()

	cart := newCheckoutCart(t)
	require.NoError(t, cart.Add(7, 2))
	m := checkout.NewMachine(cart, nil)
	m.Enter()

	err := m.ConfirmReview()
	require.ErrorIs(t, err, domain.ErrShippingRequired)
}

// TestMachineCompletePayment walks the happy path end to end: the order is
// placed, the event published with the cart contents, the cart cleared, and
// the session discarded.
func TestMachineCompletePayment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cart := newCheckoutCart(t)
	require.NoError(t, cart.Add(7, 2))
	require.NoError(t, cart.Add(9, 1))

	publisher := &recordingPublisher{}
	m := checkout.NewMachine(cart, publisher)
	m.Enter()
	require.NoError(t, m.SubmitShipping(validShipping()))
	require.NoError(t, m.ConfirmReview())

	orderID, err := m.CompletePayment(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, orderID, events[0].OrderID)
	assert.Equal(t, uint(42), events[0].UserID)
	assert.Equal(t, 3, events[0].ItemCount)
	assert.ElementsMatch(t, []kafka.OrderLine{
		{ProductID: 7, Quantity: 2},
		{ProductID: 9, Quantity: 1},
	}, events[0].Lines)

	assert.True(t, cart.IsEmpty())
	assert.Nil(t, m.Session())
}

// TestMachineCompletePaymentGuards covers the ordering guards in front of
// payment completion.
func TestMachineCompletePaymentGuards(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cart := newCheckoutCart(t)
	require.NoError(t, cart.Add(7, 2))
	m := checkout.NewMachine(cart, nil)
	m.Enter()

	_, err := m.CompletePayment(ctx, 42)
	require.ErrorIs(t, err, domain.ErrShippingRequired)

	require.NoError(t, m.SubmitShipping(validShipping()))

	_, err = m.CompletePayment(ctx, 42)
	require.ErrorIs(t, err, domain.ErrReviewRequired)
}

// TestMachineCompletePaymentSurvivesPublishFailure verifies a broken event
// pipeline does not fail the order itself.
func TestMachineCompletePaymentSurvivesPublishFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cart := newCheckoutCart(t)
	require.NoError(t, cart.Add(7, 2))

	publisher := &recordingPublisher{fail: errors.New("broker down")}
	m := checkout.NewMachine(cart, publisher)
	m.Enter()
	require.NoError(t, m.SubmitShipping(validShipping()))
	require.NoError(t, m.ConfirmReview())

	orderID, err := m.CompletePayment(ctx, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, orderID)
	assert.True(t, cart.IsEmpty())
}

// TestMachineLeaveDiscardsSession verifies navigating away abandons the
// checkout and a fresh entry starts over.
func TestMachineLeaveDiscardsSession(t *testing.T) {
	t.Parallel()

	cart := newCheckoutCart(t)
	require.NoError(t, cart.Add(7, 2))
	m := checkout.NewMachine(cart, nil)
	m.Enter()
	require.NoError(t, m.SubmitShipping(validShipping()))

	first := m.Session()
	require.NotNil(t, first)

	m.Leave()
	assert.Nil(t, m.Session())

	m.Enter()
	second := m.Session()
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Nil(t, second.Shipping)
}
