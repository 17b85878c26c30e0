package domain

import (
	"errors"
	"fmt"
)

// Step is a stage of the checkout flow. The flow is strictly ordered:
// shipping, then review, then payment. Completion is terminal.
type Step string

const (
	StepShipping  Step = "shipping"
	StepReview    Step = "review"
	StepPayment   Step = "payment"
	StepCompleted Step = "completed"
)

// ParseStep maps the last path segment of a checkout route to a Step.
func ParseStep(segment string) (Step, bool) {
	switch Step(segment) {
	case StepShipping, StepReview, StepPayment:
		return Step(segment), true
	}
	return "", false
}

// ShippingInfo is the address collected at the shipping step.
type ShippingInfo struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Validate checks the structural validity of the shipping form.
func (s ShippingInfo) Validate() error {
	if s.FullName == "" {
		return fmt.Errorf("full name is required")
	}
	if s.Address == "" {
		return fmt.Errorf("address is required")
	}
	if s.City == "" {
		return fmt.Errorf("city is required")
	}
	if s.PostalCode == "" {
		return fmt.Errorf("postal code is required")
	}
	if s.Country == "" {
		return fmt.Errorf("country is required")
	}
	return nil
}

// Session is the transient state of one checkout attempt. It lives in
// memory only and is reconstructed per attempt; it does not survive a
// process restart.
type Session struct {
	ID       string        `json:"id"`
	Step     Step          `json:"step"`
	Shipping *ShippingInfo `json:"shipping,omitempty"`
	Reviewed bool          `json:"reviewed"`
}

// Guard errors surfaced by the machine.
var (
	ErrCartEmpty        = errors.New("cart is empty")
	ErrCartNotHydrated  = errors.New("cart has not finished loading")
	ErrShippingRequired = errors.New("shipping information is required")
	ErrReviewRequired   = errors.New("order review must be confirmed")
)

// DecisionKind classifies the outcome of a step guard.
type DecisionKind int

const (
	// Proceed renders the requested step.
	Proceed DecisionKind = iota
	// Redirect bounces to Target.
	Redirect
	// Wait defers until the cart has hydrated; an unknown cart must not be
	// treated as an empty one.
	Wait
)

// Decision is the outcome of evaluating a checkout step guard.
type Decision struct {
	Kind   DecisionKind
	Target string
}
