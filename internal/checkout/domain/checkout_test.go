package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront/internal/checkout/domain"
)

// TestParseStep maps path segments to steps; completed is terminal and never
// routable.
func TestParseStep(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		segment string
		want    domain.Step
		ok      bool
	}{
		{segment: "shipping", want: domain.StepShipping, ok: true},
		{segment: "review", want: domain.StepReview, ok: true},
		{segment: "payment", want: domain.StepPayment, ok: true},
		{segment: "completed", ok: false},
		{segment: "confirm", ok: false},
		{segment: "", ok: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run("segment "+tc.segment, func(t *testing.T) {
			t.Parallel()

			got, ok := domain.ParseStep(tc.segment)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

// TestShippingInfoValidate verifies every field is required.
func TestShippingInfoValidate(t *testing.T) {
	t.Parallel()

	valid := domain.ShippingInfo{
		FullName:   "Ada Lovelace",
		Address:    "12 Analytical Way",
		City:       "London",
		PostalCode: "N1 9GU",
		Country:    "UK",
	}
	require.NoError(t, valid.Validate())

	testCases := []struct {
		name   string
		mutate func(*domain.ShippingInfo)
	}{
		{name: "missing full name", mutate: func(s *domain.ShippingInfo) { s.FullName = "" }},
		{name: "missing address", mutate: func(s *domain.ShippingInfo) { s.Address = "" }},
		{name: "missing city", mutate: func(s *domain.ShippingInfo) { s.City = "" }},
		{name: "missing postal code", mutate: func(s *domain.ShippingInfo) { s.PostalCode = "" }},
		{name: "missing country", mutate: func(s *domain.ShippingInfo) { s.Country = "" }},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			info := valid
			tc.mutate(&info)
			assert.Error(t, info.Validate())
		})
	}
}
