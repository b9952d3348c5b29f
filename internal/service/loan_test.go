package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnuityPayment(t *testing.T) {
	tests := []struct {
		name       string
		principal  float64
		rate       float64
		termMonths int
		want       float64
	}{
		{
			name:      "standard one year loan",
			principal: 100000, rate: 12, termMonths: 12,
			want: 8884.88,
		},
		{
			name:      "three year consumer loan",
			principal: 300000, rate: 9.5, termMonths: 36,
			want: 9609.85,
		},
		{
			name:      "zero rate degrades to straight line",
			principal: 1200, rate: 0, termMonths: 12,
			want: 100,
		},
		{
			name:      "single payment returns principal plus one month interest",
			principal: 1000, rate: 12, termMonths: 1,
			want: 1010,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := annuityPayment(tt.principal, tt.rate, tt.termMonths)
			assert.InDelta(t, tt.want, got, 0.05)
		})
	}
}

func TestAnnuityPayment_CoversPrincipal(t *testing.T) {
	// The schedule total must never undershoot the principal.
	monthly := annuityPayment(50000, 15, 24)
	assert.GreaterOrEqual(t, monthly*24, 50000.0)
}
