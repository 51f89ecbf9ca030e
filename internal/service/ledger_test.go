package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

func TestRecompute(t *testing.T) {
	cases := []struct {
		name    string
		in      models.Finance
		final   int64
		pending int64
		disc    int64
	}{
		{name: "plain", in: models.Finance{TotalFee: 50000, PaidAmount: 10000}, final: 50000, pending: 40000},
		{name: "discount", in: models.Finance{TotalFee: 50000, ScholarshipDiscount: 10000, PaidAmount: 10000}, final: 40000, pending: 30000, disc: 10000},
		{name: "discount above fee", in: models.Finance{TotalFee: 1000, ScholarshipDiscount: 5000}, final: 0, pending: 0, disc: 5000},
		{name: "negative discount", in: models.Finance{TotalFee: 1000, ScholarshipDiscount: -10}, final: 1000, pending: 1000, disc: -10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := tc.in
			Recompute(&f)
			assert.Equal(t, tc.disc, f.ScholarshipDiscount)
			assert.Equal(t, tc.final, f.FinalPayableFee)
			assert.Equal(t, tc.pending, f.PendingAmount)
		})
	}
}

func TestScholarshipDiscount(t *testing.T) {
	assert.Equal(t, int64(10000), ScholarshipDiscount(models.Scholarship{Amount: 20, AmountType: models.AmountPercentage}, 50000))
	assert.Equal(t, int64(7500), ScholarshipDiscount(models.Scholarship{Amount: 7500, AmountType: models.AmountFixed}, 50000))
	assert.Equal(t, int64(3), ScholarshipDiscount(models.Scholarship{Amount: 25, AmountType: models.AmountPercentage}, 10))
}
