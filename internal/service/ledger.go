package service

import (
	"math"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
)

// Recompute derives the payable and pending amounts of a ledger. The stored
// discount is the sum of approved scholarship amounts; only the part within
// [0, TotalFee] reduces FinalPayableFee. Every ledger mutation ends with a
// call to Recompute.
func Recompute(f *models.Finance) {
	if f == nil {
		return
	}
	discount := f.ScholarshipDiscount
	if discount < 0 {
		discount = 0
	}
	if discount > f.TotalFee {
		discount = f.TotalFee
	}
	f.FinalPayableFee = f.TotalFee - discount
	f.PendingAmount = f.FinalPayableFee - f.PaidAmount
}

// ScholarshipDiscount converts a scholarship into an amount against totalFee.
// Percentage amounts are rounded half away from zero to whole minor units.
func ScholarshipDiscount(s models.Scholarship, totalFee int64) int64 {
	switch s.AmountType {
	case models.AmountPercentage:
		return int64(math.Round(float64(totalFee) * float64(s.Amount) / 100))
	default:
		return s.Amount
	}
}
