package loan

import (
	"fmt"
	"loan-ledger/internal/pkg/apperrors"
	"math"
)

type Money = float64

// PeriodicPayment computes the fixed monthly payment that fully amortizes
// principal at monthlyRatePercent per month over termMonths payments.
// A zero rate degrades to straight-line division of the principal.
func PeriodicPayment(principal Money, monthlyRatePercent float64, termMonths int) (Money, error) {
	if termMonths <= 0 {
		return 0, fmt.Errorf("%w: term months must be positive", apperrors.ErrInvalidArgument)
	}

	rate := monthlyRatePercent / 100
	if rate == 0 {
		return principal / float64(termMonths), nil
	}

	compound := math.Pow(1+rate, float64(termMonths))
	return principal * rate * compound / (compound - 1), nil
}

// Preview is the quote for a prospective loan, computable without touching
// the ledger.
type Preview struct {
	PeriodicPayment Money
	TotalPayable    Money
	TotalInterest   Money
}

func ComputePreview(principal Money, monthlyRatePercent float64, termMonths int) (Preview, error) {
	payment, err := PeriodicPayment(principal, monthlyRatePercent, termMonths)
	if err != nil {
		return Preview{}, err
	}

	total := payment * float64(termMonths)
	return Preview{
		PeriodicPayment: payment,
		TotalPayable:    total,
		TotalInterest:   total - principal,
	}, nil
}
