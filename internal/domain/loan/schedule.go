package loan

import (
	"fmt"
	"time"

	"loan-ledger/internal/pkg/apperrors"
)

// GenerateSchedule builds the ordered installment sequence for a loan
// starting at startDate. Due date k is startDate advanced by k calendar
// months; AddDate rolls overflowing days forward across month and year
// boundaries (Jan 31 + 1 month lands in early March). Every installment
// carries the same amount; no remainder is swept into the last one.
func GenerateSchedule(startDate time.Time, periodicPayment Money, termMonths int) ([]Installment, error) {
	if termMonths <= 0 || periodicPayment <= 0 {
		return nil, fmt.Errorf("%w: invalid terms for schedule generation", apperrors.ErrInvalidArgument)
	}

	schedule := make([]Installment, 0, termMonths)
	for seq := 1; seq <= termMonths; seq++ {
		schedule = append(schedule, Installment{
			SequenceNumber: seq,
			DueDate:        startDate.AddDate(0, seq, 0),
			Amount:         periodicPayment,
			IsSettled:      false,
		})
	}

	return schedule, nil
}
