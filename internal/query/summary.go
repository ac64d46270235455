package query

import (
	"github.com/Veraticus/schoolpay/internal/model"
	"github.com/shopspring/decimal"
)

// Summary aggregates a result set.
type Summary struct {
	ByStatus         map[model.Status]int
	TotalAmount      decimal.Decimal
	SuccessfulAmount decimal.Decimal
	Count            int
	SuccessfulCount  int
}

// Summarize totals rows. Amounts use the settled amount, falling back to the
// ordered amount; absent amounts count as zero.
func Summarize(rows []model.Transaction) Summary {
	s := Summary{ByStatus: make(map[model.Status]int)}
	for i := range rows {
		tx := &rows[i]
		amount := decimal.Zero
		if a := tx.Amount(); a.Valid {
			amount = a.Decimal
		}

		s.Count++
		s.TotalAmount = s.TotalAmount.Add(amount)
		s.ByStatus[tx.Status]++

		if tx.Status.IsSuccessful() {
			s.SuccessfulCount++
			s.SuccessfulAmount = s.SuccessfulAmount.Add(amount)
		}
	}
	return s
}

// Stats converts the summary into the API statistics shape.
func (s Summary) Stats(schoolID string) model.SchoolStats {
	return model.SchoolStats{
		SchoolID:         schoolID,
		ByStatus:         s.ByStatus,
		TotalCount:       s.Count,
		TotalAmount:      s.TotalAmount,
		SuccessfulCount:  s.SuccessfulCount,
		SuccessfulAmount: s.SuccessfulAmount,
	}
}
