package finance

import "time"

// ExchangeDeadlines are the statutory 1031 windows measured from the sale
// closing date: 45 days to identify replacement property, 180 days to close.
type ExchangeDeadlines struct {
	IdentificationDeadline time.Time `json:"identification_deadline"`
	ClosingDeadline        time.Time `json:"closing_deadline"`
}

func Calculate1031Deadlines(saleCloseDate time.Time) ExchangeDeadlines {
	return ExchangeDeadlines{
		IdentificationDeadline: saleCloseDate.AddDate(0, 0, 45),
		ClosingDeadline:        saleCloseDate.AddDate(0, 0, 180),
	}
}
