package library

import "time"

// Fine computes the amount owed for a loan with the given due date when the
// book comes back (or is assessed) on asOf. Dates are calendar days; the
// time-of-day components are ignored.
//
// A book returned on or before its due date owes nothing. After that, every
// started day counts: due 2024-01-10, returned 2024-01-13 is 3 days overdue.
// For an active loan the caller passes the current date and the result is
// advisory only; nothing is persisted until the loan closes.
func Fine(dueDate, asOf time.Time, dailyRate float64) float64 {
	return float64(DaysOverdue(dueDate, asOf)) * dailyRate
}

// DaysOverdue counts the whole calendar days strictly after dueDate up to and
// including asOf. It is zero when asOf is on or before dueDate.
func DaysOverdue(dueDate, asOf time.Time) int {
	due := toDate(dueDate)
	at := toDate(asOf)
	if !at.After(due) {
		return 0
	}
	return int(at.Sub(due) / (24 * time.Hour))
}

// FineFor applies the configured daily rate to a loan as of the given date,
// using the recorded return date for closed loans.
func (d *Database) FineFor(l *Loan, asOf time.Time) float64 {
	if l.ReturnDate != nil {
		asOf = *l.ReturnDate
	}
	return Fine(l.DueDate, asOf, d.cfg.DailyFineRate)
}
