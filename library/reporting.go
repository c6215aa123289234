package library

import (
	"database/sql"
	"time"
)

// Reporting view: read-only aggregation over the catalog and loan tables.

// GetStats returns the dashboard aggregates. Overdue counts are taken as of
// the given date. TotalFines sums the fines of settled loans only; advisory
// fines on still-active loans are not included.
func (d *Database) GetStats(asOf time.Time) (*Stats, error) {
	var s Stats
	queries := []struct {
		dst  any
		q    string
		args []any
	}{
		{&s.TotalBooks, `SELECT COUNT(*) FROM books`, nil},
		{&s.TotalMembers, `SELECT COUNT(*) FROM members`, nil},
		{&s.TotalLoans, `SELECT COUNT(*) FROM loans`, nil},
		{&s.BorrowedBooks, `SELECT COUNT(*) FROM loans WHERE return_date IS NULL`, nil},
		{&s.OverdueBooks, `SELECT COUNT(*) FROM loans WHERE return_date IS NULL AND due_date < ?`, []any{formatDate(asOf)}},
		{&s.TotalFines, `SELECT COALESCE(SUM(fine_amount),0) FROM loans WHERE return_date IS NOT NULL`, nil},
	}
	for _, query := range queries {
		if err := d.db.QueryRow(query.q, query.args...).Scan(query.dst); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// GetOverdueLoans lists active loans whose due date has passed as of the given
// date, most overdue first, with an advisory fine per row. limit <= 0 means
// no limit.
func (d *Database) GetOverdueLoans(asOf time.Time, limit int) ([]*OverdueLoan, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unlimited
	}
	rows, err := d.db.Query(`
        SELECT l.id, COALESCE(b.title,''), COALESCE(m.name,''), l.due_date
        FROM loans l
        LEFT JOIN books b ON b.id = l.book_id
        LEFT JOIN members m ON m.id = l.member_id
        WHERE l.return_date IS NULL AND l.due_date < ?
        ORDER BY l.due_date ASC
        LIMIT ?`, formatDate(asOf), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overdue []*OverdueLoan
	for rows.Next() {
		var (
			o   OverdueLoan
			due string
		)
		if err := rows.Scan(&o.LoanID, &o.BookTitle, &o.MemberName, &due); err != nil {
			return nil, err
		}
		if o.DueDate, err = parseDate(due); err != nil {
			return nil, err
		}
		o.DaysOverdue = DaysOverdue(o.DueDate, asOf)
		o.Fine = Fine(o.DueDate, asOf, d.cfg.DailyFineRate)
		overdue = append(overdue, &o)
	}
	return overdue, rows.Err()
}

// GetRecentActivity returns the latest loan events, newest first. A loan shows
// up as "returned" once settled, otherwise as "borrowed". limit <= 0 means no
// limit.
func (d *Database) GetRecentActivity(limit int) ([]*Activity, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(`
        SELECT l.id, COALESCE(m.name,''), COALESCE(b.title,''), l.return_date
        FROM loans l
        LEFT JOIN books b ON b.id = l.book_id
        LEFT JOIN members m ON m.id = l.member_id
        ORDER BY l.created_at DESC, l.id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activity []*Activity
	for rows.Next() {
		var (
			a   Activity
			ret sql.NullString
		)
		if err := rows.Scan(&a.LoanID, &a.MemberName, &a.BookTitle, &ret); err != nil {
			return nil, err
		}
		a.Action = "borrowed"
		if ret.Valid {
			a.Action = "returned"
		}
		activity = append(activity, &a)
	}
	return activity, rows.Err()
}

// GetAllLoans returns every loan joined with its book and member details,
// newest first, as shown on the transactions page.
func (d *Database) GetAllLoans() ([]*LoanDetail, error) {
	rows, err := d.db.Query(`
        SELECT l.id, l.book_id, l.member_id, l.borrow_date, l.due_date, l.return_date, l.fine_amount,
               COALESCE(b.title,''), COALESCE(b.author,''), COALESCE(m.name,'')
        FROM loans l
        LEFT JOIN books b ON b.id = l.book_id
        LEFT JOIN members m ON m.id = l.member_id
        ORDER BY l.created_at DESC, l.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*LoanDetail
	for rows.Next() {
		var (
			ld          LoanDetail
			borrow, due string
			ret         sql.NullString
			fine        sql.NullFloat64
		)
		if err := rows.Scan(&ld.ID, &ld.BookID, &ld.MemberID, &borrow, &due, &ret, &fine,
			&ld.BookTitle, &ld.BookAuthor, &ld.MemberName); err != nil {
			return nil, err
		}
		if ld.BorrowDate, err = parseDate(borrow); err != nil {
			return nil, err
		}
		if ld.DueDate, err = parseDate(due); err != nil {
			return nil, err
		}
		if ret.Valid {
			t, err := parseDate(ret.String)
			if err != nil {
				return nil, err
			}
			ld.ReturnDate = &t
		}
		if fine.Valid {
			ld.FineAmount = &fine.Float64
		}
		loans = append(loans, &ld)
	}
	return loans, rows.Err()
}
