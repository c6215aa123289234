package library

import (
	"database/sql"
	"fmt"
	"time"
)

// Loan store primitives. The unexported helpers take a dbtx so the ledger can
// run them inside the same transaction as the inventory updates.

// CreateLoan inserts an active loan record. It does not touch inventory;
// use Borrow for the full circulation operation.
func (d *Database) CreateLoan(bookID, memberID int64, borrowDate, dueDate time.Time) (int64, error) {
	res, err := d.addLoanStmt.Exec(bookID, memberID, formatDate(borrowDate), formatDate(dueDate))
	if err != nil {
		return 0, fmt.Errorf("create loan: %w", err)
	}
	return res.LastInsertId()
}

func createLoan(q dbtx, bookID, memberID int64, borrowDate, dueDate time.Time) (int64, error) {
	res, err := q.Exec(`INSERT INTO loans(book_id,member_id,borrow_date,due_date) VALUES(?,?,?,?)`,
		bookID, memberID, formatDate(borrowDate), formatDate(dueDate))
	if err != nil {
		return 0, fmt.Errorf("create loan: %w", err)
	}
	return res.LastInsertId()
}

// GetLoan fetches a single loan.
func (d *Database) GetLoan(id int64) (*Loan, error) {
	return getLoan(d.db, id)
}

func getLoan(q dbtx, id int64) (*Loan, error) {
	var (
		l           Loan
		borrow, due string
		ret         sql.NullString
		fine        sql.NullFloat64
	)
	err := q.QueryRow(`SELECT id,book_id,member_id,borrow_date,due_date,return_date,fine_amount FROM loans WHERE id=?`, id).
		Scan(&l.ID, &l.BookID, &l.MemberID, &borrow, &due, &ret, &fine)
	if err == sql.ErrNoRows {
		return nil, ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	if l.BorrowDate, err = parseDate(borrow); err != nil {
		return nil, err
	}
	if l.DueDate, err = parseDate(due); err != nil {
		return nil, err
	}
	if ret.Valid {
		t, err := parseDate(ret.String)
		if err != nil {
			return nil, err
		}
		l.ReturnDate = &t
	}
	if fine.Valid {
		l.FineAmount = &fine.Float64
	}
	return &l, nil
}

// CloseLoan settles an active loan by recording the return date and fine.
// A loan can be closed exactly once; closing again fails with
// ErrLoanAlreadyReturned and leaves the record untouched.
func (d *Database) CloseLoan(id int64, returnDate time.Time, fineAmount float64) error {
	return closeLoan(d.db, id, returnDate, fineAmount)
}

func closeLoan(q dbtx, id int64, returnDate time.Time, fineAmount float64) error {
	res, err := q.Exec(`UPDATE loans SET return_date=?, fine_amount=? WHERE id=? AND return_date IS NULL`,
		formatDate(returnDate), fineAmount, id)
	if err != nil {
		return fmt.Errorf("close loan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(`SELECT EXISTS(SELECT 1 FROM loans WHERE id=?)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrLoanNotFound
	}
	return ErrLoanAlreadyReturned
}

// deleteLoan removes the loan and reports whether it was still active, so the
// caller can decide whether a copy has to go back into inventory.
func deleteLoan(q dbtx, id int64) (wasActive bool, err error) {
	var ret sql.NullString
	err = q.QueryRow(`SELECT return_date FROM loans WHERE id=?`, id).Scan(&ret)
	if err == sql.ErrNoRows {
		return false, ErrLoanNotFound
	}
	if err != nil {
		return false, err
	}
	if _, err := q.Exec(`DELETE FROM loans WHERE id=?`, id); err != nil {
		return false, fmt.Errorf("delete loan: %w", err)
	}
	return !ret.Valid, nil
}

// ActiveLoanCount returns the number of outstanding loans for a book.
func (d *Database) ActiveLoanCount(bookID int64) (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM loans WHERE book_id=? AND return_date IS NULL`, bookID).Scan(&n)
	return n, err
}
