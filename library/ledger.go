package library

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// Circulation ledger: Borrow, Return and DeleteLoan each run as one SQLite
// transaction, so a loan record and its inventory decrement are visible
// together or not at all. With the single-connection handle the transactions
// also serialize, which is what keeps two concurrent Borrow calls for the last
// copy from both succeeding.

// Borrow lends one copy of a book to a member and returns the new loan id.
// It fails with ErrMemberNotFound / ErrBookNotFound for dangling references,
// ErrInvalidDateRange when the due date precedes the borrow date, and
// ErrBookUnavailable when no copy is free. A failed Borrow performs no
// inventory mutation, so callers may retry it freely.
func (d *Database) Borrow(memberID, bookID int64, borrowDate, dueDate time.Time) (int64, error) {
	if toDate(dueDate).Before(toDate(borrowDate)) {
		return 0, ErrInvalidDateRange
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	ok, err := memberExists(tx, memberID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrMemberNotFound
	}

	// Atomic conditional decrement; this is the step that decides the race
	// between concurrent borrowers.
	if err := reserveCopy(tx, bookID); err != nil {
		if errors.Is(err, ErrNoCopiesAvailable) {
			return 0, ErrBookUnavailable
		}
		return 0, err
	}

	loanID, err := createLoan(tx, bookID, memberID, borrowDate, dueDate)
	if err != nil {
		// The rollback undoes the reservation, so a failed create never
		// leaves the availability count decremented without a loan.
		return 0, fmt.Errorf("borrow: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return loanID, nil
}

// Return settles an active loan: the return date and fine are recorded and the
// copy goes back into inventory. When fineAmount is nil the fine policy
// computes the amount from the due date and returnDate.
//
// Returning an already-settled loan fails with ErrLoanAlreadyReturned and
// changes nothing, so a retried Return is a safe no-op signal. If the book was
// deleted from the catalog while on loan, the loan still closes; the stranded
// copy is logged rather than failing the member's return.
func (d *Database) Return(loanID int64, returnDate time.Time, fineAmount *float64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	loan, err := getLoan(tx, loanID)
	if err != nil {
		return err
	}
	if !loan.Active() {
		return ErrLoanAlreadyReturned
	}

	fine := Fine(loan.DueDate, returnDate, d.cfg.DailyFineRate)
	if fineAmount != nil {
		fine = *fineAmount
	}

	if err := closeLoan(tx, loanID, returnDate, fine); err != nil {
		return err
	}

	if err := releaseCopy(tx, loan.BookID); err != nil {
		// Loan-state correctness wins over inventory here: the book row is
		// gone or its counts are already off, and neither is the member's
		// fault. Terminal anomaly, logged, not retried.
		if errors.Is(err, ErrBookNotFound) || errors.Is(err, ErrInventoryAnomaly) {
			log.Printf("ERROR: return of loan %d could not restore a copy of book %d: %v", loanID, loan.BookID, err)
		} else {
			return err
		}
	}

	return tx.Commit()
}

// DeleteLoan removes a loan record entirely. This models an administrative
// correction of an erroneous entry, not a return: no return date or fine is
// recorded. If the loan was still active the reserved copy goes back into
// inventory so the availability count stays truthful.
func (d *Database) DeleteLoan(loanID int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	loan, err := getLoan(tx, loanID)
	if err != nil {
		return err
	}

	wasActive, err := deleteLoan(tx, loanID)
	if err != nil {
		return err
	}

	if wasActive {
		if err := releaseCopy(tx, loan.BookID); err != nil {
			if errors.Is(err, ErrBookNotFound) || errors.Is(err, ErrInventoryAnomaly) {
				log.Printf("ERROR: deleting loan %d could not restore a copy of book %d: %v", loanID, loan.BookID, err)
			} else {
				return err
			}
		}
	}

	return tx.Commit()
}
