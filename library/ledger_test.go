package library

import (
	"errors"
	"testing"
)

func TestBorrowLendsOneCopy(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "1984", 3)
	memberID := mustAddMember(t, db, "Alice")

	loanID, err := db.Borrow(memberID, bookID, date(t, "2024-01-01"), date(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}

	book, _ := db.GetBook(bookID)
	if book.AvailableCopies != 2 {
		t.Fatalf("available %d, want 2", book.AvailableCopies)
	}
	checkInventory(t, db, bookID)

	loan, err := db.GetLoan(loanID)
	if err != nil {
		t.Fatalf("get loan: %v", err)
	}
	if !loan.Active() || loan.BookID != bookID || loan.MemberID != memberID {
		t.Fatalf("unexpected loan %+v", loan)
	}
	if loan.FineAmount != nil {
		t.Fatalf("new loan should have no fine, got %v", *loan.FineAmount)
	}
}

func TestBorrowRejectsInvalidDateRange(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Book", 2)
	memberID := mustAddMember(t, db, "Alice")

	_, err := db.Borrow(memberID, bookID, date(t, "2024-02-01"), date(t, "2024-01-30"))
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("want ErrInvalidDateRange, got %v", err)
	}

	// No state mutated.
	book, _ := db.GetBook(bookID)
	if book.AvailableCopies != 2 {
		t.Fatalf("available changed to %d", book.AvailableCopies)
	}
	if n, _ := db.ActiveLoanCount(bookID); n != 0 {
		t.Fatalf("loan created despite invalid range")
	}
}

func TestBorrowSameDayDueDate(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Book", 1)
	memberID := mustAddMember(t, db, "Alice")

	// due_date >= borrow_date, so same day is allowed.
	if _, err := db.Borrow(memberID, bookID, date(t, "2024-01-01"), date(t, "2024-01-01")); err != nil {
		t.Fatalf("same-day due date: %v", err)
	}
}

func TestBorrowMissingReferences(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Book", 1)
	memberID := mustAddMember(t, db, "Alice")

	if _, err := db.Borrow(99999, bookID, date(t, "2024-01-01"), date(t, "2024-01-15")); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("want ErrMemberNotFound, got %v", err)
	}
	if _, err := db.Borrow(memberID, 99999, date(t, "2024-01-01"), date(t, "2024-01-15")); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("want ErrBookNotFound, got %v", err)
	}

	book, _ := db.GetBook(bookID)
	if book.AvailableCopies != 1 {
		t.Fatalf("failed borrows mutated inventory: %d", book.AvailableCopies)
	}
}

func TestBorrowUnavailableBook(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Rare", 1)
	alice := mustAddMember(t, db, "Alice")
	bob := mustAddMember(t, db, "Bob")

	if _, err := db.Borrow(alice, bookID, date(t, "2024-01-01"), date(t, "2024-01-15")); err != nil {
		t.Fatalf("first borrow: %v", err)
	}
	if _, err := db.Borrow(bob, bookID, date(t, "2024-01-02"), date(t, "2024-01-16")); !errors.Is(err, ErrBookUnavailable) {
		t.Fatalf("want ErrBookUnavailable, got %v", err)
	}
	checkInventory(t, db, bookID)
}

// Two concurrent borrows race for the last copy; exactly one may win.
func TestConcurrentBorrowLastCopy(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Contested", 1)
	alice := mustAddMember(t, db, "Alice")
	bob := mustAddMember(t, db, "Bob")

	done1 := make(chan error, 1)
	done2 := make(chan error, 1)

	go func() {
		_, err := db.Borrow(alice, bookID, date(t, "2024-01-01"), date(t, "2024-01-15"))
		done1 <- err
	}()
	go func() {
		_, err := db.Borrow(bob, bookID, date(t, "2024-01-01"), date(t, "2024-01-15"))
		done2 <- err
	}()

	err1 := <-done1
	err2 := <-done2

	if (err1 == nil) == (err2 == nil) {
		t.Fatalf("want exactly one success, got err1=%v err2=%v", err1, err2)
	}
	failed := err1
	if failed == nil {
		failed = err2
	}
	if !errors.Is(failed, ErrBookUnavailable) {
		t.Fatalf("loser should see ErrBookUnavailable, got %v", failed)
	}

	book, _ := db.GetBook(bookID)
	if book.AvailableCopies != 0 {
		t.Fatalf("available %d, want 0", book.AvailableCopies)
	}
	checkInventory(t, db, bookID)
}

func TestReturnSettlesLoanOnce(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Book", 2)
	memberID := mustAddMember(t, db, "Alice")

	loanID, err := db.Borrow(memberID, bookID, date(t, "2024-01-01"), date(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}

	if err := db.Return(loanID, date(t, "2024-01-10"), nil); err != nil {
		t.Fatalf("return: %v", err)
	}
	book, _ := db.GetBook(bookID)
	if book.AvailableCopies != 2 {
		t.Fatalf("available %d, want 2", book.AvailableCopies)
	}

	loan, _ := db.GetLoan(loanID)
	if loan.Active() {
		t.Fatalf("loan still active after return")
	}
	if loan.FineAmount == nil || *loan.FineAmount != 0 {
		t.Fatalf("on-time return should settle with zero fine, got %v", loan.FineAmount)
	}

	// Second return is rejected and changes nothing.
	if err := db.Return(loanID, date(t, "2024-01-11"), nil); !errors.Is(err, ErrLoanAlreadyReturned) {
		t.Fatalf("want ErrLoanAlreadyReturned, got %v", err)
	}
	book, _ = db.GetBook(bookID)
	if book.AvailableCopies != 2 {
		t.Fatalf("double return moved inventory to %d", book.AvailableCopies)
	}
	again, _ := db.GetLoan(loanID)
	if !again.ReturnDate.Equal(*loan.ReturnDate) {
		t.Fatalf("return date changed by rejected second return")
	}
}

func TestReturnComputesFine(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Book", 1)
	memberID := mustAddMember(t, db, "Alice")

	loanID, err := db.Borrow(memberID, bookID, date(t, "2024-01-01"), date(t, "2024-01-10"))
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if err := db.Return(loanID, date(t, "2024-01-13"), nil); err != nil {
		t.Fatalf("return: %v", err)
	}

	loan, _ := db.GetLoan(loanID)
	if loan.FineAmount == nil || *loan.FineAmount != 300 {
		t.Fatalf("3 days late at rate 100 should owe 300, got %v", loan.FineAmount)
	}
}

func TestReturnHonorsExplicitFine(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Book", 1)
	memberID := mustAddMember(t, db, "Alice")

	loanID, _ := db.Borrow(memberID, bookID, date(t, "2024-01-01"), date(t, "2024-01-10"))

	waived := 50.0
	if err := db.Return(loanID, date(t, "2024-01-13"), &waived); err != nil {
		t.Fatalf("return: %v", err)
	}
	loan, _ := db.GetLoan(loanID)
	if loan.FineAmount == nil || *loan.FineAmount != 50 {
		t.Fatalf("explicit fine not honored, got %v", loan.FineAmount)
	}
}

func TestReturnUnknownLoan(t *testing.T) {
	db := tempDB(t)
	if err := db.Return(12345, date(t, "2024-01-10"), nil); !errors.Is(err, ErrLoanNotFound) {
		t.Fatalf("want ErrLoanNotFound, got %v", err)
	}
}

func TestReturnAfterBookDeleted(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Doomed", 1)
	memberID := mustAddMember(t, db, "Alice")

	loanID, err := db.Borrow(memberID, bookID, date(t, "2024-01-01"), date(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if err := db.DeleteBook(bookID); err != nil {
		t.Fatalf("delete book: %v", err)
	}

	// The loan still closes; the stranded copy is a logged anomaly, not the
	// member's problem.
	if err := db.Return(loanID, date(t, "2024-01-10"), nil); err != nil {
		t.Fatalf("return after book deletion: %v", err)
	}
	loan, _ := db.GetLoan(loanID)
	if loan.Active() {
		t.Fatalf("loan not closed")
	}
}

func TestDeleteLoanRestoresInventory(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Book", 3)
	memberID := mustAddMember(t, db, "Alice")

	loanID, err := db.Borrow(memberID, bookID, date(t, "2024-01-01"), date(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	book, _ := db.GetBook(bookID)
	if book.AvailableCopies != 2 {
		t.Fatalf("available %d, want 2", book.AvailableCopies)
	}

	if err := db.DeleteLoan(loanID); err != nil {
		t.Fatalf("delete loan: %v", err)
	}
	book, _ = db.GetBook(bookID)
	if book.AvailableCopies != 3 {
		t.Fatalf("available %d, want 3 after deleting active loan", book.AvailableCopies)
	}
	if _, err := db.GetLoan(loanID); !errors.Is(err, ErrLoanNotFound) {
		t.Fatalf("loan record should be gone, got %v", err)
	}
	checkInventory(t, db, bookID)
}

func TestDeleteClosedLoanLeavesInventory(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Book", 2)
	memberID := mustAddMember(t, db, "Alice")

	loanID, _ := db.Borrow(memberID, bookID, date(t, "2024-01-01"), date(t, "2024-01-15"))
	if err := db.Return(loanID, date(t, "2024-01-10"), nil); err != nil {
		t.Fatalf("return: %v", err)
	}

	if err := db.DeleteLoan(loanID); err != nil {
		t.Fatalf("delete closed loan: %v", err)
	}
	book, _ := db.GetBook(bookID)
	if book.AvailableCopies != 2 {
		t.Fatalf("deleting a closed loan moved inventory to %d", book.AvailableCopies)
	}
}

func TestDeleteUnknownLoan(t *testing.T) {
	db := tempDB(t)
	if err := db.DeleteLoan(12345); !errors.Is(err, ErrLoanNotFound) {
		t.Fatalf("want ErrLoanNotFound, got %v", err)
	}
}

// The end-to-end scenario: two copies, three borrowers, one return, one
// administrative deletion.
func TestCirculationScenario(t *testing.T) {
	db := tempDB(t)
	bookID := mustAddBook(t, db, "Popular", 2)
	m1 := mustAddMember(t, db, "Alice")
	m2 := mustAddMember(t, db, "Bob")
	m3 := mustAddMember(t, db, "Charlie")

	l1, err := db.Borrow(m1, bookID, date(t, "2024-01-01"), date(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("borrow 1: %v", err)
	}
	book, _ := db.GetBook(bookID)
	if book.AvailableCopies != 1 {
		t.Fatalf("after borrow 1: available %d, want 1", book.AvailableCopies)
	}

	l2, err := db.Borrow(m2, bookID, date(t, "2024-01-02"), date(t, "2024-01-16"))
	if err != nil {
		t.Fatalf("borrow 2: %v", err)
	}
	book, _ = db.GetBook(bookID)
	if book.AvailableCopies != 0 {
		t.Fatalf("after borrow 2: available %d, want 0", book.AvailableCopies)
	}

	if _, err := db.Borrow(m3, bookID, date(t, "2024-01-03"), date(t, "2024-01-17")); !errors.Is(err, ErrBookUnavailable) {
		t.Fatalf("borrow 3: want ErrBookUnavailable, got %v", err)
	}

	if err := db.Return(l1, date(t, "2024-01-10"), nil); err != nil {
		t.Fatalf("return 1: %v", err)
	}
	book, _ = db.GetBook(bookID)
	if book.AvailableCopies != 1 {
		t.Fatalf("after return: available %d, want 1", book.AvailableCopies)
	}
	loan1, _ := db.GetLoan(l1)
	if loan1.FineAmount == nil || *loan1.FineAmount != 0 {
		t.Fatalf("on-time return fined %v", loan1.FineAmount)
	}

	if err := db.DeleteLoan(l2); err != nil {
		t.Fatalf("delete loan 2: %v", err)
	}
	book, _ = db.GetBook(bookID)
	if book.AvailableCopies != 2 {
		t.Fatalf("after delete: available %d, want 2", book.AvailableCopies)
	}
	if _, err := db.GetLoan(l2); !errors.Is(err, ErrLoanNotFound) {
		t.Fatalf("loan 2 should be gone, got %v", err)
	}
	checkInventory(t, db, bookID)
}
