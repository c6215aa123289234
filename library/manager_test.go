package library

import (
	"path/filepath"
	"testing"
	"time"
)

// The manager is a passthrough; one borrow/return round trip covers the wiring.
func TestManagerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewLibraryManager(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	bookID, err := mgr.AddBook("Book", "Author", "", "Fiction", 1)
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	memberID, err := mgr.AddMember("Alice", "", "", time.Now())
	if err != nil {
		t.Fatalf("add member: %v", err)
	}

	borrow := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loanID, err := mgr.Borrow(memberID, bookID, borrow, borrow.AddDate(0, 0, 14))
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if err := mgr.Return(loanID, borrow.AddDate(0, 0, 7), nil); err != nil {
		t.Fatalf("return: %v", err)
	}

	book, err := mgr.GetBook(bookID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if book.AvailableCopies != 1 {
		t.Fatalf("available %d, want 1", book.AvailableCopies)
	}

	stats, err := mgr.GetStats(time.Now())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalLoans != 1 || stats.BorrowedBooks != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
