package library

import (
	"fmt"
	"time"
)

// LibraryManager is a thin façade over the Database, keeping CLI code simple.
type LibraryManager struct {
	db *Database
}

// NewLibraryManager opens (or creates) the SQLite database at dbPath.
func NewLibraryManager(dbPath string) (*LibraryManager, error) {
	return NewLibraryManagerWithConfig(dbPath, DefaultConfig())
}

// NewLibraryManagerWithConfig opens the database with an explicit configuration.
func NewLibraryManagerWithConfig(dbPath string, cfg Config) (*LibraryManager, error) {
	db, err := NewDatabaseWithConfig(dbPath, cfg)
	if err != nil {
		return nil, err
	}
	return &LibraryManager{db: db}, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

// ------------------ Book helpers ------------------

func (lm *LibraryManager) AddBook(title, author, isbn, category string, copies int) (int64, error) {
	return lm.db.AddBook(title, author, isbn, category, copies)
}

func (lm *LibraryManager) GetBook(id int64) (*Book, error) { return lm.db.GetBook(id) }
func (lm *LibraryManager) GetAllBooks() ([]*Book, error)   { return lm.db.GetAllBooks() }

func (lm *LibraryManager) UpdateBook(id int64, title, author, isbn, category string, copies int) error {
	return lm.db.UpdateBook(id, title, author, isbn, category, copies)
}

func (lm *LibraryManager) DeleteBook(id int64) error { return lm.db.DeleteBook(id) }

// ------------------ Member helpers ------------------

func (lm *LibraryManager) AddMember(name, address, phone string, membershipDate time.Time) (int64, error) {
	return lm.db.AddMember(name, address, phone, membershipDate)
}

func (lm *LibraryManager) GetMember(id int64) (*Member, error) { return lm.db.GetMember(id) }
func (lm *LibraryManager) GetAllMembers() ([]*Member, error)   { return lm.db.GetAllMembers() }

func (lm *LibraryManager) UpdateMember(id int64, name, address, phone string) error {
	return lm.db.UpdateMember(id, name, address, phone)
}

func (lm *LibraryManager) DeleteMember(id int64) error { return lm.db.DeleteMember(id) }

// ------------------ Circulation ------------------

func (lm *LibraryManager) Borrow(memberID, bookID int64, borrowDate, dueDate time.Time) (int64, error) {
	return lm.db.Borrow(memberID, bookID, borrowDate, dueDate)
}

func (lm *LibraryManager) Return(loanID int64, returnDate time.Time, fineAmount *float64) error {
	return lm.db.Return(loanID, returnDate, fineAmount)
}

func (lm *LibraryManager) DeleteLoan(loanID int64) error { return lm.db.DeleteLoan(loanID) }

func (lm *LibraryManager) GetLoan(id int64) (*Loan, error) { return lm.db.GetLoan(id) }

// ------------------ Reporting ------------------

func (lm *LibraryManager) GetStats(asOf time.Time) (*Stats, error) { return lm.db.GetStats(asOf) }

func (lm *LibraryManager) GetOverdueLoans(asOf time.Time, limit int) ([]*OverdueLoan, error) {
	return lm.db.GetOverdueLoans(asOf, limit)
}

func (lm *LibraryManager) GetRecentActivity(limit int) ([]*Activity, error) {
	return lm.db.GetRecentActivity(limit)
}

func (lm *LibraryManager) GetAllLoans() ([]*LoanDetail, error) { return lm.db.GetAllLoans() }

// ------------------ Admin ------------------

func (lm *LibraryManager) EnsureAdmin(username, password string) error {
	return lm.db.EnsureAdmin(username, password)
}

func (lm *LibraryManager) AuthenticateAdmin(username, password string) error {
	return lm.db.AuthenticateAdmin(username, password)
}

func (lm *LibraryManager) SetAdminPassword(username, newPassword string) error {
	return lm.db.SetAdminPassword(username, newPassword)
}

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b *Book) string {
	return fmt.Sprintf("%-5d %-30s %-25s %-15s %5d/%d", b.ID, b.Title, b.Author, b.Category, b.AvailableCopies, b.TotalCopies)
}
