package library

import "time"

// Book represents a title in the catalog together with its copy counts.
// AvailableCopies is only ever changed by circulation operations (Borrow,
// Return, DeleteLoan); catalog edits set it indirectly through TotalCopies.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Category        string `json:"category"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// Member represents a registered library member.
type Member struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	MembershipDate time.Time `json:"membership_date"`
}

// Loan links one member to one borrowed book copy. A nil ReturnDate means the
// loan is still active; FineAmount stays nil until the loan is settled.
type Loan struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	MemberID   int64      `json:"member_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	FineAmount *float64   `json:"fine_amount"`
}

// Active reports whether the loan has not been returned yet.
func (l *Loan) Active() bool { return l.ReturnDate == nil }

// Overdue reports whether an active loan's due date has passed as of the given date.
func (l *Loan) Overdue(asOf time.Time) bool {
	return l.Active() && toDate(l.DueDate).Before(toDate(asOf))
}

// LoanDetail is a loan joined with the book and member it references,
// as shown on the transactions listing.
type LoanDetail struct {
	Loan
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	MemberName string `json:"member_name"`
}

// Stats holds the dashboard aggregates.
type Stats struct {
	TotalBooks    int     `json:"total_books"`
	TotalMembers  int     `json:"total_members"`
	TotalLoans    int     `json:"total_loans"`
	BorrowedBooks int     `json:"borrowed_books"`
	OverdueBooks  int     `json:"overdue_books"`
	TotalFines    float64 `json:"total_fines"`
}

// OverdueLoan is one row of the overdue report. Fine is advisory: it is what
// the member would owe if the book came back on the report date, computed by
// the fine policy and not persisted anywhere.
type OverdueLoan struct {
	LoanID      int64     `json:"loan_id"`
	BookTitle   string    `json:"book_title"`
	MemberName  string    `json:"member_name"`
	DueDate     time.Time `json:"due_date"`
	DaysOverdue int       `json:"days_overdue"`
	Fine        float64   `json:"fine"`
}

// Activity is one row of the recent-activity feed.
type Activity struct {
	LoanID     int64  `json:"loan_id"`
	MemberName string `json:"member_name"`
	BookTitle  string `json:"book_title"`
	Action     string `json:"action"` // "borrowed" or "returned"
}

const dateLayout = "2006-01-02"

// toDate strips the time-of-day component; circulation dates are calendar days.
func toDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
