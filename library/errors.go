package library

import "errors"

// Circulation failures are sentinel values so callers can classify them with
// errors.Is. All are recoverable; none should crash the process.
var (
	// ErrBookNotFound is returned when a referenced book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrMemberNotFound is returned when a referenced member does not exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrLoanNotFound is returned when a referenced loan does not exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrNoCopiesAvailable is the inventory store's refusal to reserve a copy
	// of a book whose available count is zero.
	ErrNoCopiesAvailable = errors.New("no copies available")

	// ErrBookUnavailable is Borrow's user-facing form of ErrNoCopiesAvailable.
	ErrBookUnavailable = errors.New("book is not available for borrowing")

	// ErrLoanAlreadyReturned guards against settling the same loan twice.
	ErrLoanAlreadyReturned = errors.New("book already returned")

	// ErrInvalidDateRange is returned when a due date precedes the borrow date.
	ErrInvalidDateRange = errors.New("due date is before borrow date")

	// ErrInvalidCopyCount is returned when a catalog edit would set
	// total_copies below the number of copies currently on loan.
	ErrInvalidCopyCount = errors.New("total copies cannot be less than copies on loan")

	// ErrInventoryAnomaly signals that an availability count was about to
	// violate 0 <= available <= total. It indicates a bug or a failure of the
	// atomic section and is logged at error severity wherever it surfaces.
	ErrInventoryAnomaly = errors.New("inventory count anomaly")

	// ErrInvalidCredentials is returned for any failed admin login. It is
	// deliberately vague about whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
