package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"library-circulation/library"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	defaultDBFile        = "library.db"
	defaultAdminUser     = "admin"
	defaultAdminPassword = "admin123"
	dateLayout           = "2006-01-02"
)

var (
	dbFile   string
	fineRate float64
)

func main() {
	root := &cobra.Command{
		Use:           "library",
		Short:         "Library circulation and catalog management",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbFile, "db", defaultDBFile, "path to the SQLite database")
	root.PersistentFlags().Float64Var(&fineRate, "fine-rate", library.DefaultConfig().DailyFineRate, "fine per overdue day")

	root.AddCommand(bookCmd(), memberCmd(), borrowCmd(), returnCmd(), loanCmd(), overdueCmd(), recentCmd(), statsCmd(), adminCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openManager opens the database and makes sure the default admin exists,
// mirroring first-run bootstrapping of the original deployment.
func openManager() (*library.LibraryManager, error) {
	mgr, err := library.NewLibraryManagerWithConfig(dbFile, library.Config{DailyFineRate: fineRate})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := mgr.EnsureAdmin(defaultAdminUser, defaultAdminPassword); err != nil {
		mgr.Close()
		return nil, err
	}
	return mgr, nil
}

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// requireAdmin prompts for and verifies the admin password before a
// destructive command proceeds.
func requireAdmin(mgr *library.LibraryManager) error {
	password, err := readPassword("Admin password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	return mgr.AuthenticateAdmin(defaultAdminUser, password)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseDateFlag(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// ------------------ book ------------------

func bookCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "book", Short: "Manage the catalog"}

	var title, author, isbn, category string
	var copies int
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" || strings.TrimSpace(author) == "" {
				return errors.New("title and author are required")
			}
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			id, err := mgr.AddBook(title, author, isbn, category, copies)
			if err != nil {
				return err
			}
			fmt.Printf("Added book ID %d (%d copies)\n", id, copies)
			return nil
		},
	}
	add.Flags().StringVar(&title, "title", "", "book title")
	add.Flags().StringVar(&author, "author", "", "book author")
	add.Flags().StringVar(&isbn, "isbn", "", "ISBN")
	add.Flags().StringVar(&category, "category", "", "category")
	add.Flags().IntVar(&copies, "copies", 1, "number of copies")

	list := &cobra.Command{
		Use:   "list",
		Short: "List all books",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			books, err := mgr.GetAllBooks()
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Println("No books in library.")
				return nil
			}
			fmt.Printf("%-5s %-30s %-25s %-15s %s\n", "ID", "Title", "Author", "Category", "Avail/Total")
			fmt.Println(strings.Repeat("-", 90))
			for _, b := range books {
				fmt.Println(library.PrettyBook(b))
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := requireAdmin(mgr); err != nil {
				return err
			}
			if err := mgr.DeleteBook(id); err != nil {
				return err
			}
			fmt.Printf("Deleted book %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}

// ------------------ member ------------------

func memberCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "member", Short: "Manage members"}

	var name, address, phone, date string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				return errors.New("name is required")
			}
			when := time.Now()
			if date != "" {
				var err error
				if when, err = parseDateFlag(date); err != nil {
					return err
				}
			}
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			id, err := mgr.AddMember(name, address, phone, when)
			if err != nil {
				return err
			}
			fmt.Printf("Added member '%s' with ID %d\n", name, id)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "member name")
	add.Flags().StringVar(&address, "address", "", "address")
	add.Flags().StringVar(&phone, "phone", "", "phone number")
	add.Flags().StringVar(&date, "date", "", "membership date (YYYY-MM-DD, default today)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List all members",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			members, err := mgr.GetAllMembers()
			if err != nil {
				return err
			}
			if len(members) == 0 {
				fmt.Println("No members registered.")
				return nil
			}
			fmt.Printf("%-5s %-30s %-30s %-15s %s\n", "ID", "Name", "Address", "Phone", "Member Since")
			fmt.Println(strings.Repeat("-", 100))
			for _, m := range members {
				fmt.Printf("%-5d %-30s %-30s %-15s %s\n", m.ID, m.Name, m.Address, m.Phone, m.MembershipDate.Format(dateLayout))
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := requireAdmin(mgr); err != nil {
				return err
			}
			if err := mgr.DeleteMember(id); err != nil {
				return err
			}
			fmt.Printf("Deleted member %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}

// ------------------ circulation ------------------

func borrowCmd() *cobra.Command {
	var borrowDate, dueDate string
	var loanDays int
	cmd := &cobra.Command{
		Use:   "borrow [book-id] [member-id]",
		Short: "Lend a copy of a book to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			memberID, err := parseID(args[1])
			if err != nil {
				return err
			}

			borrowed := time.Now()
			if borrowDate != "" {
				if borrowed, err = parseDateFlag(borrowDate); err != nil {
					return err
				}
			}
			due := borrowed.AddDate(0, 0, loanDays)
			if dueDate != "" {
				if due, err = parseDateFlag(dueDate); err != nil {
					return err
				}
			}

			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := requireAdmin(mgr); err != nil {
				return err
			}

			loanID, err := mgr.Borrow(memberID, bookID, borrowed, due)
			if err != nil {
				return err
			}

			book, _ := mgr.GetBook(bookID)
			member, _ := mgr.GetMember(memberID)
			if book != nil && member != nil {
				fmt.Printf("Book '%s' lent to %s, due %s (loan %d)\n", book.Title, member.Name, due.Format(dateLayout), loanID)
			} else {
				fmt.Printf("Created loan %d\n", loanID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&borrowDate, "borrow-date", "", "borrow date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&dueDate, "due-date", "", "due date (YYYY-MM-DD, default borrow date + loan days)")
	cmd.Flags().IntVar(&loanDays, "days", 14, "loan period in days when --due-date is not given")
	return cmd
}

func returnCmd() *cobra.Command {
	var returnDate string
	var fineOverride float64
	cmd := &cobra.Command{
		Use:   "return [loan-id]",
		Short: "Settle a loan and put the copy back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := parseID(args[0])
			if err != nil {
				return err
			}
			returned := time.Now()
			if returnDate != "" {
				if returned, err = parseDateFlag(returnDate); err != nil {
					return err
				}
			}

			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := requireAdmin(mgr); err != nil {
				return err
			}

			var fine *float64
			if cmd.Flags().Changed("fine") {
				fine = &fineOverride
			}
			if err := mgr.Return(loanID, returned, fine); err != nil {
				return err
			}

			loan, err := mgr.GetLoan(loanID)
			if err != nil {
				return err
			}
			if loan.FineAmount != nil && *loan.FineAmount > 0 {
				fmt.Printf("Loan %d settled, fine owed: %.2f\n", loanID, *loan.FineAmount)
			} else {
				fmt.Printf("Loan %d settled, no fine\n", loanID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&returnDate, "return-date", "", "return date (YYYY-MM-DD, default today)")
	cmd.Flags().Float64Var(&fineOverride, "fine", 0, "fine amount override (default computed from due date)")
	return cmd
}

func loanCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "loan", Short: "Manage loan records"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			loans, err := mgr.GetAllLoans()
			if err != nil {
				return err
			}
			if len(loans) == 0 {
				fmt.Println("No loans recorded.")
				return nil
			}
			fmt.Printf("%-5s %-30s %-25s %-12s %-12s %-12s %s\n", "ID", "Book", "Member", "Borrowed", "Due", "Returned", "Fine")
			fmt.Println(strings.Repeat("-", 110))
			for _, l := range loans {
				returned := "-"
				if l.ReturnDate != nil {
					returned = l.ReturnDate.Format(dateLayout)
				}
				fine := "-"
				if l.FineAmount != nil {
					fine = fmt.Sprintf("%.2f", *l.FineAmount)
				}
				fmt.Printf("%-5d %-30s %-25s %-12s %-12s %-12s %s\n",
					l.ID, l.BookTitle, l.MemberName,
					l.BorrowDate.Format(dateLayout), l.DueDate.Format(dateLayout), returned, fine)
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm [loan-id]",
		Short: "Delete a loan record (administrative correction)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loanID, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := requireAdmin(mgr); err != nil {
				return err
			}
			if err := mgr.DeleteLoan(loanID); err != nil {
				return err
			}
			fmt.Printf("Deleted loan %d\n", loanID)
			return nil
		},
	}

	cmd.AddCommand(list, rm)
	return cmd
}

// ------------------ reports ------------------

func overdueCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List overdue loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			overdue, err := mgr.GetOverdueLoans(time.Now(), limit)
			if err != nil {
				return err
			}
			if len(overdue) == 0 {
				fmt.Println("No overdue loans.")
				return nil
			}
			fmt.Printf("%-5s %-30s %-25s %-12s %-6s %s\n", "Loan", "Book", "Member", "Due", "Days", "Fine")
			fmt.Println(strings.Repeat("-", 95))
			for _, o := range overdue {
				fmt.Printf("%-5d %-30s %-25s %-12s %-6d %.2f\n",
					o.LoanID, o.BookTitle, o.MemberName, o.DueDate.Format(dateLayout), o.DaysOverdue, o.Fine)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum rows (0 for all)")
	return cmd
}

func recentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent circulation activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			activity, err := mgr.GetRecentActivity(limit)
			if err != nil {
				return err
			}
			if len(activity) == 0 {
				fmt.Println("No activity yet.")
				return nil
			}
			for _, a := range activity {
				fmt.Printf("loan %-5d %s %s '%s'\n", a.LoanID, a.MemberName, a.Action, a.BookTitle)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum rows (0 for all)")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			stats, err := mgr.GetStats(time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("Total books:        %d\n", stats.TotalBooks)
			fmt.Printf("Total members:      %d\n", stats.TotalMembers)
			fmt.Printf("Total loans:        %d\n", stats.TotalLoans)
			fmt.Printf("Borrowed books:     %d\n", stats.BorrowedBooks)
			fmt.Printf("Overdue books:      %d\n", stats.OverdueBooks)
			fmt.Printf("Fines collected:    %.2f\n", stats.TotalFines)
			return nil
		},
	}
}

// ------------------ admin ------------------

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "admin", Short: "Manage the admin account"}

	setPassword := &cobra.Command{
		Use:   "set-password",
		Short: "Change the admin password",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := openManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			current, err := readPassword("Current admin password: ")
			if err != nil {
				return err
			}
			if err := mgr.AuthenticateAdmin(defaultAdminUser, current); err != nil {
				return err
			}

			next, err := readPassword("New admin password: ")
			if err != nil {
				return err
			}
			if strings.TrimSpace(next) == "" {
				return errors.New("password cannot be empty")
			}
			if err := mgr.SetAdminPassword(defaultAdminUser, next); err != nil {
				return err
			}
			fmt.Println("Password updated.")
			return nil
		},
	}

	cmd.AddCommand(setPassword)
	return cmd
}
