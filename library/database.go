package library

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Config holds the tunables of the circulation system.
type Config struct {
	// DailyFineRate is the amount owed per whole day a book is overdue.
	// Every surface that shows or settles a fine uses this one rate.
	DailyFineRate float64
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{DailyFineRate: 100.0}
}

// Database provides high-level helpers around a SQLite connection.
type Database struct {
	db  *sql.DB
	cfg Config

	addBookStmt   *sql.Stmt
	addMemberStmt *sql.Stmt
	addLoanStmt   *sql.Stmt
}

// dbtx is the subset of *sql.DB and *sql.Tx the store helpers need, so the
// same reserve/release and loan primitives work inside and outside a transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	return NewDatabaseWithConfig(dbPath, DefaultConfig())
}

// NewDatabaseWithConfig is NewDatabase with an explicit configuration.
func NewDatabaseWithConfig(dbPath string, cfg Config) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Enable busy_timeout and foreign keys.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection makes every circulation transaction a single writer:
	// concurrent Borrow/Return/Delete calls against the same book serialize on
	// the connection instead of racing or hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db, cfg: cfg}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	for _, stmt := range []*sql.Stmt{d.addBookStmt, d.addMemberStmt, d.addLoanStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return d.db.Close()
}

// Config returns the active configuration.
func (d *Database) Config() Config { return d.cfg }

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            isbn TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            total_copies INTEGER NOT NULL DEFAULT 1,
            available_copies INTEGER NOT NULL DEFAULT 1,
            CHECK (available_copies >= 0 AND available_copies <= total_copies)
        );`,
		`CREATE TABLE IF NOT EXISTS members (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            address TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            membership_date TEXT NOT NULL
        );`,
		// Loans deliberately carry no foreign keys: the ledger validates
		// references itself, and a book deleted from the catalog must not
		// block the return of its outstanding loans.
		`CREATE TABLE IF NOT EXISTS loans (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            book_id INTEGER NOT NULL,
            member_id INTEGER NOT NULL,
            borrow_date TEXT NOT NULL,
            due_date TEXT NOT NULL,
            return_date TEXT,
            fine_amount REAL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_loans_book_active ON loans(book_id) WHERE return_date IS NULL;`,
		`CREATE TABLE IF NOT EXISTS admins (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addBookStmt, err = d.db.Prepare(`INSERT INTO books(title,author,isbn,category,total_copies,available_copies) VALUES(?,?,?,?,?,?)`); err != nil {
		return err
	}
	if d.addMemberStmt, err = d.db.Prepare(`INSERT INTO members(name,address,phone,membership_date) VALUES(?,?,?,?)`); err != nil {
		return err
	}
	if d.addLoanStmt, err = d.db.Prepare(`INSERT INTO loans(book_id,member_id,borrow_date,due_date) VALUES(?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Book catalog
// ---------------------------------------------------------------------------

// AddBook inserts a new book. All copies start available.
func (d *Database) AddBook(title, author, isbn, category string, totalCopies int) (int64, error) {
	if totalCopies < 0 {
		return 0, ErrInvalidCopyCount
	}
	res, err := d.addBookStmt.Exec(title, author, isbn, category, totalCopies, totalCopies)
	if err != nil {
		return 0, fmt.Errorf("add book: %w", err)
	}
	return res.LastInsertId()
}

func (d *Database) GetBook(id int64) (*Book, error) {
	var b Book
	err := d.db.QueryRow(`SELECT id,title,author,isbn,category,total_copies,available_copies FROM books WHERE id=?`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.TotalCopies, &b.AvailableCopies)
	if err == sql.ErrNoRows {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetAllBooks returns the catalog ordered by id.
func (d *Database) GetAllBooks() ([]*Book, error) {
	rows, err := d.db.Query(`SELECT id,title,author,isbn,category,total_copies,available_copies FROM books ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.TotalCopies, &b.AvailableCopies); err != nil {
			return nil, err
		}
		books = append(books, &b)
	}
	return books, rows.Err()
}

// UpdateBook edits a book's catalog attributes. Changing totalCopies moves
// available_copies by the same delta so the active-loan count stays accounted
// for; shrinking below the number of copies on loan is rejected.
func (d *Database) UpdateBook(id int64, title, author, isbn, category string, totalCopies int) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var active int
	err = tx.QueryRow(`SELECT COUNT(*) FROM loans WHERE book_id=? AND return_date IS NULL`, id).Scan(&active)
	if err != nil {
		return err
	}
	if totalCopies < active {
		return ErrInvalidCopyCount
	}

	res, err := tx.Exec(`UPDATE books SET title=?, author=?, isbn=?, category=?, total_copies=?, available_copies=? WHERE id=?`,
		title, author, isbn, category, totalCopies, totalCopies-active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookNotFound
	}
	return tx.Commit()
}

// DeleteBook removes a book from the catalog. Loans referencing it are left in
// place as history; active loans for a deleted book surface as anomalies when
// they are eventually returned.
func (d *Database) DeleteBook(id int64) error {
	res, err := d.db.Exec(`DELETE FROM books WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Inventory primitives
// ---------------------------------------------------------------------------

// ReserveCopy atomically takes one available copy of the book. The decrement
// happens in a single conditional UPDATE, so two concurrent callers can never
// both take the last copy.
func (d *Database) ReserveCopy(bookID int64) error {
	return reserveCopy(d.db, bookID)
}

// ReleaseCopy atomically puts one copy of the book back.
func (d *Database) ReleaseCopy(bookID int64) error {
	return releaseCopy(d.db, bookID)
}

func reserveCopy(q dbtx, bookID int64) error {
	res, err := q.Exec(`UPDATE books SET available_copies = available_copies - 1 WHERE id=? AND available_copies > 0`, bookID)
	if err != nil {
		return fmt.Errorf("reserve copy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Nothing updated: either the book is gone or no copies are left.
	var exists bool
	if err := q.QueryRow(`SELECT EXISTS(SELECT 1 FROM books WHERE id=?)`, bookID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrBookNotFound
	}
	return ErrNoCopiesAvailable
}

func releaseCopy(q dbtx, bookID int64) error {
	res, err := q.Exec(`UPDATE books SET available_copies = available_copies + 1 WHERE id=? AND available_copies < total_copies`, bookID)
	if err != nil {
		return fmt.Errorf("release copy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(`SELECT EXISTS(SELECT 1 FROM books WHERE id=?)`, bookID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrBookNotFound
	}

	// available_copies is already at total_copies: releasing would break the
	// invariant, which means a count went wrong somewhere. Refuse the
	// increment (the clamp) and report it.
	log.Printf("ERROR: inventory anomaly: release for book %d would exceed total copies", bookID)
	return ErrInventoryAnomaly
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// AddMember registers a member. membershipDate is stored date-only.
func (d *Database) AddMember(name, address, phone string, membershipDate time.Time) (int64, error) {
	res, err := d.addMemberStmt.Exec(name, address, phone, formatDate(membershipDate))
	if err != nil {
		return 0, fmt.Errorf("add member: %w", err)
	}
	return res.LastInsertId()
}

func (d *Database) GetMember(id int64) (*Member, error) {
	var m Member
	var date string
	err := d.db.QueryRow(`SELECT id,name,address,phone,membership_date FROM members WHERE id=?`, id).
		Scan(&m.ID, &m.Name, &m.Address, &m.Phone, &date)
	if err == sql.ErrNoRows {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	if m.MembershipDate, err = parseDate(date); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAllMembers returns all members ordered by id.
func (d *Database) GetAllMembers() ([]*Member, error) {
	rows, err := d.db.Query(`SELECT id,name,address,phone,membership_date FROM members ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var m Member
		var date string
		if err := rows.Scan(&m.ID, &m.Name, &m.Address, &m.Phone, &date); err != nil {
			return nil, err
		}
		if m.MembershipDate, err = parseDate(date); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// UpdateMember edits a member's record.
func (d *Database) UpdateMember(id int64, name, address, phone string) error {
	res, err := d.db.Exec(`UPDATE members SET name=?, address=?, phone=? WHERE id=?`, name, address, phone, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// DeleteMember removes a member.
func (d *Database) DeleteMember(id int64) error {
	res, err := d.db.Exec(`DELETE FROM members WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func memberExists(q dbtx, id int64) (bool, error) {
	var exists bool
	err := q.QueryRow(`SELECT EXISTS(SELECT 1 FROM members WHERE id=?)`, id).Scan(&exists)
	return exists, err
}

// ---------------------------------------------------------------------------
// Date helpers
// ---------------------------------------------------------------------------

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func formatDate(t time.Time) string { return toDate(t).Format(dateLayout) }
