package main

import (
	"fmt"
	"os"
	"time"

	"library-circulation/library"
)

// Seeds a fresh database with a sample catalog and member roster for demos
// and manual testing.

type seedBook struct {
	title    string
	author   string
	isbn     string
	category string
	copies   int
}

type seedMember struct {
	name    string
	address string
	phone   string
}

func main() {
	// Clean up any existing database files
	fmt.Println("Cleaning up existing database files...")
	dbFiles := []string{"library.db", "library.db-shm", "library.db-wal"}
	for _, file := range dbFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}

	manager, err := library.NewLibraryManager("library.db")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	if err := manager.EnsureAdmin("admin", "admin123"); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating admin account: %v\n", err)
		os.Exit(1)
	}

	books := []seedBook{
		{"1984", "George Orwell", "978-0451524935", "Fiction", 3},
		{"Animal Farm", "George Orwell", "978-0452284241", "Fiction", 2},
		{"Brave New World", "Aldous Huxley", "978-0060850524", "Fiction", 2},
		{"Lord of the Flies", "William Golding", "978-0399501487", "Fiction", 2},
		{"The Art of War", "Sun Tzu", "978-1599869773", "Philosophy", 1},
		{"The Fellowship of the Ring", "J.R.R. Tolkien", "978-0547928210", "Fantasy", 4},
		{"The Two Towers", "J.R.R. Tolkien", "978-0547928203", "Fantasy", 4},
		{"The Return of the King", "J.R.R. Tolkien", "978-0547928197", "Fantasy", 4},
		{"Romeo and Juliet", "William Shakespeare", "978-0743477116", "Drama", 2},
		{"The Three Musketeers", "Alexandre Dumas", "978-0140367470", "Adventure", 1},
	}

	members := []seedMember{
		{"Alice Fernando", "12 Lake Road, Colombo", "071-5550101"},
		{"Bob Perera", "88 Hill Street, Kandy", "071-5550102"},
		{"Charlie Silva", "4 Beach Lane, Galle", "071-5550103"},
		{"Diana Jayawardena", "23 Temple Road, Matara", "071-5550104"},
	}

	fmt.Println("Seeding catalog...")
	bookCount := 0
	for _, b := range books {
		id, err := manager.AddBook(b.title, b.author, b.isbn, b.category, b.copies)
		if err != nil {
			fmt.Printf("ERROR adding '%s': %v\n", b.title, err)
			continue
		}
		fmt.Printf("  %s by %s (ID: %d, %d copies)\n", b.title, b.author, id, b.copies)
		bookCount++
	}

	fmt.Println("Seeding members...")
	memberCount := 0
	for _, m := range members {
		id, err := manager.AddMember(m.name, m.address, m.phone, time.Now())
		if err != nil {
			fmt.Printf("ERROR adding '%s': %v\n", m.name, err)
			continue
		}
		fmt.Printf("  %s (ID: %d)\n", m.name, id)
		memberCount++
	}

	fmt.Printf("\nSeed complete: %d books, %d members.\n", bookCount, memberCount)
	fmt.Println("Default admin account: admin / admin123")
}
