// seed inserts development sample data for local testing.
// Idempotent: skips all inserts if the dev admin (admin@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	bookdomain "nalanda-library-system/backend/internal/book/domain"
	bookrepo "nalanda-library-system/backend/internal/book/repository"
	"nalanda-library-system/backend/internal/config"
	"nalanda-library-system/backend/internal/db"
	"nalanda-library-system/backend/internal/security"
	userdomain "nalanda-library-system/backend/internal/user/domain"
	userrepo "nalanda-library-system/backend/internal/user/repository"
)

const (
	adminEmail  = "admin@example.com"
	memberEmail = "member@example.com"
	devPassword = "password123"
)

type sampleBook struct {
	title, author, isbn, genre string
	copies                     int32
}

var sampleBooks = []sampleBook{
	{"The Pragmatic Programmer", "Hunt & Thomas", "9780135957059", "Technology", 4},
	{"Dune", "Frank Herbert", "9780441172719", "Science Fiction", 3},
	{"The Name of the Wind", "Patrick Rothfuss", "9780756404741", "Fantasy", 2},
	{"Thinking, Fast and Slow", "Daniel Kahneman", "9780374533557", "Psychology", 3},
	{"A Short History of Nearly Everything", "Bill Bryson", "9780767908184", "Science", 1},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	books := bookrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (admin@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	seedUsers := []*userdomain.User{
		{
			ID: uuid.New().String(), Name: "Library Admin", Email: adminEmail,
			PasswordHash: passwordHash, Role: userdomain.RoleAdmin,
			IsActive: true, CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: uuid.New().String(), Name: "Sample Member", Email: memberEmail,
			PasswordHash: passwordHash, Role: userdomain.RoleMember,
			IsActive: true, CreatedAt: now, UpdatedAt: now,
		},
	}
	for _, u := range seedUsers {
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create user %s: %v", u.Email, err)
		}
	}

	for _, sb := range sampleBooks {
		b := &bookdomain.Book{
			ID:              uuid.New().String(),
			Title:           sb.title,
			Author:          sb.author,
			ISBN:            sb.isbn,
			Genre:           sb.genre,
			TotalCopies:     sb.copies,
			AvailableCopies: sb.copies,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := books.Create(ctx, b); err != nil {
			log.Fatalf("create book %q: %v", sb.title, err)
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Admin login: %s / %s\n", adminEmail, devPassword)
	fmt.Printf("Member login: %s / %s\n", memberEmail, devPassword)
}
