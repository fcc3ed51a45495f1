// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, sample catalog seeding
//	├── books/           # Catalog reads and rating statistics
//	├── userbooks/       # Reading status upserts (one row per user and book)
//	├── reviews/         # Review upserts and the recent reviews feed
//	├── profiles/        # Public profiles and reader activity aggregates
//	└── audit/           # Audit event log
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./booky.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	reviewsRepo := reviews.NewRepository(db.DB)
//
//	recent, err := reviewsRepo.Recent(ctx, 10)
//
// # Upserts
//
// Reading statuses and reviews are keyed by (user_id, book_id). Writing the
// same key twice overwrites the earlier row; the last write to reach the
// database wins. Uniqueness is enforced by the schema, not by callers.
//
// # Empty results
//
// A query that matches no rows returns an empty slice and a nil error.
// Only single-row lookups by ID return gorm.ErrRecordNotFound.
package database
